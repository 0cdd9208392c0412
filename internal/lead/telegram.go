// Package lead forwards contact-form submissions to the agency's
// Telegram group through the bot sendMessage API.
package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

// ErrNotConfigured is returned when the bot token or chat id is missing.
var ErrNotConfigured = errors.New("telegram bot is not configured")

// Lead is one contact-form submission. All fields are optional; the
// message builder skips empty ones.
type Lead struct {
	Source    string `json:"source"`
	Lang      string `json:"lang"`
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Comment   string `json:"comment"`
	TourID    string `json:"tourId"`
	TourTitle string `json:"tourTitle"`
	TourLink  string `json:"tourLink"`
}

// Message renders the lead as the human-readable multi-line text posted
// to the group chat.
func (l Lead) Message() string {
	var lines []string
	add := func(s string) { lines = append(lines, s) }

	add("Новая заявка с сайта Qoratosh Travel")
	if l.Source != "" {
		add("Источник: " + l.Source)
	}
	if l.Lang != "" {
		add("Язык: " + l.Lang)
	}

	name := strings.TrimSpace(strings.TrimSpace(l.Name) + " " + strings.TrimSpace(l.LastName))
	phone := strings.TrimSpace(l.Phone)
	if name != "" || phone != "" {
		add("Контакт:")
		if name != "" {
			add("- Имя: " + name)
		}
		if phone != "" {
			add("- Телефон: " + phone)
		}
	}

	if c := strings.TrimSpace(l.Comment); c != "" {
		add("Комментарий: " + c)
	}

	if l.TourTitle != "" || l.TourID != "" || l.TourLink != "" {
		add("Тур:")
		if l.TourTitle != "" {
			add("- Название: " + l.TourTitle)
		}
		if l.TourID != "" {
			add("- ID: " + l.TourID)
		}
		if l.TourLink != "" {
			add("- Ссылка: " + l.TourLink)
		}
	}

	return strings.Join(lines, "\n")
}

// TelegramNotifier delivers leads via the Telegram bot API.
type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

const telegramBaseURL = "https://api.telegram.org"

// NewTelegramNotifier constructs a notifier. Empty token or chat id is
// allowed; Notify will return ErrNotConfigured.
func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: telegramBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// NewTelegramNotifierWithBaseURL constructs a notifier against a custom
// API endpoint (used in tests).
func NewTelegramNotifierWithBaseURL(token, chatID, baseURL string) *TelegramNotifier {
	n := NewTelegramNotifier(token, chatID)
	n.baseURL = baseURL
	return n
}

// Notify posts the lead message to the configured chat.
func (n *TelegramNotifier) Notify(ctx context.Context, l Lead) error {
	if n.token == "" || n.chatID == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    l.Message(),
	})
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
