package lead_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoratosh/travel-backend/internal/lead"
)

func TestMessage_FullLead(t *testing.T) {
	l := lead.Lead{
		Source:    "tour-card",
		Lang:      "ru",
		Name:      "Анна",
		LastName:  "Каримова",
		Phone:     "+998901234567",
		Comment:   "Хотим вылет из Ташкента",
		TourID:    "sharm-2025-10",
		TourTitle: "Шарм-эль-Шейх",
		TourLink:  "https://qoratosh.example/tours/sharm-2025-10",
	}

	msg := l.Message()

	assert.Contains(t, msg, "Новая заявка с сайта Qoratosh Travel")
	assert.Contains(t, msg, "Источник: tour-card")
	assert.Contains(t, msg, "Язык: ru")
	assert.Contains(t, msg, "- Имя: Анна Каримова")
	assert.Contains(t, msg, "- Телефон: +998901234567")
	assert.Contains(t, msg, "Комментарий: Хотим вылет из Ташкента")
	assert.Contains(t, msg, "- Название: Шарм-эль-Шейх")
	assert.Contains(t, msg, "- ID: sharm-2025-10")
	assert.Contains(t, msg, "- Ссылка: https://qoratosh.example/tours/sharm-2025-10")
}

func TestMessage_SkipsEmptySections(t *testing.T) {
	l := lead.Lead{Source: "cta", Phone: "+998901234567"}

	msg := l.Message()

	assert.Contains(t, msg, "Источник: cta")
	assert.Contains(t, msg, "- Телефон: +998901234567")
	assert.NotContains(t, msg, "Имя")
	assert.NotContains(t, msg, "Комментарий")
	assert.NotContains(t, msg, "Тур:")
}

func TestMessage_TrimsWhitespaceName(t *testing.T) {
	l := lead.Lead{Name: "  ", LastName: " "}
	assert.NotContains(t, l.Message(), "Контакт")
}

func TestNotify_PostsToSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := lead.NewTelegramNotifierWithBaseURL("test-token", "-100123", srv.URL)
	err := n.Notify(context.Background(), lead.Lead{Source: "cta", Name: "Анна"})

	require.NoError(t, err)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "-100123", gotBody["chat_id"])
	assert.Contains(t, gotBody["text"], "Новая заявка")
	assert.Contains(t, gotBody["text"], "Анна")
}

func TestNotify_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"bot was kicked"}`))
	}))
	defer srv.Close()

	n := lead.NewTelegramNotifierWithBaseURL("test-token", "-100123", srv.URL)
	err := n.Notify(context.Background(), lead.Lead{Source: "cta"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bot was kicked")
}

func TestNotify_Unconfigured(t *testing.T) {
	n := lead.NewTelegramNotifier("", "")
	err := n.Notify(context.Background(), lead.Lead{Source: "cta"})
	assert.ErrorIs(t, err, lead.ErrNotConfigured)

	n = lead.NewTelegramNotifier("token-only", "")
	assert.ErrorIs(t, n.Notify(context.Background(), lead.Lead{}), lead.ErrNotConfigured)
}

func TestNotify_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	n := lead.NewTelegramNotifierWithBaseURL("test-token", "-100123", srv.URL)
	err := n.Notify(context.Background(), lead.Lead{Source: "cta"})
	assert.Error(t, err)
}
