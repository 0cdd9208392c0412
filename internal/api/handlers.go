package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qoratosh/travel-backend/internal/availability"
	"github.com/qoratosh/travel-backend/internal/content"
	"github.com/qoratosh/travel-backend/internal/lead"
	"github.com/qoratosh/travel-backend/internal/tour"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo     TourRepo
	cache    SearchCache
	notifier LeadNotifier
	content  ContentStore
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(repo TourRepo, cache SearchCache, notifier LeadNotifier, content ContentStore, log *slog.Logger) *Handlers {
	return &Handlers{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		content:  content,
		log:      log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SearchTours handles GET /api/v1/tours.
// Query parameters are coerced permissively: malformed dates, party
// sizes or unknown languages become absent filters, never a 4xx. The
// only failure mode is storage itself.
func (h *Handlers) SearchTours(w http.ResponseWriter, r *http.Request) {
	f := tour.ParseFilter(r.URL.Query())

	cached, err := h.cache.Get(r.Context(), f)
	if err != nil {
		h.log.Error("search cache get failed", "filter", f.Fingerprint(), "err", err)
	}
	if cached != nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": cached})
		return
	}

	tours, err := h.repo.SearchTours(r.Context(), f)
	if err != nil {
		h.log.Error("tour search failed", "filter", f.Fingerprint(), "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if tours == nil {
		tours = []tour.Tour{}
	}

	if err := h.cache.Set(r.Context(), f, tours); err != nil {
		h.log.Warn("search cache set failed", "filter", f.Fingerprint(), "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": tours})
}

// ListTourTypes handles GET /api/v1/tour-types.
func (h *Handlers) ListTourTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.repo.ListTourTypes(r.Context())
	if err != nil {
		h.log.Error("listing tour types failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if types == nil {
		types = []tour.TourType{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": types})
}

// GetContent handles GET /api/v1/content.
func (h *Handlers) GetContent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"content": h.content.Get()})
}

// Bootstrap handles GET /api/v1/bootstrap: everything the storefront
// needs for first paint (site content, tour types, hot tours), fetched
// in parallel.
func (h *Handlers) Bootstrap(w http.ResponseWriter, r *http.Request) {
	lang := tour.ParseLang(r.URL.Query().Get("lang"))

	var (
		types []tour.TourType
		hot   []tour.Tour
	)

	g, gCtx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		types, err = h.repo.ListTourTypes(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		hot, err = h.repo.SearchTours(gCtx, tour.Filter{Lang: lang, Type: tour.TypeHot})
		return err
	})

	if err := g.Wait(); err != nil {
		h.log.Error("bootstrap fetch failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if types == nil {
		types = []tour.TourType{}
	}
	if hot == nil {
		hot = []tour.Tour{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"content":    h.content.Get(),
		"tour_types": types,
		"hot_tours":  hot,
	})
}

// GetAvailability handles GET /api/v1/availability: the date picker's
// view of a calendar month, listing the days on which at least one
// matching tour departs. Missing or malformed year/month fall back to
// the current month; a fetch failure yields empty day lists, not an
// error response.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	now := time.Now().UTC()
	m := availability.Month{Year: now.Year(), Month: now.Month()}
	if y, err := strconv.Atoi(q.Get("year")); err == nil && y > 0 {
		if mo, err := strconv.Atoi(q.Get("month")); err == nil && mo >= 1 && mo <= 12 {
			m = availability.Month{Year: y, Month: time.Month(mo)}
		}
	}

	adults := 0
	if a, err := strconv.Atoi(q.Get("adults")); err == nil && a > 0 {
		adults = a
	}

	p := availability.New(h.repo, h.log)
	<-p.Refresh(r.Context(), m, q.Get("destination"), adults, tour.ParseLang(q.Get("lang")))
	snap := p.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"days":      sortedDays(snap.Available),
		"highlight": sortedDays(snap.Highlight),
	})
}

func sortedDays(set map[string]struct{}) []string {
	days := make([]string, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// SubmitLead handles POST /api/v1/leads: relays the contact form to the
// messaging webhook.
func (h *Handlers) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var l lead.Lead
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	if err := h.notifier.Notify(r.Context(), l); err != nil {
		if errors.Is(err, lead.ErrNotConfigured) {
			h.log.Error("lead notifier not configured")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lead delivery is not configured"})
			return
		}
		h.log.Error("lead delivery failed", "source", l.Source, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "lead delivery failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UpdateContent handles PUT /api/v1/admin/content.
func (h *Handlers) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content content.Document `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	if err := h.content.Replace(body.Content); err != nil {
		h.log.Error("content update failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store content"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HealthCheck handles GET /api/v1/health.
// Pings DB and Redis; returns 200 if both ok, 503 otherwise.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, map[string]string{
			"status": func() string {
				if status == http.StatusOK {
					return "ok"
				}
				return "degraded"
			}(),
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
