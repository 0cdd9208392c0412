package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/qoratosh/travel-backend/internal/storage"
	"github.com/qoratosh/travel-backend/internal/tour"
)

// tourPayload is the flat admin wire form of a tour record, matching
// the column names the admin UI has always used.
type tourPayload struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	TitleRU       string   `json:"title_ru"`
	TitleUZ       string   `json:"title_uz"`
	TitleEN       string   `json:"title_en"`
	Description   string   `json:"description"`
	DescriptionRU string   `json:"description_ru"`
	DescriptionUZ string   `json:"description_uz"`
	DescriptionEN string   `json:"description_en"`
	Country       string   `json:"country"`
	CountryRU     string   `json:"country_ru"`
	CountryUZ     string   `json:"country_uz"`
	CountryEN     string   `json:"country_en"`
	City          string   `json:"city"`
	CityRU        string   `json:"city_ru"`
	CityUZ        string   `json:"city_uz"`
	CityEN        string   `json:"city_en"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	AdultsMin     int      `json:"adults_min"`
	AdultsMax     int      `json:"adults_max"`
	PriceFrom     int      `json:"price_from"`
	Nights        int      `json:"nights"`
	ImageURL      string   `json:"image_url"`
	IsHot         int      `json:"is_hot"`
	TourType      string   `json:"tour_type"`
	GalleryURLs   []string `json:"gallery_urls"`
}

func (p tourPayload) toRecord() tour.TourRecord {
	return tour.TourRecord{
		ID:          p.ID,
		Title:       tour.Localized{Default: p.Title, RU: p.TitleRU, UZ: p.TitleUZ, EN: p.TitleEN},
		Description: tour.Localized{Default: p.Description, RU: p.DescriptionRU, UZ: p.DescriptionUZ, EN: p.DescriptionEN},
		Country:     tour.Localized{Default: p.Country, RU: p.CountryRU, UZ: p.CountryUZ, EN: p.CountryEN},
		City:        tour.Localized{Default: p.City, RU: p.CityRU, UZ: p.CityUZ, EN: p.CityEN},
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		AdultsMin:   p.AdultsMin,
		AdultsMax:   p.AdultsMax,
		PriceFrom:   p.PriceFrom,
		Nights:      p.Nights,
		ImageURL:    p.ImageURL,
		IsHot:       p.IsHot,
		TourType:    p.TourType,
		GalleryURLs: p.GalleryURLs,
	}
}

func payloadFromRecord(rec tour.TourRecord) tourPayload {
	return tourPayload{
		ID:            rec.ID,
		Title:         rec.Title.Default,
		TitleRU:       rec.Title.RU,
		TitleUZ:       rec.Title.UZ,
		TitleEN:       rec.Title.EN,
		Description:   rec.Description.Default,
		DescriptionRU: rec.Description.RU,
		DescriptionUZ: rec.Description.UZ,
		DescriptionEN: rec.Description.EN,
		Country:       rec.Country.Default,
		CountryRU:     rec.Country.RU,
		CountryUZ:     rec.Country.UZ,
		CountryEN:     rec.Country.EN,
		City:          rec.City.Default,
		CityRU:        rec.City.RU,
		CityUZ:        rec.City.UZ,
		CityEN:        rec.City.EN,
		StartDate:     rec.StartDate,
		EndDate:       rec.EndDate,
		AdultsMin:     rec.AdultsMin,
		AdultsMax:     rec.AdultsMax,
		PriceFrom:     rec.PriceFrom,
		Nights:        rec.Nights,
		ImageURL:      rec.ImageURL,
		IsHot:         rec.IsHot,
		TourType:      rec.TourType,
		GalleryURLs:   rec.GalleryURLs,
	}
}

// validateTourPayload collects the missing required fields, mirroring
// the admin UI's expectations. Translations are optional.
func validateTourPayload(p tourPayload) []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "Missing "+name)
		}
	}
	check("id", p.ID)
	check("title", p.Title)
	check("country", p.Country)
	check("city", p.City)
	check("start_date", p.StartDate)
	check("end_date", p.EndDate)
	check("image_url", p.ImageURL)
	if p.AdultsMin <= 0 {
		missing = append(missing, "Missing adults_min")
	}
	if p.AdultsMax <= 0 {
		missing = append(missing, "Missing adults_max")
	}
	if p.PriceFrom <= 0 {
		missing = append(missing, "Missing price_from")
	}
	if p.Nights <= 0 {
		missing = append(missing, "Missing nights")
	}
	return missing
}

// flushSearchCache drops cached search responses after an admin write.
// A flush failure is logged, not surfaced: the entries expire on their
// own within the TTL.
func (h *Handlers) flushSearchCache(r *http.Request) {
	if err := h.cache.Flush(r.Context()); err != nil {
		h.log.Warn("search cache flush failed", "err", err)
	}
}

// AdminListTours handles GET /api/v1/admin/tours.
func (h *Handlers) AdminListTours(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ListAllTours(r.Context())
	if err != nil {
		h.log.Error("admin tour listing failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items := make([]tourPayload, 0, len(recs))
	for _, rec := range recs {
		items = append(items, payloadFromRecord(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// AdminCreateTour handles POST /api/v1/admin/tours.
func (h *Handlers) AdminCreateTour(w http.ResponseWriter, r *http.Request) {
	h.adminSaveTour(w, r, h.repo.CreateTour)
}

// AdminUpdateTour handles PUT /api/v1/admin/tours.
func (h *Handlers) AdminUpdateTour(w http.ResponseWriter, r *http.Request) {
	h.adminSaveTour(w, r, h.repo.UpdateTour)
}

func (h *Handlers) adminSaveTour(w http.ResponseWriter, r *http.Request, save func(ctx context.Context, rec tour.TourRecord) error) {
	var p tourPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	if missing := validateTourPayload(p); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": strings.Join(missing, ", ")})
		return
	}

	if err := save(r.Context(), p.toRecord()); err != nil {
		h.log.Error("tour save failed", "id", p.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.flushSearchCache(r)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AdminDeleteTour handles DELETE /api/v1/admin/tours?id=...
func (h *Handlers) AdminDeleteTour(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing id"})
		return
	}

	if err := h.repo.DeleteTour(r.Context(), id); err != nil {
		h.log.Error("tour delete failed", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.flushSearchCache(r)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AdminListTourTypes handles GET /api/v1/admin/tour-types.
func (h *Handlers) AdminListTourTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.repo.ListTourTypes(r.Context())
	if err != nil {
		h.log.Error("admin tour type listing failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if types == nil {
		types = []tour.TourType{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": types})
}

func decodeTourType(r *http.Request) (tour.TourType, bool) {
	var tt tour.TourType
	if err := json.NewDecoder(r.Body).Decode(&tt); err != nil {
		return tt, false
	}
	tt.Code = strings.TrimSpace(tt.Code)
	tt.LabelRU = strings.TrimSpace(tt.LabelRU)
	tt.LabelUZ = strings.TrimSpace(tt.LabelUZ)
	tt.LabelEN = strings.TrimSpace(tt.LabelEN)
	if tt.Code == "" || tt.LabelRU == "" || tt.LabelUZ == "" || tt.LabelEN == "" {
		return tt, false
	}
	return tt, true
}

// AdminCreateTourType handles POST /api/v1/admin/tour-types.
func (h *Handlers) AdminCreateTourType(w http.ResponseWriter, r *http.Request) {
	tt, ok := decodeTourType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	if err := h.repo.CreateTourType(r.Context(), tt); err != nil {
		if errors.Is(err, storage.ErrTourTypeExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Type already exists"})
			return
		}
		h.log.Error("tour type create failed", "code", tt.Code, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AdminUpdateTourType handles PUT /api/v1/admin/tour-types.
func (h *Handlers) AdminUpdateTourType(w http.ResponseWriter, r *http.Request) {
	tt, ok := decodeTourType(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	if err := h.repo.UpdateTourType(r.Context(), tt); err != nil {
		h.log.Error("tour type update failed", "code", tt.Code, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AdminDeleteTourType handles DELETE /api/v1/admin/tour-types?code=...
// Deleting a type still referenced by tours is rejected.
func (h *Handlers) AdminDeleteTourType(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing code"})
		return
	}

	if err := h.repo.DeleteTourType(r.Context(), code); err != nil {
		if errors.Is(err, storage.ErrTourTypeInUse) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Type is used by tours"})
			return
		}
		h.log.Error("tour type delete failed", "code", code, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
