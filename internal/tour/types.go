package tour

import "encoding/json"

// Tour is a bookable travel package record. The title, description,
// country and city fields carry a default value plus per-language
// variants; the default is used whenever a variant is empty.
type Tour struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	AdultsMin   int      `json:"adults_min"`
	AdultsMax   int      `json:"adults_max"`
	PriceFrom   int      `json:"price_from"`
	Nights      int      `json:"nights"`
	ImageURL    string   `json:"image_url"`
	IsHot       int      `json:"is_hot"`
	TourType    string   `json:"tour_type"`
	GalleryURLs []string `json:"gallery_urls"`
}

// Localized holds the per-language variants of one tour text field,
// as stored. Only the admin listing reads these raw; public search
// resolves them in SQL.
type Localized struct {
	Default string `json:"default"`
	RU      string `json:"ru"`
	UZ      string `json:"uz"`
	EN      string `json:"en"`
}

// Resolve returns the variant for lang when it is non-empty, else the
// default value. The fallback is per-field: one empty translation does
// not affect any other field.
func (l Localized) Resolve(lang Lang) string {
	var v string
	switch lang {
	case LangRU:
		v = l.RU
	case LangUZ:
		v = l.UZ
	case LangEN:
		v = l.EN
	}
	if v != "" {
		return v
	}
	return l.Default
}

// TourRecord is the full stored form of a tour, translations included.
// The admin surface works with these; public search returns Tour with
// the language already resolved.
type TourRecord struct {
	ID          string    `json:"id"`
	Title       Localized `json:"title"`
	Description Localized `json:"description"`
	Country     Localized `json:"country"`
	City        Localized `json:"city"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	AdultsMin   int       `json:"adults_min"`
	AdultsMax   int       `json:"adults_max"`
	PriceFrom   int       `json:"price_from"`
	Nights      int       `json:"nights"`
	ImageURL    string    `json:"image_url"`
	IsHot       int       `json:"is_hot"`
	TourType    string    `json:"tour_type"`
	GalleryURLs []string  `json:"gallery_urls"`
}

// Resolve flattens a record into a Tour for the given language.
func (r TourRecord) Resolve(lang Lang) Tour {
	return Tour{
		ID:          r.ID,
		Title:       r.Title.Resolve(lang),
		Description: r.Description.Resolve(lang),
		Country:     r.Country.Resolve(lang),
		City:        r.City.Resolve(lang),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		AdultsMin:   r.AdultsMin,
		AdultsMax:   r.AdultsMax,
		PriceFrom:   r.PriceFrom,
		Nights:      r.Nights,
		ImageURL:    r.ImageURL,
		IsHot:       r.IsHot,
		TourType:    r.TourType,
		GalleryURLs: r.GalleryURLs,
	}
}

// TourType is a labeled category code used for filtering and display.
type TourType struct {
	Code    string `json:"code"`
	LabelRU string `json:"label_ru"`
	LabelUZ string `json:"label_uz"`
	LabelEN string `json:"label_en"`
}

// Label returns the type label for lang, falling back to the Russian
// label, which is always populated.
func (t TourType) Label(lang Lang) string {
	var v string
	switch lang {
	case LangUZ:
		v = t.LabelUZ
	case LangEN:
		v = t.LabelEN
	}
	if v != "" {
		return v
	}
	return t.LabelRU
}

// Built-in type codes. TypeHot unions with the legacy is_hot flag when
// used as a filter.
const (
	TypeRegular = "regular"
	TypeHot     = "hot"
)

// DecodeGallery turns the stored gallery blob into an ordered list of
// URLs. Malformed or absent blobs decode to an empty list, never an
// error: a corrupt gallery must not break a listing.
func DecodeGallery(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil || urls == nil {
		return []string{}
	}
	return urls
}

// EncodeGallery is the write-side counterpart of DecodeGallery. A nil
// list encodes as an empty JSON array so the column never holds NULL.
func EncodeGallery(urls []string) []byte {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return []byte("[]")
	}
	return b
}
