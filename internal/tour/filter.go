package tour

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Lang is a supported interface language. The zero value means "use the
// default-language fields".
type Lang string

const (
	LangDefault Lang = ""
	LangRU      Lang = "ru"
	LangUZ      Lang = "uz"
	LangEN      Lang = "en"
)

// ParseLang maps a raw language parameter to a Lang. Anything outside
// the supported set collapses to LangDefault.
func ParseLang(raw string) Lang {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ru":
		return LangRU
	case "uz":
		return LangUZ
	case "en":
		return LangEN
	default:
		return LangDefault
	}
}

// Suffix returns the column suffix for the language, e.g. "_ru", or ""
// for the default language.
func (l Lang) Suffix() string {
	if l == LangDefault {
		return ""
	}
	return "_" + string(l)
}

// Filter is the parsed, validated form of a tour search request. Every
// field is optional; the zero value matches everything. Search is
// deliberately permissive: unusable input becomes an absent filter, it
// never produces an error.
type Filter struct {
	Lang        Lang
	ID          string
	Destination string

	// ISO YYYY-MM-DD, empty when absent. EndDate is only honored
	// together with StartDate... except that a lone EndDate is simply
	// dropped during parsing, so the pair invariant holds by
	// construction.
	StartDate string
	EndDate   string

	// Adults is the requested party size; 0 means no filter.
	Adults int

	// Type is a category code. Empty or "all" means no filter; "hot"
	// additionally matches the legacy is_hot flag.
	Type string
}

// TypeAll is the sentinel meaning "no type filter".
const TypeAll = "all"

// ParseFilter builds a Filter from request query values. It is total:
// every input produces a usable Filter, with malformed values mapped to
// "filter absent".
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Lang:        ParseLang(q.Get("lang")),
		ID:          strings.TrimSpace(q.Get("id")),
		Destination: strings.TrimSpace(q.Get("destination")),
		Type:        strings.TrimSpace(q.Get("type")),
	}

	f.StartDate = NormalizeDate(q.Get("startDate"))
	f.EndDate = NormalizeDate(q.Get("endDate"))
	if f.StartDate == "" {
		// An end date without a start date has no defined meaning.
		f.EndDate = ""
	}

	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("adults"))); err == nil && n > 0 {
		f.Adults = n
	}

	return f
}

// HasTypeFilter reports whether the type predicate is active.
func (f Filter) HasTypeFilter() bool {
	return f.Type != "" && f.Type != TypeAll
}

// NormalizeDate parses a calendar date in ISO form and returns it
// re-rendered as YYYY-MM-DD. Unparsable input returns "".
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		// Accept full timestamps too; the storefront sends plain days
		// but older clients sent RFC 3339.
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return ""
		}
	}
	return t.Format("2006-01-02")
}

// Fingerprint renders the filter as a stable cache key fragment.
func (f Filter) Fingerprint() string {
	parts := []string{
		string(f.Lang),
		f.ID,
		strings.ToLower(f.Destination),
		f.StartDate,
		f.EndDate,
		strconv.Itoa(f.Adults),
		f.Type,
	}
	return strings.Join(parts, "|")
}
