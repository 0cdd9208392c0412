package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoratosh/travel-backend/internal/tour"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sentinel errors for tour-type writes. Handlers map these to 409 and
// 400 respectively.
var (
	ErrTourTypeExists = errors.New("tour type already exists")
	ErrTourTypeInUse  = errors.New("tour type is used by tours")
)

// searchLimit caps every search result set. There is no pagination; the
// storefront never shows more than this.
const searchLimit = 50

// Repository provides database access for tour and tour-type records.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// localizedColumn builds the SQL expression resolving a text field for
// the requested language: the language variant when non-empty, else the
// default column. For the default language the column is used as is.
func localizedColumn(name string, lang tour.Lang) string {
	if lang == tour.LangDefault {
		return name
	}
	return fmt.Sprintf("COALESCE(NULLIF(%s%s, ''), %s)", name, lang.Suffix(), name)
}

// SearchTours runs the tour search for the given filter. All active
// predicates are ANDed; localization is resolved in SQL so destination
// matching sees the same values the caller receives. Results are
// hot-first, then chronological, capped at searchLimit.
func (r *Repository) SearchTours(ctx context.Context, f tour.Filter) ([]tour.Tour, error) {
	titleCol := localizedColumn("title", f.Lang)
	descCol := localizedColumn("description", f.Lang)
	countryCol := localizedColumn("country", f.Lang)
	cityCol := localizedColumn("city", f.Lang)

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ID != "" {
		conds = append(conds, "id = "+arg(f.ID))
	}

	if f.Destination != "" {
		p := arg("%" + f.Destination + "%")
		conds = append(conds, fmt.Sprintf("(%s ILIKE %s OR %s ILIKE %s)", countryCol, p, cityCol, p))
	}

	// Date predicate: with both bounds, symmetric interval overlap;
	// with only a start, the tour must still be running on that date.
	switch {
	case f.StartDate != "" && f.EndDate != "":
		conds = append(conds, fmt.Sprintf("(start_date <= %s AND end_date >= %s)", arg(f.EndDate), arg(f.StartDate)))
	case f.StartDate != "":
		conds = append(conds, "(end_date >= "+arg(f.StartDate)+")")
	}

	if f.Adults > 0 {
		p := arg(f.Adults)
		conds = append(conds, fmt.Sprintf("(adults_min <= %s AND adults_max >= %s)", p, p))
	}

	if f.HasTypeFilter() {
		if f.Type == tour.TypeHot {
			// Legacy union: rows flagged hot before tour_type existed
			// must keep matching the hot filter.
			conds = append(conds, "(tour_type = 'hot' OR is_hot = 1)")
		} else {
			conds = append(conds, "tour_type = "+arg(f.Type))
		}
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + joinAnd(conds)
	}

	q := fmt.Sprintf(`
		SELECT id,
		       %s AS title,
		       %s AS description,
		       %s AS country,
		       %s AS city,
		       start_date, end_date, adults_min, adults_max,
		       price_from, nights, image_url, is_hot, tour_type, gallery_json
		FROM tours
		%s
		ORDER BY is_hot DESC, start_date ASC
		LIMIT %d
	`, titleCol, descCol, countryCol, cityCol, where, searchLimit)

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tours: %w", err)
	}
	defer rows.Close()

	var results []tour.Tour
	for rows.Next() {
		var t tour.Tour
		var gallery []byte

		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Country,
			&t.City,
			&t.StartDate,
			&t.EndDate,
			&t.AdultsMin,
			&t.AdultsMax,
			&t.PriceFrom,
			&t.Nights,
			&t.ImageURL,
			&t.IsHot,
			&t.TourType,
			&gallery,
		); err != nil {
			return nil, fmt.Errorf("scanning tour row: %w", err)
		}

		t.GalleryURLs = tour.DecodeGallery(gallery)
		results = append(results, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tour rows: %w", err)
	}

	return results, nil
}

func joinAnd(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}

// allTourColumns lists every stored column of a tour record, in the
// order scanned by scanTourRecord.
const allTourColumns = `id,
	title, title_ru, title_uz, title_en,
	description, description_ru, description_uz, description_en,
	country, country_ru, country_uz, country_en,
	city, city_ru, city_uz, city_en,
	start_date, end_date, adults_min, adults_max,
	price_from, nights, image_url, is_hot, tour_type, gallery_json`

func scanTourRecord(row pgx.Row) (tour.TourRecord, error) {
	var rec tour.TourRecord
	var gallery []byte
	err := row.Scan(
		&rec.ID,
		&rec.Title.Default, &rec.Title.RU, &rec.Title.UZ, &rec.Title.EN,
		&rec.Description.Default, &rec.Description.RU, &rec.Description.UZ, &rec.Description.EN,
		&rec.Country.Default, &rec.Country.RU, &rec.Country.UZ, &rec.Country.EN,
		&rec.City.Default, &rec.City.RU, &rec.City.UZ, &rec.City.EN,
		&rec.StartDate, &rec.EndDate, &rec.AdultsMin, &rec.AdultsMax,
		&rec.PriceFrom, &rec.Nights, &rec.ImageURL, &rec.IsHot, &rec.TourType, &gallery,
	)
	if err != nil {
		return rec, err
	}
	rec.GalleryURLs = tour.DecodeGallery(gallery)
	return rec, nil
}

// ListAllTours returns every tour with translations, for the admin
// surface. Chronological order, no cap.
func (r *Repository) ListAllTours(ctx context.Context) ([]tour.TourRecord, error) {
	q := "SELECT " + allTourColumns + " FROM tours ORDER BY start_date ASC"

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying all tours: %w", err)
	}
	defer rows.Close()

	var results []tour.TourRecord
	for rows.Next() {
		rec, err := scanTourRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tour record: %w", err)
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tour records: %w", err)
	}

	return results, nil
}

// GetTourRecord returns one tour with translations, or nil, nil when
// the id is unknown.
func (r *Repository) GetTourRecord(ctx context.Context, id string) (*tour.TourRecord, error) {
	q := "SELECT " + allTourColumns + " FROM tours WHERE id = $1"

	rec, err := scanTourRecord(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying tour %s: %w", id, err)
	}
	return &rec, nil
}

// normalizeRecord applies the write-side defaults: an empty tour_type
// derives from the legacy hot flag.
func normalizeRecord(rec *tour.TourRecord) {
	if rec.TourType == "" {
		if rec.IsHot == 1 {
			rec.TourType = tour.TypeHot
		} else {
			rec.TourType = tour.TypeRegular
		}
	}
}

// CreateTour inserts a tour record.
func (r *Repository) CreateTour(ctx context.Context, rec tour.TourRecord) error {
	normalizeRecord(&rec)

	const q = `
		INSERT INTO tours (` + allTourColumns + `)
		VALUES ($1,
		        $2, $3, $4, $5,
		        $6, $7, $8, $9,
		        $10, $11, $12, $13,
		        $14, $15, $16, $17,
		        $18, $19, $20, $21,
		        $22, $23, $24, $25, $26, $27)
	`
	if _, err := r.q.Exec(ctx, q, tourRecordArgs(rec)...); err != nil {
		return fmt.Errorf("inserting tour %s: %w", rec.ID, err)
	}
	return nil
}

// UpdateTour replaces every stored column of the tour with the given id.
func (r *Repository) UpdateTour(ctx context.Context, rec tour.TourRecord) error {
	normalizeRecord(&rec)

	const q = `
		UPDATE tours SET
			title = $2, title_ru = $3, title_uz = $4, title_en = $5,
			description = $6, description_ru = $7, description_uz = $8, description_en = $9,
			country = $10, country_ru = $11, country_uz = $12, country_en = $13,
			city = $14, city_ru = $15, city_uz = $16, city_en = $17,
			start_date = $18, end_date = $19, adults_min = $20, adults_max = $21,
			price_from = $22, nights = $23, image_url = $24, is_hot = $25,
			tour_type = $26, gallery_json = $27
		WHERE id = $1
	`
	if _, err := r.q.Exec(ctx, q, tourRecordArgs(rec)...); err != nil {
		return fmt.Errorf("updating tour %s: %w", rec.ID, err)
	}
	return nil
}

func tourRecordArgs(rec tour.TourRecord) []any {
	return []any{
		rec.ID,
		rec.Title.Default, rec.Title.RU, rec.Title.UZ, rec.Title.EN,
		rec.Description.Default, rec.Description.RU, rec.Description.UZ, rec.Description.EN,
		rec.Country.Default, rec.Country.RU, rec.Country.UZ, rec.Country.EN,
		rec.City.Default, rec.City.RU, rec.City.UZ, rec.City.EN,
		rec.StartDate, rec.EndDate, rec.AdultsMin, rec.AdultsMax,
		rec.PriceFrom, rec.Nights, rec.ImageURL, rec.IsHot, rec.TourType,
		string(tour.EncodeGallery(rec.GalleryURLs)),
	}
}

// DeleteTour removes the tour with the given id. Deleting an unknown id
// is a no-op.
func (r *Repository) DeleteTour(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, "DELETE FROM tours WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting tour %s: %w", id, err)
	}
	return nil
}

// ListTourTypes returns all tour types ordered by code.
func (r *Repository) ListTourTypes(ctx context.Context) ([]tour.TourType, error) {
	const q = "SELECT code, label_ru, label_uz, label_en FROM tour_types ORDER BY code ASC"

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying tour types: %w", err)
	}
	defer rows.Close()

	var results []tour.TourType
	for rows.Next() {
		var tt tour.TourType
		if err := rows.Scan(&tt.Code, &tt.LabelRU, &tt.LabelUZ, &tt.LabelEN); err != nil {
			return nil, fmt.Errorf("scanning tour type row: %w", err)
		}
		results = append(results, tt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tour type rows: %w", err)
	}

	return results, nil
}

// CreateTourType inserts a new type. The code is slugified; a duplicate
// code returns ErrTourTypeExists.
func (r *Repository) CreateTourType(ctx context.Context, tt tour.TourType) error {
	tt.Code = tour.Slugify(tt.Code)

	var count int
	err := r.q.QueryRow(ctx, "SELECT COUNT(1) FROM tour_types WHERE code = $1", tt.Code).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking tour type %s: %w", tt.Code, err)
	}
	if count > 0 {
		return ErrTourTypeExists
	}

	const q = "INSERT INTO tour_types (code, label_ru, label_uz, label_en) VALUES ($1, $2, $3, $4)"
	if _, err := r.q.Exec(ctx, q, tt.Code, tt.LabelRU, tt.LabelUZ, tt.LabelEN); err != nil {
		return fmt.Errorf("inserting tour type %s: %w", tt.Code, err)
	}
	return nil
}

// UpdateTourType replaces the labels of an existing type.
func (r *Repository) UpdateTourType(ctx context.Context, tt tour.TourType) error {
	const q = "UPDATE tour_types SET label_ru = $2, label_uz = $3, label_en = $4 WHERE code = $1"
	if _, err := r.q.Exec(ctx, q, tt.Code, tt.LabelRU, tt.LabelUZ, tt.LabelEN); err != nil {
		return fmt.Errorf("updating tour type %s: %w", tt.Code, err)
	}
	return nil
}

// DeleteTourType removes a type. The delete is rejected with
// ErrTourTypeInUse while any tour still references the code; there is
// no foreign key here, the guard lives in the application layer.
func (r *Repository) DeleteTourType(ctx context.Context, code string) error {
	var used int
	err := r.q.QueryRow(ctx, "SELECT COUNT(1) FROM tours WHERE tour_type = $1", code).Scan(&used)
	if err != nil {
		return fmt.Errorf("checking usage of tour type %s: %w", code, err)
	}
	if used > 0 {
		return ErrTourTypeInUse
	}

	if _, err := r.q.Exec(ctx, "DELETE FROM tour_types WHERE code = $1", code); err != nil {
		return fmt.Errorf("deleting tour type %s: %w", code, err)
	}
	return nil
}
