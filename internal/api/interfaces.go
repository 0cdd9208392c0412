package api

import (
	"context"

	"github.com/qoratosh/travel-backend/internal/content"
	"github.com/qoratosh/travel-backend/internal/lead"
	"github.com/qoratosh/travel-backend/internal/tour"
)

// TourRepo defines the storage operations needed by handlers.
type TourRepo interface {
	SearchTours(ctx context.Context, f tour.Filter) ([]tour.Tour, error)
	ListAllTours(ctx context.Context) ([]tour.TourRecord, error)
	CreateTour(ctx context.Context, rec tour.TourRecord) error
	UpdateTour(ctx context.Context, rec tour.TourRecord) error
	DeleteTour(ctx context.Context, id string) error
	ListTourTypes(ctx context.Context) ([]tour.TourType, error)
	CreateTourType(ctx context.Context, tt tour.TourType) error
	UpdateTourType(ctx context.Context, tt tour.TourType) error
	DeleteTourType(ctx context.Context, code string) error
}

// SearchCache defines the cache operations needed by handlers.
type SearchCache interface {
	Get(ctx context.Context, f tour.Filter) ([]tour.Tour, error)
	Set(ctx context.Context, f tour.Filter, tours []tour.Tour) error
	Flush(ctx context.Context) error
}

// LeadNotifier delivers contact-form submissions to the agency.
type LeadNotifier interface {
	Notify(ctx context.Context, l lead.Lead) error
}

// ContentStore serves and replaces the editable site content.
type ContentStore interface {
	Get() content.Document
	Replace(doc content.Document) error
}
