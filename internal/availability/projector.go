// Package availability derives, for a visible calendar month, the set
// of days on which at least one matching tour starts. The date picker
// uses it to enable and highlight days without blocking on the search.
package availability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qoratosh/travel-backend/internal/tour"
)

// Searcher is the read-only tour search the projector queries.
type Searcher interface {
	SearchTours(ctx context.Context, f tour.Filter) ([]tour.Tour, error)
}

// State is the projector's visible lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePopulated
	StateEmptyOnError
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// Bounds returns the first and last day of the month as ISO day strings.
func (m Month) Bounds() (first, last string) {
	f := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	l := f.AddDate(0, 1, -1)
	return f.Format("2006-01-02"), l.Format("2006-01-02")
}

// Snapshot is a copy of the projector's visible state. Available and
// Highlight are kept as two named sets even though today they are
// computed identically.
type Snapshot struct {
	State     State
	Available map[string]struct{}
	Highlight map[string]struct{}
}

// Projector computes day availability for one consumer (one date
// picker). Each Refresh supersedes the previous one: the in-flight
// request is canceled and its result, should it still arrive, is
// discarded rather than applied over newer state.
type Projector struct {
	search Searcher
	log    *slog.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	state     State
	available map[string]struct{}
	highlight map[string]struct{}
}

// New constructs an idle Projector.
func New(search Searcher, log *slog.Logger) *Projector {
	return &Projector{search: search, log: log, state: StateIdle}
}

// Refresh recomputes availability for the given month and filter
// inputs. It cancels any previous in-flight refresh, transitions to
// loading, and settles asynchronously. The returned channel closes when
// this particular request has settled (applied or discarded); callers
// that only want the side effect may ignore it.
func (p *Projector) Refresh(ctx context.Context, m Month, destination string, adults int, lang tour.Lang) <-chan struct{} {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.gen++
	gen := p.gen
	p.state = StateLoading
	p.mu.Unlock()

	first, last := m.Bounds()
	f := tour.Filter{
		Lang:        lang,
		Destination: destination,
		Adults:      adults,
		StartDate:   first,
		EndDate:     last,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		tours, err := p.search.SearchTours(reqCtx, f)

		p.mu.Lock()
		defer p.mu.Unlock()

		// A newer Refresh took over while this one was in flight. Its
		// result must not overwrite the newer state, success or not.
		if gen != p.gen {
			return
		}

		if err != nil {
			p.log.Warn("availability fetch failed", "month", first, "err", err)
			p.available = map[string]struct{}{}
			p.highlight = map[string]struct{}{}
			p.state = StateEmptyOnError
			return
		}

		avail := make(map[string]struct{})
		for _, t := range tours {
			day := tour.NormalizeDate(t.StartDate)
			if day == "" {
				continue
			}
			// Only start dates inside the month mark a day; a tour
			// spanning into the month does not light up its days.
			if day >= first && day <= last {
				avail[day] = struct{}{}
			}
		}

		p.available = avail
		p.highlight = cloneSet(avail)
		p.state = StatePopulated
	}()

	return done
}

// Snapshot returns a copy of the current visible state.
func (p *Projector) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		State:     p.state,
		Available: cloneSet(p.available),
		Highlight: cloneSet(p.highlight),
	}
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	if s == nil {
		return nil
	}
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
