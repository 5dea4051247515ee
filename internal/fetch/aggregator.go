// Package fetch fans collection requests out concurrently and folds the
// results into one row collection on a single consumer goroutine.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/http"
	"github.com/cryptogamefiverse/nftdash/internal/models"
)

// ErrDuplicateName is reported when two ids resolve to the same collection name.
var ErrDuplicateName = errors.New("duplicate collection name")

// Source fetches one collection's row by id.
type Source interface {
	FetchRow(ctx context.Context, id string) (models.Row, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, id string) (models.Row, error)

func (f SourceFunc) FetchRow(ctx context.Context, id string) (models.Row, error) {
	return f(ctx, id)
}

// PublishFunc receives the accumulated rows after every successful arrival.
// The slice is a copy owned by the callee.
type PublishFunc func(rows []models.Row)

// Summary describes one batch.
type Summary struct {
	Requested int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Cancelled bool
	Errors    map[string]error // by id
}

// Aggregator runs batches against a Source.
type Aggregator struct {
	source        Source
	bus           *events.EventBus
	maxConcurrent int
	logger        zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithEventBus publishes fetch lifecycle events to bus.
func WithEventBus(bus *events.EventBus) Option {
	return func(a *Aggregator) { a.bus = bus }
}

// WithMaxConcurrent caps in-flight requests. n <= 0 means one goroutine per id.
func WithMaxConcurrent(n int) Option {
	return func(a *Aggregator) { a.maxConcurrent = n }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an Aggregator reading from source.
func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type result struct {
	id       string
	row      models.Row
	err      error
	duration time.Duration
}

// Run issues one request per id, repeats included, concurrently. Each
// success is appended to the accumulated rows in arrival order and publish
// is called with a copy.
// Failures are logged and skipped; they never cancel sibling requests.
//
// Once ctx is cancelled no further publishes happen. Run returns only after
// every request goroutine has exited.
func (a *Aggregator) Run(ctx context.Context, ids []string, publish PublishFunc) Summary {
	start := time.Now()
	summary := Summary{Requested: len(ids), Errors: make(map[string]error)}

	a.publishEvent(&events.FetchStartedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventFetchStarted, Time: start},
		Slugs:     slices.Clone(ids),
	})

	results := make(chan result, len(ids))

	var g errgroup.Group
	if a.maxConcurrent > 0 {
		g.SetLimit(a.maxConcurrent)
	}

	go func() {
		defer close(results)
		for _, id := range ids {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				reqStart := time.Now()
				row, err := a.source.FetchRow(ctx, id)
				results <- result{id: id, row: row, err: err, duration: time.Since(reqStart)}
				return nil
			})
		}
		_ = g.Wait()
	}()

	var rows []models.Row
	seen := make(map[string]string, len(ids))

	for res := range results {
		if ctx.Err() != nil {
			// drain without publishing
			continue
		}

		if res.err == nil {
			if prev, dup := seen[res.row.Name]; dup {
				res.err = fmt.Errorf("%w: %q returned by %s and %s", ErrDuplicateName, res.row.Name, prev, res.id)
			}
		}

		if res.err != nil {
			a.recordFailure(&summary, res)
			continue
		}

		seen[res.row.Name] = res.id
		rows = append(rows, res.row)
		summary.Succeeded++

		a.logger.Debug().
			Str("slug", res.id).
			Str("name", res.row.Name).
			Dur("elapsed", res.duration).
			Msg("Collection fetched")
		a.publishEvent(&events.CollectionEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventCollectionFetched, Time: time.Now()},
			Slug:      res.id,
			Name:      res.row.Name,
			Duration:  res.duration,
		})

		if publish != nil {
			publish(slices.Clone(rows))
		}
	}

	summary.Duration = time.Since(start)
	summary.Cancelled = ctx.Err() != nil

	a.logger.Info().
		Int("requested", summary.Requested).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Bool("cancelled", summary.Cancelled).
		Dur("elapsed", summary.Duration).
		Msg("Fetch complete")
	a.publishEvent(&events.FetchCompleteEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventFetchComplete, Time: time.Now()},
		Requested: summary.Requested,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Duration:  summary.Duration,
		Cancelled: summary.Cancelled,
	})

	return summary
}

func (a *Aggregator) recordFailure(summary *Summary, res result) {
	summary.Failed++
	summary.Errors[res.id] = res.err

	class := http.ErrorTypeName(http.ClassifyError(res.err))
	a.logger.Warn().
		Err(res.err).
		Str("slug", res.id).
		Str("class", class).
		Msg("Collection fetch failed")
	a.publishEvent(&events.CollectionEvent{
		BaseEvent:  events.BaseEvent{EventType: events.EventCollectionFailed, Time: time.Now()},
		Slug:       res.id,
		Error:      res.err,
		ErrorClass: class,
		Duration:   res.duration,
	})
}

func (a *Aggregator) publishEvent(ev events.Event) {
	if a.bus != nil {
		a.bus.Publish(ev)
	}
}
