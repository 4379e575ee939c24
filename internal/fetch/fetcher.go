package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/lending-monitor/internal/model"
	"github.com/yourorg/lending-monitor/internal/otel"
	"github.com/yourorg/lending-monitor/internal/timefmt"
)

// Fetcher issues the three upstream reads concurrently, each under its own
// timeout, and returns best-effort results. A failed resource yields its
// empty default; no failure ever propagates to the caller, and no sibling
// blocks on another resource's failure.
type Fetcher struct {
	client  *Client
	timeout time.Duration

	// onError, when set, is called with the resource name on each
	// failed read (e.g. to feed a prometheus counter)
	onError func(resource string)

	mu          sync.RWMutex
	lastUpdated string
}

// NewFetcher creates a Fetcher with the given per-resource timeout.
func NewFetcher(client *Client, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:      client,
		timeout:     timeout,
		lastUpdated: timefmt.Unsynced,
	}
}

// WithErrorCallback sets a per-resource failure callback and returns the fetcher.
func (f *Fetcher) WithErrorCallback(fn func(resource string)) *Fetcher {
	f.onError = fn
	return f
}

// Configured reports whether the underlying store client has credentials.
func (f *Fetcher) Configured() bool {
	return f.client.Configured()
}

// FetchAll retrieves snapshot, decision log, and equity curve concurrently.
// Missing credentials short-circuit to empty results without any network
// traffic. FetchAll never returns an error: each resource fails soft to
// its empty default.
func (f *Fetcher) FetchAll(ctx context.Context) (model.Snapshot, []model.DecisionRecord, []model.EquityPoint) {
	var (
		snap      model.Snapshot
		decisions []model.DecisionRecord
		equity    []model.EquityPoint
	)

	if !f.client.Configured() {
		logrus.Debug("Store credentials absent, skipping fetch")
		return snap, decisions, equity
	}

	ctx, span := otel.Tracer().Start(ctx, "fetch.all")
	defer span.End()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s, updatedAt, err := readOne(ctx, f, "snapshot", func(rctx context.Context) (model.Snapshot, string, error) {
			return f.client.FetchSnapshot(rctx)
		})
		if err != nil {
			return
		}
		snap = s
		// Source timestamp is only advanced on a successful read of a
		// written row, so a failed cycle or a not-yet-written table shows
		// a stale or unsynced time rather than an erased one.
		if updatedAt != "" {
			f.mu.Lock()
			f.lastUpdated = updatedAt
			f.mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		d, _, err := readOne(ctx, f, "decisions", func(rctx context.Context) ([]model.DecisionRecord, string, error) {
			d, err := f.client.FetchDecisions(rctx)
			return d, "", err
		})
		if err != nil {
			return
		}
		decisions = d
	}()

	go func() {
		defer wg.Done()
		e, _, err := readOne(ctx, f, "equity", func(rctx context.Context) ([]model.EquityPoint, string, error) {
			e, err := f.client.FetchEquity(rctx)
			return e, "", err
		})
		if err != nil {
			return
		}
		equity = e
	}()

	wg.Wait()
	return snap, decisions, equity
}

// readOne runs a single resource read under the per-resource timeout and
// its own span, logging and counting the failure if any.
func readOne[T any](ctx context.Context, f *Fetcher, resource string, read func(context.Context) (T, string, error)) (T, string, error) {
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	rctx, span := otel.Tracer().Start(rctx, "fetch."+resource)
	defer span.End()

	v, meta, err := read(rctx)
	if err != nil {
		span.RecordError(err)
		logrus.WithFields(logrus.Fields{
			"resource": resource,
		}).Warnf("Fetch failed, using empty default: %v", err)
		if f.onError != nil {
			f.onError(resource)
		}
	}
	return v, meta, err
}

// LastUpdated returns the raw source timestamp of the last successful
// snapshot read, or the unsynced sentinel before the first one.
func (f *Fetcher) LastUpdated() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastUpdated
}
