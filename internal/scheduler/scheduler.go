// Package scheduler owns the refresh cadence: it runs the
// fetch-derive-publish cycle on a timer or on manual request, never
// overlapping two cycles, and holds the latest published state for the
// presentation layer.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/lending-monitor/internal/config"
	"github.com/yourorg/lending-monitor/internal/derive"
	"github.com/yourorg/lending-monitor/internal/model"
	"github.com/yourorg/lending-monitor/internal/otel"
	"github.com/yourorg/lending-monitor/internal/timefmt"
)

// State represents where the scheduler is within a refresh cycle.
type State int

// Scheduler states
const (
	StateIdle     State = iota // waiting for the next tick or manual trigger
	StateFetching              // upstream reads in flight
	StateDerived               // derivation done, publish pending
)

// String returns a stable label for the state.
func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateDerived:
		return "derived"
	default:
		return "idle"
	}
}

// Fetcher is the upstream side of a refresh cycle.
type Fetcher interface {
	FetchAll(ctx context.Context) (model.Snapshot, []model.DecisionRecord, []model.EquityPoint)
	LastUpdated() string
	Configured() bool
}

// Scheduler drives refresh cycles and publishes their results. The latest
// DerivedState is replaced wholesale by the single cycle writer; readers
// only ever see a complete, previously-published copy.
type Scheduler struct {
	fetcher Fetcher
	years   int
	norm    *timefmt.Normalizer

	// onPublish, when set, observes every published state along with its
	// trigger and cycle duration (e.g. to feed prometheus gauges)
	onPublish func(state model.DerivedState, trigger string, took time.Duration)

	mu      sync.RWMutex
	state   State
	cadence int // seconds; 0 means manual-only
	latest  *model.DerivedState

	// manual has capacity 1: a trigger during an in-flight cycle
	// coalesces into at most one pending cycle, never a queue
	manual    chan struct{}
	cadenceCh chan int
}

// New creates a Scheduler. cadenceSeconds must come from the validated
// configuration set; projectionYears is clamped by the deriver.
func New(fetcher Fetcher, cadenceSeconds, projectionYears int, norm *timefmt.Normalizer) *Scheduler {
	return &Scheduler{
		fetcher:   fetcher,
		years:     projectionYears,
		norm:      norm,
		state:     StateIdle,
		cadence:   cadenceSeconds,
		manual:    make(chan struct{}, 1),
		cadenceCh: make(chan int, 1),
	}
}

// WithPublishCallback sets a publish observer and returns the scheduler.
func (s *Scheduler) WithPublishCallback(fn func(model.DerivedState, string, time.Duration)) *Scheduler {
	s.onPublish = fn
	return s
}

// Run owns the polling loop until ctx is done. With a zero cadence no
// automatic tick fires and only manual triggers cause a cycle.
func (s *Scheduler) Run(ctx context.Context) {
	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
	)
	if c := s.Cadence(); c > 0 {
		ticker = time.NewTicker(time.Duration(c) * time.Second)
		tickC = ticker.C
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	logrus.WithFields(logrus.Fields{
		"cadence_s": s.Cadence(),
	}).Info("Refresh scheduler started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Refresh scheduler stopped")
			return
		case <-tickC:
			s.RunCycle(ctx, "tick")
		case <-s.manual:
			s.RunCycle(ctx, "manual")
		case c := <-s.cadenceCh:
			switch {
			case c == 0 && ticker != nil:
				ticker.Stop()
				ticker, tickC = nil, nil
			case c > 0 && ticker == nil:
				ticker = time.NewTicker(time.Duration(c) * time.Second)
				tickC = ticker.C
			case c > 0:
				ticker.Reset(time.Duration(c) * time.Second)
			}
			logrus.Infof("Refresh cadence switched to %ds", c)
		}
	}
}

// TriggerRefresh requests an immediate cycle. It reports false when a
// trigger is already pending; the request is dropped, not queued.
func (s *Scheduler) TriggerRefresh() bool {
	select {
	case s.manual <- struct{}{}:
		return true
	default:
		return false
	}
}

// SetCadence switches the automatic refresh period at runtime. The value
// must be in the accepted enumerated set.
func (s *Scheduler) SetCadence(seconds int) error {
	if !config.ValidCadence(seconds) {
		return fmt.Errorf("cadence %ds not in allowed set %v", seconds, config.Cadences)
	}

	s.mu.Lock()
	s.cadence = seconds
	s.mu.Unlock()

	// Replace any not-yet-consumed update rather than blocking.
	for {
		select {
		case s.cadenceCh <- seconds:
			return nil
		default:
			select {
			case <-s.cadenceCh:
			default:
			}
		}
	}
}

// RunCycle executes one fetch-derive-publish pass. It reports false when a
// cycle is already in flight: concurrent requests coalesce instead of
// starting a second fetch.
func (s *Scheduler) RunCycle(ctx context.Context, trigger string) bool {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		logrus.Debugf("Refresh (%s) ignored, cycle already in flight", trigger)
		return false
	}
	s.state = StateFetching
	s.mu.Unlock()

	start := time.Now()
	ctx, span := otel.Tracer().Start(ctx, "refresh.cycle")
	defer span.End()

	snap, decisions, equity := s.fetcher.FetchAll(ctx)

	s.mu.Lock()
	s.state = StateDerived
	s.mu.Unlock()

	state := derive.Derive(snap, decisions, equity, s.years)

	s.mu.Lock()
	s.latest = &state
	s.state = StateIdle
	s.mu.Unlock()

	took := time.Since(start)
	if s.onPublish != nil {
		s.onPublish(state, trigger, took)
	}

	logrus.WithFields(logrus.Fields{
		"trigger":   trigger,
		"took":      took.Round(time.Millisecond),
		"decisions": len(decisions),
		"equity":    len(equity),
	}).Info("Refresh cycle complete")
	return true
}

// State returns the scheduler's current cycle state.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Cadence returns the configured automatic refresh period in seconds.
func (s *Scheduler) Cadence() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cadence
}

// Latest returns a copy of the most recently published state. The second
// return is false before the first completed cycle.
func (s *Scheduler) Latest() (model.DerivedState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return model.DerivedState{}, false
	}
	return *s.latest, true
}

// LastUpdatedDisplay returns the upstream sync time normalized for display.
func (s *Scheduler) LastUpdatedDisplay() string {
	return s.norm.ToLocalDisplay(s.fetcher.LastUpdated())
}

// LastUpdatedRaw returns the upstream sync time exactly as the store wrote
// it, or the unsynced sentinel.
func (s *Scheduler) LastUpdatedRaw() string {
	return s.fetcher.LastUpdated()
}

// Configured reports whether the upstream store credentials are present.
func (s *Scheduler) Configured() bool {
	return s.fetcher.Configured()
}
