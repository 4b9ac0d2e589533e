/*
scheduler.go - Background re-settlement of live matches

PURPOSE:
  Scores arrive hole by hole while a round is played. The scheduler
  periodically settles every match and appends a run only when the raw
  obligations differ from the match's latest stored run, so the history
  records each change in who owes whom without duplicates.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Runs once immediately on start
  - Matches with no obligations and no history are skipped

CONFIGURATION:
  - Interval: How often to check (config resettle.interval)
  - Enabled:  Whether the scheduler runs (config resettle.enabled)

USAGE:
  s := NewResettleScheduler(handler, time.Minute)
  s.Start()
  // ... later
  s.Stop()

SEE ALSO:
  - handlers.go: SettleMatch endpoint (manual settlement)
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/warp/wager-engine/engine"
	"github.com/warp/wager-engine/wager"
)

// ResettleScheduler settles matches whose obligations changed.
type ResettleScheduler struct {
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewResettleScheduler creates an enabled scheduler.
func NewResettleScheduler(h *Handler, interval time.Duration) *ResettleScheduler {
	return &ResettleScheduler{
		Handler:  h,
		Interval: interval,
		Enabled:  true,
	}
}

// Start begins the scheduler.
func (s *ResettleScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Handler.Logger.Info("resettle scheduler disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run()

	s.Handler.Logger.Info("resettle scheduler started", "interval", s.Interval)
}

// Stop stops the scheduler and waits for an in-flight pass to finish.
func (s *ResettleScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Handler.Logger.Info("resettle scheduler stopped")
	}
}

func (s *ResettleScheduler) run() {
	defer s.wg.Done()

	s.pass()
	for {
		select {
		case <-s.ticker.C:
			s.pass()
		case <-s.stop:
			return
		}
	}
}

func (s *ResettleScheduler) pass() {
	settled, unchanged, err := s.RunOnce(context.Background())
	if err != nil {
		s.Handler.Logger.Error("resettle pass failed", "error", err)
		return
	}
	if settled > 0 {
		s.Handler.Logger.Info("resettle pass completed", "settled", settled, "unchanged", unchanged)
	}
}

// RunOnce checks every match once. It returns how many matches got a new
// run and how many were left alone. A failure on one match is logged and
// does not stop the pass.
func (s *ResettleScheduler) RunOnce(ctx context.Context) (settled, unchanged int, err error) {
	h := s.Handler
	matches, err := h.Store.ListMatches(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list matches: %w", err)
	}

	for _, m := range matches {
		changed, err := s.changed(ctx, m)
		if err != nil {
			h.Logger.Error("resettle check failed", "match", m.ID, "error", err)
			continue
		}
		if !changed {
			unchanged++
			continue
		}
		if _, _, err := h.settleMatch(ctx, m.ID, SourceResettle); err != nil {
			h.Logger.Error("resettle failed", "match", m.ID, "error", err)
			continue
		}
		settled++
	}
	return settled, unchanged, nil
}

// changed reports whether settling m now would record something new.
func (s *ResettleScheduler) changed(ctx context.Context, m wager.Match) (bool, error) {
	h := s.Handler
	course, err := h.Store.GetCourse(ctx, m.CourseID)
	if err != nil {
		return false, err
	}
	out, err := engine.Settle(m.Config, engine.ForMatch(m, *course))
	if err != nil {
		return false, err
	}
	runs, err := h.Store.SettlementRuns(ctx, m.ID)
	if err != nil {
		return false, err
	}

	if len(runs) == 0 {
		return len(out.Obligations) > 0, nil
	}
	return !sameObligations(runs[len(runs)-1].Obligations, out.Obligations), nil
}

func sameObligations(a, b []wager.PaymentObligation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].From != b[i].From || a[i].To != b[i].To || a[i].Reason != b[i].Reason || !a[i].Amount.Equal(b[i].Amount) {
			return false
		}
	}
	return true
}
