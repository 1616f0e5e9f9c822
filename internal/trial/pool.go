package trial

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"k4solve/internal/wheel"
)

// spec is one queued trial: a stable id plus its body.
type spec struct {
	id   string
	kind Kind
	fn   func() Outcome
}

// Summary aggregates a batch. It is built by the single collector goroutine
// after all trials complete or time out; no cross-trial ordering exists.
type Summary struct {
	Kind     Kind
	Total    int
	Feasible int
	Timeouts int
	Errors   int
	ByReason map[string]int
	// PerIndexFeasible counts feasible mutants per mutated index
	// (necessity batches only).
	PerIndexFeasible map[int]int
	Elapsed          time.Duration
}

// PassRate is the fraction of trials that came back feasible.
func (s *Summary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Feasible) / float64(s.Total)
}

// WithinTolerance reports whether the feasible rate stays at or below tol.
func (s *Summary) WithinTolerance(tol float64) bool {
	return s.PassRate() <= tol
}

func (s *Summary) add(o Outcome) {
	s.Total++
	s.ByReason[o.Reason.String()]++
	switch {
	case o.Feasible:
		s.Feasible++
		if o.Index >= 0 {
			s.PerIndexFeasible[o.Index]++
		}
	case o.Reason == wheel.FailTrialTimeout:
		s.Timeouts++
	case o.Reason == wheel.FailTrialError:
		s.Errors++
	}
}

// runBatch fans trials out over a bounded worker pool and drains all
// outcomes through one collector goroutine, which owns the sink. A sink
// write failure is logged and counted but never aborts the batch: a
// completed run always reports.
func runBatch(ctx context.Context, logger *zap.Logger, workers int, timeout time.Duration, kind Kind, specs []spec, sink Sink) (*Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	if sink == nil {
		sink = NopSink{}
	}

	start := time.Now()
	summary := &Summary{
		Kind:             kind,
		ByReason:         make(map[string]int),
		PerIndexFeasible: make(map[int]int),
	}

	results := make(chan Outcome, workers)
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for o := range results {
			summary.add(o)
			if err := sink.Write(o); err != nil {
				logger.Warn("results sink write failed",
					zap.String("trial", o.TrialID),
					zap.Error(err))
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sp := range specs {
		sp := sp
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			o := runOne(gctx, timeout, sp.id, kind, sp.fn)
			logger.Debug("trial finished",
				zap.String("trial", o.TrialID),
				zap.Bool("feasible", o.Feasible),
				zap.String("reason", o.Reason.String()),
				zap.Duration("elapsed", o.Elapsed))
			select {
			case results <- o:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err := g.Wait()
	close(results)
	<-collectorDone

	summary.Elapsed = time.Since(start)
	if err != nil && ctx.Err() != nil {
		// Cancellation still yields the partial summary gathered so far.
		return summary, ctx.Err()
	}
	return summary, nil
}
