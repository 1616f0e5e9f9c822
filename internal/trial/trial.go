// Package trial runs the statistical harnesses around the solver pipeline:
// mutation (necessity) testing and null-model controls. Every trial is a
// pure function of its inputs plus a deterministic sub-seed, so batches are
// dispatched across a worker pool with a single serialized results sink.
package trial

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
	"k4solve/internal/validate"
	"k4solve/internal/wheel"
)

// Kind labels the trial family an outcome belongs to.
type Kind string

const (
	KindMutation    Kind = "mutation"
	KindScramble    Kind = "scramble"
	KindRandomParam Kind = "random_param"
)

// Outcome is one trial's result row. Batch sinks persist these verbatim.
type Outcome struct {
	TrialID  string
	Kind     Kind
	Index    int    // mutated index, -1 when not applicable
	Original string // original letter at Index, "" when not applicable
	Mutant   string // injected letter, "" when not applicable
	Params   string // scrambled/random parameter description
	Feasible bool
	Reason   wheel.FailureReason
	Detail   string
	Digest   string // SHA-256 of the derived plaintext, "" if none
	Elapsed  time.Duration
}

// Sink receives outcomes one at a time. Implementations do not need to be
// concurrency-safe: the batch collector serializes all writes.
type Sink interface {
	Write(Outcome) error
}

// NopSink discards outcomes.
type NopSink struct{}

func (NopSink) Write(Outcome) error { return nil }

// Baseline is the fixed input every trial perturbs: ciphertext, anchors,
// classing partition, and solver options.
type Baseline struct {
	Text    cipher.Text
	Anchors []wheel.Anchor
	Part    *classing.Partition
	Opts    wheel.Options
}

// Solve runs the solver pipeline once over the unperturbed baseline.
func (b Baseline) Solve() ([]wheel.Wheel, wheel.DerivedPlaintext, error) {
	wheels, err := wheel.Solve(b.Text, b.Anchors, b.Part, b.Opts)
	if err != nil {
		return nil, nil, err
	}
	return wheels, wheel.Derive(b.Text, wheels, b.Part, b.Opts.Mode), nil
}

// anchorIndices marks every index covered by an anchor range.
func anchorIndices(anchors []wheel.Anchor, n int) []bool {
	covered := make([]bool, n)
	for _, a := range anchors {
		for i := a.Start; i <= a.End && i < n; i++ {
			covered[i] = true
		}
	}
	return covered
}

// subSeed derives a per-trial seed from the master seed and the trial's
// identifiers. Trials never share or mutate RNG state.
func subSeed(master int64, parts ...string) int64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(master))
	h.Write(buf[:])
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// runOne executes a single trial body under a deadline, converting panics to
// trial_error outcomes and deadline overruns to trial_timeout. The trial is
// never retried; the batch continues regardless of the result.
func runOne(ctx context.Context, timeout time.Duration, id string, kind Kind, fn func() Outcome) Outcome {
	start := time.Now()
	tctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Outcome{
					TrialID: id,
					Kind:    kind,
					Index:   -1,
					Reason:  wheel.FailTrialError,
					Detail:  fmt.Sprintf("panic: %v", r),
				}
			}
		}()
		done <- fn()
	}()

	select {
	case o := <-done:
		o.TrialID = id
		o.Kind = kind
		o.Elapsed = time.Since(start)
		return o
	case <-tctx.Done():
		return Outcome{
			TrialID: id,
			Kind:    kind,
			Index:   -1,
			Reason:  wheel.FailTrialTimeout,
			Detail:  tctx.Err().Error(),
			Elapsed: time.Since(start),
		}
	}
}

// pipelineOutcome runs solve+derive on a perturbed input and classifies the
// result against the expectation.
func pipelineOutcome(text cipher.Text, anchors []wheel.Anchor, part *classing.Partition, opts wheel.Options, exp validate.Expectation) Outcome {
	wheels, err := wheel.Solve(text, anchors, part, opts)
	if err != nil {
		return Outcome{Index: -1, Reason: wheel.ReasonOf(err), Detail: err.Error()}
	}
	derived := wheel.Derive(text, wheels, part, opts.Mode)
	res := validate.Check(derived, exp)
	o := Outcome{Index: -1, Digest: validate.Digest(derived.String())}
	if !res.Passed {
		o.Reason = res.Reason
		o.Detail = res.Detail
		return o
	}
	o.Feasible = true
	return o
}
