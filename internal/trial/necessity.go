package trial

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"k4solve/internal/cipher"
	"k4solve/internal/validate"
	"k4solve/internal/wheel"
)

// NecessityConfig drives the mutation tester over an inclusive index range.
type NecessityConfig struct {
	Start   int
	End     int
	Workers int
	Timeout time.Duration
}

// Necessity tests whether the baseline solution is uniquely forced over the
// target range: for every index and every letter differing from the baseline
// plaintext there, one trial injects that letter as an extra constraint and
// reruns the whole pipeline. A trial is feasible only if the solve succeeds,
// the derivation is complete, and the mutated index actually derives the
// mutant letter. A fully forced range reports zero feasible trials.
func Necessity(ctx context.Context, logger *zap.Logger, b Baseline, cfg NecessityConfig, sink Sink) (*Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Start < 0 || cfg.End >= len(b.Text) || cfg.Start > cfg.End {
		return nil, fmt.Errorf("target range [%d,%d] invalid for text of length %d", cfg.Start, cfg.End, len(b.Text))
	}

	_, baseDerived, err := b.Solve()
	if err != nil {
		return nil, fmt.Errorf("baseline solve: %w", err)
	}
	for i := cfg.Start; i <= cfg.End; i++ {
		if !baseDerived[i].Known {
			return nil, fmt.Errorf("baseline leaves index %d undetermined; necessity needs a determined target range", i)
		}
	}

	var specs []spec
	for i := cfg.Start; i <= cfg.End; i++ {
		i := i
		original := baseDerived[i].V
		for m := uint8(0); m < cipher.Mod; m++ {
			if m == original {
				continue
			}
			m := m
			id := fmt.Sprintf("mut-%03d-%c", i, cipher.Letter(m))
			specs = append(specs, spec{
				id:   id,
				kind: KindMutation,
				fn: func() Outcome {
					o := mutationTrial(b, i, m)
					o.Original = string(cipher.Letter(original))
					o.Mutant = string(cipher.Letter(m))
					return o
				},
			})
		}
	}

	logger.Info("necessity batch starting",
		zap.Int("trials", len(specs)),
		zap.Int("range_start", cfg.Start),
		zap.Int("range_end", cfg.End),
		zap.Int("workers", cfg.Workers))
	summary, err := runBatch(ctx, logger, cfg.Workers, cfg.Timeout, KindMutation, specs, sink)
	if summary != nil {
		logger.Info("necessity batch finished",
			zap.Int("total", summary.Total),
			zap.Int("feasible", summary.Feasible),
			zap.Duration("elapsed", summary.Elapsed))
	}
	return summary, err
}

// mutationTrial injects the mutant letter at index i and reruns the
// pipeline. Inside an anchor the letter replaces the anchor's; elsewhere it
// becomes a one-letter constraint of its own.
func mutationTrial(b Baseline, i int, mutant uint8) Outcome {
	anchors := mutateAnchors(b.Anchors, i, mutant)

	wheels, err := wheel.Solve(b.Text, anchors, b.Part, b.Opts)
	if err != nil {
		return Outcome{Index: i, Reason: wheel.ReasonOf(err), Detail: err.Error()}
	}
	derived := wheel.Derive(b.Text, wheels, b.Part, b.Opts.Mode)
	o := Outcome{Index: i, Digest: validate.Digest(derived.String())}
	if !derived.Complete() {
		undet := derived.Undetermined()
		o.Reason = wheel.FailIncompleteDerivation
		o.Detail = fmt.Sprintf("%d undetermined positions", len(undet))
		return o
	}
	if derived[i].V != mutant {
		o.Reason = wheel.FailAnchorMismatch
		o.Detail = fmt.Sprintf("index %d derived %c, not the injected %c", i, cipher.Letter(derived[i].V), cipher.Letter(mutant))
		return o
	}
	o.Feasible = true
	return o
}

func mutateAnchors(anchors []wheel.Anchor, i int, mutant uint8) []wheel.Anchor {
	out := make([]wheel.Anchor, len(anchors), len(anchors)+1)
	copy(out, anchors)
	for ai, a := range out {
		if a.Covers(i) {
			pt := []byte(a.Plaintext)
			pt[i-a.Start] = cipher.Letter(mutant)
			out[ai].Plaintext = string(pt)
			return out
		}
	}
	return append(out, wheel.Anchor{
		Name:      "mutation",
		Start:     i,
		End:       i,
		Plaintext: string(cipher.Letter(mutant)),
	})
}
