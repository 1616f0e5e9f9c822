package trial

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
	"k4solve/internal/validate"
	"k4solve/internal/wheel"
)

// Control selects the null-model flavor.
type Control uint8

const (
	// ControlScramble permutes the non-anchor ciphertext positions and
	// reruns the pipeline; the anchor ranges are never touched.
	ControlScramble Control = iota
	// ControlRandomParams pins every class to randomly drawn
	// (family, period, phase) values that differ from the solved baseline
	// and reruns the pipeline.
	ControlRandomParams
)

func (c Control) String() string {
	if c == ControlScramble {
		return "scramble"
	}
	return "random_params"
}

// NullModelConfig drives a negative-control batch.
type NullModelConfig struct {
	Control   Control
	Trials    int
	Workers   int
	Timeout   time.Duration
	Seed      int64
	Tolerance float64 // maximum acceptable feasible rate, e.g. 0.01
}

// NullModel estimates the false-positive rate of the pipeline: controls are
// expected to fail, and a feasible rate above the tolerance means the
// acceptance criteria leak. The summary always comes back, even when every
// trial failed.
func NullModel(ctx context.Context, logger *zap.Logger, b Baseline, cfg NullModelConfig, sink Sink) (*Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}

	wheels, baseDerived, err := b.Solve()
	if err != nil {
		return nil, fmt.Errorf("baseline solve: %w", err)
	}
	// Controls are validated against the baseline's accepted plaintext.
	exp := validate.Expectation{
		Anchors:         b.Anchors,
		RequireComplete: true,
		PlaintextSHA256: validate.Digest(baseDerived.String()),
	}

	kind := KindScramble
	if cfg.Control == ControlRandomParams {
		kind = KindRandomParam
	}

	specs := make([]spec, 0, cfg.Trials)
	for i := 0; i < cfg.Trials; i++ {
		i := i
		id := fmt.Sprintf("%s-%05d", kind, i)
		var fn func() Outcome
		switch cfg.Control {
		case ControlScramble:
			fn = func() Outcome {
				return scrambleTrial(b, exp, subSeed(cfg.Seed, string(kind), id))
			}
		case ControlRandomParams:
			fn = func() Outcome {
				return randomParamTrial(b, wheels, exp, subSeed(cfg.Seed, string(kind), id))
			}
		default:
			return nil, fmt.Errorf("unknown control %d", cfg.Control)
		}
		specs = append(specs, spec{id: id, kind: kind, fn: fn})
	}

	logger.Info("null-model batch starting",
		zap.String("control", cfg.Control.String()),
		zap.Int("trials", cfg.Trials),
		zap.Int64("seed", cfg.Seed),
		zap.Int("workers", cfg.Workers))
	summary, err := runBatch(ctx, logger, cfg.Workers, cfg.Timeout, kind, specs, sink)
	if summary != nil {
		logger.Info("null-model batch finished",
			zap.Int("total", summary.Total),
			zap.Int("feasible", summary.Feasible),
			zap.Float64("pass_rate", summary.PassRate()),
			zap.Bool("within_tolerance", summary.WithinTolerance(cfg.Tolerance)),
			zap.Duration("elapsed", summary.Elapsed))
	}
	return summary, err
}

// scrambleTrial permutes the ciphertext outside every anchor range and
// reruns solve+derive+validate against the baseline expectation. The anchor
// positions are untouched, so the solve and anchor checks see the same
// constraints as the baseline; a scrambled control is rejected at the digest
// comparison, where the permuted free positions change the derivation.
func scrambleTrial(b Baseline, exp validate.Expectation, seed int64) Outcome {
	rng := rand.New(rand.NewSource(seed))
	covered := anchorIndices(b.Anchors, len(b.Text))
	var free []int
	for i, c := range covered {
		if !c {
			free = append(free, i)
		}
	}

	text := b.Text.Clone()
	for i := len(free) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		text[free[i]], text[free[j]] = text[free[j]], text[free[i]]
	}

	o := pipelineOutcome(text, b.Anchors, b.Part, b.Opts, exp)
	o.Params = fmt.Sprintf("seed=%d free=%d", seed, len(free))
	return o
}

// randomParamTrial pins each class to a random (family, period, phase)
// combination different from the solved baseline wheel and reruns the
// pipeline.
func randomParamTrial(b Baseline, baseline []wheel.Wheel, exp validate.Expectation, seed int64) Outcome {
	rng := rand.New(rand.NewSource(seed))
	families := cipher.Families()

	fixed := make(map[int]wheel.Fixed, len(baseline))
	var desc []string
	for _, w := range baseline {
		var f wheel.Fixed
		for {
			f = wheel.Fixed{
				Family: families[rng.Intn(len(families))],
				Period: b.Opts.MinPeriod + rng.Intn(b.Opts.MaxPeriod-b.Opts.MinPeriod+1),
			}
			if b.Opts.Mode == classing.Ordinal {
				f.Phase = rng.Intn(f.Period)
			}
			if f.Family != w.Family || f.Period != w.Period || f.Phase != w.Phase {
				break
			}
		}
		fixed[w.Class] = f
		desc = append(desc, fmt.Sprintf("c%d=%s/%d/%d", w.Class, f.Family, f.Period, f.Phase))
	}

	opts := b.Opts
	opts.Fixed = fixed
	o := pipelineOutcome(b.Text, b.Anchors, b.Part, opts, exp)
	o.Params = strings.Join(desc, " ")
	return o
}
