package trial

import (
	"context"
	"testing"
	"time"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
	"k4solve/internal/wheel"
)

// scrambleBaseline: single pinned period-2 Vigenere wheel, anchor over
// 0..3, and twelve free positions whose ciphertext letters are pairwise
// distinct, so any non-identity permutation of them changes the derivation.
func scrambleBaseline(t *testing.T) Baseline {
	t.Helper()

	a, err := classing.NewAssignment(classing.FormulaMod, 1)
	if err != nil {
		t.Fatal(err)
	}
	part := classing.NewPartition(a, 16)

	plain, _ := cipher.ParseText("ABCDEFGHIJKLMNOP")
	keys := []uint8{3, 7}
	text := make(cipher.Text, len(plain))
	for i, p := range plain {
		text[i] = cipher.Vigenere.Encrypt(p, keys[i%2])
	}

	opts := wheel.DefaultOptions()
	opts.Mode = classing.Direct
	opts.Fixed = map[int]wheel.Fixed{0: {Family: cipher.Vigenere, Period: 2, Phase: 0}}

	return Baseline{
		Text:    text,
		Anchors: []wheel.Anchor{{Name: "head", Start: 0, End: 3, Plaintext: "ABCD"}},
		Part:    part,
		Opts:    opts,
	}
}

func TestNullModelScrambleNeverPasses(t *testing.T) {
	t.Parallel()

	b := scrambleBaseline(t)
	sink := &recordingSink{}
	summary, err := NullModel(context.Background(), nil, b, NullModelConfig{
		Control:   ControlScramble,
		Trials:    40,
		Workers:   4,
		Timeout:   time.Second,
		Seed:      1234,
		Tolerance: 0.01,
	}, sink)
	if err != nil {
		t.Fatalf("NullModel: %v", err)
	}
	if summary.Total != 40 {
		t.Fatalf("total=%d, want 40", summary.Total)
	}
	if summary.Feasible != 0 {
		t.Fatalf("feasible=%d, want 0: scrambled controls leaked through", summary.Feasible)
	}
	if !summary.WithinTolerance(0.01) {
		t.Fatal("pass rate should be within tolerance")
	}
	// Anchors are untouched by the scramble, so the solve succeeds and the
	// rejection always lands on the digest comparison.
	if summary.ByReason["hash_mismatch"] != 40 {
		t.Fatalf("ByReason=%v, want 40 hash_mismatch", summary.ByReason)
	}
}

func TestNullModelScrambleDeterministicForSeed(t *testing.T) {
	t.Parallel()

	b := scrambleBaseline(t)
	run := func() []Outcome {
		sink := &recordingSink{}
		_, err := NullModel(context.Background(), nil, b, NullModelConfig{
			Control: ControlScramble,
			Trials:  10,
			Workers: 1, // single worker keeps sink order stable
			Timeout: time.Second,
			Seed:    77,
		}, sink)
		if err != nil {
			t.Fatalf("NullModel: %v", err)
		}
		return sink.outcomes
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].TrialID != second[i].TrialID || first[i].Digest != second[i].Digest || first[i].Reason != second[i].Reason {
			t.Fatalf("trial %d not reproducible: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// randomParamBaseline: Beaufort truth with distinct keys and a full-cover
// anchor, sized so that within the period bound 2..3 the only consistent
// configuration is the baseline itself.
func randomParamBaseline(t *testing.T) Baseline {
	t.Helper()

	a, err := classing.NewAssignment(classing.FormulaMod, 1)
	if err != nil {
		t.Fatal(err)
	}
	part := classing.NewPartition(a, 6)

	plain, _ := cipher.ParseText("ABCDEF")
	keys := []uint8{4, 9}
	text := make(cipher.Text, len(plain))
	for i, p := range plain {
		text[i] = cipher.Beaufort.Encrypt(p, keys[i%2])
	}

	opts := wheel.DefaultOptions()
	opts.Mode = classing.Direct
	opts.MinPeriod, opts.MaxPeriod = 2, 3

	return Baseline{
		Text:    text,
		Anchors: []wheel.Anchor{{Name: "all", Start: 0, End: 5, Plaintext: "ABCDEF"}},
		Part:    part,
		Opts:    opts,
	}
}

func TestNullModelRandomParamsAllFail(t *testing.T) {
	t.Parallel()

	b := randomParamBaseline(t)
	sink := &recordingSink{}
	summary, err := NullModel(context.Background(), nil, b, NullModelConfig{
		Control:   ControlRandomParams,
		Trials:    30,
		Workers:   4,
		Timeout:   time.Second,
		Seed:      99,
		Tolerance: 0.01,
	}, sink)
	if err != nil {
		t.Fatalf("NullModel: %v", err)
	}
	if summary.Total != 30 {
		t.Fatalf("total=%d, want 30", summary.Total)
	}
	if summary.Feasible != 0 {
		t.Fatalf("feasible=%d, want 0: random parameters leaked through", summary.Feasible)
	}
	for _, o := range sink.outcomes {
		if o.Kind != KindRandomParam {
			t.Fatalf("bad kind: %+v", o)
		}
		if o.Params == "" {
			t.Fatal("random-param trial must record the drawn parameters")
		}
	}
}

func TestNullModelRejectsZeroTrials(t *testing.T) {
	t.Parallel()

	b := scrambleBaseline(t)
	if _, err := NullModel(context.Background(), nil, b, NullModelConfig{Control: ControlScramble}, NopSink{}); err == nil {
		t.Fatal("expected error for zero trials")
	}
}
