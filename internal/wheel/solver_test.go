package wheel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
)

// buildCipher encrypts a plaintext with a known wheel schedule so tests can
// solve against ground truth.
func buildCipher(t *testing.T, plain string, wheels []Wheel, part *classing.Partition, mode classing.AddressingMode) cipher.Text {
	t.Helper()

	pt, err := cipher.ParseText(plain)
	if err != nil {
		t.Fatalf("bad plaintext fixture: %v", err)
	}
	out := make(cipher.Text, len(pt))
	for i, p := range pt {
		w := wheels[part.ClassOf(i)]
		slot := slotOf(mode, i, part.OrdinalOf(i), w.Period, w.Phase)
		out[i] = w.Family.Encrypt(p, w.Residues[slot].K)
	}
	return out
}

func knownWheel(class int, family cipher.Family, phase int, keys ...uint8) Wheel {
	residues := make([]Residue, len(keys))
	for i, k := range keys {
		residues[i] = Residue{K: k, Known: true}
	}
	return Wheel{Class: class, Family: family, Period: len(keys), Phase: phase, Residues: residues}
}

func TestSolveRecoversFullPlaintext(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 2)
	part := classing.NewPartition(a, 12)
	truth := []Wheel{
		knownWheel(0, cipher.Vigenere, 1, 5, 17, 8),
		knownWheel(1, cipher.Beaufort, 0, 3, 9),
	}
	const plain = "THEQUICKFOXY"
	text := buildCipher(t, plain, truth, part, classing.Ordinal)

	// One anchor covering the whole text forces every slot of both wheels.
	anchors := []Anchor{{Name: "all", Start: 0, End: 11, Plaintext: plain}}

	opts := DefaultOptions()
	wheels, err := Solve(text, anchors, part, opts)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	derived := Derive(text, wheels, part, opts.Mode)
	if !derived.Complete() {
		t.Fatalf("derivation incomplete at %v", derived.Undetermined())
	}
	if got := derived.String(); got != plain {
		t.Fatalf("derived %q, want %q", got, plain)
	}
}

func TestSolveDeterminism(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 3)
	part := classing.NewPartition(a, 18)
	truth := []Wheel{
		knownWheel(0, cipher.Vigenere, 0, 2, 7),
		knownWheel(1, cipher.VariantBeaufort, 1, 11, 4, 19),
		knownWheel(2, cipher.Beaufort, 0, 6, 13),
	}
	const plain = "WHOSEBROADSTRIPESX"
	text := buildCipher(t, plain, truth, part, classing.Ordinal)
	anchors := []Anchor{
		{Name: "head", Start: 0, End: 7, Plaintext: plain[0:8]},
		{Name: "tail", Start: 10, End: 17, Plaintext: plain[10:18]},
	}

	opts := DefaultOptions()
	first, err := Solve(text, anchors, part, opts)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	second, err := Solve(text, anchors, part, opts)
	if err != nil {
		t.Fatalf("Solve (second): %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("solver is not deterministic (-first +second):\n%s", diff)
	}

	d1 := Derive(text, first, part, opts.Mode)
	d2 := Derive(text, second, part, opts.Mode)
	if diff := cmp.Diff(d1, d2); diff != "" {
		t.Fatalf("derivation is not deterministic:\n%s", diff)
	}
}

func TestSolvePrefersSmallestPeriod(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 1)
	part := classing.NewPartition(a, 4)
	text := cipher.Text{5, 5, 5, 5}
	// A single one-letter constraint cannot collide anywhere, so the very
	// first candidate in search order must win.
	anchors := []Anchor{{Name: "one", Start: 0, End: 0, Plaintext: "C"}}

	wheels, err := Solve(text, anchors, part, DefaultOptions())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	w := wheels[0]
	if w.Period != DefaultMinPeriod || w.Phase != 0 || w.Family != cipher.Vigenere {
		t.Fatalf("got (family=%s, period=%d, phase=%d), want first search candidate", w.Family, w.Period, w.Phase)
	}
	if w.Known() != 1 {
		t.Fatalf("Known()=%d, want 1", w.Known())
	}
}

func TestResidueCollisionOnPinnedWheel(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 1)
	part := classing.NewPartition(a, 4)
	text := cipher.Text{2, 2, 2, 2} // "CCCC"
	// Under period 2 direct addressing, indices 0 and 2 share slot 0 but
	// imply Vigenere keys 2 and 1.
	anchors := []Anchor{{Name: "clash", Start: 0, End: 2, Plaintext: "ABB"}}

	opts := DefaultOptions()
	opts.Mode = classing.Direct
	opts.Fixed = map[int]Fixed{0: {Family: cipher.Vigenere, Period: 2, Phase: 0}}

	_, err := Solve(text, anchors, part, opts)
	var se *SolveError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SolveError, got %v", err)
	}
	if se.Reason != FailResidueCollision || se.Class != 0 {
		t.Fatalf("got %v, want residue_collision on class 0", se)
	}
}

func TestOptionAViolationOnPinnedAdditiveWheel(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 1)
	part := classing.NewPartition(a, 2)
	text := cipher.Text{2, 3} // "CD"
	anchors := []Anchor{{Name: "id", Start: 0, End: 1, Plaintext: "CD"}} // implies K=0

	for _, family := range []cipher.Family{cipher.Vigenere, cipher.VariantBeaufort} {
		opts := DefaultOptions()
		opts.Fixed = map[int]Fixed{0: {Family: family, Period: 2, Phase: 0}}

		_, err := Solve(text, anchors, part, opts)
		var se *SolveError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected *SolveError, got %v", family, err)
		}
		if se.Reason != FailOptionAViolation {
			t.Fatalf("%s: got %v, want option_a_violation", family, se)
		}

		// The same configuration is accepted once the policy is disabled.
		opts.EnforceOptionA = false
		if _, err := Solve(text, anchors, part, opts); err != nil {
			t.Fatalf("%s: solve with Option-A disabled: %v", family, err)
		}
	}
}

func TestOptionADoesNotApplyToBeaufort(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 1)
	part := classing.NewPartition(a, 2)
	// P+C = 26 implies Beaufort K=0, which is not an identity key.
	text := cipher.Text{20, 21}
	anchors := []Anchor{{Name: "b", Start: 0, End: 1, Plaintext: "GF"}} // 6+20=26, 5+21=26

	opts := DefaultOptions()
	opts.Fixed = map[int]Fixed{0: {Family: cipher.Beaufort, Period: 2, Phase: 0}}
	wheels, err := Solve(text, anchors, part, opts)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if wheels[0].Residues[0].K != 0 || wheels[0].Residues[1].K != 0 {
		t.Fatalf("expected K=0 residues, got %+v", wheels[0].Residues)
	}
}

func TestSearchRoutesAroundOptionA(t *testing.T) {
	t.Parallel()

	// C==P knocks both additive families out at every candidate; the search
	// must settle on Beaufort instead of failing.
	a, _ := classing.NewAssignment(classing.FormulaMod, 1)
	part := classing.NewPartition(a, 1)
	text := cipher.Text{3}
	anchors := []Anchor{{Name: "same", Start: 0, End: 0, Plaintext: "D"}}

	wheels, err := Solve(text, anchors, part, DefaultOptions())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if wheels[0].Family != cipher.Beaufort {
		t.Fatalf("family=%s, want beaufort", wheels[0].Family)
	}
}

func TestInfeasibleClassWhenBoundExhausted(t *testing.T) {
	t.Parallel()

	a, _ := classing.NewAssignment(classing.FormulaMod, 1)
	part := classing.NewPartition(a, 4)
	text := cipher.Text{0, 1, 2, 3} // "ABCD"
	// Indices 0 and 2 share slot 0 under every period-2 candidate and imply
	// different keys for all three families.
	anchors := []Anchor{{Name: "x", Start: 0, End: 3, Plaintext: "CCDD"}}

	opts := DefaultOptions()
	opts.Mode = classing.Direct
	opts.MinPeriod, opts.MaxPeriod = 2, 2

	_, err := Solve(text, anchors, part, opts)
	var se *SolveError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SolveError, got %v", err)
	}
	if se.Reason != FailInfeasibleClass {
		t.Fatalf("got %v, want infeasible_class", se)
	}
}

func TestExpandAnchorsRejectsBadInput(t *testing.T) {
	t.Parallel()

	text := cipher.Text{0, 1, 2, 3}
	tests := []struct {
		name    string
		anchors []Anchor
	}{
		{"length mismatch", []Anchor{{Name: "a", Start: 0, End: 2, Plaintext: "AB"}}},
		{"out of range", []Anchor{{Name: "a", Start: 2, End: 5, Plaintext: "ABCD"}}},
		{"inverted range", []Anchor{{Name: "a", Start: 2, End: 1, Plaintext: ""}}},
		{"lowercase", []Anchor{{Name: "a", Start: 0, End: 1, Plaintext: "ab"}}},
		{"overlap", []Anchor{
			{Name: "a", Start: 0, End: 2, Plaintext: "ABC"},
			{Name: "b", Start: 2, End: 3, Plaintext: "CD"},
		}},
	}
	for _, tt := range tests {
		if _, err := ExpandAnchors(text, tt.anchors); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestSolveErrorCarriesReason(t *testing.T) {
	t.Parallel()

	err := error(&SolveError{Class: 3, Reason: FailResidueCollision, Detail: "slot 1"})
	if ReasonOf(err) != FailResidueCollision {
		t.Fatalf("ReasonOf=%v", ReasonOf(err))
	}
	if ReasonOf(nil) != FailNone {
		t.Fatalf("ReasonOf(nil)=%v", ReasonOf(nil))
	}
	if ReasonOf(errors.New("boom")) != FailTrialError {
		t.Fatalf("ReasonOf(generic)=%v", ReasonOf(errors.New("boom")))
	}
}
