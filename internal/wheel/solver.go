package wheel

import (
	"fmt"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
)

// Default bounds for the period search.
const (
	DefaultMinPeriod = 2
	DefaultMaxPeriod = 22
)

// Fixed pins one class's (family, period, phase) so the solver skips the
// search for it. Overrides are all-or-nothing per class.
type Fixed struct {
	Family cipher.Family
	Period int
	Phase  int
}

// Options configures a solve. The zero value is not usable; build one with
// the period bounds and addressing mode filled in.
type Options struct {
	Mode           classing.AddressingMode
	MinPeriod      int
	MaxPeriod      int
	EnforceOptionA bool
	// Fixed maps class id to a pinned wheel configuration.
	Fixed map[int]Fixed
}

// DefaultOptions returns the standard solve configuration: ordinal
// addressing, period search 2..22, Option-A enforced.
func DefaultOptions() Options {
	return Options{
		Mode:           classing.Ordinal,
		MinPeriod:      DefaultMinPeriod,
		MaxPeriod:      DefaultMaxPeriod,
		EnforceOptionA: true,
	}
}

// slotOf maps an index to a wheel slot under the active addressing mode.
func slotOf(mode classing.AddressingMode, index, ordinal, period, phase int) int {
	if mode == classing.Direct {
		return index % period
	}
	return (ordinal + phase) % period
}

// Solve fills one wheel per class from the anchor constraints, or returns a
// *SolveError naming the first failing class. The result is freshly
// allocated on every call; solved wheels are never mutated afterwards.
func Solve(text cipher.Text, anchors []Anchor, part *classing.Partition, opts Options) ([]Wheel, error) {
	if opts.MinPeriod < 2 {
		return nil, fmt.Errorf("minimum period must be >= 2, got %d", opts.MinPeriod)
	}
	if opts.MaxPeriod < opts.MinPeriod {
		return nil, fmt.Errorf("period bound [%d,%d] is empty", opts.MinPeriod, opts.MaxPeriod)
	}
	constraints, err := ExpandAnchors(text, anchors)
	if err != nil {
		return nil, err
	}

	numClasses := part.Assignment.NumClasses
	byClass := make(map[int][]Constraint, numClasses)
	for _, c := range constraints {
		cls := part.ClassOf(c.Index)
		byClass[cls] = append(byClass[cls], c)
	}

	wheels := make([]Wheel, numClasses)
	for cls := 0; cls < numClasses; cls++ {
		w, err := solveClass(cls, byClass[cls], part, opts)
		if err != nil {
			return nil, err
		}
		wheels[cls] = w
	}
	return wheels, nil
}

// solveClass finds the wheel for one class. With a pinned configuration the
// evaluation result is returned as-is; otherwise the smallest period wins,
// ties broken by smallest phase, then canonical family order.
func solveClass(cls int, cons []Constraint, part *classing.Partition, opts Options) (Wheel, error) {
	if fixed, ok := opts.Fixed[cls]; ok {
		if fixed.Period < 2 {
			return Wheel{}, fmt.Errorf("class %d: pinned period must be >= 2, got %d", cls, fixed.Period)
		}
		if fixed.Phase < 0 || fixed.Phase >= fixed.Period {
			return Wheel{}, fmt.Errorf("class %d: pinned phase %d out of range for period %d", cls, fixed.Phase, fixed.Period)
		}
		w, serr := evalCandidate(cls, cons, part, opts, fixed.Family, fixed.Period, fixed.Phase)
		if serr != nil {
			return Wheel{}, serr
		}
		return w, nil
	}

	sawOptionA := false
	sawOther := false
	for period := opts.MinPeriod; period <= opts.MaxPeriod; period++ {
		phases := 1
		if opts.Mode == classing.Ordinal {
			phases = period
		}
		for phase := 0; phase < phases; phase++ {
			for _, family := range cipher.Families() {
				w, serr := evalCandidate(cls, cons, part, opts, family, period, phase)
				if serr == nil {
					return w, nil
				}
				if serr.Reason == FailOptionAViolation {
					sawOptionA = true
				} else {
					sawOther = true
				}
			}
		}
	}
	reason := FailInfeasibleClass
	detail := fmt.Sprintf("no feasible (family, period, phase) in periods %d..%d", opts.MinPeriod, opts.MaxPeriod)
	if sawOptionA && !sawOther {
		// Every candidate died on the null-key policy, not on collisions.
		reason = FailOptionAViolation
		detail = "all candidates imply a null key at an anchor position"
	}
	return Wheel{}, &SolveError{Class: cls, Reason: reason, Detail: detail}
}

// evalCandidate checks one (family, period, phase) against the class's
// constraints, returning the filled wheel or the specific rejection.
func evalCandidate(cls int, cons []Constraint, part *classing.Partition, opts Options, family cipher.Family, period, phase int) (Wheel, *SolveError) {
	residues := make([]Residue, period)
	sources := make([]SlotSource, 0, len(cons))
	for _, c := range cons {
		k := family.SolveKey(c.C, c.P)
		if opts.EnforceOptionA && family.Additive() && k == 0 {
			return Wheel{}, &SolveError{
				Class:  cls,
				Reason: FailOptionAViolation,
				Detail: fmt.Sprintf("index %d (anchor %s) implies K=0 under %s", c.Index, c.Anchor, family),
			}
		}
		slot := slotOf(opts.Mode, c.Index, part.OrdinalOf(c.Index), period, phase)
		if residues[slot].Known && residues[slot].K != k {
			return Wheel{}, &SolveError{
				Class:  cls,
				Reason: FailResidueCollision,
				Detail: fmt.Sprintf("slot %d: index %d (anchor %s) implies K=%d, already forced to K=%d", slot, c.Index, c.Anchor, k, residues[slot].K),
			}
		}
		if !residues[slot].Known {
			residues[slot] = Residue{K: k, Known: true}
		}
		sources = append(sources, SlotSource{Slot: slot, Index: c.Index, Anchor: c.Anchor, K: k})
	}
	return Wheel{
		Class:    cls,
		Family:   family,
		Period:   period,
		Phase:    phase,
		Residues: residues,
		Sources:  sources,
	}, nil
}
