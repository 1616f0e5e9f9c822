package wheel

import (
	"errors"
	"fmt"
)

// FailureReason classifies why a solve, derivation check, or batch trial did
// not produce an accepted result. The set is closed; report sinks store the
// string form.
type FailureReason uint8

const (
	// FailNone marks a successful outcome.
	FailNone FailureReason = iota
	// FailInfeasibleClass: no (period, phase, family) candidate within the
	// search bound avoids a slot collision for some class.
	FailInfeasibleClass
	// FailResidueCollision: two constraints disagree on the same (class, slot).
	FailResidueCollision
	// FailOptionAViolation: an additive family implies the null key K=0 at an
	// anchor-covered position.
	FailOptionAViolation
	// FailIncompleteDerivation: positions remain undetermined where a complete
	// derivation was required.
	FailIncompleteDerivation
	// FailAnchorMismatch: a derived plaintext contradicts an anchor.
	FailAnchorMismatch
	// FailHashMismatch: a complete plaintext does not match the expected digest.
	FailHashMismatch
	// FailTrialTimeout: a batch trial exceeded its deadline.
	FailTrialTimeout
	// FailTrialError: a batch trial ended with an unexpected error or panic.
	FailTrialError
)

func (r FailureReason) String() string {
	switch r {
	case FailNone:
		return "none"
	case FailInfeasibleClass:
		return "infeasible_class"
	case FailResidueCollision:
		return "residue_collision"
	case FailOptionAViolation:
		return "option_a_violation"
	case FailIncompleteDerivation:
		return "incomplete_derivation"
	case FailAnchorMismatch:
		return "anchor_mismatch"
	case FailHashMismatch:
		return "hash_mismatch"
	case FailTrialTimeout:
		return "trial_timeout"
	case FailTrialError:
		return "trial_error"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// SolveError is the typed failure returned by the solver. It always names
// the class that failed; solving aborts on the first failing class.
type SolveError struct {
	Class  int
	Reason FailureReason
	Detail string
}

func (e *SolveError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("class %d: %s", e.Class, e.Reason)
	}
	return fmt.Sprintf("class %d: %s: %s", e.Class, e.Reason, e.Detail)
}

// ReasonOf extracts the FailureReason from a solver error, or FailTrialError
// for anything unrecognized.
func ReasonOf(err error) FailureReason {
	if err == nil {
		return FailNone
	}
	var se *SolveError
	if errors.As(err, &se) {
		return se.Reason
	}
	return FailTrialError
}
