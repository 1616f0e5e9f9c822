// Package validate checks candidate plaintexts against the external evidence:
// anchor slices, completeness, and an optional expected digest.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"k4solve/internal/wheel"
)

// Expectation is what a derived plaintext must satisfy to be accepted.
type Expectation struct {
	Anchors         []wheel.Anchor
	RequireComplete bool
	// PlaintextSHA256 is the lowercase hex digest the full plaintext must
	// hash to. Empty skips the check.
	PlaintextSHA256 string
}

// Result reports the first failed check, in check order. Passed results
// carry FailNone.
type Result struct {
	Passed bool
	Reason wheel.FailureReason
	Detail string
}

// Digest returns the lowercase hex SHA-256 of a string.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Check runs the feasibility checks in order, short-circuiting on the first
// failure: completeness, anchor slices, digest.
func Check(d wheel.DerivedPlaintext, exp Expectation) Result {
	if exp.RequireComplete && !d.Complete() {
		undet := d.Undetermined()
		return Result{
			Reason: wheel.FailIncompleteDerivation,
			Detail: fmt.Sprintf("%d undetermined positions, first at %d", len(undet), undet[0]),
		}
	}

	for _, a := range exp.Anchors {
		for i := a.Start; i <= a.End && i < len(d); i++ {
			want := a.Plaintext[i-a.Start] - 'A'
			if !d[i].Known || d[i].V != want {
				return Result{
					Reason: wheel.FailAnchorMismatch,
					Detail: fmt.Sprintf("anchor %s: index %d derived %q, want %q", a.Name, i, cellString(d[i]), string(a.Plaintext[i-a.Start])),
				}
			}
		}
	}

	if exp.PlaintextSHA256 != "" {
		if got := Digest(d.String()); got != exp.PlaintextSHA256 {
			return Result{
				Reason: wheel.FailHashMismatch,
				Detail: fmt.Sprintf("plaintext digest %s does not match expected %s", got, exp.PlaintextSHA256),
			}
		}
	}

	return Result{Passed: true, Reason: wheel.FailNone}
}

func cellString(c wheel.Cell) string {
	if !c.Known {
		return "?"
	}
	return string(rune('A' + c.V))
}
