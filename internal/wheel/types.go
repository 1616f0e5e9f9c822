// Package wheel implements the per-class key wheels, the constraint solver
// that fills them from anchor evidence, and the derivation engine that reads
// plaintext back out of a solved wheel set.
package wheel

import (
	"fmt"
	"strings"

	"k4solve/internal/cipher"
)

// Residue is one slot of a wheel's key table. A slot with Known=false has no
// evidence forcing it; a zero value is a real key, never a marker.
type Residue struct {
	K     uint8
	Known bool
}

// SlotSource records which anchor position forced a residue. The solve
// report prints these so a reader can audit every filled slot.
type SlotSource struct {
	Slot   int    `json:"slot"`
	Index  int    `json:"index"`
	Anchor string `json:"anchor"`
	K      uint8  `json:"k"`
}

// Wheel is the keying state of one class: a cipher family, a period-L
// residue table, and (under ordinal addressing) a phase offset.
type Wheel struct {
	Class    int
	Family   cipher.Family
	Period   int
	Phase    int
	Residues []Residue
	Sources  []SlotSource
}

// Known counts the residues with forced values.
func (w *Wheel) Known() int {
	n := 0
	for _, r := range w.Residues {
		if r.Known {
			n++
		}
	}
	return n
}

// Anchor is a known-plaintext constraint fixed at an inclusive index range.
type Anchor struct {
	Name      string `json:"-"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Plaintext string `json:"plaintext"`
}

// Validate checks the range/plaintext contract.
func (a Anchor) Validate(textLen int) error {
	if a.Start < 0 || a.End >= textLen || a.Start > a.End {
		return fmt.Errorf("anchor %s: range [%d,%d] invalid for text of length %d", a.Name, a.Start, a.End, textLen)
	}
	if got, want := len(a.Plaintext), a.End-a.Start+1; got != want {
		return fmt.Errorf("anchor %s: plaintext length %d does not match range length %d", a.Name, got, want)
	}
	for i := 0; i < len(a.Plaintext); i++ {
		if a.Plaintext[i] < 'A' || a.Plaintext[i] > 'Z' {
			return fmt.Errorf("anchor %s: plaintext must be uppercase A-Z, got %q", a.Name, a.Plaintext[i])
		}
	}
	return nil
}

// Covers reports whether index i falls inside the anchor's range.
func (a Anchor) Covers(i int) bool { return i >= a.Start && i <= a.End }

// Constraint is one (index, ciphertext, plaintext) evidence pair, expanded
// from an anchor.
type Constraint struct {
	Index  int
	C      uint8
	P      uint8
	Anchor string
}

// ExpandAnchors flattens anchors into per-position constraints against the
// given ciphertext. Anchors must be valid and pairwise disjoint.
func ExpandAnchors(text cipher.Text, anchors []Anchor) ([]Constraint, error) {
	covered := make([]string, len(text))
	var out []Constraint
	for _, a := range anchors {
		if err := a.Validate(len(text)); err != nil {
			return nil, err
		}
		for i := a.Start; i <= a.End; i++ {
			if covered[i] != "" {
				return nil, fmt.Errorf("anchors %s and %s overlap at index %d", covered[i], a.Name, i)
			}
			covered[i] = a.Name
			out = append(out, Constraint{
				Index:  i,
				C:      text[i],
				P:      a.Plaintext[i-a.Start] - 'A',
				Anchor: a.Name,
			})
		}
	}
	return out, nil
}

// Cell is one position of a derived plaintext. Known=false means no wheel
// residue reaches the position; it is a data fact, not an error.
type Cell struct {
	V     uint8
	Known bool
}

// DerivedPlaintext is the per-index derivation result for a full ciphertext.
type DerivedPlaintext []Cell

// Complete reports whether every position is determined.
func (d DerivedPlaintext) Complete() bool {
	for _, c := range d {
		if !c.Known {
			return false
		}
	}
	return true
}

// Undetermined returns the indices with no derived value.
func (d DerivedPlaintext) Undetermined() []int {
	var out []int
	for i, c := range d {
		if !c.Known {
			out = append(out, i)
		}
	}
	return out
}

// String renders the plaintext with '?' at undetermined positions.
func (d DerivedPlaintext) String() string {
	var b strings.Builder
	b.Grow(len(d))
	for _, c := range d {
		if c.Known {
			b.WriteByte(cipher.Letter(c.V))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
