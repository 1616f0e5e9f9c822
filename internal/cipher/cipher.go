// Package cipher implements the three additive cipher families used by the
// wheel solver. All arithmetic is over the 26-letter alphabet with A=0.
package cipher

import "fmt"

// Family identifies one of the three additive cipher families. The set is
// closed: solver and derivation code dispatch on it exhaustively.
type Family uint8

const (
	// Vigenere: C = P + K.
	Vigenere Family = iota
	// Beaufort: C = K - P.
	Beaufort
	// VariantBeaufort: C = P - K.
	VariantBeaufort
)

// Alphabet size. Letter values are always in [0, Mod).
const Mod = 26

func (f Family) String() string {
	switch f {
	case Vigenere:
		return "vigenere"
	case Beaufort:
		return "beaufort"
	case VariantBeaufort:
		return "variant-beaufort"
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

// ParseFamily maps a config string to a Family.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "vigenere":
		return Vigenere, nil
	case "beaufort":
		return Beaufort, nil
	case "variant-beaufort", "variant_beaufort":
		return VariantBeaufort, nil
	}
	return 0, fmt.Errorf("unknown cipher family %q", s)
}

// Families lists all members in canonical search order.
func Families() []Family {
	return []Family{Vigenere, Beaufort, VariantBeaufort}
}

// Additive reports whether K=0 is a pass-through identity for this family.
// The Option-A policy only applies to additive families: a Beaufort wheel
// with K=0 still transforms its input.
func (f Family) Additive() bool {
	return f == Vigenere || f == VariantBeaufort
}

// Encrypt computes the ciphertext value for plaintext p under key k.
func (f Family) Encrypt(p, k uint8) uint8 {
	switch f {
	case Vigenere:
		return uint8((int(p) + int(k)) % Mod)
	case Beaufort:
		return uint8((int(k) - int(p) + Mod) % Mod)
	case VariantBeaufort:
		return uint8((int(p) - int(k) + Mod) % Mod)
	}
	panic("cipher: invalid family")
}

// Decrypt inverts Encrypt for the same key.
func (f Family) Decrypt(c, k uint8) uint8 {
	switch f {
	case Vigenere:
		return uint8((int(c) - int(k) + Mod) % Mod)
	case Beaufort:
		return uint8((int(k) - int(c) + Mod) % Mod)
	case VariantBeaufort:
		return uint8((int(c) + int(k)) % Mod)
	}
	panic("cipher: invalid family")
}

// SolveKey recovers the key forced by a known (ciphertext, plaintext) pair.
func (f Family) SolveKey(c, p uint8) uint8 {
	switch f {
	case Vigenere:
		return uint8((int(c) - int(p) + Mod) % Mod)
	case Beaufort:
		return uint8((int(p) + int(c)) % Mod)
	case VariantBeaufort:
		return uint8((int(p) - int(c) + Mod) % Mod)
	}
	panic("cipher: invalid family")
}

// Value converts an uppercase letter to its alphabet value.
func Value(b byte) (uint8, error) {
	if b < 'A' || b > 'Z' {
		return 0, fmt.Errorf("letter out of range: %q", b)
	}
	return b - 'A', nil
}

// Letter converts an alphabet value back to an uppercase letter.
func Letter(v uint8) byte {
	return 'A' + v%Mod
}
