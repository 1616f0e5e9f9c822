package cipher

import "fmt"

// Text is a letter sequence in alphabet values (A=0). Callers treat it as
// immutable once parsed; solver and derivation code only ever read it.
type Text []uint8

// ParseText converts an uppercase A-Z string into alphabet values.
func ParseText(s string) (Text, error) {
	t := make(Text, len(s))
	for i := 0; i < len(s); i++ {
		v, err := Value(s[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		t[i] = v
	}
	return t, nil
}

func (t Text) String() string {
	b := make([]byte, len(t))
	for i, v := range t {
		b[i] = Letter(v)
	}
	return string(b)
}

// Clone returns an independent copy, for callers that need to permute.
func (t Text) Clone() Text {
	out := make(Text, len(t))
	copy(out, t)
	return out
}
