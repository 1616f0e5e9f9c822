package wheel

import (
	"k4solve/internal/cipher"
	"k4solve/internal/classing"
)

// Derive reads plaintext out of a solved wheel set. Positions whose slot has
// no forced residue come back undetermined; the function is total and never
// fails. Recomputing from the same inputs yields an identical result.
func Derive(text cipher.Text, wheels []Wheel, part *classing.Partition, mode classing.AddressingMode) DerivedPlaintext {
	out := make(DerivedPlaintext, len(text))
	for i, c := range text {
		cls := part.ClassOf(i)
		if cls >= len(wheels) {
			continue
		}
		w := &wheels[cls]
		if w.Period < 1 {
			continue
		}
		slot := slotOf(mode, i, part.OrdinalOf(i), w.Period, w.Phase)
		r := w.Residues[slot]
		if !r.Known {
			continue
		}
		out[i] = Cell{V: w.Family.Decrypt(c, r.K), Known: true}
	}
	return out
}
