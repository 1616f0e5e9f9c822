package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"k4solve/internal/cipher"
	"k4solve/internal/validate"
	"k4solve/internal/wheel"
)

// WheelRecord is the serialized form of one solved wheel. Unknown residues
// are null, never a placeholder value.
type WheelRecord struct {
	Class    int                `json:"class"`
	Family   string             `json:"family"`
	Period   int                `json:"period"`
	Phase    int                `json:"phase"`
	Residues []*int             `json:"residues"`
	Sources  []wheel.SlotSource `json:"sources,omitempty"`
}

// Proof is the record artifact for a solve: enough to reproduce and audit
// the derivation without rerunning the solver.
type Proof struct {
	RunID            string        `json:"run_id"`
	CreatedAt        time.Time     `json:"created_at"`
	Seed             int64         `json:"seed"`
	Classing         string        `json:"classing"`
	NumClasses       int           `json:"num_classes"`
	AddressingMode   string        `json:"addressing_mode"`
	CiphertextSHA256 string        `json:"ciphertext_sha256"`
	PlaintextSHA256  string        `json:"plaintext_sha256"`
	Plaintext        string        `json:"plaintext"`
	Undetermined     []int         `json:"undetermined,omitempty"`
	Wheels           []WheelRecord `json:"wheels"`
}

// NewProof assembles the artifact from a completed solve.
func NewProof(runID string, seed int64, text cipher.Text, wheels []wheel.Wheel, derived wheel.DerivedPlaintext, classingName string, numClasses int, mode string) *Proof {
	p := &Proof{
		RunID:            runID,
		CreatedAt:        time.Now().UTC(),
		Seed:             seed,
		Classing:         classingName,
		NumClasses:       numClasses,
		AddressingMode:   mode,
		CiphertextSHA256: validate.Digest(text.String()),
		PlaintextSHA256:  validate.Digest(derived.String()),
		Plaintext:        derived.String(),
		Undetermined:     derived.Undetermined(),
	}
	for _, w := range wheels {
		rec := WheelRecord{
			Class:    w.Class,
			Family:   w.Family.String(),
			Period:   w.Period,
			Phase:    w.Phase,
			Residues: make([]*int, len(w.Residues)),
			Sources:  w.Sources,
		}
		for i, r := range w.Residues {
			if r.Known {
				v := int(r.K)
				rec.Residues[i] = &v
			}
		}
		p.Wheels = append(p.Wheels, rec)
	}
	return p
}

// WriteFile writes the proof as indented JSON.
func (p *Proof) WriteFile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proof: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write proof %s: %w", path, err)
	}
	return nil
}
