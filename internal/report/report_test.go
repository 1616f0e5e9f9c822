package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"k4solve/internal/cipher"
	"k4solve/internal/trial"
	"k4solve/internal/wheel"
)

func sampleOutcome(id string, feasible bool) trial.Outcome {
	o := trial.Outcome{
		TrialID:  id,
		Kind:     trial.KindMutation,
		Index:    75,
		Original: "K",
		Mutant:   "Q",
		Feasible: feasible,
		Digest:   "abc123",
		Elapsed:  42 * time.Millisecond,
	}
	if !feasible {
		o.Reason = wheel.FailResidueCollision
		o.Detail = "slot 3 disagrees"
	}
	return o
}

func TestCSVSinkRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trials.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(sampleOutcome("t1", false)))
	require.NoError(t, sink.Write(sampleOutcome("t2", true)))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 trials
	require.Equal(t, "trial_id", rows[0][0])
	require.Equal(t, "t1", rows[1][0])
	require.Equal(t, "false", rows[1][6])
	require.Equal(t, "residue_collision", rows[1][7])
	require.Equal(t, "true", rows[2][6])
	require.Equal(t, "42", rows[1][10])
}

func TestCSVSinkCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "trials.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sampleOutcome("t1", true)))
	require.NoError(t, sink.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestStorePersistsAndAggregates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trials.db")
	store, err := NewStore(path, "run-1")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(sampleOutcome("t1", false)))
	require.NoError(t, store.Write(sampleOutcome("t2", false)))
	require.NoError(t, store.Write(sampleOutcome("t3", true)))

	byReason, err := store.CountByReason("run-1")
	require.NoError(t, err)
	require.Equal(t, 2, byReason["residue_collision"])
	require.Equal(t, 1, byReason["none"])

	n, err := store.FeasibleCount("run-1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Re-writing the same trial id replaces, not duplicates.
	require.NoError(t, store.Write(sampleOutcome("t1", false)))
	byReason, err = store.CountByReason("run-1")
	require.NoError(t, err)
	require.Equal(t, 2, byReason["residue_collision"])
}

func TestProofArtifact(t *testing.T) {
	t.Parallel()

	text, err := cipher.ParseText("VJFWHY")
	require.NoError(t, err)

	w := wheel.Wheel{
		Class:  0,
		Family: cipher.Vigenere,
		Period: 3,
		Phase:  1,
		Residues: []wheel.Residue{
			{K: 3, Known: true},
			{},
			{K: 5, Known: true},
		},
		Sources: []wheel.SlotSource{{Slot: 0, Index: 0, Anchor: "head", K: 3}},
	}
	derived := wheel.DerivedPlaintext{
		{V: 18, Known: true}, {V: 4, Known: true}, {},
		{V: 17, Known: true}, {V: 4, Known: true}, {V: 19, Known: true},
	}

	proof := NewProof("run-9", 42, text, []wheel.Wheel{w}, derived, "mod", 1, "ordinal")
	require.Equal(t, "SE?RET", proof.Plaintext)
	require.Equal(t, []int{2}, proof.Undetermined)
	require.Len(t, proof.Wheels, 1)
	require.Nil(t, proof.Wheels[0].Residues[1])
	require.NotNil(t, proof.Wheels[0].Residues[0])
	require.Equal(t, 3, *proof.Wheels[0].Residues[0])

	path := filepath.Join(t.TempDir(), "proof.json")
	require.NoError(t, proof.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Proof
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, proof.Plaintext, back.Plaintext)
	require.Equal(t, proof.CiphertextSHA256, back.CiphertextSHA256)
	require.Nil(t, back.Wheels[0].Residues[1])
}

func TestMultiSinkFansOut(t *testing.T) {
	t.Parallel()

	path1 := filepath.Join(t.TempDir(), "a.csv")
	path2 := filepath.Join(t.TempDir(), "b.csv")
	s1, err := NewCSVSink(path1)
	require.NoError(t, err)
	s2, err := NewCSVSink(path2)
	require.NoError(t, err)

	m := MultiSink{s1, s2}
	require.NoError(t, m.Write(sampleOutcome("t1", true)))
	require.NoError(t, s1.Close())
	require.NoError(t, s2.Close())

	for _, p := range []string{path1, path2} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		require.Contains(t, string(data), "t1")
	}
}
