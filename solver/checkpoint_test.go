package solver

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCheckpointRejectsWrongVersion(t *testing.T) {
	snap := checkpointSnapshot{
		Version:     checkpointFileVersion + 1,
		Mode:        ModeKuhn,
		Abstraction: DefaultAbstraction(),
		Training:    DefaultTrainingConfig(),
		Regrets:     map[string]regretEntrySnapshot{},
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(snap))

	_, err := decodeCheckpoint(&buf)
	require.Error(t, err, "expected error decoding a checkpoint with a mismatched version")
}

func TestDecodeCheckpointRejectsInvalidAbstraction(t *testing.T) {
	snap := checkpointSnapshot{
		Version:     checkpointFileVersion,
		Mode:        ModeKuhn,
		Abstraction: AbstractionConfig{}, // zero value fails Validate
		Training:    DefaultTrainingConfig(),
		Regrets:     map[string]regretEntrySnapshot{},
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(snap))

	_, err := decodeCheckpoint(&buf)
	require.Error(t, err, "expected error decoding a checkpoint with an invalid abstraction")
}

func TestLoadTrainerFromCheckpointMissingFile(t *testing.T) {
	_, err := LoadTrainerFromCheckpoint("/nonexistent/path/checkpoint.json")
	require.Error(t, err, "expected error loading a checkpoint from a missing file")
}
