package solver

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

const blueprintFileVersion = 1

// Blueprint captures the averaged strategies produced by a solver run
// (spec.md §6's get_strategy surface), exported as a flat key→vector map so
// runtime bots can look up a strategy without rerunning CFR or depending on
// the solver package's internal RegretTable representation.
type Blueprint struct {
	Version     int                  `json:"version"`
	GeneratedAt time.Time            `json:"generated_at"`
	Iterations  int                  `json:"iterations"`
	Abstraction AbstractionConfig    `json:"abstraction"`
	Strategies  map[string][]float64 `json:"strategies"`
}

// Blueprint exports the average strategy of every visited information set.
// Only meaningful for ModeCFRPlus and ModeKuhn trainers (Deep CFR's strategy
// lives in a parametric StrategyNetwork, not a RegretTable).
func (t *Trainer) Blueprint() (*Blueprint, error) {
	var entries map[string]*RegretEntry
	switch t.mode {
	case ModeCFRPlus:
		entries = t.cfr.RegretTable().Entries()
	case ModeKuhn:
		entries = t.kuhn.regrets.Entries()
	default:
		return nil, errors.New("solver: Blueprint is only available for tabular CFR+ and Kuhn trainers")
	}

	bp := &Blueprint{
		Version:     blueprintFileVersion,
		GeneratedAt: time.Now(),
		Iterations:  t.iteration,
		Abstraction: t.absCfg,
		Strategies:  make(map[string][]float64, len(entries)),
	}
	for key, entry := range entries {
		bp.Strategies[key] = entry.AverageStrategy()
	}
	return bp, nil
}

// Save writes the blueprint to disk as indented JSON.
func (b *Blueprint) Save(path string) error {
	if b == nil {
		return errors.New("solver: nil blueprint")
	}
	if path == "" {
		return errors.New("solver: destination path is required")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// LoadBlueprint reads a blueprint from disk, validating its abstraction
// metadata and format version.
func LoadBlueprint(path string) (*Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var bp Blueprint
	if err := json.NewDecoder(f).Decode(&bp); err != nil {
		return nil, err
	}
	if bp.Version != blueprintFileVersion {
		return nil, errors.New("solver: unsupported blueprint version")
	}
	if err := bp.Abstraction.Validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

// Strategy returns the stored average strategy for key (spec.md §6's
// get_strategy: "returns the vector, or reports absence" — the bool return
// is that report).
func (b *Blueprint) Strategy(key InfoSetKey) ([]float64, bool) {
	if b == nil {
		return nil, false
	}
	strat, ok := b.Strategies[key.String()]
	return strat, ok
}
