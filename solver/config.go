package solver

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Environment variable names following the HOLDEM_CFR_* convention.
// ApplyEnvOverrides reads EnvSeed and EnvIterations; nothing in this package
// reads EnvLogLevel.
const (
	EnvSeed       = "HOLDEM_CFR_SEED"
	EnvIterations = "HOLDEM_CFR_ITERATIONS"
	EnvLogLevel   = "HOLDEM_CFR_LOG_LEVEL"
)

// SamplingMode selects the traversing player of tabular CFR+ traversal:
// SamplingModeFullTraversal fixes it to player 0 (§4.6), while
// SamplingModeExternal alternates it by iteration parity. Both modes recurse
// into every child; neither samples opponent actions.
type SamplingMode uint8

const (
	SamplingModeExternal SamplingMode = iota
	SamplingModeFullTraversal
)

func (m SamplingMode) String() string {
	switch m {
	case SamplingModeExternal:
		return "external"
	case SamplingModeFullTraversal:
		return "full"
	default:
		return "unknown"
	}
}

// AbstractionConfig captures the coarse representation the solver uses when
// clustering hands and actions (§4.2, §4.3).
type AbstractionConfig struct {
	PreflopBucketCount  int       `hcl:"preflop_buckets,optional"`
	PostflopBucketCount int       `hcl:"postflop_buckets,optional"`
	BetSizing           []float64 `hcl:"bet_sizing,optional"`
	MaxActionsPerNode   int       `hcl:"max_actions_per_node,optional"`
	EnableRaises        bool      `hcl:"enable_raises,optional"`
	MaxRaisesPerBucket  int       `hcl:"max_raises_per_bucket,optional"`
	// AdaptiveRaiseVisits, when > 0, adds MaxRaisesPerBucket extra, larger
	// bet sizes to the BetSizing menu at an infoset, in one step, once the
	// infoset has been visited this many times (§13 supplemented feature;
	// default off per §4.3's fixed menu).
	AdaptiveRaiseVisits int `hcl:"adaptive_raise_visits,optional"`
}

// Validate ensures the abstraction is well-formed before training begins.
func (c AbstractionConfig) Validate() error {
	if c.PreflopBucketCount <= 0 {
		return fmt.Errorf("%w: preflop bucket count must be > 0", ErrInvalidConfig)
	}
	if c.PostflopBucketCount <= 0 {
		return fmt.Errorf("%w: postflop bucket count must be > 0", ErrInvalidConfig)
	}
	if c.EnableRaises {
		if len(c.BetSizing) == 0 {
			return fmt.Errorf("%w: at least one bet sizing fraction is required", ErrInvalidConfig)
		}
		last := 0.0
		for i, v := range c.BetSizing {
			if v <= 0 {
				return fmt.Errorf("%w: bet sizing[%d] must be > 0", ErrInvalidConfig, i)
			}
			if v <= last {
				return fmt.Errorf("%w: bet sizing[%d] must be strictly increasing", ErrInvalidConfig, i)
			}
			last = v
		}
		if c.MaxActionsPerNode < 3 {
			return fmt.Errorf("%w: max actions per node must allow fold/call/raise", ErrInvalidConfig)
		}
		if c.MaxRaisesPerBucket < 0 {
			return fmt.Errorf("%w: max raises per bucket cannot be negative", ErrInvalidConfig)
		}
	} else if len(c.BetSizing) > 0 {
		return fmt.Errorf("%w: bet sizing must be empty when raises are disabled", ErrInvalidConfig)
	}
	if c.AdaptiveRaiseVisits < 0 {
		return fmt.Errorf("%w: adaptive raise visits cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// TrainingConfig aggregates parameters controlling a CFR run (§4.6, §4.8).
type TrainingConfig struct {
	Iterations      int           `hcl:"iterations,optional"`
	Seed            int64         `hcl:"seed,optional"`
	ParallelTables  int           `hcl:"parallel_tables,optional"`
	CheckpointEvery time.Duration `hcl:"checkpoint_every,optional"`
	ProgressEvery   int           `hcl:"progress_every,optional"`
	SmallBlind      int           `hcl:"small_blind,optional"`
	BigBlind        int           `hcl:"big_blind,optional"`
	StartingStack   int           `hcl:"starting_stack,optional"`
	UseCFRPlus      bool          `hcl:"use_cfr_plus,optional"`
	// ReservoirCapacity bounds each Deep CFR reservoir buffer (§5: default cap
	// 2,000,000 samples).
	ReservoirCapacity int `hcl:"reservoir_capacity,optional"`

	// sampling is a runtime traversal knob, not file-configurable data; it is
	// unexported so gohcl's reflection-based decoder ignores it entirely,
	// leaving whatever WithSampling set (or SamplingModeExternal) untouched
	// by LoadConfigFile.
	sampling SamplingMode
}

// Sampling returns the traversal sampling mode (external or full).
func (c TrainingConfig) Sampling() SamplingMode { return c.sampling }

// WithSampling returns a copy of c with the traversal sampling mode set.
func (c TrainingConfig) WithSampling(mode SamplingMode) TrainingConfig {
	c.sampling = mode
	return c
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be > 0", ErrInvalidConfig)
	}
	if c.ParallelTables <= 0 {
		return fmt.Errorf("%w: parallel tables must be > 0", ErrInvalidConfig)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("%w: checkpoint interval cannot be negative", ErrInvalidConfig)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("%w: progress interval cannot be negative", ErrInvalidConfig)
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("%w: small blind must be > 0", ErrInvalidConfig)
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("%w: big blind must be greater than small blind", ErrInvalidConfig)
	}
	if c.StartingStack <= 0 {
		return fmt.Errorf("%w: starting stack must be > 0", ErrInvalidConfig)
	}
	if c.ReservoirCapacity < 0 {
		return fmt.Errorf("%w: reservoir capacity cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// DefaultAbstraction returns a conservative abstraction suitable for smoke tests.
func DefaultAbstraction() AbstractionConfig {
	return AbstractionConfig{
		PreflopBucketCount:  169,
		PostflopBucketCount: 20,
		BetSizing:           []float64{0.33, 0.5, 0.75, 1.0, 1.5},
		MaxActionsPerNode:   8,
		EnableRaises:        true,
		MaxRaisesPerBucket:  3,
	}
}

// DefaultTrainingConfig returns a minimal configuration for local experimentation.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:        1000,
		Seed:              1,
		ParallelTables:    1,
		CheckpointEvery:   5 * time.Minute,
		ProgressEvery:     0,
		SmallBlind:        1,
		BigBlind:          2,
		StartingStack:     200,
		UseCFRPlus:        true,
		sampling:          SamplingModeExternal,
		ReservoirCapacity: 2_000_000,
	}
}

// fileConfig is the HCL document shape: two named blocks mirroring
// AbstractionConfig/TrainingConfig, the way internal/server/config.go loads
// ServerSettings/TableConfig blocks.
type fileConfig struct {
	Abstraction AbstractionConfig `hcl:"abstraction,block"`
	Training    TrainingConfig    `hcl:"training,block"`
}

// LoadConfigFile loads an AbstractionConfig/TrainingConfig pair from an HCL
// file. A missing file is not an error: defaults are returned instead,
// mirroring internal/server/config.go's LoadServerConfig behavior.
func LoadConfigFile(path string) (AbstractionConfig, TrainingConfig, error) {
	abs := DefaultAbstraction()
	train := DefaultTrainingConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return abs, train, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return abs, train, fmt.Errorf("parse HCL config %s: %s", path, diags.Error())
	}

	var doc fileConfig
	doc.Abstraction = abs
	doc.Training = train
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return abs, train, fmt.Errorf("decode HCL config %s: %s", path, diags.Error())
	}
	return doc.Abstraction, doc.Training, nil
}

// ApplyEnvOverrides mutates train in place from HOLDEM_CFR_* environment
// variables, following sdk/config.FromEnv's convention of optional,
// best-effort overrides layered on top of file/default configuration.
func ApplyEnvOverrides(train *TrainingConfig) error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		train.Seed = seed
	}
	if v := os.Getenv(EnvIterations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvIterations, err)
		}
		train.Iterations = n
	}
	return nil
}

// ErrInvalidConfig is returned by AbstractionConfig/TrainingConfig.Validate.
var ErrInvalidConfig = errors.New("solver: invalid configuration")
