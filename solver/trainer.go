package solver

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-cfr/internal/randutil"
)

// Mode selects which of the three solver flavors a Trainer orchestrates
// (spec.md §4.8: "tabular CFR+, Deep CFR, or Kuhn validation").
type Mode int

const (
	ModeCFRPlus Mode = iota
	ModeDeepCFR
	ModeKuhn
)

// Progress is emitted on each progress tick (spec.md §4.8's "timestamped
// logging").
type Progress struct {
	Iteration  int
	NumInfosets int
	GameValue  float64
	Elapsed    time.Duration
}

// Option configures a Trainer at construction time.
type Option func(*Trainer)

// WithLogger injects a structured logger; the default discards all output,
// matching the teacher's preference for constructor-injected loggers over
// a package-level global.
func WithLogger(logger *log.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithClock injects the clock used for progress/checkpoint-interval timing,
// so tests can pass quartz.NewMock(t) instead of sleeping on a wall clock.
func WithClock(clock quartz.Clock) Option {
	return func(t *Trainer) { t.clock = clock }
}

// Trainer orchestrates a solver of one of three flavors, supplying training
// iterations, timestamped logging, and checkpoint persistence (spec.md
// §4.8). Its contract is thin: invoke the solver's train(iterations) and,
// on completion, iterate the infoset table for export.
type Trainer struct {
	mode    Mode
	absCfg  AbstractionConfig
	trainCfg TrainingConfig

	cfr  *CFRSolver
	kuhn *KuhnTrainer

	rng *rand.Rand

	logger *log.Logger
	clock  quartz.Clock

	startedAt time.Time
	iteration int

	checkpointPath  string
	checkpointEvery time.Duration
	lastCheckpoint  time.Time
}

// NewTrainer constructs a Trainer for the requested mode. Deep CFR trainers
// are constructed directly via NewDeepCFRSolver and driven with its own
// Train method; Trainer's orchestration (logging, checkpointing) wraps the
// tabular and Kuhn flavors, whose state is small enough to snapshot as JSON.
func NewTrainer(mode Mode, absCfg AbstractionConfig, trainCfg TrainingConfig, opts ...Option) (*Trainer, error) {
	t := &Trainer{
		mode:     mode,
		absCfg:   absCfg,
		trainCfg: trainCfg,
		logger:   log.New(io.Discard),
		clock:    quartz.NewReal(),
	}

	seed := trainCfg.Seed
	if seed == 0 {
		seed = 1
	}
	t.rng = randutil.New(seed)

	switch mode {
	case ModeCFRPlus:
		solver, err := NewCFRSolver(absCfg, trainCfg)
		if err != nil {
			return nil, err
		}
		t.cfr = solver
	case ModeKuhn:
		t.kuhn = NewKuhnTrainer()
	default:
		return nil, fmt.Errorf("%w: NewTrainer does not drive Deep CFR directly, use NewDeepCFRSolver", ErrInvalidConfig)
	}

	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// EnableCheckpoints configures the trainer to write a checkpoint to path at
// most once per interval of wall-clock time, measured on the injected clock.
func (t *Trainer) EnableCheckpoints(path string, interval time.Duration) {
	t.checkpointPath = path
	t.checkpointEvery = interval
}

// Run executes iterations training steps, optionally fanning the tabular
// flavor out across trainCfg.ParallelTables workers sharing one RegretTable
// (spec.md §5's permitted parallelization: "many iterations may run in
// parallel sharing the infoset table"). progress, if non-nil, is called
// every trainCfg.ProgressEvery iterations (0 means every 1% of iterations,
// at least every iteration), and a final call always fires on completion.
func (t *Trainer) Run(ctx context.Context, iterations int, progress func(Progress)) error {
	t.startedAt = t.clock.Now()
	t.lastCheckpoint = t.startedAt

	switch t.mode {
	case ModeKuhn:
		return t.runKuhn(ctx, iterations, progress)
	case ModeCFRPlus:
		return t.runCFRPlus(ctx, iterations, progress)
	default:
		return fmt.Errorf("%w: unsupported trainer mode %v", ErrInvalidConfig, t.mode)
	}
}

func (t *Trainer) runKuhn(ctx context.Context, iterations int, progress func(Progress)) error {
	batch := t.progressBatch(iterations)
	for t.iteration < iterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := t.kuhn.Train(1, t.rng); err != nil {
			return err
		}
		t.iteration++

		if err := t.maybeCheckpoint(); err != nil {
			return err
		}
		if progress != nil && t.iteration%batch == 0 {
			t.reportProgress(progress, t.kuhn.NumInfosets(), t.kuhn.GameValue())
		}
	}
	if progress != nil {
		t.reportProgress(progress, t.kuhn.NumInfosets(), t.kuhn.GameValue())
	}
	return nil
}

func (t *Trainer) runCFRPlus(ctx context.Context, iterations int, progress func(Progress)) error {
	parallel := t.trainCfg.ParallelTables
	if parallel <= 0 {
		parallel = 1
	}
	batch := t.progressBatch(iterations)

	for t.iteration < iterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		remaining := iterations - t.iteration
		step := parallel
		if step > remaining {
			step = remaining
		}

		if err := t.runParallelBatch(ctx, step); err != nil {
			return err
		}
		t.iteration += step

		if err := t.maybeCheckpoint(); err != nil {
			return err
		}
		if progress != nil && t.iteration/batch != (t.iteration-step)/batch {
			t.reportProgress(progress, t.cfr.NumInfosets(), t.cfr.GameValue())
		}
	}
	if progress != nil {
		t.reportProgress(progress, t.cfr.NumInfosets(), t.cfr.GameValue())
	}
	return nil
}

// runParallelBatch runs n single-iteration Train calls across workers that
// share t.cfr's RegretTable, each with its own RNG derived from the
// trainer's seed stream (spec.md §5's RNG discipline: "each worker owns a
// non-shared pseudo-random generator").
func (t *Trainer) runParallelBatch(ctx context.Context, n int) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		workerSeed := t.rng.Int63()
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			workerRNG := randutil.New(workerSeed)
			_, err := t.cfr.Train(1, workerRNG)
			return err
		})
	}
	return g.Wait()
}

func (t *Trainer) progressBatch(iterations int) int {
	if t.trainCfg.ProgressEvery > 0 {
		return t.trainCfg.ProgressEvery
	}
	batch := iterations / 100
	if batch <= 0 {
		batch = 1
	}
	return batch
}

func (t *Trainer) reportProgress(progress func(Progress), numInfosets int, gameValue float64) {
	p := Progress{
		Iteration:   t.iteration,
		NumInfosets: numInfosets,
		GameValue:   gameValue,
		Elapsed:     t.clock.Since(t.startedAt),
	}
	t.logger.Info("training progress", "iteration", p.Iteration, "infosets", p.NumInfosets, "game_value", p.GameValue, "elapsed", p.Elapsed)
	progress(p)
}

func (t *Trainer) maybeCheckpoint() error {
	if t.checkpointPath == "" || t.checkpointEvery <= 0 {
		return nil
	}
	if t.clock.Since(t.lastCheckpoint) < t.checkpointEvery {
		return nil
	}
	t.lastCheckpoint = t.clock.Now()
	t.logger.Info("writing checkpoint", "path", t.checkpointPath, "iteration", t.iteration)
	return t.SaveCheckpoint(t.checkpointPath)
}

// Iteration returns the number of completed training iterations.
func (t *Trainer) Iteration() int { return t.iteration }

// CFRSolver exposes the underlying tabular solver (nil unless mode ==
// ModeCFRPlus), for callers that want to query GetStrategy directly.
func (t *Trainer) CFRSolver() *CFRSolver { return t.cfr }

// KuhnTrainer exposes the underlying Kuhn solver (nil unless mode == ModeKuhn).
func (t *Trainer) KuhnTrainer() *KuhnTrainer { return t.kuhn }
