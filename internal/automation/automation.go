package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazerun/internal/config"
	"github.com/san-kum/mazerun/internal/logging"
	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/metrics"
	"github.com/san-kum/mazerun/internal/session"
	"github.com/san-kum/mazerun/internal/solver"
	"github.com/san-kum/mazerun/internal/storage"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of solves
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one maze and one solve. Zero values fall back to the
// preset, and a zero seed is drawn from the clock.
type ScenarioStep struct {
	Preset          string   `yaml:"preset"`
	Algorithm       string   `yaml:"algorithm"`
	Seed            int64    `yaml:"seed"`
	WallProbability *float64 `yaml:"wall_probability"`
	Save            bool     `yaml:"save"`
}

// StepResult is what one step produced
type StepResult struct {
	Step      int
	Preset    string
	Algorithm solver.Algorithm
	Seed      int64
	Walls     int
	Visited   int
	Path      int
	Found     bool
	Metrics   map[string]float64
	RunID     string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Validate checks every step's preset, algorithm and grid.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		cfg, _, err := step.config()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if _, err := cfg.GridSpec().Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (step ScenarioStep) config() (*config.Config, solver.Algorithm, error) {
	preset := step.Preset
	if preset == "" {
		preset = config.DefaultPreset
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset %q", step.Preset)
	}
	if step.Algorithm != "" {
		cfg.Solver.Algorithm = step.Algorithm
	}
	alg, err := cfg.Algorithm()
	if err != nil {
		return nil, "", err
	}
	if step.WallProbability != nil {
		cfg.Grid.WallProbability = *step.WallProbability
	}
	return cfg, alg, nil
}

// RunScenario executes all steps in order, stopping at the first failure.
// Results of the steps that completed are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, client session.Solver, store *storage.Store, logger *log.Logger) ([]StepResult, error) {
	logger = logging.OrDiscard(logger)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg, alg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		seed := step.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset, "algorithm", alg, "seed", seed)

		g, err := maze.Generate(cfg.GridSpec(), rand.New(rand.NewSource(seed)))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := client.Solve(ctx, g, alg)
		if err != nil {
			return results, fmt.Errorf("step %d solve: %w", i+1, err)
		}

		sr := StepResult{
			Step:      i + 1,
			Preset:    step.Preset,
			Algorithm: alg,
			Seed:      seed,
			Walls:     g.WallCount(),
			Visited:   len(res.Visited),
			Path:      len(res.Path),
			Found:     res.Found(),
			Metrics:   metrics.Evaluate(g, res.Visited, res.Path),
		}

		if step.Save {
			if store == nil {
				return results, fmt.Errorf("step %d: save requested without a data directory", i+1)
			}
			id, err := store.Save(storage.Run{Grid: g, Seed: seed, Algorithm: alg, Result: res, Metrics: sr.Metrics})
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
			logger.Info("saved run", "step", i+1, "id", id)
		}

		results = append(results, sr)
	}

	return results, nil
}

// ProbabilitySweep measures how often the target is reachable as the wall
// density grows. Each point solves Trials random mazes. Grid, when set,
// replaces the preset layout; its wall probability is ignored.
type ProbabilitySweep struct {
	Preset    string
	Grid      *maze.Spec
	Algorithm solver.Algorithm
	Min       float64
	Max       float64
	NumSteps  int
	Trials    int
	Seed      int64
	Workers   int
}

// SweepPoint holds results for one wall probability
type SweepPoint struct {
	WallProbability float64
	Trials          int
	Found           int
	MeanVisited     float64
	MeanPath        float64
}

func (p SweepPoint) FoundRate() float64 {
	if p.Trials == 0 {
		return 0
	}
	return float64(p.Found) / float64(p.Trials)
}

type trial struct {
	visited, path int
	found         bool
}

// RunSweep executes the sweep, running up to Workers solves at a time.
func RunSweep(ctx context.Context, sweep *ProbabilitySweep, client session.Solver, logger *log.Logger) ([]SweepPoint, error) {
	logger = logging.OrDiscard(logger)
	if sweep.NumSteps < 1 || sweep.Trials < 1 {
		return nil, fmt.Errorf("sweep needs at least one step and one trial")
	}
	var base maze.Spec
	if sweep.Grid != nil {
		base = *sweep.Grid
	} else {
		preset := sweep.Preset
		if preset == "" {
			preset = config.DefaultPreset
		}
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", sweep.Preset)
		}
		base = cfg.GridSpec()
	}
	workers := sweep.Workers
	if workers < 1 {
		workers = 4
	}

	rng := rand.New(rand.NewSource(sweep.Seed))
	if sweep.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepPoint, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		spec := base
		spec.WallProbability = sweep.Min + float64(i)*paramStep

		// seeds are drawn up front so the outcome does not depend on
		// scheduling
		seeds := make([]int64, sweep.Trials)
		for t := range seeds {
			seeds[t] = rng.Int63()
		}

		trials := make([]trial, sweep.Trials)
		eg, ectx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		for t, seed := range seeds {
			eg.Go(func() error {
				g, err := maze.Generate(spec, rand.New(rand.NewSource(seed)))
				if err != nil {
					return err
				}
				res, err := client.Solve(ectx, g, sweep.Algorithm)
				if err != nil {
					return err
				}
				trials[t] = trial{visited: len(res.Visited), path: len(res.Path), found: res.Found()}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return results, fmt.Errorf("sweep p=%.2f: %w", spec.WallProbability, err)
		}

		pt := SweepPoint{WallProbability: spec.WallProbability, Trials: sweep.Trials}
		for _, tr := range trials {
			pt.MeanVisited += float64(tr.visited)
			pt.MeanPath += float64(tr.path)
			if tr.found {
				pt.Found++
			}
		}
		pt.MeanVisited /= float64(sweep.Trials)
		pt.MeanPath /= float64(sweep.Trials)
		results = append(results, pt)

		logger.Info("sweep point", "step", i+1, "of", sweep.NumSteps, "p", spec.WallProbability, "found", pt.Found, "trials", pt.Trials)
	}

	return results, nil
}
