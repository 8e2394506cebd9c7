package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
	"github.com/san-kum/mazerun/internal/solver"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir  = ".mazerun"
	DefaultTheme    = "classic"
	DefaultLogLevel = "info"
)

type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Solver   SolverConfig   `yaml:"solver"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
	Theme    string         `yaml:"theme"`
	DataDir  string         `yaml:"data_dir"`
}

type GridConfig struct {
	Size            int     `yaml:"size"`
	Width           int     `yaml:"width"`
	Start           int     `yaml:"start"`
	End             int     `yaml:"end"`
	WallProbability float64 `yaml:"wall_probability"`
	Seed            int64   `yaml:"seed"`
}

type SolverConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	Algorithm string            `yaml:"algorithm"`
	Endpoints map[string]string `yaml:"endpoints,omitempty"`
}

type PlaybackConfig struct {
	VisitedInterval time.Duration `yaml:"visited_interval"`
	PathInterval    time.Duration `yaml:"path_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Size:            maze.DefaultSize,
			Width:           maze.DefaultWidth,
			Start:           maze.DefaultStart,
			End:             maze.DefaultEnd,
			WallProbability: maze.DefaultWallProbability,
		},
		Solver: SolverConfig{
			Endpoint:  solver.DefaultEndpoint,
			Algorithm: string(solver.BFS),
		},
		Playback: PlaybackConfig{
			VisitedInterval: playback.DefaultVisitedInterval,
			PathInterval:    playback.DefaultPathInterval,
		},
		Log:     LogConfig{Level: DefaultLogLevel},
		Theme:   DefaultTheme,
		DataDir: DefaultDataDir,
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path over base, e.g. a preset, and returns base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, err
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) GridSpec() maze.Spec {
	return maze.Spec{
		Size:            c.Grid.Size,
		Width:           c.Grid.Width,
		Start:           c.Grid.Start,
		End:             c.Grid.End,
		WallProbability: c.Grid.WallProbability,
	}
}

func (c *Config) Algorithm() (solver.Algorithm, error) {
	return solver.ParseAlgorithm(c.Solver.Algorithm)
}

// Validate checks the grid, the algorithm names and the intervals.
func (c *Config) Validate() error {
	if _, err := c.GridSpec().Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if _, err := c.Algorithm(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	for name := range c.Solver.Endpoints {
		if _, err := solver.ParseAlgorithm(name); err != nil {
			return fmt.Errorf("solver endpoints: %w", err)
		}
	}
	if c.Playback.VisitedInterval <= 0 || c.Playback.PathInterval <= 0 {
		return fmt.Errorf("playback intervals must be positive, got %v and %v",
			c.Playback.VisitedInterval, c.Playback.PathInterval)
	}
	return nil
}

// SolverOptions turns per-algorithm endpoint overrides into client options.
func (c *Config) SolverOptions() []solver.Option {
	opts := make([]solver.Option, 0, len(c.Solver.Endpoints))
	for name, url := range c.Solver.Endpoints {
		alg, err := solver.ParseAlgorithm(name)
		if err != nil {
			continue
		}
		opts = append(opts, solver.WithEndpoint(alg, url))
	}
	return opts
}
