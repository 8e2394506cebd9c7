package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazerun/internal/config"
	"github.com/san-kum/mazerun/internal/logging"
	"github.com/san-kum/mazerun/internal/solver"
	"github.com/san-kum/mazerun/internal/storage"
	"github.com/san-kum/mazerun/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	endpoint   string

	preset          string
	algorithm       string
	seed            int64
	wallProbability float64
	visitedInterval time.Duration
	pathInterval    time.Duration
	theme           string

	plain     bool
	frameRate int
	save      bool
	outFile   string
	cellSize  float64
	route     bool
	workers   int
	trials    int
	steps     int
	minProb   float64
	maxProb   float64
)

// main registers commands and flags, launches the interactive board when no
// subcommand is given, and exits with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "mazerun",
		Short:        "maze search playback in the terminal",
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", solver.DefaultEndpoint, "solver service base url")
	addRunFlags(rootCmd)
	rootCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "generate a maze and print it",
		Args:  cobra.NoArgs,
		RunE:  generateMaze,
	}
	addRunFlags(generateCmd)

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "generate a maze and solve it through the service",
		Args:  cobra.NoArgs,
		RunE:  solveMaze,
	}
	addRunFlags(solveCmd)
	solveCmd.Flags().BoolVar(&plain, "plain", false, "animate with the plain renderer")
	solveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --plain")
	solveCmd.Flags().BoolVar(&save, "save", true, "store the run in the data directory")

	playCmd := &cobra.Command{
		Use:   "play [run_id]",
		Short: "replay a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  playRun,
	}
	playCmd.Flags().BoolVar(&plain, "plain", false, "animate with the plain renderer")
	playCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --plain")
	playCmd.Flags().DurationVar(&visitedInterval, "visited-interval", 0, "delay between visited cells")
	playCmd.Flags().DurationVar(&pathInterval, "path-interval", 0, "delay between path cells")
	playCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot how a run explored the maze",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final board of a run as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().Float64Var(&cellSize, "cell", 20, "cell size in pixels")
	exportSVGCmd.Flags().BoolVar(&route, "route", false, "draw only walls and the route")

	exportJSONCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "solve one maze with every algorithm",
		Args:  cobra.NoArgs,
		RunE:  compareAlgorithms,
	}
	addRunFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available maze presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "measure reachability across wall densities",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addGridFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&minProb, "min", 0, "lowest wall probability")
	sweepCmd.Flags().Float64Var(&maxProb, "max", 0.5, "highest wall probability")
	sweepCmd.Flags().IntVar(&steps, "steps", 6, "number of probabilities")
	sweepCmd.Flags().IntVar(&trials, "trials", 20, "mazes per probability")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "concurrent solves")

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	addRunFlags(initConfigCmd)

	rootCmd.AddCommand(generateCmd, solveCmd, playCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, compareCmd, presetsCmd, batchCmd, sweepCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset maze layout")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(solver.BFS), "search algorithm (bfs, dfs, astar)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "maze seed (0 picks one)")
}

func addRunFlags(cmd *cobra.Command) {
	addGridFlags(cmd)
	cmd.Flags().Float64Var(&wallProbability, "wall-probability", 0, "chance of each cell being a wall")
	cmd.Flags().DurationVar(&visitedInterval, "visited-interval", 0, "delay between visited cells")
	cmd.Flags().DurationVar(&pathInterval, "path-interval", 0, "delay between path cells")
}

// loadConfig layers defaults, the preset, the config file and the flags
// that were set explicitly, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("endpoint") {
		cfg.Solver.Endpoint = endpoint
	}
	if flags.Changed("algorithm") {
		cfg.Solver.Algorithm = algorithm
	}
	if flags.Changed("seed") {
		cfg.Grid.Seed = seed
	}
	if flags.Changed("wall-probability") {
		cfg.Grid.WallProbability = wallProbability
	}
	if flags.Changed("visited-interval") {
		cfg.Playback.VisitedInterval = visitedInterval
	}
	if flags.Changed("path-interval") {
		cfg.Playback.PathInterval = pathInterval
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// gridSeed is the configured seed, or a fresh one.
func gridSeed(cfg *config.Config) int64 {
	if cfg.Grid.Seed != 0 {
		return cfg.Grid.Seed
	}
	return time.Now().UnixNano()
}

func openLogger(cfg *config.Config) (*log.Logger, io.Closer, error) {
	return logging.Open(cfg.Log.File, cfg.Log.Level)
}

// openTUILogger keeps logs off the terminal the board draws on.
func openTUILogger(cfg *config.Config, st *storage.Store) (*log.Logger, io.Closer, error) {
	path := cfg.Log.File
	if path == "" {
		if err := st.Init(); err != nil {
			return nil, nil, err
		}
		path = filepath.Join(st.Dir(), "mazerun.log")
	}
	return logging.Open(path, cfg.Log.Level)
}

func newClient(cfg *config.Config, logger *log.Logger) *solver.Client {
	opts := append(cfg.SolverOptions(), solver.WithLogger(logger))
	return solver.New(cfg.Solver.Endpoint, opts...)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	logger, closer, err := openTUILogger(cfg, st)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	return viz.RunInteractive(viz.Env{
		Config:  cfg,
		Solver:  newClient(cfg, logger),
		Store:   st,
		Logger:  logger,
		Context: ctx,
	})
}
