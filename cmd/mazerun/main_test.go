package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/mazerun/internal/config"
	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/solver"
	"github.com/san-kum/mazerun/internal/storage"
	"github.com/spf13/cobra"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "")
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "")
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "")
	addRunFlags(cmd)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	def := config.DefaultConfig()
	if cfg.Grid != def.Grid {
		t.Errorf("expected default grid, got %+v", cfg.Grid)
	}
	if cfg.DataDir != config.DefaultDataDir {
		t.Errorf("expected data dir %s, got %s", config.DefaultDataDir, cfg.DataDir)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mazerun.yaml")
	data := "solver:\n  algorithm: dfs\nplayback:\n  visited_interval: 5ms\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCmd(t, "--preset", "large", "--config", path, "--seed", "42", "-a", "astar")
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Grid.Size != config.Presets["large"].Size {
		t.Errorf("expected preset grid size, got %d", cfg.Grid.Size)
	}
	if cfg.Playback.VisitedInterval != 5*time.Millisecond {
		t.Errorf("expected file interval, got %v", cfg.Playback.VisitedInterval)
	}
	if cfg.Solver.Algorithm != "astar" {
		t.Errorf("expected flag to win over file, got %s", cfg.Solver.Algorithm)
	}
	if cfg.Grid.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Grid.Seed)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	if _, err := loadConfig(newTestCmd(t, "--preset", "nope")); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := loadConfig(newTestCmd(t, "--wall-probability", "1.5")); err == nil {
		t.Error("expected invalid config error")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("expected 01234567, got %s", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
}

func TestStoredRunCommandsUseConfigDataDir(t *testing.T) {
	tmp := t.TempDir()
	runs := filepath.Join(tmp, "runs")
	path := filepath.Join(tmp, "mazerun.yaml")
	if err := os.WriteFile(path, []byte("data_dir: "+runs+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := maze.New(maze.Spec{Size: 9, Width: 3, Start: 0, End: 8}, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	runID, err := storage.New(runs).Save(storage.Run{
		Grid:      g,
		Seed:      1,
		Algorithm: solver.BFS,
		Result:    &solver.Result{Visited: []int{0, 1, 2, 5, 8}, Path: []int{0, 1, 2, 5, 8}},
	})
	if err != nil {
		t.Fatal(err)
	}

	cmd := newTestCmd(t, "--config", path)
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != runs {
		t.Fatalf("expected data dir %s from the config file, got %s", runs, cfg.DataDir)
	}

	if err := exportRun(cmd, []string{runID}); err != nil {
		t.Errorf("export: %v", err)
	}
	if err := listRuns(cmd, nil); err != nil {
		t.Errorf("list: %v", err)
	}
	if err := plotRun(cmd, nil); err != nil {
		t.Errorf("plot: %v", err)
	}

	outFile, cellSize, route = filepath.Join(tmp, "run.svg"), 10, false
	if err := exportSVG(cmd, []string{runID}); err != nil {
		t.Fatalf("export-svg: %v", err)
	}
	if _, err := os.Stat(outFile); err != nil {
		t.Errorf("expected svg written: %v", err)
	}
}

func TestDataFlagOverridesConfigDataDir(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "mazerun.yaml")
	if err := os.WriteFile(path, []byte("data_dir: "+filepath.Join(tmp, "runs")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	flagDir := filepath.Join(tmp, "other")
	cfg, err := loadConfig(newTestCmd(t, "--config", path, "--data", flagDir))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != flagDir {
		t.Errorf("expected %s, got %s", flagDir, cfg.DataDir)
	}
}

func TestProfilePlotLabelsPlottedSeries(t *testing.T) {
	out := profilePlot([][]float64{{0, 1, 2, 3}}, []string{"DFS"})
	if !strings.Contains(out, "distance from start: DFS (red)") {
		t.Errorf("expected caption for the single plotted series, got:\n%s", out)
	}

	out = profilePlot([][]float64{{0, 1}, {0, 2}}, []string{"BFS", "A*"})
	if !strings.Contains(out, "BFS (red), A* (green)") {
		t.Errorf("expected labels in series order, got:\n%s", out)
	}
}
