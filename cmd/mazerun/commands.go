package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mazerun/internal/automation"
	"github.com/san-kum/mazerun/internal/board"
	"github.com/san-kum/mazerun/internal/config"
	"github.com/san-kum/mazerun/internal/export"
	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/metrics"
	"github.com/san-kum/mazerun/internal/session"
	"github.com/san-kum/mazerun/internal/solver"
	"github.com/san-kum/mazerun/internal/storage"
	"github.com/san-kum/mazerun/internal/tui"
	"github.com/san-kum/mazerun/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func generateMaze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s := gridSeed(cfg)
	g, err := maze.Generate(cfg.GridSpec(), rand.New(rand.NewSource(s)))
	if err != nil {
		return err
	}

	fmt.Printf("seed: %d\n", s)
	fmt.Printf("walls: %d of %d\n\n", g.WallCount(), g.Size())
	fmt.Println(g.String())
	return nil
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, values[name])
	}
}

func solveMaze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	alg, err := cfg.Algorithm()
	if err != nil {
		return err
	}

	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(cfg.DataDir)
	if save {
		if err := st.Init(); err != nil {
			return fmt.Errorf("failed to init storage: %w", err)
		}
	}
	client := newClient(cfg, logger)
	s := gridSeed(cfg)

	if plain {
		return solveLive(ctx, cfg, client, st, alg, s)
	}

	g, err := maze.Generate(cfg.GridSpec(), rand.New(rand.NewSource(s)))
	if err != nil {
		return err
	}

	fmt.Printf("solving with %s (seed %d)...\n", alg.Label(), s)
	start := time.Now()
	res, err := client.Solve(ctx, g, alg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	b := board.New(g)
	b.Fill(res.Visited, res.Path)
	fmt.Println(tui.Frame(alg.Label(), b.Snapshot()))

	values := metrics.Evaluate(g, res.Visited, res.Path)
	fmt.Printf("\ncompleted in %v\n", elapsed)
	if save {
		runID, err := st.Save(storage.Run{Grid: g, Seed: s, Algorithm: alg, Result: res, Metrics: values})
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("visited: %d  path: %d\n", len(res.Visited), len(res.Path))
	printMetrics(values)
	return nil
}

// solveLive animates the solve through a session with the plain renderer.
func solveLive(ctx context.Context, cfg *config.Config, client session.Solver, st *storage.Store, alg solver.Algorithm, s int64) error {
	ses, err := session.New(session.Config{
		Spec:            cfg.GridSpec(),
		VisitedInterval: cfg.Playback.VisitedInterval,
		PathInterval:    cfg.Playback.PathInterval,
	}, client, s)
	if err != nil {
		return err
	}

	var runID string
	if save {
		ses.SetRecorder(func(r session.Run) error {
			id, err := st.Save(storage.Run{
				Grid:      r.Grid,
				Seed:      r.Seed,
				Algorithm: r.Algorithm,
				Result:    r.Result,
				Metrics:   metrics.Evaluate(r.Grid, r.Result.Visited, r.Result.Path),
			})
			runID = id
			return err
		})
	}

	tracker := metrics.NewTracker(ses.Grid())
	ses.AddObserver(tracker)
	r := tui.NewLiveRenderer(os.Stdout, ses.Board(), alg.Label(), frameRate)
	ses.AddObserver(r)

	r.Start()
	if _, err := ses.Simulate(ctx, alg); err != nil {
		r.Stop()
		return err
	}
	err = ses.Wait(ctx)
	r.Flush()
	r.Stop()
	if err != nil {
		return err
	}

	if runID != "" {
		fmt.Printf("run id: %s\n", runID)
	}
	printMetrics(tracker.Values())
	return nil
}

// resolveRun loads the named run, or the newest one.
func resolveRun(st *storage.Store, args []string) (*maze.Grid, *solver.Result, *storage.RunMetadata, error) {
	if len(args) > 0 {
		return st.LoadResult(args[0])
	}
	meta, err := st.Latest()
	if err != nil {
		return nil, nil, nil, err
	}
	return st.LoadResult(meta.ID)
}

func playRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	g, res, meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if plain {
		ses := session.NewWithGrid(session.Config{
			VisitedInterval: cfg.Playback.VisitedInterval,
			PathInterval:    cfg.Playback.PathInterval,
		}, nil, g, meta.Seed)
		r := tui.NewLiveRenderer(os.Stdout, ses.Board(), meta.Algorithm+" "+shortID(meta.ID), frameRate)
		ses.AddObserver(r)
		r.Start()
		ses.Replay(res)
		err := ses.Wait(ctx)
		r.Flush()
		r.Stop()
		return err
	}

	logger, closer, err := openTUILogger(cfg, st)
	if err != nil {
		return err
	}
	defer closer.Close()

	env := viz.Env{
		Config:  cfg,
		Solver:  newClient(cfg, logger),
		Store:   st,
		Logger:  logger,
		Context: ctx,
	}
	return viz.RunBoard(viz.NewReplay(env, g, res, meta))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGORITHM\tTIME\tSIZE\tWALLS\tVISITED\tPATH\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Algorithm,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width,
			run.Size/max(run.Width, 1),
			len(run.Walls),
			run.VisitedCount,
			run.PathCount,
			run.Status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	g, res, meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	if len(res.Visited) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("algorithm: %s\n", meta.Algorithm)
	fmt.Printf("visited: %d\n\n", len(res.Visited))

	graph := asciigraph.Plot(metrics.Profile(g, res.Visited),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("distance from start per visited step"),
	)
	fmt.Println(graph)
	fmt.Println()
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	g, res, meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}

	b := board.New(g)
	var svg string
	if route {
		b.Fill(nil, nil)
		svg = export.RouteToSVG(b.Snapshot(), res.Path, cellSize, export.DefaultPalette().Path)
	} else {
		b.Fill(res.Visited, res.Path)
		svg = export.BoardToSVG(b.Snapshot(), cellSize)
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	var meta *storage.RunMetadata
	if len(args) > 0 {
		meta, err = st.Load(args[0])
	} else {
		meta, err = st.Latest()
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func compareAlgorithms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	s := gridSeed(cfg)
	g, err := maze.Generate(cfg.GridSpec(), rand.New(rand.NewSource(s)))
	if err != nil {
		return err
	}
	client := newClient(cfg, logger)

	algs := solver.Algorithms()
	results := make([]*solver.Result, len(algs))
	elapsed := make([]time.Duration, len(algs))
	eg, ectx := errgroup.WithContext(ctx)
	for i, alg := range algs {
		eg.Go(func() error {
			start := time.Now()
			res, err := client.Solve(ectx, g, alg)
			if err != nil {
				return fmt.Errorf("%s: %w", alg, err)
			}
			results[i], elapsed[i] = res, time.Since(start)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	fmt.Printf("comparing algorithms on seed %d (%d walls)\n\n", s, g.WallCount())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tVISITED\tPATH\tCOVERAGE\tMEAN_JUMP\tTIME_MS")
	series := make([][]float64, 0, len(algs))
	names := make([]string, 0, len(algs))
	for i, alg := range algs {
		res := results[i]
		v := metrics.Evaluate(g, res.Visited, res.Path)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%.3f\t%.2f\n",
			alg.Label(), len(res.Visited), len(res.Path), v["coverage"], v["mean_jump"],
			float64(elapsed[i].Microseconds())/1000)
		if len(res.Visited) > 0 {
			series = append(series, metrics.Profile(g, res.Visited))
			names = append(names, alg.Label())
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(series) > 0 {
		fmt.Println()
		fmt.Println(profilePlot(series, names))
	}
	return nil
}

var seriesColors = []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Yellow}

// profilePlot draws one profile per algorithm; names[i] labels series[i] and
// shares its colour.
func profilePlot(series [][]float64, names []string) string {
	colors := make([]asciigraph.AnsiColor, len(series))
	labels := make([]string, len(series))
	for i := range series {
		colors[i] = seriesColors[i%len(seriesColors)]
		labels[i] = fmt.Sprintf("%s (%s)", names[i], colorNames[colors[i]])
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption("distance from start: "+strings.Join(labels, ", ")),
	)
}

var colorNames = map[asciigraph.AnsiColor]string{
	asciigraph.Red:    "red",
	asciigraph.Green:  "green",
	asciigraph.Blue:   "blue",
	asciigraph.Yellow: "yellow",
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tSTART\tEND\tWALLS")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\t%.2f\n", name, p.Width, p.Size/max(p.Width, 1), p.Start, p.End, p.WallProbability)
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	results, runErr := automation.RunScenario(ctx, scenario, newClient(cfg, logger), st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tALGORITHM\tSEED\tWALLS\tVISITED\tPATH\tFOUND\tRUN")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%t\t%s\n",
			r.Step, r.Preset, r.Algorithm, r.Seed, r.Walls, r.Visited, r.Path, r.Found, r.RunID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	alg, err := cfg.Algorithm()
	if err != nil {
		return err
	}
	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	grid := cfg.GridSpec()
	sweep := &automation.ProbabilitySweep{
		Grid:      &grid,
		Algorithm: alg,
		Min:       minProb,
		Max:       maxProb,
		NumSteps:  steps,
		Trials:    trials,
		Seed:      cfg.Grid.Seed,
		Workers:   workers,
	}
	points, err := automation.RunSweep(ctx, sweep, newClient(cfg, logger), logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping wall probability %.2f..%.2f with %s, %d trials each\n\n", minProb, maxProb, alg.Label(), trials)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WALL_P\tFOUND\tRATE\tMEAN_VISITED\tMEAN_PATH")
	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.FoundRate()
		fmt.Fprintf(w, "%.3f\t%d/%d\t%.2f\t%.1f\t%.1f\n",
			p.WallProbability, p.Found, p.Trials, p.FoundRate(), p.MeanVisited, p.MeanPath)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(rates) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rates,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("found rate vs wall probability"),
		))
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := "mazerun.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
