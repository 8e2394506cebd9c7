package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
	"github.com/san-kum/mazerun/internal/solver"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrInvalidRunID = errors.New("storage: invalid run id")
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// runDir resolves a run id to its directory. Ids are uuids, so anything else
// is rejected before it reaches the filesystem.
func (s *Store) runDir(runID string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Algorithm       string             `json:"algorithm"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	Size            int                `json:"size"`
	Width           int                `json:"width"`
	Start           int                `json:"start"`
	End             int                `json:"end"`
	WallProbability float64            `json:"wall_probability"`
	Walls           []int              `json:"walls"`
	VisitedCount    int                `json:"visited_count"`
	PathCount       int                `json:"path_count"`
	Status          string             `json:"status"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Spec rebuilds the grid parameters of the run.
func (m *RunMetadata) Spec() maze.Spec {
	return maze.Spec{
		Size:            m.Size,
		Width:           m.Width,
		Start:           m.Start,
		End:             m.End,
		WallProbability: m.WallProbability,
	}
}

// Step is one row of steps.csv.
type Step struct {
	Step  int
	Phase playback.Phase
	Cell  int
	Row   int
	Col   int
}

// Run is everything Save needs to persist one solve.
type Run struct {
	Grid      *maze.Grid
	Seed      int64
	Algorithm solver.Algorithm
	Result    *solver.Result
	Metrics   map[string]float64
}

func (s *Store) Save(run Run) (string, error) {
	if run.Grid == nil || run.Result == nil {
		return "", fmt.Errorf("storage: incomplete run")
	}
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	g, res := run.Grid, run.Result
	spec := g.Spec()
	status := res.Status
	if status == "" {
		status = "Not Found"
		if res.Found() {
			status = "Found"
		}
	}
	metrics := run.Metrics
	if metrics == nil {
		metrics = map[string]float64{}
	}

	meta := RunMetadata{
		ID:              runID,
		Algorithm:       string(run.Algorithm),
		Timestamp:       time.Now(),
		Seed:            run.Seed,
		Size:            spec.Size,
		Width:           spec.Width,
		Start:           spec.Start,
		End:             spec.End,
		WallProbability: spec.WallProbability,
		Walls:           g.Walls(),
		VisitedCount:    len(res.Visited),
		PathCount:       len(res.Path),
		Status:          status,
		Metrics:         metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSteps(filepath.Join(runDir, stepsFile), g, res); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSteps(path string, g *maze.Grid, res *solver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "phase", "cell", "row", "col"}); err != nil {
		return err
	}

	step := 0
	write := func(phase playback.Phase, cells []int) error {
		for _, cell := range cells {
			row, col := g.Coord(cell)
			rec := []string{
				strconv.Itoa(step),
				phase.String(),
				strconv.Itoa(cell),
				strconv.Itoa(row),
				strconv.Itoa(col),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
			step++
		}
		return nil
	}
	if err := write(playback.PhaseVisited, res.Visited); err != nil {
		return err
	}
	if err := write(playback.PhasePath, res.Path); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the newest run, or ErrRunNotFound on an empty store.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSteps(runID string) ([]Step, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, stepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	steps := make([]Step, 0)
	header := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: run %s: %w", runID, err)
		}
		if header {
			header = false
			continue
		}

		st, err := parseStep(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: run %s: %w", runID, err)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func parseStep(rec []string) (Step, error) {
	var st Step
	nums := make([]int, 0, 4)
	for _, i := range []int{0, 2, 3, 4} {
		n, err := strconv.Atoi(rec[i])
		if err != nil {
			return st, err
		}
		nums = append(nums, n)
	}
	switch rec[1] {
	case playback.PhaseVisited.String():
		st.Phase = playback.PhaseVisited
	case playback.PhasePath.String():
		st.Phase = playback.PhasePath
	default:
		return st, fmt.Errorf("unknown phase %q", rec[1])
	}
	st.Step, st.Cell, st.Row, st.Col = nums[0], nums[1], nums[2], nums[3]
	return st, nil
}

// LoadResult rebuilds the maze and the solver answer of a stored run so it
// can be replayed without the service.
func (s *Store) LoadResult(runID string) (*maze.Grid, *solver.Result, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	g, err := maze.New(meta.Spec(), meta.Walls)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return nil, nil, nil, err
	}

	res := &solver.Result{Visited: []int{}, Path: []int{}, Status: meta.Status}
	for _, st := range steps {
		if st.Phase == playback.PhasePath {
			res.Path = append(res.Path, st.Cell)
		} else {
			res.Visited = append(res.Visited, st.Cell)
		}
	}
	return g, res, meta, nil
}
