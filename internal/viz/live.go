package viz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mazerun/internal/board"
	"github.com/san-kum/mazerun/internal/config"
	"github.com/san-kum/mazerun/internal/logging"
	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/metrics"
	"github.com/san-kum/mazerun/internal/playback"
	"github.com/san-kum/mazerun/internal/session"
	"github.com/san-kum/mazerun/internal/solver"
	"github.com/san-kum/mazerun/internal/storage"
)

const frameRate = 30

var (
	boardStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// Env carries what every board view needs, whatever maze it shows.
type Env struct {
	Config    *config.Config
	Solver    session.Solver
	Store     *storage.Store
	Logger    *log.Logger
	Scheduler playback.Scheduler
	Context   context.Context

	// NewSeed picks the seed for the `n` key. Defaults to the wall clock.
	NewSeed func() int64
}

func (e Env) withDefaults() Env {
	if e.Config == nil {
		e.Config = config.DefaultConfig()
	}
	if e.Context == nil {
		e.Context = context.Background()
	}
	if e.NewSeed == nil {
		e.NewSeed = func() int64 { return time.Now().UnixNano() }
	}
	e.Logger = logging.OrDiscard(e.Logger)
	return e
}

func (e Env) sessionConfig() session.Config {
	return session.Config{
		Spec:            e.Config.GridSpec(),
		VisitedInterval: e.Config.Playback.VisitedInterval,
		PathInterval:    e.Config.Playback.PathInterval,
		Scheduler:       e.Scheduler,
		Logger:          e.Logger,
	}
}

type TickMsg time.Time

type solvedMsg struct {
	res *solver.Result
	err error
}

type savedMsg struct {
	id  string
	err error
}

// Model is the board view: the maze, the playback and the side panel.
type Model struct {
	env      Env
	ses      *session.Session
	tracker  *metrics.Tracker
	alg      solver.Algorithm
	theme    Theme
	solving  bool
	showHelp bool
	message  string
	frame    int
	profile  []float64

	// replay is set when the view plays a stored run
	replay       *storage.RunMetadata
	replayResult *solver.Result

	width, height int
}

// New builds a board view on a fresh maze from env.Config.
func New(env Env) (Model, error) {
	env = env.withDefaults()
	alg, err := env.Config.Algorithm()
	if err != nil {
		return Model{}, err
	}
	seed := env.Config.Grid.Seed
	if seed == 0 {
		seed = env.NewSeed()
	}
	ses, err := session.New(env.sessionConfig(), env.Solver, seed)
	if err != nil {
		return Model{}, err
	}
	return newModel(env, ses, alg), nil
}

// NewReplay builds a board view that plays a stored run without the solver.
func NewReplay(env Env, g *maze.Grid, res *solver.Result, meta *storage.RunMetadata) Model {
	env = env.withDefaults()
	alg, err := solver.ParseAlgorithm(meta.Algorithm)
	if err != nil {
		alg = solver.BFS
	}
	ses := session.NewWithGrid(env.sessionConfig(), env.Solver, g, meta.Seed)
	m := newModel(env, ses, alg)
	m.replay, m.replayResult = meta, res
	return m
}

func newModel(env Env, ses *session.Session, alg solver.Algorithm) Model {
	tracker := metrics.NewTracker(ses.Grid())
	ses.AddObserver(tracker)
	return Model{
		env:     env,
		ses:     ses,
		tracker: tracker,
		alg:     alg,
		theme:   GetTheme(env.Config.Theme),
		width:   80,
		height:  24,
	}
}

func (m Model) Session() *session.Session   { return m.ses }
func (m Model) Algorithm() solver.Algorithm { return m.alg }
func (m Model) Theme() Theme                { return m.theme }

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	if m.replay != nil {
		return tea.Batch(tick(), m.startReplay())
	}
	return tick()
}

// Update handles input events and redraw ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		m.frame++
		return m, tick()
	case solvedMsg:
		m.solving = false
		if msg.err != nil {
			m.message = ""
			if errors.Is(msg.err, session.ErrBusy) {
				m.message = "busy"
			}
			return m, nil
		}
		m.profile = metrics.Profile(m.ses.Grid(), msg.res.Visited)
		m.message = fmt.Sprintf("%s: %d visited, %d on path", m.alg.Label(), len(msg.res.Visited), len(msg.res.Path))
	case savedMsg:
		if msg.err != nil {
			m.message = "save failed: " + msg.err.Error()
		} else {
			m.message = "saved " + msg.id
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ses.Sequencer().Reset()
		return m, tea.Quit
	case "enter", "s":
		return m.simulate()
	case " ":
		c := m.ses.Controls()
		switch {
		case c.CanPause:
			m.ses.Pause()
		case c.CanContinue:
			m.ses.Continue()
		}
	case "n":
		if m.solving {
			return m, nil
		}
		if err := m.ses.NewMaze(m.env.NewSeed()); err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.tracker.SetGrid(m.ses.Grid())
		m.profile = nil
		m.replay, m.replayResult = nil, nil
		m.message = fmt.Sprintf("new maze, seed %d", m.ses.Seed())
	case "a":
		if m.solving || m.replay != nil {
			return m, nil
		}
		m.alg = nextAlgorithm(m.alg)
	case "t":
		m.theme = NextTheme(m.theme)
	case "w":
		return m, m.save()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func nextAlgorithm(a solver.Algorithm) solver.Algorithm {
	all := solver.Algorithms()
	for i, x := range all {
		if x == a {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (m Model) simulate() (Model, tea.Cmd) {
	if m.solving || !m.ses.Controls().CanSimulate {
		return m, nil
	}
	if m.replay != nil {
		return m, m.startReplay()
	}
	if m.env.Solver == nil {
		m.message = "no solver configured"
		return m, nil
	}
	m.solving = true
	m.message = ""
	m.profile = nil
	ses, alg, ctx := m.ses, m.alg, m.env.Context
	return m, func() tea.Msg {
		res, err := ses.Simulate(ctx, alg)
		return solvedMsg{res: res, err: err}
	}
}

func (m Model) startReplay() tea.Cmd {
	ses, res := m.ses, m.replayResult
	return func() tea.Msg {
		ses.Replay(res)
		return solvedMsg{res: res}
	}
}

func (m Model) save() tea.Cmd {
	store := m.env.Store
	last := m.ses.Last()
	values := m.tracker.Values()
	return func() tea.Msg {
		if store == nil {
			return savedMsg{err: errors.New("no data directory")}
		}
		if last == nil {
			return savedMsg{err: errors.New("nothing solved yet")}
		}
		id, err := store.Save(storage.Run{
			Grid:      last.Grid,
			Seed:      last.Seed,
			Algorithm: last.Algorithm,
			Result:    last.Result,
			Metrics:   values,
		})
		return savedMsg{id: id, err: err}
	}
}

func (m Model) cellStyles() map[board.Cell]lipgloss.Style {
	th := m.theme
	return map[board.Cell]lipgloss.Style{
		board.CellFree:    lipgloss.NewStyle().Foreground(th.Free),
		board.CellWall:    lipgloss.NewStyle().Foreground(th.Wall),
		board.CellStart:   lipgloss.NewStyle().Foreground(th.Start),
		board.CellEnd:     lipgloss.NewStyle().Foreground(th.End),
		board.CellVisited: lipgloss.NewStyle().Foreground(th.Visited),
		board.CellPath:    lipgloss.NewStyle().Foreground(th.Path),
	}
}

// renderBoard draws every cell as two full blocks so cells come out square.
func (m Model) renderBoard(snap board.Snapshot) string {
	g := snap.Grid
	styles := m.cellStyles()
	var b strings.Builder
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Width(); col++ {
			c := snap.At(g.Index(row, col))
			b.WriteString(styles[c].Render("██"))
		}
		if row < g.Rows()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) statusLine(snap board.Snapshot) string {
	th := m.theme
	text := snap.Text()
	switch snap.Status {
	case playback.StatusSearching:
		if m.solving {
			text = AnimatedSpinner(m.frame) + " " + text
		}
		return lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Render(text)
	case playback.StatusPaused:
		return lipgloss.NewStyle().Bold(true).Foreground(th.Warning).Render(text)
	case playback.StatusFound:
		return lipgloss.NewStyle().Bold(true).Foreground(th.Success).Render(text)
	case playback.StatusUnreachable, playback.StatusError:
		return lipgloss.NewStyle().Bold(true).Foreground(th.Error).Render(text)
	}
	return valueStyle.Render(text)
}

// View renders the board and the side panel.
func (m Model) View() string {
	snap := m.ses.Board().Snapshot()
	state := m.ses.Sequencer().State()

	var s strings.Builder
	title := "MAZERUN"
	if m.replay != nil {
		title = "REPLAY " + shortID(m.replay.ID)
	}
	s.WriteString(GradientText(title, m.theme.Accent, m.theme.Path) + "\n\n")
	s.WriteString(m.statusLine(snap) + "\n\n")

	s.WriteString(labelStyle.Render("Algorithm") + activeStyle.Render(m.alg.Label()) + "\n")
	s.WriteString(labelStyle.Render("Seed") + valueStyle.Render(fmt.Sprintf("%d", m.ses.Seed())) + "\n")
	g := snap.Grid
	s.WriteString(labelStyle.Render("Maze") + valueStyle.Render(fmt.Sprintf("%dx%d, %d walls", g.Width(), g.Rows(), g.WallCount())) + "\n")
	s.WriteString(labelStyle.Render("Visited") + valueStyle.Render(fmt.Sprintf("%d", snap.VisitedCount)) + "\n")
	s.WriteString(labelStyle.Render("Path") + valueStyle.Render(fmt.Sprintf("%d", snap.PathCount)) + "\n")
	if state.Total > 0 {
		s.WriteString(labelStyle.Render("Progress") + ProgressBar(float64(state.Cursor)/float64(state.Total), 20) + "\n")
	}

	s.WriteString("\n" + Separator(30) + "\n")
	values := m.tracker.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", name)) + MetricValue.Render(fmt.Sprintf("%.3f", values[name])) + "\n")
	}

	if shown := m.shownProfile(state); len(shown) > 1 {
		chart := asciigraph.Plot(shown, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("distance from start"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nS:Simulate SP:Pause Q:Quit\nN:New maze A:Algorithm\nT:Theme W:Save ?:Help"))

	boardView := boardStyle.Render(m.renderBoard(snap))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, boardView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

// shownProfile is the part of the distance profile already played.
func (m Model) shownProfile(state playback.State) []float64 {
	n := state.Cursor
	if state.Phase == playback.PhaseDone || n > len(m.profile) {
		n = len(m.profile)
	}
	return m.profile[:n]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Enter/S  - Simulate (or replay)     ║
║  Space    - Pause/Continue playback  ║
║  N        - New maze                 ║
║  A        - Cycle algorithm          ║
║  T        - Cycle themes             ║
║  W        - Save last run            ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
