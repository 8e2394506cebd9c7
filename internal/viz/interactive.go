package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mazerun/internal/config"
	"github.com/san-kum/mazerun/internal/solver"
)

var presetInfo = map[string]string{
	"classic": "20x20, a quarter walls", "sparse": "20x20, few walls", "dense": "20x20, often sealed",
	"open": "20x20, no walls", "corner": "corner to corner", "small": "10x10 warm-up",
	"large": "40x40, slow playback", "wide": "40x15 strip",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var paramNames = []string{"algorithm", "wall_probability", "seed"}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	env           Env
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           string
	width, height int
	liveModel     Model
}

// NewInteractiveApp starts on the preset menu. env.Config supplies every
// setting a preset does not.
func NewInteractiveApp(env Env) *model {
	env = env.withDefaults()
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		env:     env,
		width:   80, height: 24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
		return m, nil
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		if msg.String() == "esc" && !m.liveModel.solving {
			m.liveModel.Session().Sequencer().Reset()
			m.state = stateConfig
			return m, tea.ClearScreen
		}
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, ""
		m.cfg = m.presetConfig(m.selected)
	}
	return m, nil
}

// presetConfig keeps everything from the base config but the grid.
func (m model) presetConfig(name string) *config.Config {
	cfg := *m.env.Config
	if p, ok := config.Presets[name]; ok {
		seed := cfg.Grid.Seed
		cfg.Grid = p
		cfg.Grid.Seed = seed
	}
	return &cfg
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			m.setParam(paramNames[m.paramCursor], m.editBuf)
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || (c >= 'a' && c <= 'z') || c == '*' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, m.paramValue(paramNames[m.paramCursor])
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.adjustParam(paramNames[m.paramCursor], -1)
	case "right", "l":
		m.adjustParam(paramNames[m.paramCursor], 1)
	}
	return m, nil
}

func (m model) paramValue(name string) string {
	switch name {
	case "algorithm":
		return m.cfg.Solver.Algorithm
	case "wall_probability":
		return strconv.FormatFloat(m.cfg.Grid.WallProbability, 'f', 2, 64)
	case "seed":
		return strconv.FormatInt(m.cfg.Grid.Seed, 10)
	}
	return ""
}

func (m *model) setParam(name, val string) {
	switch name {
	case "algorithm":
		if alg, err := solver.ParseAlgorithm(val); err == nil {
			m.cfg.Solver.Algorithm = string(alg)
		}
	case "wall_probability":
		if p, err := strconv.ParseFloat(val, 64); err == nil {
			m.cfg.Grid.WallProbability = p
		}
	case "seed":
		if s, err := strconv.ParseInt(val, 10, 64); err == nil {
			m.cfg.Grid.Seed = s
		}
	}
}

func (m *model) adjustParam(name string, dir int) {
	switch name {
	case "algorithm":
		alg, err := m.cfg.Algorithm()
		if err != nil {
			alg = solver.BFS
		}
		all := solver.Algorithms()
		for i, a := range all {
			if a == alg {
				m.cfg.Solver.Algorithm = string(all[(i+dir+len(all))%len(all)])
				break
			}
		}
	case "wall_probability":
		p := m.cfg.Grid.WallProbability + 0.05*float64(dir)
		if p < 0 {
			p = 0
		}
		if p > 0.95 {
			p = 0.95
		}
		m.cfg.Grid.WallProbability = p
	case "seed":
		m.cfg.Grid.Seed += int64(dir)
	}
}

func (m *model) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err.Error()
		return nil
	}
	env := m.env
	env.Config = m.cfg
	live, err := New(env)
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.liveModel, m.state, m.err = live, stateSim, ""
	return tea.Batch(tea.ClearScreen, m.liveModel.Init())
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuArrow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+"  "))
	}
	return strings.TrimRight(b.String(), " ")
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("MAZERUN") + "\n    " + menuSub.Render("maze search playback") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if len(desc) > 24 {
			desc = desc[:21] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuArrow.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", name)), menuDimmer.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	g := m.cfg.Grid
	sub := fmt.Sprintf("%d cells, %d wide, %d → %d", g.Size, g.Width, g.Start, g.End)
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(sub) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%8s", m.paramValue(name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuArrow.Render("▸"), menuActive.Render(fmt.Sprintf("%-16s", name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-16s", name)), menuDimmer.Render(valStr)))
		}
	}
	if m.err != "" {
		b.WriteString("\n    " + StatusFailed.Render(m.err) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive runs the preset menu and the board until the user quits.
func RunInteractive(env Env) error {
	_, err := tea.NewProgram(NewInteractiveApp(env), tea.WithAltScreen()).Run()
	return err
}

// RunBoard runs a single board view, e.g. a replay.
func RunBoard(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
