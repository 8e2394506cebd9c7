package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the board and the side panel
type Theme struct {
	Name    string
	Free    lipgloss.Color
	Wall    lipgloss.Color
	Start   lipgloss.Color
	End     lipgloss.Color
	Visited lipgloss.Color
	Path    lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Available themes
var (
	ThemeClassic = Theme{
		Name:    "classic",
		Free:    lipgloss.Color("#3a3a3a"),
		Wall:    lipgloss.Color("#d0d0d0"),
		Start:   lipgloss.Color("#2ecc71"),
		End:     lipgloss.Color("#e74c3c"),
		Visited: lipgloss.Color("#5dade2"),
		Path:    lipgloss.Color("#f1c40f"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Accent:  lipgloss.Color("#00ccff"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Free:    lipgloss.Color("#1a001a"),
		Wall:    lipgloss.Color("#ff00ff"), // Magenta
		Start:   lipgloss.Color("#00ff00"),
		End:     lipgloss.Color("#ff0000"),
		Visited: lipgloss.Color("#00ffff"), // Cyan
		Path:    lipgloss.Color("#ffff00"), // Yellow
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Accent:  lipgloss.Color("#ff00ff"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ff8800"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Free:    lipgloss.Color("#001100"),
		Wall:    lipgloss.Color("#00cc00"), // Green phosphor
		Start:   lipgloss.Color("#88ff88"),
		End:     lipgloss.Color("#ffff00"),
		Visited: lipgloss.Color("#005500"),
		Path:    lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Accent:  lipgloss.Color("#88ff88"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Free:    lipgloss.Color("#001a33"),
		Wall:    lipgloss.Color("#e0f0ff"),
		Start:   lipgloss.Color("#00ff88"),
		End:     lipgloss.Color("#ff4444"),
		Visited: lipgloss.Color("#0077be"), // Ocean blue
		Path:    lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Accent:  lipgloss.Color("#00a8cc"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Free:    lipgloss.Color("#2d1b2e"),
		Wall:    lipgloss.Color("#fff5f5"),
		Start:   lipgloss.Color("#5fd068"),
		End:     lipgloss.Color("#ff4757"),
		Visited: lipgloss.Color("#ff9ff3"),
		Path:    lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Accent:  lipgloss.Color("#ff6b6b"), // Coral
		Success: lipgloss.Color("#5fd068"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	// All available themes
	Themes = []Theme{
		ThemeClassic,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to classic
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme returns the theme after t in cycling order
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeClassic
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
