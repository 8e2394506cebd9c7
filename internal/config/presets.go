package config

import "sort"

const DefaultPreset = "classic"

// Presets are grid layouts; everything else comes from DefaultConfig.
var Presets = map[string]GridConfig{
	"classic": {Size: 400, Width: 20, Start: 20, End: 379, WallProbability: 0.25},
	"sparse":  {Size: 400, Width: 20, Start: 20, End: 379, WallProbability: 0.10},
	"dense":   {Size: 400, Width: 20, Start: 20, End: 379, WallProbability: 0.40},
	"open":    {Size: 400, Width: 20, Start: 20, End: 379, WallProbability: 0},
	"corner":  {Size: 400, Width: 20, Start: 0, End: 399, WallProbability: 0.25},
	"small":   {Size: 100, Width: 10, Start: 10, End: 89, WallProbability: 0.25},
	"large":   {Size: 1600, Width: 40, Start: 40, End: 1559, WallProbability: 0.25},
	"wide":    {Size: 600, Width: 40, Start: 40, End: 559, WallProbability: 0.25},
}

// GetPreset returns a fresh config using the named grid, or nil.
func GetPreset(name string) *Config {
	grid, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Grid = grid
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
