// Package settings stores pen preferences: default widths and the list of
// saved pen presets.
package settings

import (
	"strconv"
	"strings"

	"scribe/ink"
)

// Preset is a saved pen: color and stroke width.
type Preset struct {
	Color uint32  `yaml:"color"`
	Width float64 `yaml:"width"`
}

// ParsePresets reads the "<argb>:<width>;<argb>:<width>;..." form.
// Entries that do not parse are dropped.
func ParsePresets(s string) []Preset {
	var out []Preset
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) != 2 {
			continue
		}
		color, err := ink.ParseColor(parts[0])
		if err != nil {
			continue
		}
		width, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || width <= 0 {
			continue
		}
		out = append(out, Preset{Color: color, Width: width})
	}
	return out
}

func FormatPresets(presets []Preset) string {
	parts := make([]string, len(presets))
	for i, p := range presets {
		parts[i] = strconv.FormatInt(int64(int32(p.Color)), 10) + ":" + strconv.FormatFloat(p.Width, 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}
