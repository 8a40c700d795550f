package formatter

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Theme maps capture base names ("punctuation" for "punctuation.special") to
// terminal styles.
type Theme map[string]*color.Color

var namedStyles = map[string]*color.Color{
	"black":   color.New(color.FgBlack),
	"red":     color.New(color.FgRed),
	"green":   color.New(color.FgGreen),
	"yellow":  color.New(color.FgYellow),
	"blue":    color.New(color.FgBlue),
	"magenta": color.New(color.FgMagenta),
	"cyan":    color.New(color.FgCyan),
	"white":   color.New(color.FgWhite),
	"gray":    color.New(color.FgHiBlack),
}

// NewTheme builds a Theme from the config-level color map. Values are either
// a named color or "#rrggbb"; unknown values fall back to no styling.
func NewTheme(colors map[string]string) Theme {
	theme := make(Theme, len(colors))
	for capture, value := range colors {
		if style := parseStyle(value); style != nil {
			theme[capture] = style
		}
	}
	return theme
}

func parseStyle(value string) *color.Color {
	value = strings.ToLower(strings.TrimSpace(value))
	if style, ok := namedStyles[value]; ok {
		return style
	}
	if strings.HasPrefix(value, "#") && len(value) == 7 {
		r, errR := strconv.ParseUint(value[1:3], 16, 8)
		g, errG := strconv.ParseUint(value[3:5], 16, 8)
		b, errB := strconv.ParseUint(value[5:7], 16, 8)
		if errR == nil && errG == nil && errB == nil {
			return color.RGB(int(r), int(g), int(b))
		}
	}
	return nil
}

// Style looks up the style for a full capture name. The theme is keyed on
// the first dot-separated segment, so "constant.numeric" styles as
// "constant".
func (t Theme) Style(capture string) *color.Color {
	base := capture
	if i := strings.IndexByte(capture, '.'); i >= 0 {
		base = capture[:i]
	}
	return t[base]
}
