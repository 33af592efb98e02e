package ui

import (
	_ "embed"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Style names used by the renderers
const (
	StyleHeader  = "Header"
	StylePackID  = "PackID"
	StyleVersion = "Version"
	StyleClosure = "Closure"
	StyleSuccess = "Success"
	StyleError   = "Error"
	StyleWarning = "Warning"
	StyleMuted   = "Muted"
	StylePath    = "Path"
)

//go:embed styles.yaml
var embeddedStyles []byte

// ColorDef is an adaptive color in styles.yaml
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style in styles.yaml
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
}

// StylesConfig is the styles.yaml document
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Styles maps style names to lipgloss styles
type Styles map[string]lipgloss.Style

// Get returns the named style, or an unstyled one
func (s Styles) Get(name string) lipgloss.Style {
	if st, ok := s[name]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// DefaultStyles returns the embedded styles
func DefaultStyles() Styles {
	styles, err := ParseStyles(embeddedStyles)
	if err != nil {
		return Styles{}
	}
	return styles
}

// ParseStyles builds styles from a styles.yaml document
func ParseStyles(data []byte) (Styles, error) {
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to parse styles")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	styles := make(Styles, len(cfg.Styles))
	for name, def := range cfg.Styles {
		style := lipgloss.NewStyle().
			Bold(def.Bold).
			Italic(def.Italic)
		if color, ok := colors[def.Foreground]; ok {
			style = style.Foreground(color)
		}
		if def.MarginBottom > 0 {
			style = style.MarginBottom(def.MarginBottom)
		}
		styles[name] = style
	}
	return styles, nil
}
