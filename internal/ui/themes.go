// Package ui holds the terminal color themes shared by the CLI, the
// comparison table and the error handler.
package ui

import (
	"sync"

	"github.com/fatih/color"
)

// Theme maps output roles to ANSI escape codes.
type Theme struct {
	Name string
	// Primary highlights algorithm names and headers.
	Primary   string
	Secondary string
	Success   string
	Warning   string
	// Error marks failures and vulnerable keys.
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme suits light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme emits no escape codes at all.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// Themes lists the selectable theme names.
func Themes() []string { return []string{DarkTheme.Name, LightTheme.Name, NoColorTheme.Name} }

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name. It reports false, leaving the active
// theme unchanged, for an unknown name.
func SetTheme(name string) bool {
	var t Theme
	switch name {
	case DarkTheme.Name:
		t = DarkTheme
	case LightTheme.Name:
		t = LightTheme
	case NoColorTheme.Name:
		t = NoColorTheme
	default:
		return false
	}
	SetCurrentTheme(t)
	return true
}

// InitTheme picks the startup theme. Colors are disabled when noColor is
// set, or when fatih/color has decided the output cannot render them
// (NO_COLOR is set, TERM is dumb or stdout is not a terminal).
func InitTheme(noColor bool) {
	if noColor || color.NoColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
