package render

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette assigns colours to the roles the chat view draws.
type Palette struct {
	Name  string
	Label string

	Border  lipgloss.Color
	Surface lipgloss.Color

	// Speaker colours
	User      lipgloss.Color
	Assistant lipgloss.Color
	Error     lipgloss.Color

	Notice  lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultPaletteName is used when the configured name is unknown.
const DefaultPaletteName = "tokyonight"

var palettes = map[string]Palette{
	"tokyonight": {
		Name:      "tokyonight",
		Label:     "Tokyo Night",
		Border:    "#414868",
		Surface:   "#24283b",
		User:      "#7aa2f7",
		Assistant: "#9ece6a",
		Error:     "#f7768e",
		Notice:    "#e0af68",
		Text:      "#c0caf5",
		TextDim:   "#565f89",
	},
	"catppuccin": {
		Name:      "catppuccin",
		Label:     "Catppuccin Mocha",
		Border:    "#45475a",
		Surface:   "#313244",
		User:      "#89b4fa",
		Assistant: "#a6e3a1",
		Error:     "#f38ba8",
		Notice:    "#f9e2af",
		Text:      "#cdd6f4",
		TextDim:   "#6c7086",
	},
	"nord": {
		Name:      "nord",
		Label:     "Nord",
		Border:    "#4c566a",
		Surface:   "#3b4252",
		User:      "#88c0d0",
		Assistant: "#a3be8c",
		Error:     "#bf616a",
		Notice:    "#ebcb8b",
		Text:      "#eceff4",
		TextDim:   "#616e88",
	},
	"mono": {
		Name:      "mono",
		Label:     "Monochrome",
		Border:    "#5f5f5f",
		Surface:   "#262626",
		User:      "#ffffff",
		Assistant: "#d0d0d0",
		Error:     "#ff5f5f",
		Notice:    "#bcbcbc",
		Text:      "#e4e4e4",
		TextDim:   "#808080",
	},
}

var (
	currentMu sync.RWMutex
	current   = palettes[DefaultPaletteName]
)

// LookupPalette returns the named palette and whether it exists.
func LookupPalette(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// PaletteNames lists the registered palettes in alphabetical order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UsePalette makes the named palette current. Unknown names select the default
// and report false.
func UsePalette(name string) bool {
	p, ok := palettes[name]
	if !ok {
		p = palettes[DefaultPaletteName]
	}
	currentMu.Lock()
	current = p
	currentMu.Unlock()
	return ok
}

// CurrentPalette returns the palette in use.
func CurrentPalette() Palette {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}
