package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// DisplayMode selects how the scratchpad window is presented.
type DisplayMode int

const (
	Floating DisplayMode = iota
	HSplit
	VSplit
)

var displayModeNames = [...]string{
	Floating: "floating",
	HSplit:   "hsplit",
	VSplit:   "vsplit",
}

// String returns the config spelling of the mode.
func (m DisplayMode) String() string {
	if m < Floating || m > VSplit {
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
	return displayModeNames[m]
}

// Valid reports whether m is one of the three known modes.
func (m DisplayMode) Valid() bool {
	return m >= Floating && m <= VSplit
}

// IsSplit reports whether m is one of the split modes.
func (m DisplayMode) IsSplit() bool {
	return m == HSplit || m == VSplit
}

// ParseDisplayMode converts untrusted input into a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, bool) {
	for i, name := range displayModeNames {
		if s == name {
			return DisplayMode(i), true
		}
	}
	return Floating, false
}

// ValidateMode parses s, falling back to fallback when s is not a known mode.
// The returned warning is empty when s was valid.
func ValidateMode(s string, fallback DisplayMode) (DisplayMode, string) {
	if m, ok := ParseDisplayMode(s); ok {
		return m, ""
	}
	return fallback, fmt.Sprintf("invalid display mode %q, using %s (valid: floating, hsplit, vsplit)", s, fallback)
}

// MarshalJSON encodes the mode as its string name.
func (m DisplayMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode name. Unknown names are rejected; the loader
// reads modes as plain strings so it can fall back instead.
func (m *DisplayMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseDisplayMode(s)
	if !ok {
		return fmt.Errorf("unknown display mode %q", s)
	}
	*m = parsed
	return nil
}

const (
	MinWidth        = 20
	MinHeight       = 10
	MinVSplitWidth  = 20
	MinHSplitHeight = 10

	defaultDebounce = 50 * time.Millisecond
)

// Config is the root configuration structure.
type Config struct {
	DisplayMode DisplayMode    `json:"displayMode"`
	FilePath    string         `json:"filePath"`
	Filetype    string         `json:"filetype"`
	Floating    FloatingConfig `json:"floating"`
	Split       SplitConfig    `json:"split"`
	AutoSave    AutoSaveConfig `json:"autoSave"`
	Keymaps     KeymapConfig   `json:"keymaps"`
	WatchFile   bool           `json:"watchFile"`
}

// FloatingConfig holds the floating overlay defaults and decoration.
type FloatingConfig struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Border   string `json:"border"`   // "rounded", "single", "double", "thick", "none"
	Title    string `json:"title"`    // empty disables the title
	TitlePos string `json:"titlePos"` // "left", "center", "right"
}

// SplitConfig holds the default split sizes.
type SplitConfig struct {
	HSplitHeight int `json:"hsplitHeight"` // rows
	VSplitWidth  int `json:"vsplitWidth"`  // columns
}

// AutoSaveConfig toggles the automatic save triggers.
type AutoSaveConfig struct {
	OnHide      bool          `json:"onHide"`
	OnFocusLost bool          `json:"onFocusLost"`
	OnExit      bool          `json:"onExit"`
	Debounce    time.Duration `json:"debounce"`
}

// KeymapConfig holds the keys bound inside the scratchpad buffer.
// An empty key leaves the action unbound.
type KeymapConfig struct {
	Quit string `json:"quit"`
	Save string `json:"save"`
	Yank string `json:"yank"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DisplayMode: Floating,
		FilePath:    "~/.local/share/scratchpad/scratchpad.md",
		Filetype:    "markdown",
		Floating: FloatingConfig{
			Width:    80,
			Height:   24,
			Border:   "rounded",
			Title:    " Scratchpad ",
			TitlePos: "center",
		},
		Split: SplitConfig{
			HSplitHeight: 15,
			VSplitWidth:  60,
		},
		AutoSave: AutoSaveConfig{
			OnHide:      true,
			OnFocusLost: true,
			OnExit:      true,
			Debounce:    defaultDebounce,
		},
		Keymaps: KeymapConfig{
			Quit: "esc",
			Save: "ctrl+s",
			Yank: "ctrl+y",
		},
		WatchFile: true,
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Normalize clamps numeric fields to their minimums and fixes values that
// cannot be used as-is. It never fails; each correction is returned as a
// human-readable warning.
func (c *Config) Normalize(fallback DisplayMode) []string {
	var warnings []string

	if !c.DisplayMode.Valid() {
		warnings = append(warnings, fmt.Sprintf("invalid display mode %s, using %s", c.DisplayMode, fallback))
		c.DisplayMode = fallback
	}
	c.Floating.Width = clampMin(c.Floating.Width, MinWidth)
	c.Floating.Height = clampMin(c.Floating.Height, MinHeight)
	c.Split.VSplitWidth = clampMin(c.Split.VSplitWidth, MinVSplitWidth)
	c.Split.HSplitHeight = clampMin(c.Split.HSplitHeight, MinHSplitHeight)

	switch c.Floating.Border {
	case "rounded", "single", "double", "thick", "none":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown border %q, using rounded", c.Floating.Border))
		c.Floating.Border = "rounded"
	}
	switch c.Floating.TitlePos {
	case "left", "center", "right":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown title position %q, using center", c.Floating.TitlePos))
		c.Floating.TitlePos = "center"
	}
	if c.AutoSave.Debounce < 0 {
		warnings = append(warnings, fmt.Sprintf("negative debounce %s, using %s", c.AutoSave.Debounce, defaultDebounce))
		c.AutoSave.Debounce = defaultDebounce
	}
	if c.Filetype == "" {
		c.Filetype = "markdown"
	}
	return warnings
}

func clampMin(v, minimum int) int {
	if v < minimum {
		return minimum
	}
	return v
}
