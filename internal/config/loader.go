package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/scratchpad"
	configFile = "config.json"
)

// Overrides is the user-supplied, partially filled configuration. Nil
// fields keep the value they are merged over.
type Overrides struct {
	DisplayMode *string            `json:"displayMode"`
	FilePath    *string            `json:"filePath"`
	Filetype    *string            `json:"filetype"`
	Floating    *FloatingOverrides `json:"floating"`
	Split       *SplitOverrides    `json:"split"`
	AutoSave    *AutoSaveOverrides `json:"autoSave"`
	Keymaps     *KeymapOverrides   `json:"keymaps"`
	WatchFile   *bool              `json:"watchFile"`
}

type FloatingOverrides struct {
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
	Border   *string `json:"border"`
	Title    *string `json:"title"`
	TitlePos *string `json:"titlePos"`
}

type SplitOverrides struct {
	HSplitHeight *int `json:"hsplitHeight"`
	VSplitWidth  *int `json:"vsplitWidth"`
}

type AutoSaveOverrides struct {
	OnHide      *bool  `json:"onHide"`
	OnFocusLost *bool  `json:"onFocusLost"`
	OnExit      *bool  `json:"onExit"`
	Debounce    string `json:"debounce"`
}

type KeymapOverrides struct {
	Quit *string `json:"quit"`
	Save *string `json:"save"`
	Yank *string `json:"yank"`
}

// Resolve merges o over base (user keys win) and normalizes the result.
// An invalid display mode falls back to base's mode. base is not modified.
func Resolve(base *Config, o *Overrides) (*Config, []string) {
	cfg := base.Clone()
	var warnings []string

	if o != nil {
		warnings = mergeConfig(cfg, base.DisplayMode, o)
	}

	warnings = append(warnings, cfg.Normalize(base.DisplayMode)...)
	return cfg, warnings
}

// mergeConfig merges override values into cfg, returning a warning for each
// value it had to reject.
func mergeConfig(cfg *Config, fallback DisplayMode, o *Overrides) []string {
	var warnings []string

	if o.DisplayMode != nil {
		var w string
		if cfg.DisplayMode, w = ValidateMode(*o.DisplayMode, fallback); w != "" {
			warnings = append(warnings, w)
		}
	}
	if o.FilePath != nil && *o.FilePath != "" {
		cfg.FilePath = *o.FilePath
	}
	if o.Filetype != nil {
		cfg.Filetype = *o.Filetype
	}
	if o.WatchFile != nil {
		cfg.WatchFile = *o.WatchFile
	}

	// Floating
	if f := o.Floating; f != nil {
		if f.Width != nil {
			cfg.Floating.Width = *f.Width
		}
		if f.Height != nil {
			cfg.Floating.Height = *f.Height
		}
		if f.Border != nil {
			cfg.Floating.Border = *f.Border
		}
		if f.Title != nil {
			cfg.Floating.Title = *f.Title
		}
		if f.TitlePos != nil {
			cfg.Floating.TitlePos = *f.TitlePos
		}
	}

	// Split
	if s := o.Split; s != nil {
		if s.HSplitHeight != nil {
			cfg.Split.HSplitHeight = *s.HSplitHeight
		}
		if s.VSplitWidth != nil {
			cfg.Split.VSplitWidth = *s.VSplitWidth
		}
	}

	// Auto-save
	if a := o.AutoSave; a != nil {
		if a.OnHide != nil {
			cfg.AutoSave.OnHide = *a.OnHide
		}
		if a.OnFocusLost != nil {
			cfg.AutoSave.OnFocusLost = *a.OnFocusLost
		}
		if a.OnExit != nil {
			cfg.AutoSave.OnExit = *a.OnExit
		}
		if a.Debounce != "" {
			if d, err := time.ParseDuration(a.Debounce); err == nil {
				cfg.AutoSave.Debounce = d
			} else {
				warnings = append(warnings, fmt.Sprintf("invalid debounce %q, using %s", a.Debounce, cfg.AutoSave.Debounce))
			}
		}
	}

	// Keymaps
	if k := o.Keymaps; k != nil {
		if k.Quit != nil {
			cfg.Keymaps.Quit = *k.Quit
		}
		if k.Save != nil {
			cfg.Keymaps.Save = *k.Save
		}
		if k.Yank != nil {
			cfg.Keymaps.Yank = *k.Yank
		}
	}

	return warnings
}

// ReadOverrides reads the user overrides from path.
// A missing file yields empty overrides.
func ReadOverrides(path string) (*Overrides, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overrides{}, nil
		}
		return nil, err
	}

	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/scratchpad/config.json
func LoadFrom(path string) (*Config, error) {
	o, err := ReadOverrides(path)
	if err != nil {
		return nil, err
	}

	cfg, warnings := Resolve(Default(), o)
	for _, w := range warnings {
		slog.Warn("config", "warning", w)
	}
	return cfg, nil
}

// ExpandPath expands ~ to home directory and $VAR references.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}
