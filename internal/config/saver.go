package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// testConfigPath redirects ConfigPath in tests.
var testConfigPath string

// SetTestConfigPath points ConfigPath at path. Test use only.
func SetTestConfigPath(path string) { testConfigPath = path }

// ResetTestConfigPath restores the default ConfigPath.
func ResetTestConfigPath() { testConfigPath = "" }

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	DisplayMode string         `json:"displayMode"`
	FilePath    string         `json:"filePath"`
	Filetype    string         `json:"filetype"`
	Floating    FloatingConfig `json:"floating"`
	Split       SplitConfig    `json:"split"`
	AutoSave    saveAutoSave   `json:"autoSave"`
	Keymaps     KeymapConfig   `json:"keymaps"`
	WatchFile   bool           `json:"watchFile"`
}

type saveAutoSave struct {
	OnHide      bool   `json:"onHide"`
	OnFocusLost bool   `json:"onFocusLost"`
	OnExit      bool   `json:"onExit"`
	Debounce    string `json:"debounce"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		DisplayMode: cfg.DisplayMode.String(),
		FilePath:    cfg.FilePath,
		Filetype:    cfg.Filetype,
		Floating:    cfg.Floating,
		Split:       cfg.Split,
		AutoSave: saveAutoSave{
			OnHide:      cfg.AutoSave.OnHide,
			OnFocusLost: cfg.AutoSave.OnFocusLost,
			OnExit:      cfg.AutoSave.OnExit,
			Debounce:    cfg.AutoSave.Debounce.String(),
		},
		Keymaps:   cfg.Keymaps,
		WatchFile: cfg.WatchFile,
	}
}

// Save writes cfg to path (ConfigPath when empty). Keys in an existing file
// that Save does not manage are preserved.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if existing, err := os.ReadFile(path); err == nil {
		// Unparseable files are overwritten.
		_ = json.Unmarshal(existing, &merged)
	}

	managed, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
