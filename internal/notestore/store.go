// Package notestore moves scratchpad note content between disk and host
// buffers. A note is a flat UTF-8 file whose lines are joined by "\n".
package notestore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/host"
)

const onboarding = `# Scratchpad

Quick notes that stay out of your way.

## Quick start
{{- if .Quit}}
- Press {{.Quit}} to hide this window
{{- end}}
{{- if .Save}}
- Press {{.Save}} to save now
{{- end}}
{{- if .Yank}}
- Press {{.Yank}} to copy the whole note
{{- end}}
- Changes save automatically when the window is hidden or loses focus

## Todo
- [ ]

## Ideas
-
`

var onboardingTmpl = template.Must(template.New("onboarding").Parse(onboarding))

// Store loads and saves notes for host buffers.
type Store struct {
	buffers host.Buffers
	cfg     *config.Config

	// baseline is the digest of the content last read from or written to
	// each path.
	baseline map[string]uint64
}

// New creates a Store.
func New(buffers host.Buffers, cfg *config.Config) *Store {
	return &Store{
		buffers:  buffers,
		cfg:      cfg,
		baseline: make(map[string]uint64),
	}
}

// ResolvePath expands override (or the configured path when override is
// empty) into an absolute path.
func (s *Store) ResolvePath(override string) (string, error) {
	p := override
	if p == "" {
		p = s.cfg.FilePath
	}
	if p == "" {
		return "", fmt.Errorf("no note path configured")
	}
	abs, err := filepath.Abs(config.ExpandPath(p))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

// Load reads the note at path. A missing file yields the onboarding
// template with fromTemplate set; an empty file yields one empty line.
func (s *Store) Load(path string) (lines []string, fromTemplate bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.Template(), true, nil
		}
		return nil, false, fmt.Errorf("read note: %w", err)
	}
	s.baseline[path] = xxhash.Sum64(data)
	return Split(string(data)), false, nil
}

// Template returns the onboarding content for a note that does not exist yet.
func (s *Store) Template() []string {
	var buf bytes.Buffer
	// The template is static and its data is plain strings.
	_ = onboardingTmpl.Execute(&buf, s.cfg.Keymaps)
	return Split(strings.TrimSuffix(buf.String(), "\n"))
}

// Save writes buf to path. An unmodified buffer is not written. The modified
// flag is cleared only once the whole file has been written.
func (s *Store) Save(path string, buf host.BufferID) error {
	if !s.buffers.BufferValid(buf) {
		return host.ErrInvalidBuffer
	}
	if !s.buffers.Modified(buf) {
		return nil
	}

	lines, err := s.buffers.Lines(buf)
	if err != nil {
		return fmt.Errorf("read buffer: %w", err)
	}
	content := Join(lines)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open for write: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	s.baseline[path] = xxhash.Sum64String(content)
	return s.buffers.SetModified(buf, false)
}

// ChangedOnDisk reports whether the file at path differs from the content
// last loaded or saved through this store. A missing file counts as changed
// only if the store had seen it.
func (s *Store) ChangedOnDisk(path string) (bool, error) {
	want, seen := s.baseline[path]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return seen, nil
		}
		return false, err
	}
	return !seen || xxhash.Sum64(data) != want, nil
}

// Forget drops what the store knows about path.
func (s *Store) Forget(path string) {
	delete(s.baseline, path)
}

// Join serializes note lines.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// Split parses note content. It always returns at least one line.
func Split(content string) []string {
	return strings.Split(content, "\n")
}
