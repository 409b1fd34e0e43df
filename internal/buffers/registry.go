// Package buffers maps note paths to host buffers and keeps that mapping
// honest: a buffer whose name drifted or whose file vanished (with nothing
// unsaved) is evicted and recreated from disk or the onboarding template.
package buffers

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/notestore"
	"github.com/marcus/scratchpad/internal/state"
)

// Registry owns the path → buffer mapping stored in the session.
type Registry struct {
	host    host.Host
	store   *notestore.Store
	session *state.Session
	cfg     *config.Config
	logger  *slog.Logger

	// OnCreate runs for every freshly created buffer after its content is
	// loaded and before it is registered. It installs key bindings and
	// per-buffer event hooks.
	OnCreate func(buf host.BufferID, path string)

	// BeforeEvict runs before a stale buffer is deleted, while windows
	// showing it are still open.
	BeforeEvict func(buf host.BufferID, path string)
}

// New creates a Registry.
func New(h host.Host, store *notestore.Store, session *state.Session, cfg *config.Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		host:    h,
		store:   store,
		session: session,
		cfg:     cfg,
		logger:  logger,
	}
}

// IsValidAndSynced reports whether buf is a live buffer still backing path.
// A buffer whose file was deleted stays usable while it holds unsaved edits.
func (r *Registry) IsValidAndSynced(buf host.BufferID, path string) bool {
	if buf == 0 || !r.host.BufferValid(buf) {
		return false
	}
	if r.host.BufferName(buf) != path {
		return false
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !r.host.Modified(buf) {
		return false
	}
	return true
}

// EvictStale destroys the buffer registered for path, discarding its
// content, and forgets the mapping.
func (r *Registry) EvictStale(path string) {
	buf, ok := r.session.Buffer(path)
	if !ok {
		return
	}
	r.session.UnbindBuffer(path)
	r.store.Forget(path)
	if r.host.BufferValid(buf) {
		if r.BeforeEvict != nil {
			r.BeforeEvict(buf, path)
		}
		if err := r.host.DeleteBuffer(buf); err != nil {
			r.logger.Warn("evict buffer", "path", path, "buffer", buf, "error", err)
		}
	}
	r.logger.Debug("evicted stale buffer", "path", path, "buffer", buf)
}

// Lookup returns the registered buffer for path if it is valid and synced.
func (r *Registry) Lookup(path string) (host.BufferID, bool) {
	buf, ok := r.session.Buffer(path)
	if !ok || !r.IsValidAndSynced(buf, path) {
		return 0, false
	}
	return buf, true
}

// GetOrCreate returns the live buffer for path, creating it if needed.
func (r *Registry) GetOrCreate(path string) (host.BufferID, error) {
	if buf, ok := r.session.Buffer(path); ok {
		if r.IsValidAndSynced(buf, path) {
			return buf, nil
		}
		r.EvictStale(path)
	}

	lines, fromTemplate, err := r.store.Load(path)
	if err != nil {
		return 0, err
	}

	buf, err := r.host.CreateBuffer()
	if err != nil {
		return 0, fmt.Errorf("create buffer: %w", err)
	}

	if err := r.host.SetBufferName(buf, path); err != nil {
		r.host.Notify(host.LevelWarn, fmt.Sprintf("scratchpad: could not name buffer %s: %v", path, err))
	}
	if err := r.host.SetFiletype(buf, r.cfg.Filetype); err != nil {
		r.logger.Debug("set filetype", "buffer", buf, "error", err)
	}

	// The initial load must not become an undoable edit.
	_ = r.host.SetUndoEnabled(buf, false)
	if err := r.host.SetLines(buf, lines); err != nil {
		_ = r.host.DeleteBuffer(buf)
		return 0, fmt.Errorf("load buffer: %w", err)
	}
	// A brand-new note is save-eligible; an existing one is not until edited.
	_ = r.host.SetModified(buf, fromTemplate)
	r.host.Defer(func() {
		if r.host.BufferValid(buf) {
			_ = r.host.SetUndoEnabled(buf, true)
		}
	})

	if r.OnCreate != nil {
		r.OnCreate(buf, path)
	}
	r.session.BindBuffer(path, buf)

	r.logger.Debug("created buffer", "path", path, "buffer", buf, "template", fromTemplate)
	return buf, nil
}

// Reload replaces the content of the buffer for path with the file on disk.
// Buffers with unsaved edits are left alone and reported as not reloaded.
func (r *Registry) Reload(path string) (bool, error) {
	buf, ok := r.session.Buffer(path)
	if !ok || !r.host.BufferValid(buf) {
		return false, nil
	}
	if r.host.Modified(buf) {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	lines, _, err := r.store.Load(path)
	if err != nil {
		return false, err
	}
	if err := r.host.SetLines(buf, lines); err != nil {
		return false, err
	}
	_ = r.host.SetModified(buf, false)
	return true, nil
}
