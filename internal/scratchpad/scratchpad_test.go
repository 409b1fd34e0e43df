package scratchpad

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/event"
	"github.com/marcus/scratchpad/internal/host"
	"github.com/marcus/scratchpad/internal/host/hosttest"
	"github.com/marcus/scratchpad/internal/notestore"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	pad     *Scratchpad
	host    *hosttest.Host
	path    string
	copied  []string
	copyErr error
}

func newFixture(t *testing.T, o *config.Overrides) *fixture {
	t.Helper()
	f := &fixture{
		host: hosttest.New(),
		path: filepath.Join(t.TempDir(), "notes", "scratch.md"),
	}
	base := config.Default()
	base.FilePath = f.path
	f.pad = New(f.host, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithBase(base),
		WithClipboard(func(s string) error {
			if f.copyErr != nil {
				return f.copyErr
			}
			f.copied = append(f.copied, s)
			return nil
		}),
	)
	if !f.pad.Setup(o) {
		t.Fatal("Setup failed")
	}
	return f
}

func (f *fixture) window(t *testing.T) host.WindowID {
	t.Helper()
	win, ok := f.pad.session.Window()
	if !ok {
		t.Fatal("no window tracked")
	}
	return win
}

func (f *fixture) buffer(t *testing.T, path string) host.BufferID {
	t.Helper()
	buf, ok := f.pad.session.Buffer(path)
	if !ok {
		t.Fatalf("no buffer for %s", path)
	}
	return buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestOperationsRequireSetup(t *testing.T) {
	h := hosttest.New()
	pad := New(h, nil)

	ops := map[string]func() bool{
		"show":   func() bool { return pad.Show("", "") },
		"hide":   func() bool { return pad.Hide() },
		"toggle": func() bool { return pad.Toggle("", "") },
		"save":   func() bool { return pad.Save() },
		"edit":   func() bool { return pad.Edit("") },
	}
	for name, op := range ops {
		before := len(h.Notes)
		if op() {
			t.Errorf("%s succeeded before Setup", name)
		}
		notes := h.Notes[before:]
		if len(notes) != 1 || notes[0].Level != host.LevelError {
			t.Errorf("%s: notes = %+v, want one error", name, notes)
		}
	}

	if pad.Status().IsSetup {
		t.Error("status reports set up")
	}
	if len(h.Buffers) != 0 || len(h.Windows) != 0 {
		t.Error("nothing should be allocated before Setup")
	}
}

func TestSetup_InvalidModeWarns(t *testing.T) {
	f := newFixture(t, &config.Overrides{DisplayMode: ptr("diagonal")})

	warns := f.host.NotesAt(host.LevelWarn)
	if len(warns) != 1 {
		t.Fatalf("warnings = %+v, want 1", warns)
	}
	st := f.pad.Status()
	if !st.IsSetup || st.DisplayMode != config.Floating || st.DefaultMode != config.Floating {
		t.Errorf("status = %+v", st)
	}
}

func TestShow_CreatesFloatingWindow(t *testing.T) {
	f := newFixture(t, nil)

	if !f.pad.Show("", "") {
		t.Fatal("Show failed")
	}

	win := f.window(t)
	w := f.host.Windows[win]
	if w.Float == nil {
		t.Fatal("expected a floating window")
	}
	if w.Float.Width != 80 || w.Float.Height != 24 || w.Float.Col != 60 || w.Float.Row != 13 {
		t.Errorf("geometry = %+v", *w.Float)
	}
	if !w.Options.Wrap || !w.Options.CursorLine || w.Options.Number {
		t.Errorf("options = %+v", w.Options)
	}
	if f.host.Focused != win {
		t.Errorf("focused = %v, want %v", f.host.Focused, win)
	}

	buf := f.buffer(t, f.path)
	b := f.host.Buffers[buf]
	if b.Name != f.path || b.Filetype != "markdown" {
		t.Errorf("buffer name %q filetype %q", b.Name, b.Filetype)
	}
	if !b.Modified {
		t.Error("a new note should be save-eligible")
	}
	tmpl := notestore.New(f.host, f.pad.Config()).Template()
	if !slices.Equal(b.Lines, tmpl) {
		t.Errorf("lines = %q, want template", b.Lines)
	}
	if !slices.Equal(f.host.Watched, []string{f.path}) {
		t.Errorf("watched = %v", f.host.Watched)
	}

	types := f.host.EmittedTypes()
	if !slices.Equal(types[len(types)-2:], []event.Type{event.WinEnter, event.BufEnter}) {
		t.Errorf("emitted = %v, want focus events last", types)
	}

	st := f.pad.Status()
	if !st.WindowValid || !st.BufferValid || st.FilePath != f.path {
		t.Errorf("status = %+v", st)
	}
}

func TestShow_UndoReenabledAfterLoad(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)

	if got := f.host.Buffers[buf].UndoToggles; !slices.Equal(got, []bool{false}) {
		t.Fatalf("undo toggles before flush = %v", got)
	}
	f.host.Flush()
	if got := f.host.Buffers[buf].UndoToggles; !slices.Equal(got, []bool{false, true}) {
		t.Errorf("undo toggles after flush = %v", got)
	}
}

func TestShow_ExistingFileIsNotModified(t *testing.T) {
	f := newFixture(t, nil)
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.path, []byte("one\ntwo"), 0644); err != nil {
		t.Fatal(err)
	}

	f.pad.Show("", "")
	b := f.host.Buffers[f.buffer(t, f.path)]
	if b.Modified {
		t.Error("existing note should load unmodified")
	}
	if !slices.Equal(b.Lines, []string{"one", "two"}) {
		t.Errorf("lines = %q", b.Lines)
	}
}

func TestShow_ReuseKeepsWindow(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("floating", "")
	win := f.window(t)

	// A live resize is not recorded by the fast path.
	f.host.Resize(win, host.Size{Width: 100, Height: 30})
	if !f.pad.Show("floating", f.path) {
		t.Fatal("second Show failed")
	}

	if got := f.window(t); got != win {
		t.Errorf("window = %v, want reused %v", got, win)
	}
	if len(f.host.Windows) != 1 {
		t.Errorf("%d windows open, want 1", len(f.host.Windows))
	}
	if sz := f.pad.Status().Sizes.Floating; sz.Width != 80 || sz.Height != 24 {
		t.Errorf("floating size = %+v, reuse must not remember size", sz)
	}
}

func TestShow_ModeSwitchRemembersAndRecreates(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("floating", "")
	old := f.window(t)
	f.host.Resize(old, host.Size{Width: 100, Height: 30})

	if !f.pad.Show("vsplit", "") {
		t.Fatal("Show vsplit failed")
	}

	if f.host.WindowValid(old) {
		t.Error("floating window should be closed")
	}
	win := f.window(t)
	sp := f.host.Windows[win].Split
	if sp == nil || !sp.Vertical || sp.Size != 60 {
		t.Errorf("split = %+v", sp)
	}
	st := f.pad.Status()
	if st.DisplayMode != config.VSplit {
		t.Errorf("mode = %v, want vsplit", st.DisplayMode)
	}
	if st.Sizes.Floating != (host.Size{Width: 100, Height: 30}) {
		t.Errorf("floating size = %+v, want 100x30", st.Sizes.Floating)
	}
}

func TestShow_PathSwitchRecreates(t *testing.T) {
	f := newFixture(t, nil)
	other := filepath.Join(filepath.Dir(f.path), "other.md")
	f.pad.Show("", "")
	first := f.window(t)

	if !f.pad.Show("", other) {
		t.Fatal("Show other failed")
	}
	if f.window(t) == first {
		t.Error("a different path should get a new window")
	}
	if f.pad.Status().FilePath != other {
		t.Errorf("path = %q", f.pad.Status().FilePath)
	}
	if len(f.pad.Status().Buffers) != 2 {
		t.Errorf("buffers = %v", f.pad.Status().Buffers)
	}
}

func TestSizeMemoryAcrossHide(t *testing.T) {
	tests := []struct {
		name    string
		display host.Size
		want    host.Size
	}{
		{"fits", host.Size{Width: 200, Height: 50}, host.Size{Width: 100, Height: 30}},
		{"clamped", host.Size{Width: 90, Height: 20}, host.Size{Width: 86, Height: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.pad.Show("floating", "")
			f.host.Resize(f.window(t), host.Size{Width: 100, Height: 30})
			f.pad.Hide()

			f.host.Display = tt.display
			if !f.pad.Show("floating", "") {
				t.Fatal("Show failed")
			}
			fl := f.host.Windows[f.window(t)].Float
			if fl.Width != tt.want.Width || fl.Height != tt.want.Height {
				t.Errorf("size = %dx%d, want %dx%d", fl.Width, fl.Height, tt.want.Width, tt.want.Height)
			}
		})
	}
}

func TestHide_SavesAndIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	win := f.window(t)
	buf := f.buffer(t, f.path)
	f.host.Type(buf, "hello", "world")

	if !f.pad.Hide() {
		t.Fatal("Hide failed")
	}
	if f.host.WindowValid(win) {
		t.Error("window should be closed")
	}
	if got := readFile(t, f.path); got != "hello\nworld" {
		t.Errorf("file = %q", got)
	}
	types := f.host.EmittedTypes()
	want := []event.Type{event.BufLeave, event.BufHidden, event.WinLeave, event.WinClosed}
	if !slices.Equal(types[len(types)-4:], want) {
		t.Errorf("emitted = %v, want %v last", types, want)
	}

	notes, emitted := len(f.host.Notes), len(f.host.Emitted)
	if !f.pad.Hide() {
		t.Fatal("second Hide failed")
	}
	if len(f.host.Notes) != notes || len(f.host.Emitted) != emitted {
		t.Error("second Hide should have no side effects")
	}

	f.host.Advance(time.Second)
	if errs := f.host.NotesAt(host.LevelError); len(errs) != 0 {
		t.Errorf("errors = %+v", errs)
	}
	if st := f.pad.Status(); st.WindowValid {
		t.Error("status reports a window")
	}
}

func TestHide_SaveFailureStillCloses(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	win := f.window(t)
	buf := f.buffer(t, f.path)

	// A file where the note directory should be makes the save fail.
	if err := os.WriteFile(filepath.Dir(f.path), nil, 0644); err != nil {
		t.Fatal(err)
	}

	// A focus-loss save queued earlier is superseded by the save on hide.
	f.host.Emit(event.Event{Type: event.FocusLost})

	if !f.pad.Hide() {
		t.Fatal("Hide should succeed even when the save fails")
	}
	if f.host.WindowValid(win) {
		t.Error("window should be closed")
	}
	if errs := f.host.NotesAt(host.LevelError); len(errs) != 1 {
		t.Errorf("errors = %+v, want 1", errs)
	}

	// The leave events Hide emits must not retry the write later.
	f.host.Advance(time.Second)
	if errs := f.host.NotesAt(host.LevelError); len(errs) != 1 {
		t.Errorf("errors after debounce = %+v, want 1", errs)
	}
	if !f.host.Modified(buf) {
		t.Error("failed save must keep the modified flag")
	}
}

func TestHide_WithoutSaveOnHideQueuesDebouncedSave(t *testing.T) {
	f := newFixture(t, &config.Overrides{AutoSave: &config.AutoSaveOverrides{OnHide: ptr(false)}})
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)
	f.pad.Hide()

	if !f.host.Modified(buf) {
		t.Fatal("note saved on hide with onHide off")
	}
	f.host.Advance(time.Second)
	if f.host.Modified(buf) {
		t.Error("focus-loss save should still run after hide")
	}
}

func TestHide_CloseFailureClearsHandle(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	f.host.Fail.CloseWindow = true

	if !f.pad.Hide() {
		t.Fatal("Hide failed")
	}
	if _, ok := f.pad.session.Window(); ok {
		t.Error("tracked handle should be cleared")
	}
	if warns := f.host.NotesAt(host.LevelWarn); len(warns) != 1 {
		t.Errorf("warnings = %+v, want 1", warns)
	}
}

func TestSave(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	f.host.Type(f.buffer(t, f.path), "draft")

	if !f.pad.Save() {
		t.Fatal("Save failed")
	}
	if got := readFile(t, f.path); got != "draft" {
		t.Errorf("file = %q", got)
	}
	if infos := f.host.NotesAt(host.LevelInfo); len(infos) != 1 {
		t.Errorf("infos = %+v, want one", infos)
	}
}

func TestSave_UnmodifiedDoesNotWrite(t *testing.T) {
	f := newFixture(t, nil)
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.path, []byte("kept"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(f.path, old, old); err != nil {
		t.Fatal(err)
	}
	f.pad.Show("", "")

	if !f.pad.Save() {
		t.Fatal("Save failed")
	}
	info, err := os.Stat(f.path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime changed: %v", info.ModTime())
	}
	if len(f.host.Notes) != 0 {
		t.Errorf("notes = %+v, want none", f.host.Notes)
	}
}

func TestSave_NoBufferYet(t *testing.T) {
	f := newFixture(t, nil)
	if !f.pad.Save() {
		t.Error("Save with nothing to save should succeed")
	}
	if _, err := os.Stat(f.path); !errors.Is(err, os.ErrNotExist) {
		t.Error("nothing should be written")
	}
}

func TestShow_EvictsStaleBuffer(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	old := f.buffer(t, f.path)
	f.pad.Hide()

	if err := os.Remove(f.path); err != nil {
		t.Fatal(err)
	}
	if !f.pad.Show("", "") {
		t.Fatal("Show failed")
	}

	buf := f.buffer(t, f.path)
	if buf == old {
		t.Fatal("stale buffer was reused")
	}
	if f.host.BufferValid(old) {
		t.Error("stale buffer should be destroyed")
	}
	tmpl := notestore.New(f.host, f.pad.Config()).Template()
	if !slices.Equal(f.host.Buffers[buf].Lines, tmpl) {
		t.Error("recreated buffer should hold the template")
	}
}

func TestShow_EvictionRemembersSize(t *testing.T) {
	f := newFixture(t, nil)
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.path, []byte("kept\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f.pad.Show("floating", "")
	old := f.window(t)
	f.host.Resize(old, host.Size{Width: 100, Height: 30})

	if err := os.Remove(f.path); err != nil {
		t.Fatal(err)
	}
	if !f.pad.Show("floating", "") {
		t.Fatal("Show failed")
	}

	if got := f.pad.session.Sizes().Floating; got.Width != 100 || got.Height != 30 {
		t.Errorf("remembered floating = %+v, want 100x30", got)
	}
	win := f.window(t)
	if win == old {
		t.Fatal("window of the evicted buffer was kept")
	}
	if fl := f.host.Windows[win].Float; fl.Width != 100 || fl.Height != 30 {
		t.Errorf("float = %dx%d, want 100x30", fl.Width, fl.Height)
	}
}

func TestShow_KeepsDeletedFileWithUnsavedEdits(t *testing.T) {
	f := newFixture(t, &config.Overrides{AutoSave: &config.AutoSaveOverrides{OnHide: ptr(false), OnFocusLost: ptr(false)}})
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)
	f.host.Type(buf, "unsaved")
	f.pad.Hide()

	if !f.pad.Show("", "") {
		t.Fatal("Show failed")
	}
	if got := f.buffer(t, f.path); got != buf {
		t.Error("buffer with unsaved edits should be kept")
	}
}

func TestToggle(t *testing.T) {
	f := newFixture(t, nil)

	if !f.pad.Toggle("", "") || !f.pad.Visible() {
		t.Fatal("toggle from hidden should show")
	}
	if st := f.pad.Status(); st.DisplayMode != config.Floating || st.FilePath != f.path {
		t.Errorf("status = %+v", st)
	}

	if !f.pad.Toggle("", "") || f.pad.Visible() {
		t.Fatal("toggle while visible should hide")
	}

	f.pad.Toggle("", "")
	if !f.pad.Toggle("vsplit", "") || !f.pad.Visible() {
		t.Fatal("toggle with a mode should show in that mode")
	}
	if f.pad.Status().DisplayMode != config.VSplit {
		t.Errorf("mode = %v, want vsplit", f.pad.Status().DisplayMode)
	}
	if len(f.host.Windows) != 1 {
		t.Errorf("%d windows, want 1", len(f.host.Windows))
	}
}

func TestShow_InvalidModeFallsBack(t *testing.T) {
	f := newFixture(t, nil)

	if !f.pad.Show("sideways", "") {
		t.Fatal("Show should fall back, not fail")
	}
	if f.pad.Status().DisplayMode != config.Floating {
		t.Errorf("mode = %v", f.pad.Status().DisplayMode)
	}
	if warns := f.host.NotesAt(host.LevelWarn); len(warns) != 1 {
		t.Errorf("warnings = %+v", warns)
	}
}

func TestShow_FloatingUnavailable(t *testing.T) {
	t.Run("from hidden", func(t *testing.T) {
		f := newFixture(t, &config.Overrides{DisplayMode: ptr("hsplit")})
		f.host.HasDisplay = false

		if f.pad.Show("floating", "") {
			t.Fatal("Show should fail without a display")
		}
		st := f.pad.Status()
		if st.WindowValid || st.DisplayMode != config.HSplit {
			t.Errorf("status = %+v", st)
		}
		if errs := f.host.NotesAt(host.LevelError); len(errs) != 1 {
			t.Errorf("errors = %+v", errs)
		}
	})

	t.Run("from visible split", func(t *testing.T) {
		f := newFixture(t, nil)
		f.pad.Show("hsplit", "")
		win := f.window(t)
		f.host.HasDisplay = false

		if f.pad.Show("floating", "") {
			t.Fatal("Show should fail without a display")
		}
		if got := f.window(t); got != win || !f.host.WindowValid(win) {
			t.Error("the visible split should be left alone")
		}
		if f.pad.Status().DisplayMode != config.HSplit {
			t.Errorf("mode = %v, want hsplit", f.pad.Status().DisplayMode)
		}
	})
}

func TestShow_SplitFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.host.Fail.OpenSplit = true

	if f.pad.Show("hsplit", "") {
		t.Fatal("Show should fail")
	}
	st := f.pad.Status()
	if st.WindowValid || st.DisplayMode != config.Floating {
		t.Errorf("status = %+v", st)
	}
	if errs := f.host.NotesAt(host.LevelError); len(errs) != 1 {
		t.Errorf("errors = %+v", errs)
	}
}

func TestShow_BufferFailures(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		f := newFixture(t, nil)
		f.host.Fail.CreateBuffer = true
		if f.pad.Show("", "") {
			t.Fatal("Show should fail")
		}
		if len(f.host.Windows) != 0 {
			t.Error("no window should open")
		}
	})

	t.Run("name", func(t *testing.T) {
		f := newFixture(t, nil)
		f.host.Fail.SetBufferName = true
		if !f.pad.Show("", "") {
			t.Fatal("an unnamed buffer is still usable")
		}
		if warns := f.host.NotesAt(host.LevelWarn); len(warns) != 1 {
			t.Errorf("warnings = %+v", warns)
		}
	})
}

func TestFocusLost_DebouncedSave(t *testing.T) {
	f := newFixture(t, &config.Overrides{AutoSave: &config.AutoSaveOverrides{OnHide: ptr(false)}})
	f.pad.Show("", "")
	win := f.window(t)
	buf := f.buffer(t, f.path)
	f.host.Type(buf, "churn")

	for _, typ := range []event.Type{event.WinLeave, event.BufLeave, event.WinLeave} {
		f.host.Emit(event.Event{Type: typ, Buffer: int(buf), Window: int(win)})
		f.host.Advance(10 * time.Millisecond)
	}
	if _, err := os.Stat(f.path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("save should wait for the churn to settle")
	}

	f.host.Advance(50 * time.Millisecond)
	if got := readFile(t, f.path); got != "churn" {
		t.Errorf("file = %q", got)
	}
	if f.pad.saver.Pending() != 0 {
		t.Error("nothing should remain pending")
	}
}

func TestFocusLost_RemembersSize(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("hsplit", "")
	win := f.window(t)
	f.host.Resize(win, host.Size{Width: 200, Height: 22})

	f.host.Emit(event.Event{Type: event.FocusLost})
	if got := f.pad.Status().Sizes.HSplitHeight; got != 22 {
		t.Errorf("hsplit height = %d, want 22", got)
	}
}

func TestFocusLost_DestroyedBufferSkipsSave(t *testing.T) {
	f := newFixture(t, &config.Overrides{AutoSave: &config.AutoSaveOverrides{OnHide: ptr(false)}})
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)
	f.host.Emit(event.Event{Type: event.BufLeave, Buffer: int(buf)})

	if err := f.host.DeleteBuffer(buf); err != nil {
		t.Fatal(err)
	}
	f.host.Advance(time.Second)

	if _, err := os.Stat(f.path); !errors.Is(err, os.ErrNotExist) {
		t.Error("destroyed buffer should not be saved")
	}
	if errs := f.host.NotesAt(host.LevelError); len(errs) != 0 {
		t.Errorf("errors = %+v", errs)
	}
}

func TestExiting_SavesAllNotes(t *testing.T) {
	noAuto := &config.AutoSaveOverrides{OnHide: ptr(false), OnFocusLost: ptr(false)}

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, &config.Overrides{AutoSave: noAuto})
		other := filepath.Join(filepath.Dir(f.path), "other.md")
		f.pad.Show("", "")
		f.host.Type(f.buffer(t, f.path), "first")
		f.pad.Show("", other)
		f.host.Type(f.buffer(t, other), "second")

		f.host.Emit(event.Event{Type: event.Exiting})

		if got := readFile(t, f.path); got != "first" {
			t.Errorf("first = %q", got)
		}
		if got := readFile(t, other); got != "second" {
			t.Errorf("second = %q", got)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		o := &config.AutoSaveOverrides{OnHide: ptr(false), OnFocusLost: ptr(false), OnExit: ptr(false)}
		f := newFixture(t, &config.Overrides{AutoSave: o})
		f.pad.Show("", "")
		f.host.Emit(event.Event{Type: event.Exiting})

		if _, err := os.Stat(f.path); !errors.Is(err, os.ErrNotExist) {
			t.Error("exit save is disabled")
		}
	})
}

func TestResized_RemembersSize(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	f.host.Resize(f.window(t), host.Size{Width: 120, Height: 40})

	f.host.Emit(event.Event{Type: event.Resized})
	if got := f.pad.Status().Sizes.Floating; got != (host.Size{Width: 120, Height: 40}) {
		t.Errorf("floating size = %+v", got)
	}
}

func TestWindowClosedByHost(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	win := f.window(t)

	if err := f.host.CloseWindow(win); err != nil {
		t.Fatal(err)
	}
	if f.pad.Visible() {
		t.Fatal("closed window should not count as visible")
	}
	f.host.Advance(time.Second)
	if _, err := os.Stat(f.path); err != nil {
		t.Errorf("closing the window should save the note: %v", err)
	}

	if !f.pad.Toggle("", "") {
		t.Fatal("Toggle failed")
	}
	if f.window(t) == win {
		t.Error("a new window should be created")
	}
}

func TestBufferKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)
	f.host.Type(buf, "copy", "me")

	if err := f.host.Press(buf, "ctrl+y"); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(f.copied, []string{"copy\nme"}) {
		t.Errorf("copied = %q", f.copied)
	}

	if err := f.host.Press(buf, "ctrl+s"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, f.path); got != "copy\nme" {
		t.Errorf("file = %q", got)
	}

	if err := f.host.Press(buf, "esc"); err != nil {
		t.Fatal(err)
	}
	if f.pad.Visible() {
		t.Error("quit key should hide")
	}
}

func TestBufferKeys_UnboundKeySkipped(t *testing.T) {
	f := newFixture(t, &config.Overrides{Keymaps: &config.KeymapOverrides{Yank: ptr("")}})
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)

	if _, ok := f.host.Buffers[buf].Keys[""]; ok {
		t.Error("empty key should not be mapped")
	}
	if len(f.host.Buffers[buf].Keys) != 2 {
		t.Errorf("keys = %v", f.host.Buffers[buf].Keys)
	}
}

func TestYank_ClipboardFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.copyErr = errors.New("no clipboard")
	f.pad.Show("", "")

	if err := f.host.Press(f.buffer(t, f.path), "ctrl+y"); err != nil {
		t.Fatal(err)
	}
	if errs := f.host.NotesAt(host.LevelError); len(errs) != 1 {
		t.Errorf("errors = %+v", errs)
	}
}

func TestEdit(t *testing.T) {
	f := newFixture(t, nil)

	if !f.pad.Edit("") {
		t.Fatal("Edit failed")
	}
	if !slices.Equal(f.host.Edited, []string{f.path}) {
		t.Errorf("edited = %v", f.host.Edited)
	}
	if f.pad.Visible() || len(f.host.Buffers) != 0 {
		t.Error("Edit should not touch the scratchpad window")
	}

	f.host.Fail.Edit = true
	if f.pad.Edit("") {
		t.Error("Edit should report host failure")
	}
}

func TestFileChanged(t *testing.T) {
	t.Run("reloads clean buffer", func(t *testing.T) {
		f := newFixture(t, nil)
		f.pad.Show("", "")
		f.pad.Save()
		buf := f.buffer(t, f.path)

		if err := os.WriteFile(f.path, []byte("from\noutside"), 0644); err != nil {
			t.Fatal(err)
		}
		f.host.Emit(event.Event{Type: event.FileChanged, Path: f.path})

		if got := f.host.Buffers[buf].Lines; !slices.Equal(got, []string{"from", "outside"}) {
			t.Errorf("lines = %q", got)
		}
		infos := f.host.NotesAt(host.LevelInfo)
		if len(infos) != 2 {
			t.Errorf("infos = %+v, want save and reload", infos)
		}
	})

	t.Run("ignores own write", func(t *testing.T) {
		f := newFixture(t, nil)
		f.pad.Show("", "")
		f.pad.Save()
		notes := len(f.host.Notes)

		f.host.Emit(event.Event{Type: event.FileChanged, Path: f.path})
		if len(f.host.Notes) != notes {
			t.Errorf("notes = %+v", f.host.Notes[notes:])
		}
	})

	t.Run("keeps unsaved edits", func(t *testing.T) {
		f := newFixture(t, nil)
		f.pad.Show("", "")
		f.pad.Save()
		buf := f.buffer(t, f.path)
		f.host.Type(buf, "mine")

		if err := os.WriteFile(f.path, []byte("theirs"), 0644); err != nil {
			t.Fatal(err)
		}
		f.host.Emit(event.Event{Type: event.FileChanged, Path: f.path})

		if got := f.host.Buffers[buf].Lines; !slices.Equal(got, []string{"mine"}) {
			t.Errorf("lines = %q", got)
		}
		warns := f.host.NotesAt(host.LevelWarn)
		if len(warns) != 1 || !strings.Contains(warns[0].Message, "(+1 -1 lines)") {
			t.Errorf("warnings = %+v", warns)
		}
	})
}

func TestSetup_AgainReseeds(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	f.host.Resize(f.window(t), host.Size{Width: 100, Height: 30})

	if !f.pad.Setup(&config.Overrides{DisplayMode: ptr("hsplit")}) {
		t.Fatal("Setup failed")
	}

	st := f.pad.Status()
	if st.WindowValid {
		t.Error("re-setup should hide the window")
	}
	if st.DisplayMode != config.HSplit || st.DefaultMode != config.HSplit {
		t.Errorf("mode = %v default %v", st.DisplayMode, st.DefaultMode)
	}
	if st.Sizes.Floating != (host.Size{Width: 80, Height: 24}) {
		t.Errorf("sizes should be reseeded: %+v", st.Sizes.Floating)
	}
	if len(st.Buffers) != 1 {
		t.Errorf("buffers = %v", st.Buffers)
	}

	// Global hooks are installed once.
	f.pad.Show("", "")
	f.host.Resize(f.window(t), host.Size{Width: 200, Height: 12})
	f.host.Emit(event.Event{Type: event.Resized})
	if got := f.pad.Status().Sizes.HSplitHeight; got != 12 {
		t.Errorf("hsplit height = %d", got)
	}
}

func TestSetup_AgainRebindsNoteKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	buf := f.buffer(t, f.path)
	f.pad.Hide()

	f.pad.Setup(&config.Overrides{Keymaps: &config.KeymapOverrides{Quit: ptr("q"), Yank: ptr("")}})

	keys := f.host.Buffers[buf].Keys
	for _, gone := range []string{"esc", "ctrl+y"} {
		if _, ok := keys[gone]; ok {
			t.Errorf("old key %q still bound", gone)
		}
	}
	for _, bound := range []string{"q", "ctrl+s"} {
		if _, ok := keys[bound]; !ok {
			t.Errorf("key %q not bound", bound)
		}
	}

	f.pad.Show("", "")
	if err := f.host.Press(buf, "q"); err != nil {
		t.Fatal(err)
	}
	if f.pad.Visible() {
		t.Error("new quit key should hide")
	}
}

func TestClose_DropsHooks(t *testing.T) {
	f := newFixture(t, nil)
	f.pad.Show("", "")
	f.host.Resize(f.window(t), host.Size{Width: 120, Height: 40})

	f.pad.Close()
	f.host.Emit(event.Event{Type: event.Resized})
	if got := f.pad.Status().Sizes.Floating; got.Width != 80 {
		t.Errorf("size recorded after Close: %+v", got)
	}
}
