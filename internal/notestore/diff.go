package notestore

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/marcus/scratchpad/internal/host"
)

// DiffStat counts differing lines between a buffer and its file.
type DiffStat struct {
	Added   int // only on disk
	Removed int // only in the buffer
}

func (d DiffStat) String() string {
	return fmt.Sprintf("+%d -%d lines", d.Added, d.Removed)
}

// CompareWithDisk diffs the buffer's content against the file at path. A
// missing file compares as empty.
func (s *Store) CompareWithDisk(path string, buf host.BufferID) (DiffStat, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return DiffStat{}, fmt.Errorf("read note: %w", err)
	}
	lines, err := s.buffers.Lines(buf)
	if err != nil {
		return DiffStat{}, fmt.Errorf("read buffer: %w", err)
	}
	return diffLines(Join(lines), string(data)), nil
}

func diffLines(from, to string) DiffStat {
	// a trailing newline on both sides keeps the last line comparable
	from, to = withNewline(from), withNewline(to)

	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var st DiffStat
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Added += n
		case diffmatchpatch.DiffDelete:
			st.Removed += n
		}
	}
	return st
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
