package command

import (
	"bytes"
	"strings"
)

// Runner executes prompt lines against a fresh command tree.
type Runner struct {
	pad Pad
}

// NewRunner creates a runner for p.
func NewRunner(p Pad) *Runner {
	return &Runner{pad: p}
}

// Run executes line and returns the command's output folded onto a single
// line for display.
func (r *Runner) Run(line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}

	root := NewCmdRoot(r.pad)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return fold(out.String()), err
}

func fold(s string) string {
	var parts []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " | ")
}
