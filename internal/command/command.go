// Package command is the scratchpad's command line: a cobra tree that runs
// behind the in-app prompt.
package command

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/marcus/scratchpad/internal/scratchpad"
)

// Pad is the part of the scratchpad the commands drive. Operations report
// their own failures to the user, so commands do not turn a false result
// into an error.
type Pad interface {
	Toggle(mode, path string) bool
	Show(mode, path string) bool
	Hide() bool
	Save() bool
	Edit(path string) bool
	Status() scratchpad.Status
}

// NewCmdRoot builds the command tree.
func NewCmdRoot(p Pad) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scratchpad",
		Short: "Control the scratchpad",
		Long: heredoc.Doc(`
			Show, hide and save the scratchpad note.

			Modes are floating, hsplit and vsplit. A path selects another note
			file; without one the configured note is used.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newCmdToggle(p),
		newCmdShow(p),
		newCmdHide(p),
		newCmdSave(p),
		newCmdEdit(p),
		newCmdStatus(p),
	)
	return cmd
}

func modeAndPath(args []string) (mode, path string) {
	if len(args) > 0 {
		mode = args[0]
	}
	if len(args) > 1 {
		path = args[1]
	}
	return mode, path
}

func newCmdToggle(p Pad) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle [mode] [path]",
		Aliases: []string{"t"},
		Short:   "Show the scratchpad, or hide it when visible",
		Long: heredoc.Doc(`
			Hide the scratchpad when it is visible and no mode is given.
			Otherwise show it, switching mode or note as requested.
		`),
		Example: heredoc.Doc(`
			toggle
			toggle vsplit
			toggle floating ~/notes/todo.md
		`),
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Toggle(modeAndPath(args))
			return nil
		},
	}
}

func newCmdShow(p Pad) *cobra.Command {
	return &cobra.Command{
		Use:     "show [mode] [path]",
		Aliases: []string{"open"},
		Short:   "Show the scratchpad",
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Show(modeAndPath(args))
			return nil
		},
	}
}

func newCmdHide(p Pad) *cobra.Command {
	return &cobra.Command{
		Use:   "hide",
		Short: "Hide the scratchpad, saving it if configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Hide()
			return nil
		},
	}
}

func newCmdSave(p Pad) *cobra.Command {
	return &cobra.Command{
		Use:     "save",
		Aliases: []string{"w"},
		Short:   "Write the current note to disk",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Save()
			return nil
		},
	}
}

func newCmdEdit(p Pad) *cobra.Command {
	return &cobra.Command{
		Use:     "edit [path]",
		Aliases: []string{"e"},
		Short:   "Open a note in the main window",
		Long: heredoc.Doc(`
			Open the note in the main window like any other file. The
			scratchpad window and its mode are left alone.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			p.Edit(path)
			return nil
		},
	}
}

func newCmdStatus(p Pad) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Describe the scratchpad session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := p.Status()
			if verbose {
				fmt.Fprint(cmd.OutOrStdout(), details(st))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary(st))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show sizes and every note buffer.")
	return cmd
}

func summary(st scratchpad.Status) string {
	if !st.IsSetup {
		return "scratchpad is not set up"
	}
	visibility := "hidden"
	if st.WindowValid {
		visibility = "visible"
	}
	file := st.FilePath
	if file == "" {
		file = "no note yet"
	}
	return fmt.Sprintf("%s, %s, %s", visibility, st.DisplayMode, file)
}

func details(st scratchpad.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "setup: %t\n", st.IsSetup)
	fmt.Fprintf(&b, "mode: %s (default %s)\n", st.DisplayMode, st.DefaultMode)
	fmt.Fprintf(&b, "file: %s\n", st.FilePath)
	fmt.Fprintf(&b, "buffer: %t, window: %t\n", st.BufferValid, st.WindowValid)
	fmt.Fprintf(&b, "sizes: floating %dx%d, hsplit %d, vsplit %d\n",
		st.Sizes.Floating.Width, st.Sizes.Floating.Height, st.Sizes.HSplitHeight, st.Sizes.VSplitWidth)
	fmt.Fprintf(&b, "buffers: %s\n", strings.Join(st.Buffers, ", "))
	return b.String()
}
