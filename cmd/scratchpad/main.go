package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/scratchpad/internal/command"
	"github.com/marcus/scratchpad/internal/config"
	"github.com/marcus/scratchpad/internal/keymap"
	"github.com/marcus/scratchpad/internal/scratchpad"
	"github.com/marcus/scratchpad/internal/termhost"
)

// Version is set at build time via ldflags
var Version = ""

type options struct {
	configPath string
	mode       string
	path       string
	logFile    string
	debug      bool
	open       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "scratchpad",
		Short: "A persistent note pad in your terminal",
		Long: heredoc.Doc(`
			Run a small editor with a scratchpad note that can float over the
			main window or sit in a split beside it.

			Keys: ctrl+t toggles the scratchpad, ctrl+p opens the command
			prompt, ctrl+o cycles focus, alt+arrows resize the focused window
			and ctrl+q saves and quits.
		`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "display mode: floating, hsplit or vsplit")
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "note file to use instead of the configured one")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs here (default in the user state dir)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVarP(&opts.open, "open", "o", false, "show the scratchpad on start")

	cmd.AddCommand(newCmdConfig(opts), newCmdVersion())
	return cmd
}

func run(opts *options) error {
	logger, closeLog := setupLogging(opts)
	defer closeLog()
	slog.SetDefault(logger)

	base, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	h := termhost.New(logger)
	defer h.Close()

	pad := scratchpad.New(h, logger, scratchpad.WithBase(base))
	defer pad.Close()

	var o config.Overrides
	if opts.mode != "" {
		o.DisplayMode = &opts.mode
	}
	if opts.path != "" {
		o.FilePath = &opts.path
	}
	if !pad.Setup(&o) {
		return errors.New("scratchpad setup failed")
	}

	h.Keymap().SetHandler(keymap.CmdToggle, func() tea.Cmd {
		pad.Toggle("", "")
		return nil
	})
	h.SetCommandRunner(command.NewRunner(pad).Run)
	if opts.open {
		h.OnReady(func() { pad.Show("", "") })
	}

	p := tea.NewProgram(h, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(config.ExpandPath(path))
	}
	return config.Load()
}

// setupLogging opens the log file. The terminal belongs to the editor, so
// logs are discarded when no file can be opened.
func setupLogging(opts *options) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	path := opts.logFile
	if path == "" {
		path = defaultLogPath()
	}
	if path != "" {
		path = config.ExpandPath(path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				return slog.New(slog.NewTextHandler(f, handlerOpts)), func() { _ = f.Close() }
			}
		}
	}
	return slog.New(slog.NewTextHandler(io.Discard, handlerOpts)), func() {}
}

func defaultLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "scratchpad", "scratchpad.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "scratchpad", "scratchpad.log")
}

func newCmdConfig(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Long: heredoc.Doc(`
			Write every setting with its default value to the config file.
			An existing file is left alone unless --force is given; keys the
			scratchpad does not manage survive an overwrite.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile(opts)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), configFile(opts))
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func configFile(opts *options) string {
	if opts.configPath != "" {
		return config.ExpandPath(opts.configPath)
	}
	return config.ConfigPath()
}

func newCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scratchpad version %s\n", effectiveVersion(Version))
		},
	}
}
