// Package cli wires the configuration, the store backends and the catalog
// into the librarian command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/logging"
	"github.com/mrlokans/librarian/internal/sheet"
)

const defaultExitDelay = 3 * time.Second

// Options carries the process surroundings into the command tree.
type Options struct {
	Version string
	Args    []string
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Sleep   func(time.Duration)
}

type runner struct {
	opts       Options
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the librarian command tree.
func NewRootCommand(opts Options) *cobra.Command {
	r := &runner{opts: opts}
	return r.rootCommand()
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, opts Options) int {
	r := &runner{opts: opts}
	cmd := r.rootCommand()
	if opts.Args != nil {
		cmd.SetArgs(opts.Args)
	}

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.Is(err, sheet.ErrStoreUnavailable):
		r.log().Error("store unavailable", zap.Error(err))
		fmt.Fprintln(r.opts.Err, "Could not connect to the library database")
		r.opts.Sleep(r.exitDelay())
		return 1
	default:
		fmt.Fprintf(r.opts.Err, "Error: %v\n", err)
		return 1
	}
}

func (r *runner) rootCommand() *cobra.Command {
	if r.opts.In == nil {
		r.opts.In = os.Stdin
	}
	if r.opts.Out == nil {
		r.opts.Out = os.Stdout
	}
	if r.opts.Err == nil {
		r.opts.Err = os.Stderr
	}
	if r.opts.Sleep == nil {
		r.opts.Sleep = time.Sleep
	}

	root := &cobra.Command{
		Use:   "librarian",
		Short: "Track library books in a shared spreadsheet",
		Long: `librarian keeps a school library's books in two spreadsheet tabs,
"available" and "loaned", and moves rows between them as books are
loaned out and returned.

Run without arguments to start the interactive menu.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if r.logger != nil {
				_ = r.logger.Sync()
			}
		},
		RunE: r.runShell,
	}
	root.SetIn(r.opts.In)
	root.SetOut(r.opts.Out)
	root.SetErr(r.opts.Err)

	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&r.configPath, "config", "", "Path to a config file (yaml, json or toml)")

	root.AddCommand(
		r.shellCommand(),
		r.addCommand(),
		r.loanCommand(),
		r.returnCommand(),
		r.viewCommand(),
		r.dueCommand(),
		r.remindCommand(),
		r.historyCommand(),
		r.exportCommand(),
		r.versionCommand(),
	)
	return root
}

func (r *runner) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}
	if r.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	r.cfg = cfg
	r.logger = logger
	return nil
}

func (r *runner) open(ctx context.Context) (*App, error) {
	return Open(ctx, r.cfg, r.log())
}

func (r *runner) log() *zap.Logger {
	if r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}

func (r *runner) exitDelay() time.Duration {
	if r.cfg == nil {
		return defaultExitDelay
	}
	return r.cfg.Console.ExitDelay
}

func (r *runner) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "librarian %s\n", r.opts.Version)
		},
	}
}
