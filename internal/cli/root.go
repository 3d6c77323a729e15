// Package cli wires the replay command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yairfalse/tapio-replay/internal/alloc"
	"github.com/yairfalse/tapio-replay/internal/config"
	"github.com/yairfalse/tapio-replay/internal/hooks"
	"github.com/yairfalse/tapio-replay/internal/logging"
	"github.com/yairfalse/tapio-replay/internal/replay"
	"github.com/yairfalse/tapio-replay/internal/slots"
	"github.com/yairfalse/tapio-replay/internal/trace"
)

const usage = "syntax: replay <replay.dat>"

var errUsage = errors.New(usage)

// abort ends the process after a detected trace corruption.
var abort = alloc.Abort

// Runtime is what a replay needs from the process. Tests substitute fakes.
type Runtime struct {
	Allocator func() (alloc.Allocator, error)
	Hooks     func(*zap.Logger) hooks.Hooks
}

// DefaultRuntime uses the C allocator and resolves agent hooks from the
// process symbol table.
func DefaultRuntime() Runtime {
	return Runtime{
		Allocator: alloc.Libc,
		Hooks: func(logger *zap.Logger) hooks.Hooks {
			h, _ := hooks.Resolve(logger)
			return h
		},
	}
}

type options struct {
	configFile string
	rt         Runtime
	v          *viper.Viper
}

// NewRootCommand builds the replay command. Results go to the command's
// output writer, diagnostics to its error writer.
func NewRootCommand(rt Runtime) *cobra.Command {
	opts := &options{rt: rt, v: viper.New()}

	cmd := &cobra.Command{
		Use:   "replay [flags] <replay.dat>",
		Short: "Replay a recorded allocation trace against the process allocator",
		Long: `replay re-issues a recorded sequence of malloc, free and realloc calls in
their original order, so a memory-profiling agent loaded into the process sees
a realistic, reproducible workload.

An agent can export memory_profiler_override_next_timestamp to receive the
recorded timestamp of each operation just before it is issued.

The only positional argument is the trace path; use --version for build
information.`,
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Uint64("progress-interval", 0, "log progress every N operations (0 disables)")
	flags.Bool("strict-length", true, "reject traces shorter than their header declares")

	opts.v.BindPFlag("log_level", flags.Lookup("log-level"))
	opts.v.BindPFlag("progress_interval", flags.Lookup("progress-interval"))
	opts.v.BindPFlag("strict_length", flags.Lookup("strict-length"))

	cmd.SetVersionTemplate(versionTemplate())
	return cmd
}

func runReplay(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := config.Load(opts.v, opts.configFile)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	h := opts.rt.Hooks(logger)

	allocator, err := opts.rt.Allocator()
	if err != nil {
		return err
	}

	tr, err := trace.Open(path, trace.Options{SkipLengthCheck: !cfg.StrictLength})
	if err != nil {
		return err
	}
	defer tr.Close()

	table, err := slots.New(tr.SlotCount())
	if err != nil {
		return err
	}
	defer table.Close()

	logger.Debug("Loaded trace",
		zap.String("path", tr.Path()),
		zap.Int("bytes", tr.Size()),
		zap.Uint64("slots", tr.SlotCount()),
		zap.Uint64("operations", tr.OperationCount()))

	executor := replay.NewExecutor(allocator, h, logger, replay.Options{
		ProgressInterval: cfg.ProgressInterval,
	})

	summary, err := executor.Run(tr, table)
	if err != nil {
		return err
	}

	return printStats(cmd.OutOrStdout(), summary.Stats)
}

func printStats(w io.Writer, s alloc.Stats) error {
	_, err := fmt.Fprintf(w, "free: %d\nfast free: %d\nfast free blocks: %d\n",
		s.FreeBytes, s.FastFreeBytes, s.FastFreeBlocks)
	return err
}

// Run executes the command with args and returns the process exit code.
// A trace that allocates into a live slot aborts the process instead of
// returning.
func Run(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	stderr := cmd.ErrOrStderr()
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, usage)
	case errors.Is(err, replay.ErrDoubleAllocation):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		abort()
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

// Execute runs the replay command against the real process.
func Execute() int {
	return Run(NewRootCommand(DefaultRuntime()), os.Args[1:])
}
