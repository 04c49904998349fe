package steghunt

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steghunt/steghunt/internal/config"
	"github.com/steghunt/steghunt/internal/engine"
	"github.com/steghunt/steghunt/internal/logging"
	"github.com/steghunt/steghunt/internal/report"
	"github.com/steghunt/steghunt/internal/resultlog"
	"github.com/steghunt/steghunt/internal/stegseek"
	"github.com/steghunt/steghunt/internal/types"
)

const defaultMinSize = 1024

var (
	flagInput     string
	flagOutput    string
	flagWordlist  string
	flagRecursive bool
	flagDupeSkip  bool
	flagMinSize   int64
	flagInclude   string
	flagExclude   string
	flagLog       string
	flagResume    bool
	flagFailFast  bool
)

var modeHelp = map[types.Mode]string{
	types.ModeSeed:      "Detect candidates embedded with a guessable seed",
	types.ModeCrack:     "Crack every candidate with a wordlist",
	types.ModeSeedCrack: "Detect by seed, then crack only the detected candidates",
}

func init() {
	for _, mode := range types.Modes() {
		cmd := &cobra.Command{
			Use:   mode.String(),
			Short: modeHelp[mode],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runHunt(cmd, mode)
			},
		}
		addHuntFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
}

func addHuntFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagInput, "input", "i", "", "directory to scan")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "directory for extracted payloads (crack modes)")
	cmd.Flags().StringVarP(&flagWordlist, "wordlist", "w", "", "passphrase wordlist (crack modes)")
	cmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "descend into sub-directories")
	cmd.Flags().BoolVarP(&flagDupeSkip, "dupe-skip", "d", false, "skip files with identical content")
	cmd.Flags().Int64VarP(&flagMinSize, "minsize", "m", defaultMinSize, "skip files smaller than this many bytes")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().StringVar(&flagLog, "log", "", "file listing detected candidates, truncated per run (default \""+resultlog.DefaultPath+"\")")
	cmd.Flags().BoolVar(&flagResume, "resume", false, "skip candidates already processed with unchanged content")
	cmd.Flags().BoolVar(&flagFailFast, "fail-fast", false, "abort on the first stegseek spawn or timeout error")
}

func runHunt(cmd *cobra.Command, mode types.Mode) error {
	// Load configs: CLI > local > global
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if wd, err := os.Getwd(); err == nil {
		if c, err := config.LoadLocal(wd); err == nil {
			lcfg = c
		}
	}

	quiet := pickBool(flagQuiet, lcfg.Quiet, gcfg.Quiet)
	noColor := pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)
	logger := logging.New(logging.Options{Verbose: flagVerbose, Quiet: quiet, NoColor: noColor})
	defer func() { _ = logger.Sync() }()

	input := flagInput
	if input != "" {
		if abs, err := filepath.Abs(input); err == nil {
			input = abs
		}
	}
	run := config.Run{
		Mode:     mode,
		Input:    input,
		Output:   pickString(flagOutput, lcfg.Output, gcfg.Output),
		Wordlist: pickString(flagWordlist, lcfg.Wordlist, gcfg.Wordlist),
		MinSize:  pickInt64(flagMinSize, cmd.Flags().Changed("minsize"), lcfg.MinSize, gcfg.MinSize),
		Threads:  pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
	}
	if err := run.Validate(); err != nil {
		return err
	}

	scfg := gcfg.GetStegseekConfig().Merge(lcfg.GetStegseekConfig()).Merge(cliStegseekConfig())
	runner, err := stegseek.NewRunner(scfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("using stegseek", zap.String("binary", runner.BinaryPath()), zap.String("version", runner.Version()))

	if mode.Cracks() {
		if err := os.MkdirAll(run.Output, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	logPath := pickString(flagLog, lcfg.Log, gcfg.Log)
	rl, err := resultlog.Create(logPath)
	if err != nil {
		return err
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	printer := report.NewPrinter(out, report.PrinterOptions{Mode: mode, Quiet: quiet || flagJSON, NoColor: noColor})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer.Initializing()
	res, err := engine.Run(ctx, engine.Config{
		Root:      run.Input,
		OutputDir: run.Output,
		Wordlist:  run.Wordlist,
		Mode:      mode,
		MinSize:   run.MinSize,
		Recursive: pickBool(flagRecursive, lcfg.Recursive, gcfg.Recursive),
		Dedup:     pickBool(flagDupeSkip, lcfg.DupeSkip, gcfg.DupeSkip),
		Include:   pickString(flagInclude, lcfg.Include, gcfg.Include),
		Exclude:   pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		Threads:   run.Threads,
		FailFast:  pickBool(flagFailFast, lcfg.FailFast, gcfg.FailFast),
		Resume:    pickBool(flagResume, lcfg.Resume, gcfg.Resume),
		Recorder:  rl,
		Logger:    logger,
		Progress:  printer.Progress,
	}, runner)
	if err != nil {
		printer.Finish(false)
		return fmt.Errorf("hunt error: %w", err)
	}
	printer.Finish(res.NoResults())

	switch {
	case flagJSON:
		if err := report.WriteJSON(out, res); err != nil {
			return err
		}
	case !quiet:
		if err := report.PrintSummary(out, res, report.SummaryOptions{NoColor: noColor, LogPath: rl.Path(), OutputDir: run.Output}); err != nil {
			return err
		}
	}

	if res.Counters.Failed > 0 {
		return fmt.Errorf("%w (%d of %d)", errCandidatesFailed, res.Counters.Failed, res.Counters.Total)
	}
	return nil
}

func cliStegseekConfig() config.StegseekConfig {
	var sc config.StegseekConfig
	if flagStegseek != "" {
		p := flagStegseek
		sc.BinaryPath = &p
	}
	if flagTimeout > 0 {
		d := flagTimeout.String()
		sc.Timeout = &d
	}
	return sc
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
