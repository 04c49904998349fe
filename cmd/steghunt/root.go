package steghunt

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagJSON     bool
	flagThreads  int
	flagNoColor  bool
	flagVerbose  bool
	flagQuiet    bool
	flagStegseek string
	flagTimeout  time.Duration

	version = "0.2.0"
)

// errCandidatesFailed marks a run that finished but could not process every
// candidate. Execute maps it to exit status 1.
var errCandidatesFailed = errors.New("some candidates could not be processed")

// rootCmd is the base Cobra command for the steghunt CLI.
var rootCmd = &cobra.Command{
	Use:   "steghunt",
	Short: "Bulk-check files for stegseek-recoverable payloads",
	Long: "steghunt walks a directory for bitmap, JPEG, au and WAV carriers and runs stegseek " +
		"against each one: seed detection, wordlist cracking, or both.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the steghunt CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errCandidatesFailed) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit a JSON summary instead of progress blocks")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "concurrent stegseek invocations (0 = 1)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log every invocation and skipped file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagStegseek, "stegseek", "", "path to the stegseek binary")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "kill a single stegseek invocation after this long (0 = never)")
}
