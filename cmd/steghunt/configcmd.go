package steghunt

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steghunt/steghunt/internal/config"
)

var (
	cfgOutput     string
	cfgPayloadDir string
	cfgWordlist   string
	cfgThreads    int
	cfgMinSize    int64
	cfgRecursive  bool
	cfgDupeSkip   bool
	cfgBinary     string
	cfgTimeout    string
	cfgForce      bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .steghunt.yml with the selected defaults",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "file", ".steghunt.yml", "config file to write")
	initCmd.Flags().StringVar(&cfgPayloadDir, "output", "", "default payload directory for crack modes")
	initCmd.Flags().StringVar(&cfgWordlist, "wordlist", "", "default wordlist for crack modes")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "concurrent stegseek invocations (0 = 1)")
	initCmd.Flags().Int64Var(&cfgMinSize, "minsize", defaultMinSize, "skip files smaller than this many bytes")
	initCmd.Flags().BoolVar(&cfgRecursive, "recursive", true, "descend into sub-directories by default")
	initCmd.Flags().BoolVar(&cfgDupeSkip, "dupe-skip", true, "skip duplicate content by default")
	initCmd.Flags().StringVar(&cfgBinary, "stegseek", "", "explicit stegseek binary path")
	initCmd.Flags().StringVar(&cfgTimeout, "timeout", "", "per-invocation timeout, e.g. 10m")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}

	fc := config.FileConfig{
		Output:    optStrPtr(cfgPayloadDir),
		Wordlist:  optStrPtr(cfgWordlist),
		Recursive: boolPtr(cfgRecursive),
		DupeSkip:  boolPtr(cfgDupeSkip),
		MinSize:   int64Ptr(cfgMinSize),
		Threads:   intPtr(cfgThreads),
	}
	if b, t := optStrPtr(cfgBinary), optStrPtr(cfgTimeout); b != nil || t != nil {
		fc.Stegseek = &config.StegseekConfig{BinaryPath: b, Timeout: t}
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
