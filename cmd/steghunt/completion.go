package steghunt

import (
	"io"

	"github.com/spf13/cobra"
)

var completionShells = map[string]func(io.Writer) error{
	"bash":       func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
	"zsh":        rootCmd.GenZshCompletion,
	"fish":       func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
	"powershell": rootCmd.GenPowerShellCompletionWithDesc,
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion <bash|zsh|fish|powershell>",
		Short:                 "Print a shell completion script",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Example: `  source <(steghunt completion bash)
  steghunt completion zsh > "${fpath[1]}/_steghunt"
  steghunt completion fish > ~/.config/fish/completions/steghunt.fish
  steghunt completion powershell | Out-String | Invoke-Expression`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.OutOrStdout())
		},
	}
}

func init() {
	rootCmd.AddCommand(newCompletionCmd())
}
