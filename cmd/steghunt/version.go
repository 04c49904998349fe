package steghunt

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steghunt/steghunt/internal/config"
	"github.com/steghunt/steghunt/internal/stegseek"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print steghunt and stegseek versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "steghunt %s\n", version)

			bm := stegseek.NewBinaryManager(flagStegseek)
			path, err := bm.Find()
			if err != nil {
				fmt.Fprintln(out, "stegseek: not found")
				return nil
			}
			v, err := bm.Version(path)
			if err != nil {
				fmt.Fprintf(out, "stegseek: %s (version unknown)\n", path)
				return nil
			}
			fmt.Fprintf(out, "stegseek: %s (%s)\n", path, v)
			if err := stegseek.CheckVersion(v, config.DefaultMinVersion); err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
