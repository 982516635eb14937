package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longkey1/gptmd/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show the gptmd version, the commit and time it was built from, and the Go
toolchain used. Use --short to print the version number only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Fprintln(cmd.OutOrStdout(), version.Short())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.Short()

	versionCmd.Flags().BoolP("short", "s", false, "Show only version number")
}
