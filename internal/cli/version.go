package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and BuildTime are overridden via -ldflags at release time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ctbuild version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Fprintf(outWriter(), "ctbuild version v%s (built at %s)\n", Version, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
