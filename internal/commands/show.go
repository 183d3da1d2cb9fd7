package paper2pod

import (
	"github.com/spf13/cobra"
)

// showCmd groups the display subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
}

func init() {
	rootCmd.AddCommand(showCmd)
}
