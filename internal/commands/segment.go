package paper2pod

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwiater/paper2pod/internal/transcript"
)

// segmentCmd splits a saved script into speaker turns.
var segmentCmd = &cobra.Command{
	Use:   "segment <transcript-file|->",
	Short: "Split a podcast script into speaker turns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}

		tr, structured := transcript.FromOutput(string(data), true)
		out := cmd.OutOrStdout()
		mode := "labels"
		if structured {
			mode = "structured"
		}
		fmt.Fprintf(out, "%s %d turn(s) (%s)\n", stage("==>"), len(tr.Turns), mode)
		printTurns(out, tr.Turns)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(segmentCmd)
}
