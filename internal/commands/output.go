package paper2pod

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/mwiater/paper2pod/internal/transcript"
	"github.com/mwiater/paper2pod/internal/util"
)

const turnWidth = 96

var (
	stage   = color.New(color.FgCyan, color.Bold).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
	host    = color.New(color.FgMagenta, color.Bold).SprintFunc()
	guest   = color.New(color.FgBlue, color.Bold).SprintFunc()
)

// printTurns writes one line per turn with a coloured speaker label.
func printTurns(out io.Writer, turns []transcript.Turn) {
	for _, t := range turns {
		text := util.Indent(util.WrapToWidth(t.Text, turnWidth), "       ")
		switch t.Speaker {
		case transcript.SpeakerHost:
			fmt.Fprintf(out, "%s %s\n", host("Host:"), text)
		case transcript.SpeakerGuest:
			fmt.Fprintf(out, "%s %s\n", guest("Guest:"), text)
		default:
			fmt.Fprintf(out, "%s %s\n", warn("(untagged)"), text)
		}
	}
}
