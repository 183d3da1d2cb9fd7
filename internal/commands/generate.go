package paper2pod

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/document"
	"github.com/mwiater/paper2pod/internal/podcast"
	"github.com/mwiater/paper2pod/internal/tui"
)

var (
	generatePDF         string
	generatePersona     string
	generateHostVoice   string
	generateGuestVoice  string
	generateInteractive bool
	generatePlainScript bool
	generateNoCover     bool
	generateTitle       string
)

// stdinSourceName names PDFs read from stdin so their fallback title is stable.
const stdinSourceName = "podcast.pdf"

// generateCmd runs the whole pipeline for one PDF.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a podcast episode from a PDF",
	Long: `Generate indexes the PDF, lets a research agent and a script agent write a two-voice
dialogue about it, synthesizes the dialogue, and writes the episode (and optional cover art)
to the output directory. Use --pdf - to read the PDF from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(generatePDF) == "" {
			return fmt.Errorf("--pdf is required")
		}
		base := GetConfig()
		if base == nil {
			return fmt.Errorf("config is nil")
		}
		cfg, err := generateConfig(*base)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		pdfPath, sourceName := generatePDF, ""
		if pdfPath == "-" {
			sourceName = stdinSourceName
			staged, cleanup, err := document.Stage(cmd.InOrStdin())
			defer cleanup()
			if err != nil {
				return err
			}
			pdfPath = staged
		}

		svc, err := podcast.NewServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		ep, err := podcast.Generate(ctx, podcast.Request{
			PDFPath:    pdfPath,
			SourceName: sourceName,
			Title:      generateTitle,
			Config:     cfg,
			Services:   svc,
			OnStage:    func(s string) { fmt.Fprintf(out, "%s %s\n", stage("==>"), s) },
		})
		if err != nil {
			return err
		}
		printEpisode(out, ep)
		return nil
	},
}

// generateConfig applies the generate flags (and the picker, when asked) on top of cfg.
func generateConfig(cfg appconfig.Config) (appconfig.Config, error) {
	if generatePersona != "" {
		cfg.Persona = generatePersona
	}
	if generateHostVoice != "" {
		cfg.HostVoice = generateHostVoice
	}
	if generateGuestVoice != "" {
		cfg.GuestVoice = generateGuestVoice
	}
	if generatePlainScript {
		cfg.PlainScript = true
	}
	if generateNoCover {
		cfg.GoogleAPIKey = ""
	}
	if generateInteractive {
		sel, err := tui.Pick(tui.Selection{Persona: cfg.Persona, HostVoice: cfg.HostVoice, GuestVoice: cfg.GuestVoice})
		if err != nil {
			return cfg, err
		}
		cfg.Persona, cfg.HostVoice, cfg.GuestVoice = sel.Persona, sel.HostVoice, sel.GuestVoice
	}
	cfg.Canonicalize()
	return cfg, nil
}

func printEpisode(out io.Writer, ep podcast.Episode) {
	fmt.Fprintf(out, "\n%s %s\n", success("Episode:"), ep.Title)
	fmt.Fprintf(out, "  Host:   %s\n", ep.HostName)
	fmt.Fprintf(out, "  Guest:  %s\n", ep.Research.GuestName())
	fmt.Fprintf(out, "  Script: %s\n", ep.ScriptPath)
	fmt.Fprintf(out, "  Audio:  %s (%d segment(s))\n", ep.AudioPath, ep.Synthesized)
	if ep.Skipped > 0 {
		fmt.Fprintf(out, "  %s %d segment(s) could not be synthesized and were left out\n", warn("Warning:"), ep.Skipped)
	}
	if ep.CoverPath != "" {
		fmt.Fprintf(out, "  Cover:  %s\n", ep.CoverPath)
	}
	for _, m := range ep.Usage {
		s := m.OverallStats
		fmt.Fprintf(out, "  Usage:  %s %d request(s), %.0f prompt / %.0f completion tokens, %.0fms mean latency\n",
			m.ModelName, s.TotalRequests, s.InputTokens.Sum, s.OutputTokens.Sum, s.LatencyMillis.Mean)
	}
	fmt.Fprintln(out)
	printTurns(out, ep.Transcript.Turns)
}

func init() {
	generateCmd.Flags().StringVar(&generatePDF, "pdf", "", "path to the PDF, or - for stdin")
	generateCmd.Flags().StringVar(&generatePersona, "persona", "", "podcast style: "+strings.Join(appconfig.PersonaNames(), ", "))
	generateCmd.Flags().StringVar(&generateHostVoice, "host-voice", "", "host voice: "+strings.Join(appconfig.VoiceIDs(), ", "))
	generateCmd.Flags().StringVar(&generateGuestVoice, "guest-voice", "", "guest voice: "+strings.Join(appconfig.VoiceIDs(), ", "))
	generateCmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "choose persona and voices interactively")
	generateCmd.Flags().BoolVar(&generatePlainScript, "plain-script", false, "ask for a labelled plain-text script instead of structured JSON")
	generateCmd.Flags().StringVar(&generateTitle, "title", "", "episode title (defaults to the PDF title or file name)")
	generateCmd.Flags().BoolVar(&generateNoCover, "no-cover", false, "skip cover art even when a Google API key is set")
	rootCmd.AddCommand(generateCmd)
}

