package paper2pod

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/document"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/rag"
)

var ragPreviewPDF string

// ragCmd groups retrieval commands.
var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Inspect the retrieval index for a PDF",
}

// ragPreviewCmd previews retrieval and context assembly for a query.
var ragPreviewCmd = &cobra.Command{
	Use:   "preview <query>",
	Short: "Preview RAG retrieval and context assembly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("query is required")
		}
		if strings.TrimSpace(ragPreviewPDF) == "" {
			return fmt.Errorf("--pdf is required")
		}
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return appconfig.ErrMissingCredential
		}

		doc, err := document.Load(ragPreviewPDF)
		if err != nil {
			return err
		}
		chunks := rag.ChunkText(doc.Text, cfg.ChunkSize, cfg.Overlap())
		logging.LogEvent("[RAG] %q: %d chunk(s) of %d runes, overlap %d", doc.Title, len(chunks), cfg.ChunkSize, cfg.Overlap())

		index, err := rag.BuildIndex(cmd.Context(), rag.NewEmbeddingClient(*cfg), chunks)
		if err != nil {
			return err
		}
		return rag.WritePreview(cmd.Context(), cmd.OutOrStdout(), index, query, cfg.TopK, cfg.ContextTokenLimit)
	},
}

func init() {
	ragPreviewCmd.Flags().StringVar(&ragPreviewPDF, "pdf", "", "path to the PDF to index")
	ragCmd.AddCommand(ragPreviewCmd)
	rootCmd.AddCommand(ragCmd)
}
