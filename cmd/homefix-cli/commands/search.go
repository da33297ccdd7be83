package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-cli/ui"
	"github.com/cswnn/Capstone-Homefix2/internal/bootstrap"
	"github.com/cswnn/Capstone-Homefix2/internal/ingest"
)

type searchRow struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Distance float32 `json:"distance"`
	Preview  string  `json:"preview"`
}

func newSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Show the knowledge base records retrieved for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			query := strings.Join(args, " ")

			kb, err := loadKnowledgeBase(ctx, e)
			if err != nil {
				return err
			}

			matches, err := kb.Retriever.Retrieve(ctx, query)
			if err != nil {
				return fmt.Errorf("retrieve: %w", err)
			}

			rows := make([]searchRow, len(matches))
			for i, m := range matches {
				rows[i] = searchRow{
					ID:       m.ID,
					Title:    kb.Records[m.ID].Title,
					Distance: m.Distance,
					Preview:  ui.Truncate(m.Document, 80),
				}
			}

			if e.ui.JSONMode() {
				return e.ui.JSON(rows)
			}

			e.ui.Section(query)
			if len(rows) == 0 {
				e.ui.Warning("no records matched")
				return nil
			}
			for _, r := range rows {
				e.ui.KeyValue(fmt.Sprintf("#%d %.4f", r.ID, r.Distance), r.Title)
				e.ui.Line("      %s", r.Preview)
			}
			return nil
		},
	}
}

// loadKnowledgeBase embeds the knowledge base titles with a progress bar.
func loadKnowledgeBase(ctx context.Context, e *env) (*ingest.KnowledgeBase, error) {
	embedder, err := bootstrap.NewEmbedder(e.cfg)
	if err != nil {
		return nil, err
	}

	bar := e.ui.ProgressBar(0, "embedding titles")
	kb, err := bootstrap.LoadKnowledgeBase(ctx, e.cfg, embedder, e.logger, bar.Set)
	bar.Finish()
	if err != nil {
		return nil, err
	}
	e.ui.Success("loaded %d records", len(kb.Records))
	return kb, nil
}
