package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/internal/ingest"
)

type titleRow struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func newTitlesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "List the record titles of the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(e.cfg.Knowledge.Path)
			if err != nil {
				return fmt.Errorf("read knowledge base: %w", err)
			}

			records := ingest.Parse(string(data))
			rows := make([]titleRow, len(records))
			for i, r := range records {
				rows[i] = titleRow{ID: i, Title: r.Title}
			}

			if e.ui.JSONMode() {
				return e.ui.JSON(rows)
			}

			e.ui.Section(fmt.Sprintf("%s (%d records)", e.cfg.Knowledge.Path, len(rows)))
			for _, r := range rows {
				title := r.Title
				if title == "" {
					title = "(제목 없음)"
				}
				e.ui.Line("%3d  %s", r.ID, title)
			}
			return nil
		},
	}
}
