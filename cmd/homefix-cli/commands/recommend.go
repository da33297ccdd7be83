package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/internal/bootstrap"
	"github.com/cswnn/Capstone-Homefix2/internal/recommend"
)

func newRecommendCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <problem> [location]",
		Short: "Run the product recommendation pipeline",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			problem, location := args[0], ""
			if len(args) > 1 {
				location = args[1]
			}

			searcher := bootstrap.NewSearcher(ctx, e.cfg, e.logger)
			if searcher == nil {
				e.ui.Warning("search credentials missing, showing fallback links")
			}
			pipeline := recommend.NewPipeline(searcher, nil, recommend.Config{
				PerKeyword: e.cfg.Search.PerKeyword,
				PerGroup:   e.cfg.Search.PerGroup,
				Timeout:    e.cfg.Search.Timeout,
			}, e.logger)

			spin := e.ui.Spinner("searching products")
			spin.Start()
			groups := pipeline.Recommend(ctx, problem, location)
			spin.Stop()

			if e.ui.JSONMode() {
				return e.ui.JSON(map[string]interface{}{"groups": groups})
			}

			for _, g := range groups {
				title := g.Group
				if g.Required {
					title += " (필수)"
				}
				e.ui.Section(title)
				for _, item := range g.Items {
					e.ui.Line("  • %s", item.Title)
					if item.Price != nil {
						e.ui.KeyValue("    price", *item.Price)
					}
					if item.Rating != nil {
						e.ui.KeyValue("    rating", *item.Rating)
					}
					e.ui.KeyValue("    link", item.Link)
				}
			}
			return nil
		},
	}
}
