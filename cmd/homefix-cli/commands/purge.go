package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/internal/bootstrap"
	"github.com/cswnn/Capstone-Homefix2/internal/recommend"
)

type purgeResult struct {
	Driver  string `json:"driver"`
	Removed int    `json:"removed"`
}

func newPurgeCacheCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Remove cached product search results",
		Long: `purge-cache deletes every cached Custom Search result so the next
/recommend/ call queries the search API again. Only the redis cache driver
persists between processes; with the memory driver there is nothing to purge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			res := &bootstrap.Resources{}
			defer res.Close()

			c, err := res.NewCache(e.cfg)
			if err != nil {
				return err
			}
			removed, err := c.Purge(ctx, recommend.CacheNamespace)
			if err != nil {
				return err
			}

			e.logger.Info().Str("driver", e.cfg.Cache.Driver).Int("removed", removed).Msg("search cache purged")

			if e.ui.JSONMode() {
				return e.ui.JSON(purgeResult{Driver: e.cfg.Cache.Driver, Removed: removed})
			}
			if e.cfg.Cache.Driver != "redis" {
				e.ui.Warning("cache driver is %s; cached results live only inside the API process", e.cfg.Cache.Driver)
			}
			e.ui.Success("removed %d cached search results", removed)
			return nil
		},
	}
}
