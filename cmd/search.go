package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"repackget/internal/browser"
	"repackget/internal/config"
	"repackget/internal/logger"
	"repackget/internal/search"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <title...>",
	Short: "List the site's results for a title without downloading",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		cfg := config.AppConfig
		drv, err := browser.Open(browserOptions(cfg))(ctx, "")
		if err != nil {
			return err
		}
		defer func() {
			if err := drv.Close(); err != nil {
				logger.Debug("closing search session: %v", err)
			}
		}()

		res := search.New(drv, siteAdapter(cfg), searchOptions(cfg)).Search(ctx, strings.Join(args, " "))
		if !res.OK() {
			return res.Err()
		}
		for _, r := range res.Value {
			fmt.Printf("%d. %s - %s\n", r.Index, r.Title, r.URL)
		}
		return nil
	},
}
