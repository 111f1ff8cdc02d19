package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"repackget/internal/browser"
	"repackget/internal/config"
	"repackget/internal/index"
	"repackget/internal/logger"
	"repackget/internal/notifier"
	"repackget/internal/orchestrator"
	"repackget/internal/prompt"
	"repackget/internal/registry"
	"repackget/internal/utils"
	"repackget/internal/workspace"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var getCmd = &cobra.Command{
	Use:   "get [title...]",
	Short: "Search a title and download all of its parts",
	Long: `Searches the repack site for the title (asked for when omitted), lets you pick
a result, then downloads every part of its mirror into
<download_root>/<sanitized title>. Exits non-zero if any part failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := config.AppConfig
		root, err := filepath.Abs(cfg.DownloadRoot)
		if err != nil {
			return err
		}

		fs := afero.NewOsFs()
		adapter := siteAdapter(cfg)
		orc := orchestrator.New(orchestrator.Deps{
			FS:         fs,
			Workspace:  workspace.New(fs, root),
			Open:       browser.Open(browserOptions(cfg)),
			Site:       adapter,
			Operator:   prompt.NewConsole(os.Stdin, os.Stdout),
			Downloader: newDownloader(fs, cfg, adapter),
			Search:     searchOptions(cfg),
		})

		state, err := orc.Run(ctx, strings.Join(args, " "))
		if state != nil {
			if herr := index.NewStore(fs, root).Append(index.EntryFor(state)); herr != nil {
				logger.Warn("Could not update history: %v", herr)
			}
			notify(state, err)
			if open, _ := cmd.Flags().GetBool("open"); open {
				if oerr := utils.OpenPath(state.Directory); oerr != nil {
					logger.Warn("Could not open %s: %v", state.Directory, oerr)
				}
			}
		}
		return err
	},
}

func notify(state *registry.RunState, runErr error) {
	m := notifier.New(config.AppConfig.NotifyEmail)
	subject := fmt.Sprintf("repackget: %s %d/%d", state.Title, state.Completed(), len(state.Parts))
	body := fmt.Sprintf("Run %s\nDirectory: %s\n", state.ID, state.Directory)
	for _, p := range state.Parts {
		body += fmt.Sprintf("Part %02d: %s %s\n", p.PartNumber, p.Status, p.Error)
	}
	if runErr != nil {
		body += "\n" + runErr.Error() + "\n"
	}
	if err := m.Send(subject, body); err != nil {
		logger.Warn("%v", err)
	}
}

func init() {
	getCmd.Flags().String("dir", "", "Download root (overrides download_root)")
	getCmd.Flags().Bool("headless", false, "Run the browser without a window")
	getCmd.Flags().Bool("open", false, "Open the download folder when finished")
	viper.BindPFlag("download_root", getCmd.Flags().Lookup("dir"))
	viper.BindPFlag("headless", getCmd.Flags().Lookup("headless"))
}
