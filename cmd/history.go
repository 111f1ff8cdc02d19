package cmd

import (
	"fmt"
	"path/filepath"

	"repackget/internal/config"
	"repackget/internal/index"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous runs recorded in the download root",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(config.AppConfig.DownloadRoot)
		if err != nil {
			return err
		}
		entries, err := index.NewStore(afero.NewOsFs(), root).Load()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded in", root)
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-40s %d/%d  %s\n", e.FinishedAt.Local().Format("2006-01-02 15:04"), e.Title, e.Completed, e.Parts, e.Directory)
		}
		return nil
	},
}
