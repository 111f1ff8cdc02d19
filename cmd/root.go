package cmd

import (
	"fmt"
	"os"

	"repackget/internal/config"
	"repackget/internal/i18n"
	"repackget/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "repackget",
	Short: "Automated downloader for multi-part repack archives",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		i18n.Init() // language first, config messages are translated
		config.InitConfig()
		logger.Init()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive UI (progress bars)")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("non_interactive", rootCmd.PersistentFlags().Lookup("non-interactive"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
