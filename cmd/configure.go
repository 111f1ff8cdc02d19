package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"repackget/internal/config"
	"repackget/internal/i18n"
	"repackget/internal/prompt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure download directory and browser extension",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("========================================")
		fmt.Println(i18n.T("header_title"))
		fmt.Println("========================================")

		console := prompt.NewConsole(os.Stdin, os.Stdout)

		// 1. Download root
		root, err := console.Ask(i18n.T("prompt_download_root"), config.AppConfig.DownloadRoot)
		if err != nil {
			return err
		}
		absRoot, _ := filepath.Abs(root)
		viper.Set("download_root", absRoot)

		// 2. Extension
		ext, err := console.Ask(i18n.T("prompt_extension"), config.AppConfig.ExtensionPath)
		if err != nil && config.AppConfig.ExtensionPath != "" {
			return err
		}
		if ext != "" {
			ext, _ = filepath.Abs(ext)
		}
		viper.Set("extension_path", ext)

		// 3. Save
		if viper.ConfigFileUsed() == "" {
			home, _ := os.UserHomeDir()
			configDir := filepath.Join(home, ".config", "repackget")
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return fmt.Errorf(i18n.T("error_mkdir"), err)
			}
			viper.SetConfigFile(filepath.Join(configDir, "config.yaml"))
		}

		if err := viper.WriteConfig(); err != nil {
			if err := viper.WriteConfigAs(viper.ConfigFileUsed()); err != nil {
				return fmt.Errorf(i18n.T("error_save"), err)
			}
		}

		fmt.Printf(i18n.T("success_msg")+"\n", viper.ConfigFileUsed())
		return nil
	},
}
