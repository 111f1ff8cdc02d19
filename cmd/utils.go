package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"repackget/internal/browser"
	"repackget/internal/config"
	"repackget/internal/downloader"
	"repackget/internal/monitor"
	"repackget/internal/redirect"
	"repackget/internal/search"
	"repackget/internal/site"
)

// The helpers below turn config.AppConfig into the option structs of each
// component; nothing under internal/ reads viper for them.

func browserOptions(cfg config.Config) browser.Options {
	return browser.Options{
		Bin:           cfg.BrowserBin,
		UserDataDir:   cfg.UserDataDir,
		ExtensionPath: cfg.ExtensionPath,
		Headless:      cfg.Headless,
	}
}

func siteAdapter(cfg config.Config) *site.Markup {
	return site.New(cfg.Site)
}

func searchOptions(cfg config.Config) search.Options {
	return search.Options{
		Settle:     cfg.Timeouts.SearchSettle,
		PageSettle: cfg.Timeouts.PageSettle,
	}
}

func newMonitor(fs afero.Fs, cfg config.Config) *monitor.Monitor {
	return monitor.New(fs, monitor.Options{
		Suffixes: cfg.InProgressSuffixes,
		Interval: cfg.Timeouts.PollInterval,
		Timeout:  cfg.Timeouts.Completion,
	})
}

func newDownloader(fs afero.Fs, cfg config.Config, adapter site.Adapter) *downloader.Downloader {
	handler := redirect.New(newMonitor(fs, cfg), redirect.Options{
		ClickSettle: cfg.Timeouts.ClickSettle,
		Inspect:     cfg.Timeouts.RedirectInspect,
		Reclick:     cfg.Timeouts.Reclick,
		Timeout:     cfg.Timeouts.Download,
	})
	return downloader.New(browser.Open(browserOptions(cfg)), adapter, handler, reporters(), downloader.Options{
		ElementWait: cfg.Timeouts.ElementWait,
		PageSettle:  cfg.Timeouts.PageSettle,
		PartPause:   cfg.Timeouts.PartPause,
	})
}

// reporters draws progress bars on a terminal and plain log lines otherwise.
func reporters() monitor.Reporters {
	if viper.GetBool("non_interactive") {
		return monitor.LogReporters()
	}
	return monitor.BarReporters(os.Stdout)
}
