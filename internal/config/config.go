package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"repackget/internal/i18n"
	"repackget/internal/logger"
	"repackget/internal/site"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Timeouts struct {
	ElementWait     time.Duration `mapstructure:"element_wait"`     // explicit wait for the download trigger
	Download        time.Duration `mapstructure:"download"`         // whole redirect+download attempt
	Completion      time.Duration `mapstructure:"completion"`       // filesystem completion polling
	PollInterval    time.Duration `mapstructure:"poll_interval"`    // directory listing interval
	PageSettle      time.Duration `mapstructure:"page_settle"`      // after opening a part or mirror page
	SearchSettle    time.Duration `mapstructure:"search_settle"`    // after loading search/result pages
	ClickSettle     time.Duration `mapstructure:"click_settle"`     // after the first click, before looking for tabs
	RedirectInspect time.Duration `mapstructure:"redirect_inspect"` // time given to a pop-up before closing it
	Reclick         time.Duration `mapstructure:"reclick"`          // before the second click
	PartPause       time.Duration `mapstructure:"part_pause"`       // between parts
}

type Config struct {
	DownloadRoot       string         `mapstructure:"download_root"`
	BrowserBin         string         `mapstructure:"browser_bin"`    // empty: system Chrome
	ExtensionPath      string         `mapstructure:"extension_path"` // unpacked extension dir
	UserDataDir        string         `mapstructure:"user_data_dir"`
	Headless           bool           `mapstructure:"headless"`
	NotifyEmail        string         `mapstructure:"notify_email"` // msmtp recipient of the run summary
	InProgressSuffixes []string       `mapstructure:"in_progress_suffixes"`
	Timeouts           Timeouts       `mapstructure:"timeouts"`
	Site               site.Selectors `mapstructure:"site"`
}

var AppConfig Config

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("download_root", filepath.Join(home, "Downloads", "repacks"))
	v.SetDefault("browser_bin", "")
	v.SetDefault("extension_path", "")
	v.SetDefault("user_data_dir", "")
	v.SetDefault("headless", false)
	v.SetDefault("notify_email", "")
	v.SetDefault("in_progress_suffixes", []string{".crdownload"})

	v.SetDefault("timeouts.element_wait", 10*time.Second)
	v.SetDefault("timeouts.download", 300*time.Second)
	v.SetDefault("timeouts.completion", 600*time.Second)
	v.SetDefault("timeouts.poll_interval", time.Second)
	v.SetDefault("timeouts.page_settle", 5*time.Second)
	v.SetDefault("timeouts.search_settle", 2*time.Second)
	v.SetDefault("timeouts.click_settle", 2*time.Second)
	v.SetDefault("timeouts.redirect_inspect", 2*time.Second)
	v.SetDefault("timeouts.reclick", time.Second)
	v.SetDefault("timeouts.part_pause", 2*time.Second)

	d := site.DefaultSelectors()
	v.SetDefault("site.base_url", d.BaseURL)
	v.SetDefault("site.search_path", d.SearchPath)
	v.SetDefault("site.result_selector", d.Result)
	v.SetDefault("site.title_selector", d.Title)
	v.SetDefault("site.mirror_selector", d.Mirror)
	v.SetDefault("site.parts_selector", d.Parts)
	v.SetDefault("site.trigger_xpath", d.TriggerXPath)
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func InitConfig() {
	// .env is optional
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if runtime.GOOS == "linux" {
		viper.AddConfigPath("/etc/repackget/")
	}
	viper.AddConfigPath("$HOME/.config/repackget")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("REPACKGET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Debug("%s", i18n.T("config_missing"))
		} else {
			logger.Error(i18n.T("config_read_error"), err)
			os.Exit(1)
		}
	}

	cfg, err := Load(viper.GetViper())
	if err != nil {
		logger.Error(i18n.T("config_decode_error"), err)
	}
	AppConfig = cfg
}
