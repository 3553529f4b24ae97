package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Source     SourceConfig     `toml:"source"`
	Paths      PathsConfig      `toml:"paths"`
	Crawl      CrawlConfig      `toml:"crawl"`
	Download   DownloadConfig   `toml:"download"`
	Store      StoreConfig      `toml:"store"`
	PocketBase PocketBaseConfig `toml:"pocketbase"`
	Translate  TranslateConfig  `toml:"translate"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notifications"`
}

type SourceConfig struct {
	URL       string `toml:"url"`
	UserAgent string `toml:"user_agent"`
}

type PathsConfig struct {
	SaveLocation string `toml:"save_location"`
	SnapshotFile string `toml:"snapshot_file"` // Optional, defaults to <save_location>/prompts.json
	ImagesDir    string `toml:"images_dir"`    // Optional, defaults to <save_location>/images
}

type CrawlConfig struct {
	FlushEvery       int `toml:"flush_every"`
	ScrollStep       int `toml:"scroll_step"`
	MaxScrolls       int `toml:"max_scrolls"`
	ListTimeoutSec   int `toml:"list_timeout_seconds"`
	DetailTimeoutSec int `toml:"detail_timeout_seconds"`
}

type DownloadConfig struct {
	Concurrency   int `toml:"concurrency"`
	RetryAttempts int `toml:"retry_attempts"`
	RetryDelaySec int `toml:"retry_delay_seconds"`
	TimeoutSec    int `toml:"timeout_seconds"`
}

type StoreConfig struct {
	DSN             string `toml:"dsn"`
	ImagesURLPrefix string `toml:"images_url_prefix"`
}

type PocketBaseConfig struct {
	URL           string `toml:"url"`
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"`
}

type TranslateConfig struct {
	Endpoint string `toml:"endpoint"`
	APIKey   string `toml:"api_key"`
	DelayMS  int    `toml:"delay_ms"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

type NotifyConfig struct {
	Enabled      bool `toml:"enabled"`
	SystemNotify bool `toml:"system_notify"`
}

func GetConfigPath() string {
	currentDirConfig := "config.toml"
	if _, err := os.Stat(currentDirConfig); err == nil {
		return currentDirConfig
	}

	return filepath.Join(GetConfigDir(), "config.toml")
}

func GetConfigDir() string {
	var configDir string
	var err error

	if runtime.GOOS == "darwin" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		configDir = filepath.Join(homeDir, ".config")
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			log.Fatal(err)
		}
	}

	return filepath.Join(configDir, "gallery-crawler")
}

func SaveConfig(cfg *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(cfg)
}

// EnsureConfigExists writes a default config when none is present so a
// first run fails with "fill in your config" instead of a stack trace.
func EnsureConfigExists(configPath string) error {
	if _, err := os.Stat(filepath.Dir(configPath)); os.IsNotExist(err) {
		err = os.MkdirAll(filepath.Dir(configPath), os.ModePerm)
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := CreateDefaultConfig()
		if err := SaveConfig(defaultConfig, configPath); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
	}

	return nil
}

func LoadConfig(configPath string) (*Config, error) {
	var config Config
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, err
	}

	if config.Source.URL == "" {
		return nil, fmt.Errorf("source url is empty in %v", configPath)
	}
	if config.Paths.SaveLocation == "" {
		return nil, fmt.Errorf("save_location is empty in %v", configPath)
	}

	config.Paths.SaveLocation = filepath.ToSlash(config.Paths.SaveLocation)
	if config.Paths.SnapshotFile == "" {
		config.Paths.SnapshotFile = filepath.ToSlash(filepath.Join(config.Paths.SaveLocation, "prompts.json"))
	}
	if config.Paths.ImagesDir == "" {
		config.Paths.ImagesDir = filepath.ToSlash(filepath.Join(config.Paths.SaveLocation, "images"))
	}

	if config.Crawl.FlushEvery <= 0 {
		config.Crawl.FlushEvery = 50
	}
	if config.Crawl.ScrollStep <= 0 {
		config.Crawl.ScrollStep = 500
	}
	if config.Crawl.MaxScrolls <= 0 {
		config.Crawl.MaxScrolls = 100
	}
	if config.Crawl.ListTimeoutSec <= 0 {
		config.Crawl.ListTimeoutSec = 60
	}
	if config.Crawl.DetailTimeoutSec <= 0 {
		config.Crawl.DetailTimeoutSec = 5
	}

	if config.Download.Concurrency <= 0 {
		config.Download.Concurrency = 5
	}
	if config.Download.RetryAttempts <= 0 {
		config.Download.RetryAttempts = 3
	}
	if config.Download.RetryDelaySec <= 0 {
		config.Download.RetryDelaySec = 2
	}
	if config.Download.TimeoutSec <= 0 {
		config.Download.TimeoutSec = 30
	}

	if config.Store.DSN == "" {
		config.Store.DSN = filepath.ToSlash(filepath.Join(config.Paths.SaveLocation, "gallery.db"))
	}
	if config.Store.ImagesURLPrefix == "" {
		config.Store.ImagesURLPrefix = "/images"
	}

	if config.Translate.DelayMS <= 0 {
		config.Translate.DelayMS = 1000
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8090"
	}

	return &config, nil
}

func CreateDefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:       "",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Paths: PathsConfig{
			SaveLocation: "/path/to/save/data/to",
		},
		Crawl: CrawlConfig{
			FlushEvery: 50,
			ScrollStep: 500,
			MaxScrolls: 100,
		},
		Download: DownloadConfig{
			Concurrency:   5,
			RetryAttempts: 3,
			RetryDelaySec: 2,
			TimeoutSec:    30,
		},
		Store: StoreConfig{
			ImagesURLPrefix: "/images",
		},
		PocketBase: PocketBaseConfig{
			URL: "http://127.0.0.1:8090",
		},
		Translate: TranslateConfig{
			DelayMS: 1000,
		},
		Server: ServerConfig{
			Listen: ":8090",
		},
	}
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Download.RetryDelaySec) * time.Second
}

func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSec) * time.Second
}
