package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/specimen-cli/internal/normalize"
	"github.com/KaramelBytes/specimen-cli/internal/utils"
)

// DefaultExcludedRegions are the ocean labels left out of the country ranking.
var DefaultExcludedRegions = []string{"Pacific Ocean", "Eastern Pacific Ocean", "Pacific", "IndoPac"}

// Global configuration structure.
type Global struct {
	DataPath      string `mapstructure:"data_path" yaml:"data_path"`
	CacheDir      string `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours" yaml:"cache_ttl_hours"`
	TopN          int    `mapstructure:"top_n" yaml:"top_n"`

	// HTTP dashboard
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	UploadDir   string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Normalization tables, merged over the built-in ones
	CountryAliases  map[string]string `mapstructure:"country_aliases" yaml:"country_aliases,omitempty"`
	ClassCodes      map[string]string `mapstructure:"class_codes" yaml:"class_codes,omitempty"`
	ExcludedRegions []string          `mapstructure:"excluded_regions" yaml:"excluded_regions"`

	// Input decoding
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		CacheDir:        "~/.specimen/cache",
		CacheTTLHours:   24,
		TopN:            10,
		ListenAddr:      "127.0.0.1:8080",
		UploadDir:       "~/.specimen/uploads",
		MaxUploadMB:     32,
		ExcludedRegions: append([]string(nil), DefaultExcludedRegions...),
	}
}

// CacheTTL returns the cache lifetime as a duration.
func (c *Global) CacheTTL() time.Duration {
	if c.CacheTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// Tables returns the normalization tables with configured overrides applied.
func (c *Global) Tables() normalize.Tables {
	return normalize.DefaultTables().Merge(normalize.Tables{
		CountryAliases: c.CountryAliases,
		ClassCodes:     c.ClassCodes,
	})
}

// DelimiterRune returns the configured CSV delimiter, or 0 to pick by extension.
func (c *Global) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.specimen/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := utils.HomeDir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory, when present, is loaded into the
// environment first; variables already set win.
func Load(cfgFile string) (*Global, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SPECIMEN")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("cache_ttl_hours", d.CacheTTLHours)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("upload_dir", d.UploadDir)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("excluded_regions", d.ExcludedRegions)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sheet", d.Sheet)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := utils.HomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		if err := readTables(used, &c); err != nil {
			return nil, err
		}
	}
	if err := c.ResolvePaths(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ResolvePaths expands "~" in the configured directories.
func (c *Global) ResolvePaths() error {
	for _, p := range []*string{&c.CacheDir, &c.UploadDir, &c.DataPath} {
		resolved, err := utils.ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = resolved
	}
	return nil
}

// readTables re-reads the lookup tables straight from YAML. Viper folds map
// keys to lower case, which would break exact alias matching.
func readTables(path string, c *Global) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	var raw struct {
		CountryAliases map[string]string `yaml:"country_aliases"`
		ClassCodes     map[string]string `yaml:"class_codes"`
	}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.CountryAliases = raw.CountryAliases
	c.ClassCodes = raw.ClassCodes
	return nil
}
