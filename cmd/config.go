package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/specimen-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Specimen configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		if cfg.DataPath != "" {
			fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		}
		fmt.Fprintf(out, "cache_dir: %s\n", cfg.CacheDir)
		fmt.Fprintf(out, "cache_ttl_hours: %d\n", cfg.CacheTTLHours)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "upload_dir: %s\n", cfg.UploadDir)
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(out, "excluded_regions: %s\n", strings.Join(cfg.ExcludedRegions, ", "))
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		if len(cfg.CountryAliases) > 0 {
			fmt.Fprintf(out, "country_aliases: %d custom\n", len(cfg.CountryAliases))
		}
		if len(cfg.ClassCodes) > 0 {
			fmt.Fprintf(out, "class_codes: %d custom\n", len(cfg.ClassCodes))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk. Map keys take the form
country_aliases.<raw> and class_codes.<code>; excluded_regions takes a
comma-separated list.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setKey(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	if raw, ok := strings.CutPrefix(key, "country_aliases."); ok {
		if c.CountryAliases == nil {
			c.CountryAliases = map[string]string{}
		}
		c.CountryAliases[raw] = val
		return nil
	}
	if code, ok := strings.CutPrefix(key, "class_codes."); ok {
		if c.ClassCodes == nil {
			c.ClassCodes = map[string]string{}
		}
		c.ClassCodes[code] = val
		return nil
	}
	switch key {
	case "data_path":
		c.DataPath = val
	case "cache_dir":
		c.CacheDir = val
	case "upload_dir":
		c.UploadDir = val
	case "listen_addr":
		c.ListenAddr = val
	case "delimiter":
		c.Delimiter = val
	case "sheet":
		c.Sheet = val
	case "excluded_regions":
		var regions []string
		for _, r := range strings.Split(val, ",") {
			if r = strings.TrimSpace(r); r != "" {
				regions = append(regions, r)
			}
		}
		c.ExcludedRegions = regions
	case "cache_ttl_hours", "top_n", "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		switch key {
		case "cache_ttl_hours":
			c.CacheTTLHours = i
		case "top_n":
			c.TopN = i
		default:
			c.MaxUploadMB = i
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
