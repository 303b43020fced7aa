package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KaramelBytes/specimen-cli/internal/cache"
	cfgpkg "github.com/KaramelBytes/specimen-cli/internal/config"
	"github.com/KaramelBytes/specimen-cli/internal/normalize"
	"github.com/KaramelBytes/specimen-cli/internal/parser"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

// settings returns the loaded configuration, falling back to defaults when
// the command runs without the root initializer.
func settings() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}

// newProcessor builds a processor from config; topN > 0 overrides top_n.
func newProcessor(topN int) *processor.Processor {
	c := settings()
	opt := processor.DefaultOptions()
	if c.TopN > 0 {
		opt.TopN = c.TopN
	}
	if topN > 0 {
		opt.TopN = topN
	}
	opt.ExcludedRegions = c.ExcludedRegions
	opt.Normalizer = normalize.New(c.Tables())
	opt.Logger = logger
	return processor.New(opt)
}

// parserOptions merges --delimiter/--sheet flags over config.
func parserOptions(delim, sheet string) (parser.Options, error) {
	c := settings()
	opt := parser.Options{Delimiter: c.DelimiterRune(), Sheet: c.Sheet}
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	if sheet != "" {
		opt.Sheet = sheet
	}
	return opt, nil
}

// loadDataset reads and normalizes path.
func loadDataset(path string, opt parser.Options, p *processor.Processor) (*specimen.Dataset, error) {
	raw, err := parser.ReadFile(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Debug("read dataset", zap.String("path", path), zap.Int("rows", raw.Len()), zap.Strings("columns", raw.Columns))
	return p.Process(raw)
}

func openCache() (*cache.Store, error) {
	return cache.Open(settings().CacheDir)
}
