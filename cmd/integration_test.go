package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/specimen-cli/internal/parser"
)

const catalogCSV = "Catalog,Country,State,Class,Order,Family\n" +
	"1,USA,Texas,5,passeriformes,Corvidae\n" +
	"2,U.S.A.,,5,Passeriformes,Fringillidae\n" +
	"3,Peru,Cusco,3,anura,Bufonidae\n" +
	"4,IndoPac,,1,Order,\n"

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset bound flag variables; cobra keeps them across invocations
	sumFormat, sumOutput, sumChartsDir, sumHTML, sumTopN, sumDelimiter, sumSheet = "markdown", "", "", "", 0, "", ""
	normOutput, normDelimiter, normSheet = "", "", ""
	valDelimiter, valSheet = "", ""
	cfg = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// sandbox isolates HOME and writes a config file pointing the cache into it.
func sandbox(t *testing.T) (dir, cfgPath, csvPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache_dir: "+filepath.Join(dir, "cache")+"\n"), 0o644))
	csvPath = filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(catalogCSV), 0o644))
	return dir, cfgPath, csvPath
}

func TestCLI_SummarizeMarkdown(t *testing.T) {
	_, cfgPath, csvPath := sandbox(t)
	out, err := runCmd(t, "--config", cfgPath, "summarize", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[CATALOG SUMMARY]\nFile: catalog.csv\nSpecimens: 4\n")
	assert.Contains(t, out, "| United States | 2 | 66.7 |", "IndoPac is excluded by default")
	assert.NotContains(t, out, "IndoPac |")
	assert.Contains(t, out, "| Other Orders | 0 | 0.0 |")
}

func TestCLI_SummarizeJSONAndCharts(t *testing.T) {
	dir, cfgPath, csvPath := sandbox(t)
	outFile := filepath.Join(dir, "summary.json")
	charts := filepath.Join(dir, "charts")
	page := filepath.Join(dir, "charts.html")
	out, err := runCmd(t, "--config", cfgPath, "summarize", csvPath, "--format", "json", "-o", outFile, "--charts", charts, "--html", page, "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote summary to")

	b, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"totalSpecimens": 4`)
	assert.Contains(t, string(b), `"label": "Other Families"`)

	for _, f := range []string{"country", "class", "order", "family"} {
		_, err := os.Stat(filepath.Join(charts, f+".png"))
		assert.NoError(t, err, f)
	}
	html, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Specimens by family")
}

func TestCLI_SummarizeBadFormat(t *testing.T) {
	_, cfgPath, csvPath := sandbox(t)
	_, err := runCmd(t, "--config", cfgPath, "summarize", csvPath, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --format")
}

func TestCLI_NormalizeRoundTrip(t *testing.T) {
	dir, cfgPath, csvPath := sandbox(t)
	outFile := filepath.Join(dir, "normalized.csv")
	out, err := runCmd(t, "--config", cfgPath, "normalize", csvPath, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote 4 specimens")

	ds, err := parser.ReadFile(outFile, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, "United States", ds.Rows[1].Get("Country").String())
	assert.Equal(t, "Aves", ds.Rows[1].Get("Class").String())
	assert.True(t, ds.Rows[3].Get("Order").IsAbsent())

	// normalizing the export again changes nothing
	again := filepath.Join(dir, "again.csv")
	_, err = runCmd(t, "--config", cfgPath, "normalize", outFile, "-o", again)
	require.NoError(t, err)
	first, err := os.ReadFile(outFile)
	require.NoError(t, err)
	second, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestCLI_Validate(t *testing.T) {
	dir, cfgPath, csvPath := sandbox(t)
	out, err := runCmd(t, "--config", cfgPath, "validate", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "required columns present")
	assert.Contains(t, out, "⚠ Order missing in 1 rows (25.0%)")

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Country,Order\nPeru,Anura\n"), 0o644))
	out, err = runCmd(t, "--config", cfgPath, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Missing required columns: [Class Family]")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	_, cfgPath, _ := sandbox(t)
	_, err := runCmd(t, "--config", cfgPath, "config", "set", "top_n", "3")
	require.NoError(t, err)
	_, err = runCmd(t, "--config", cfgPath, "config", "set", "country_aliases.Aotearoa", "New Zealand")
	require.NoError(t, err)
	_, err = runCmd(t, "--config", cfgPath, "config", "set", "top_n", "zero")
	require.Error(t, err)

	out, err := runCmd(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "top_n: 3\n")
	assert.Contains(t, out, "country_aliases: 1 custom")
}

func TestCLI_CacheShowClear(t *testing.T) {
	dir, cfgPath, _ := sandbox(t)
	out, err := runCmd(t, "--config", cfgPath, "cache", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache is empty")

	store, err := openCache()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache"), store.Dir())
	require.NoError(t, store.Put("last-data-update", "now", 0))

	out, err = runCmd(t, "--config", cfgPath, "cache", "show")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "- last-data-update (stored"))

	out, err = runCmd(t, "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Removed 1 cached entries")
}
