package report

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
)

func sampleSummary(t *testing.T) Summary {
	t.Helper()
	p := processor.New(processor.DefaultOptions())
	ds, err := p.Process([]map[string]any{
		{"Country": "USA", "State": "Texas", "Class": 5, "Order": "passeriformes", "Family": "Corvidae"},
		{"Country": "US", "State": nil, "Class": "Aves", "Order": "Passeriformes", "Family": "Family"},
		{"Country": "Peru", "State": "Cusco", "Class": 3, "Order": "anura", "Family": "Bufonidae"},
		{"Country": "Mexico|North", "State": "", "Class": nil, "Order": nil, "Family": nil},
	})
	require.NoError(t, err)
	return Summary{Name: "catalog.csv", Overview: p.Overview(ds), Bundle: p.Summarize(ds)}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleSummary(t))
	assert.True(t, strings.HasPrefix(md, "[CATALOG SUMMARY]\nFile: catalog.csv\nSpecimens: 4\n"))
	assert.Contains(t, md, "Top countries: United States (50.0%)")
	assert.Contains(t, md, "[MISSING DATA]\n- Country: 0 (0.0%)\n- State: 2 (50.0%)\n")
	assert.Contains(t, md, "| United States | 2 | 50.0 |")
	assert.Contains(t, md, "| Mexico/North | 1 | 25.0 |", "pipes escaped")
	assert.Contains(t, md, "| Other Orders | 0 | 0.0 |")
}

func TestMarkdown_Empty(t *testing.T) {
	md := Markdown(Summary{})
	assert.Contains(t, md, "[MISSING DATA]\n(no rows)\n")
	assert.Contains(t, md, "[COUNTRIES]\n(none)\n")
}

func TestTables(t *testing.T) {
	// go-pretty may change the case of titles and footers
	out := strings.ToLower(Tables(sampleSummary(t)))
	for _, want := range []string{"missing data (4 rows)", "specimens by country", "united states", "specimens by family", "total"} {
		assert.Contains(t, out, want)
	}
}

func TestSectionFor(t *testing.T) {
	s := sampleSummary(t)
	sec, ok := SectionFor(s.Bundle, "class")
	require.True(t, ok)
	assert.Equal(t, "Aves", sec.Rows[0].Label)
	_, ok = SectionFor(s.Bundle, "genus")
	assert.False(t, ok)
}

func TestBarChart(t *testing.T) {
	b, err := BarChart("Countries", []aggregate.GroupCount{
		{Label: "United States", Count: 12, Percentage: 60},
		{Label: "Peru", Count: 8, Percentage: 40},
	})
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	_, err = BarChart("Empty", nil)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestBarChart_AllZero(t *testing.T) {
	b, err := BarChart("Orders", []aggregate.GroupCount{{Label: "Other Orders"}})
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestPieChart(t *testing.T) {
	b, err := PieChart("Classes", []aggregate.GroupCount{
		{Label: "Aves", Count: 3, Percentage: 75},
		{Label: "Amphibia", Count: 1, Percentage: 25},
		{Label: "Other", Count: 0},
	})
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	_, err = PieChart("Zero", []aggregate.GroupCount{{Label: "Other"}})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestCountBucket(t *testing.T) {
	cases := map[int]string{0: "0", 1: "1-9", 9: "1-9", 10: "10-49", 49: "10-49", 50: "50-99", 100: "100-199", 199: "100-199", 200: "200-499", 499: "200-499", 500: "500+", 12000: "500+"}
	for n, want := range cases {
		assert.Equal(t, want, CountBucket(n).Label, "count %d", n)
	}
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, Page{
		Summary:  sampleSummary(t),
		Loaded:   true,
		LoadedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Charts:   true,
		Message:  "<b>loaded</b>",
	}))
	html := buf.String()
	assert.Contains(t, html, "<title>Specimen catalog</title>")
	assert.Contains(t, html, "File: catalog.csv")
	assert.Contains(t, html, "2024-01-02 03:04:05 UTC")
	assert.Contains(t, html, `<img src="/charts/family.png"`)
	assert.Contains(t, html, "&lt;b&gt;loaded&lt;/b&gt;")
	assert.Contains(t, html, "Other Families")
	assert.Contains(t, html, `title="1-9"`)
}

func TestDashboard_NotLoaded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, Page{Error: "bad file"}))
	assert.Contains(t, buf.String(), "No dataset loaded yet")
	assert.Contains(t, buf.String(), `class="error">bad file`)
	assert.NotContains(t, buf.String(), "/export.csv")
}

func TestInteractivePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InteractivePage(&buf, sampleSummary(t)))
	html := buf.String()
	assert.Contains(t, html, "<title>catalog.csv</title>")
	assert.Contains(t, html, "Specimens by country")
	assert.Contains(t, html, "United States")
	assert.Contains(t, html, "echarts")
}
