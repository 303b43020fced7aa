package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/KaramelBytes/specimen-cli/internal/missing"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"pct":    func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"bucket": CountBucket,
	"inc":    func(i int) int { return i + 1 },
	"when": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05 MST")
	},
}).ParseFS(templateFS, "templates/dashboard.html"))

// Page is the data behind the dashboard.
type Page struct {
	Title    string
	Summary  Summary
	Loaded   bool
	LoadID   string
	LoadedAt time.Time
	Message  string
	Error    string
	// Charts toggles the chart image links; the server serves them.
	Charts bool
}

// MissingLines exposes the missing-data counters to the template.
func (p Page) MissingLines() []missing.Line { return p.Summary.Bundle.Missing.Lines() }

// Sections exposes the distributions to the template.
func (p Page) Sections() []Section { return Sections(p.Summary.Bundle) }

// Legend lists the country count buckets.
func (p Page) Legend() []Bucket { return Buckets }

// Dashboard renders the HTML dashboard for page.
func Dashboard(w io.Writer, page Page) error {
	if page.Title == "" {
		page.Title = "Specimen catalog"
	}
	if err := dashboardTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
