// Package report renders processed catalog statistics for people: Markdown
// and terminal tables for the CLI, PNG charts and an HTML page for the
// dashboard.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
	"github.com/KaramelBytes/specimen-cli/internal/missing"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
)

// Summary is everything the text renderers need about one dataset.
type Summary struct {
	Name     string             `json:"name,omitempty"`
	Overview processor.Overview `json:"overview"`
	Bundle   processor.Bundle   `json:"stats"`
}

// Markdown renders a section-headed report.
func Markdown(s Summary) string {
	var b strings.Builder
	b.WriteString("[CATALOG SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Specimens: %d\n", s.Overview.TotalSpecimens))
	b.WriteString(fmt.Sprintf("Countries: %d\n", s.Overview.Countries))
	b.WriteString(fmt.Sprintf("Classes: %d\n", s.Overview.Classes))
	if len(s.Overview.TopCountries) > 0 {
		b.WriteString("Top countries: ")
		for i, g := range s.Overview.TopCountries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%s (%.1f%%)", safeVal(g.Label), g.Percentage))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[MISSING DATA]\n")
	writeMissing(&b, s.Bundle.Missing)

	writeGroups(&b, "COUNTRIES", s.Bundle.Countries)
	writeGroups(&b, "CLASSES", s.Bundle.Classes)
	writeGroups(&b, "ORDERS", s.Bundle.Orders)
	writeGroups(&b, "FAMILIES", s.Bundle.Families)
	return b.String()
}

func writeMissing(b *strings.Builder, m missing.Stats) {
	if m.TotalRows == 0 {
		b.WriteString("(no rows)\n")
		return
	}
	for _, l := range m.Lines() {
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", l.Name, l.Count, l.Percent))
	}
}

func writeGroups(b *strings.Builder, title string, rows []aggregate.GroupCount) {
	b.WriteString("\n[")
	b.WriteString(title)
	b.WriteString("]\n")
	if len(rows) == 0 {
		b.WriteString("(none)\n")
		return
	}
	b.WriteString("| Label | Count | % |\n|---|---:|---:|\n")
	for _, g := range rows {
		b.WriteString(fmt.Sprintf("| %s | %d | %.1f |\n", safeVal(g.Label), g.Count, g.Percentage))
	}
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
