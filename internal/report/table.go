package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
	"github.com/KaramelBytes/specimen-cli/internal/missing"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
)

// Table renders one ranked distribution as a terminal table.
func Table(title string, rows []aggregate.GroupCount) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Label", "Count", "%"})
	total := 0
	for i, g := range rows {
		t.AppendRow(table.Row{i + 1, g.Label, g.Count, fmt.Sprintf("%.1f", g.Percentage)})
		total += g.Count
	}
	t.AppendFooter(table.Row{"", "Total", total, ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// MissingTable renders the missing-data counters.
func MissingTable(m missing.Stats) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Missing data (%d rows)", m.TotalRows))
	t.AppendHeader(table.Row{"Field", "Missing", "%"})
	for _, l := range m.Lines() {
		t.AppendRow(table.Row{l.Name, l.Count, fmt.Sprintf("%.1f", l.Percent)})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// Tables renders the full summary, one table per section.
func Tables(s Summary) string {
	var b strings.Builder
	b.WriteString(MissingTable(s.Bundle.Missing))
	b.WriteString("\n")
	for _, sec := range Sections(s.Bundle) {
		b.WriteString(Table(sec.Title, sec.Rows))
		b.WriteString("\n")
	}
	return b.String()
}

// SectionFor returns the section of b named by field.
func SectionFor(b processor.Bundle, field string) (Section, bool) {
	for _, sec := range Sections(b) {
		if sec.Field == field {
			return sec, true
		}
	}
	return Section{}, false
}

// Section is one titled distribution of a Bundle.
type Section struct {
	Field string
	Title string
	Rows  []aggregate.GroupCount
}

// Sections lists the distributions of b in display order.
func Sections(b processor.Bundle) []Section {
	return []Section{
		{Field: "country", Title: "Specimens by country", Rows: b.Countries},
		{Field: "class", Title: "Specimens by class", Rows: b.Classes},
		{Field: "order", Title: "Specimens by order", Rows: b.Orders},
		{Field: "family", Title: "Specimens by family", Rows: b.Families},
	}
}
