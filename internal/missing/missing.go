// Package missing tallies incomplete geographic and taxonomic information.
package missing

import (
	"strings"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
	"github.com/KaramelBytes/specimen-cli/internal/normalize"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

// Stats counts rows lacking each tracked field. Every counter is in [0, TotalRows]
// and a row may contribute to several of them.
type Stats struct {
	TotalRows         int `json:"totalRows"`
	MissingCountry    int `json:"missingCountry"`
	MissingState      int `json:"missingState"`
	MissingGeographic int `json:"missingGeographic"`
	MissingClass      int `json:"missingClass"`
	MissingOrder      int `json:"missingOrder"`
	MissingFamily     int `json:"missingFamily"`
	MissingTaxonomic  int `json:"missingTaxonomic"`
}

// Compute classifies every row of ds. Geographic cells are missing when
// absent or blank after trimming. Taxonomic cells are missing when absent,
// empty, or exactly equal to one of their header literals.
func Compute(ds *specimen.Dataset) Stats {
	s := Stats{TotalRows: ds.Len()}
	if ds == nil {
		return s
	}
	for _, r := range ds.Rows {
		noCountry := blank(r.Get(specimen.FieldCountry))
		noState := blank(r.Get(specimen.FieldState))
		if noCountry {
			s.MissingCountry++
		}
		if noState {
			s.MissingState++
		}
		if noCountry && noState {
			s.MissingGeographic++
		}

		noClass := placeholder(r.Get(specimen.FieldClass), normalize.ClassPlaceholders)
		noOrder := placeholder(r.Get(specimen.FieldOrder), normalize.OrderPlaceholders)
		noFamily := placeholder(r.Get(specimen.FieldFamily), normalize.FamilyPlaceholders)
		if noClass {
			s.MissingClass++
		}
		if noOrder {
			s.MissingOrder++
		}
		if noFamily {
			s.MissingFamily++
		}
		if noClass && noOrder && noFamily {
			s.MissingTaxonomic++
		}
	}
	return s
}

// Percent returns n as a share of TotalRows, rounded to one decimal.
func (s Stats) Percent(n int) float64 {
	return aggregate.Percent(n, s.TotalRows)
}

// Line is one named counter, for table renderers.
type Line struct {
	Name    string
	Count   int
	Percent float64
}

// Lines lists the counters in a fixed display order.
func (s Stats) Lines() []Line {
	items := []struct {
		name string
		n    int
	}{
		{"Country", s.MissingCountry},
		{"State", s.MissingState},
		{"Geographic (Country and State)", s.MissingGeographic},
		{"Class", s.MissingClass},
		{"Order", s.MissingOrder},
		{"Family", s.MissingFamily},
		{"Taxonomic (Class, Order and Family)", s.MissingTaxonomic},
	}
	out := make([]Line, len(items))
	for i, it := range items {
		out[i] = Line{Name: it.name, Count: it.n, Percent: s.Percent(it.n)}
	}
	return out
}

func blank(v specimen.Value) bool {
	return v.IsAbsent() || strings.TrimSpace(v.String()) == ""
}

func placeholder(v specimen.Value, literals []string) bool {
	if v.IsAbsent() {
		return true
	}
	s := v.String()
	if s == "" {
		return true
	}
	for _, l := range literals {
		if s == l {
			return true
		}
	}
	return false
}
