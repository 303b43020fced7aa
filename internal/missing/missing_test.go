package missing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/specimen-cli/internal/normalize"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

func ds(rows ...specimen.Row) *specimen.Dataset {
	return &specimen.Dataset{
		Columns: []string{"Country", "State", "Class", "Order", "Family"},
		Rows:    rows,
	}
}

func TestCompute_GeographicRequiresBothMissing(t *testing.T) {
	s := Compute(ds(specimen.Row{"Country": specimen.Str(""), "State": specimen.Str("")}))
	assert.Equal(t, 1, s.MissingGeographic)

	s = Compute(ds(specimen.Row{"Country": specimen.Str("France"), "State": specimen.Str("")}))
	assert.Equal(t, 0, s.MissingGeographic)
	assert.Equal(t, 1, s.MissingState)
	assert.Equal(t, 0, s.MissingCountry)

	s = Compute(ds(specimen.Row{"Country": specimen.Str("  "), "State": specimen.Str("Oaxaca")}))
	assert.Equal(t, 1, s.MissingCountry)
	assert.Equal(t, 0, s.MissingGeographic)
}

func TestCompute_GeographicUsesRawCells(t *testing.T) {
	// the header literal is not treated as missing for geographic fields
	s := Compute(ds(specimen.Row{"Country": specimen.Str("Country")}))
	assert.Equal(t, 0, s.MissingCountry)
	assert.Equal(t, 1, s.MissingState)
}

func TestCompute_TaxonomicPlaceholders(t *testing.T) {
	s := Compute(ds(
		specimen.Row{"Class": specimen.Str("Class"), "Order": specimen.Str("Order"), "Family": specimen.Str("Family")},
		specimen.Row{"Class": specimen.Str("Coll. #"), "Order": specimen.Null(), "Family": specimen.Str("")},
		specimen.Row{"Class": specimen.Num(5), "Order": specimen.Str(""), "Family": specimen.Str("")},
		specimen.Row{"Class": specimen.Str(""), "Order": specimen.Str("Anura"), "Family": specimen.Str("Family")},
	))
	assert.Equal(t, 4, s.TotalRows)
	assert.Equal(t, 3, s.MissingClass)
	assert.Equal(t, 3, s.MissingOrder)
	assert.Equal(t, 4, s.MissingFamily)
	assert.Equal(t, 2, s.MissingTaxonomic)
}

func TestCompute_SharesNormalizerPlaceholders(t *testing.T) {
	var rows []specimen.Row
	for _, lit := range normalize.ClassPlaceholders {
		rows = append(rows, specimen.Row{"Class": specimen.Str(lit), "Order": specimen.Str("Anura"), "Family": specimen.Str("Ranidae")})
	}
	for _, lit := range normalize.OrderPlaceholders {
		rows = append(rows, specimen.Row{"Class": specimen.Str("Aves"), "Order": specimen.Str(lit), "Family": specimen.Str("Ranidae")})
	}
	for _, lit := range normalize.FamilyPlaceholders {
		rows = append(rows, specimen.Row{"Class": specimen.Str("Aves"), "Order": specimen.Str("Anura"), "Family": specimen.Str(lit)})
	}
	s := Compute(ds(rows...))
	assert.Equal(t, len(normalize.ClassPlaceholders), s.MissingClass)
	assert.Equal(t, len(normalize.OrderPlaceholders), s.MissingOrder)
	assert.Equal(t, len(normalize.FamilyPlaceholders), s.MissingFamily)
	// an Order literal in the Family column is a real value here
	assert.Equal(t, 0, Compute(ds(specimen.Row{"Family": specimen.Str("Order")})).MissingFamily)
}

func TestCompute_CountersWithinBounds(t *testing.T) {
	s := Compute(ds(specimen.Row{}, specimen.Row{}, specimen.Row{"Country": specimen.Str("Peru")}))
	for _, l := range s.Lines() {
		assert.GreaterOrEqual(t, l.Count, 0)
		assert.LessOrEqual(t, l.Count, s.TotalRows)
	}
	assert.Equal(t, 2, s.MissingGeographic)
	assert.Equal(t, 3, s.MissingTaxonomic)
	assert.Equal(t, 66.7, s.Percent(s.MissingGeographic))
}

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Compute(nil))
	assert.Equal(t, Stats{}, Compute(ds()))
	assert.Equal(t, 0.0, Stats{}.Percent(0))
}
