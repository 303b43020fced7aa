package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

func catalog(rows ...specimen.Row) *specimen.Dataset {
	return &specimen.Dataset{
		Columns: []string{"Catalog", "Country", "State", "Class", "Order", "Family"},
		Rows:    rows,
	}
}

func TestProcess_CountryEndToEnd(t *testing.T) {
	p := New(DefaultOptions())
	out, err := p.Process([]any{
		map[string]any{"Country": "USA"},
		map[string]any{"Country": "usa"},
		map[string]any{"Country": ""},
		map[string]any{"Country": "UK"},
	})
	require.NoError(t, err)
	counts := aggregate.CountBy(labels(out, specimen.FieldCountry), true)
	assert.Equal(t, map[string]int{"United States": 1, "usa": 1, "United Kingdom": 1}, counts)
}

func TestProcess_BooleanCountryIsMissing(t *testing.T) {
	p := New(DefaultOptions())
	out, err := p.Process(catalog(
		specimen.Row{"Country": specimen.Boolean("TRUE"), "Class": specimen.Boolean("TRUE"), "Order": specimen.Boolean("false")},
	))
	require.NoError(t, err)
	row := out.Rows[0]
	assert.True(t, row.Get(specimen.FieldCountry).IsAbsent())
	assert.True(t, row.Get(specimen.FieldOrder).IsAbsent())
	assert.Equal(t, "true", row.Get(specimen.FieldClass).String())
}

func TestProcess_PreservesOrderAndPassThrough(t *testing.T) {
	src := catalog(
		specimen.Row{"Catalog": specimen.Str("B-2"), "Country": specimen.Str("U.K."), "Class": specimen.Num(5),
			"Order": specimen.Str("passeriformes"), "Family": specimen.Str("Family"), "State": specimen.Str("Kent")},
		specimen.Row{"Catalog": specimen.Num(17), "Country": specimen.Str("Mexico"), "Class": specimen.Str("Coll. #"),
			"Order": specimen.Str("Species"), "Family": specimen.Str("ranidae"), "State": specimen.Null()},
	)
	out, err := New(DefaultOptions()).Process(src)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, src.Columns, out.Columns)

	first := out.Rows[0]
	assert.Equal(t, "B-2", first.Get("Catalog").String())
	assert.Equal(t, "United Kingdom", first.Get("Country").String())
	assert.Equal(t, "Aves", first.Get("Class").String())
	assert.Equal(t, "Passeriformes", first.Get("Order").String())
	assert.True(t, first.Get("Family").IsAbsent())
	assert.Equal(t, "Kent", first.Get("State").String())

	second := out.Rows[1]
	assert.True(t, second.Get("Catalog").Equal(specimen.Num(17)))
	assert.True(t, second.Get("Class").IsAbsent())
	assert.True(t, second.Get("Order").IsAbsent())
	assert.Equal(t, "Ranidae", second.Get("Family").String())

	// source untouched
	assert.Equal(t, "U.K.", src.Rows[0].Get("Country").String())
}

func TestProcess_IsIdempotent(t *testing.T) {
	p := New(DefaultOptions())
	once, err := p.Process(catalog(
		specimen.Row{"Country": specimen.Str(" USA "), "Class": specimen.Str("3"), "Order": specimen.Str("anura"), "Family": specimen.Str("hylidae")},
		specimen.Row{"Country": specimen.Str("Species"), "Class": specimen.Num(9), "Order": specimen.Str(""), "Family": specimen.Null()},
	))
	require.NoError(t, err)
	twice, err := p.Process(once)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestProcess_MalformedInput(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opt := DefaultOptions()
	opt.Logger = zap.New(core)
	p := New(opt)

	cases := []struct {
		name  string
		in    any
		index int
	}{
		{"nil", nil, -1},
		{"string", "Country,Class\nUSA,3", -1},
		{"object", map[string]any{"Country": "USA"}, -1},
		{"non-row element", []any{map[string]any{"Country": "USA"}, 42}, 1},
		{"nil dataset", (*specimen.Dataset)(nil), -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := p.Process(tc.in)
			require.Error(t, err)
			var mie *MalformedInputError
			require.True(t, errors.As(err, &mie))
			assert.Equal(t, tc.index, mie.Index)
			require.NotNil(t, out)
			assert.Equal(t, 0, out.Len())
		})
	}
	assert.Equal(t, len(cases), logs.Len())
}

func TestProcess_DecodedJSON(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`[{"Country":"US","Class":3,"Order":null},{"Country":"Peru","Class":"Aves"}]`), &raw))
	out, err := New(DefaultOptions()).Process(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Class", "Country", "Order"}, out.Columns)
	assert.Equal(t, "United States", out.Rows[0].Get("Country").String())
	assert.Equal(t, "Amphibia", out.Rows[0].Get("Class").String())
	assert.Equal(t, "Aves", out.Rows[1].Get("Class").String())
}

func orderRows(n int) []specimen.Row {
	var rows []specimen.Row
	for i := 0; i < n; i++ {
		// order i appears i+1 times
		for j := 0; j <= i; j++ {
			rows = append(rows, specimen.Row{
				"Order":  specimen.Str(fmt.Sprintf("Order%02d", i)),
				"Family": specimen.Str(fmt.Sprintf("Fam%02d", i)),
			})
		}
	}
	return rows
}

func TestSummarize_OrderAndFamilyCapped(t *testing.T) {
	ds := catalog(orderRows(15)...)
	b := New(DefaultOptions()).Summarize(ds)

	require.Len(t, b.Orders, 11)
	assert.Equal(t, "Order14", b.Orders[0].Label)
	assert.Equal(t, 15, b.Orders[0].Count)
	other := b.Orders[10]
	assert.Equal(t, OtherOrders, other.Label)
	assert.Equal(t, 1+2+3+4+5, other.Count)

	require.Len(t, b.Families, 11)
	assert.Equal(t, OtherFamilies, b.Families[10].Label)

	total := 0
	pct := 0.0
	for _, g := range b.Orders {
		total += g.Count
		pct += g.Percentage
	}
	assert.Equal(t, ds.Len(), total)
	assert.LessOrEqual(t, math.Abs(pct-100), 0.5)
}

func TestSummarize_CountryAndClassUncapped(t *testing.T) {
	var rows []specimen.Row
	for i := 0; i < 14; i++ {
		rows = append(rows, specimen.Row{
			"Country": specimen.Str(fmt.Sprintf("Country%02d", i)),
			"Class":   specimen.Str(fmt.Sprintf("Class%02d", i)),
		})
	}
	b := New(DefaultOptions()).Summarize(catalog(rows...))
	assert.Len(t, b.Countries, 14)
	assert.Len(t, b.Classes, 14)
	// equal counts fall back to label order
	assert.Equal(t, "Country00", b.Countries[0].Label)
}

func TestSummarize_SmallDatasetKeepsZeroOtherBucket(t *testing.T) {
	out, err := New(DefaultOptions()).Process(catalog(
		specimen.Row{"Order": specimen.Str("anura"), "Family": specimen.Str("ranidae")},
	))
	require.NoError(t, err)
	b := New(DefaultOptions()).Summarize(out)
	assert.Equal(t, []aggregate.GroupCount{
		{Label: "Anura", Count: 1, Percentage: 100},
		{Label: OtherOrders, Count: 0, Percentage: 0},
	}, b.Orders)
}

func TestSummarize_ExcludedRegions(t *testing.T) {
	opt := DefaultOptions()
	opt.ExcludedRegions = []string{"Pacific Ocean", "IndoPac"}
	ds := catalog(
		specimen.Row{"Country": specimen.Str("Pacific Ocean")},
		specimen.Row{"Country": specimen.Str("IndoPac")},
		specimen.Row{"Country": specimen.Str("Chile")},
		specimen.Row{"Country": specimen.Str("Chile")},
		specimen.Row{"Country": specimen.Str("Peru")},
	)
	b := New(opt).Summarize(ds)
	assert.Equal(t, []aggregate.GroupCount{
		{Label: "Chile", Count: 2, Percentage: 66.7},
		{Label: "Peru", Count: 1, Percentage: 33.3},
	}, b.Countries)
	// excluded labels still count as present for the missing-data view
	assert.Equal(t, 0, b.Missing.MissingCountry)
}

func TestSummarize_Empty(t *testing.T) {
	b := New(DefaultOptions()).Summarize(&specimen.Dataset{})
	assert.Empty(t, b.Countries)
	assert.Empty(t, b.Classes)
	assert.Equal(t, []aggregate.GroupCount{{Label: OtherOrders}}, b.Orders)
	assert.Equal(t, 0, b.Missing.TotalRows)
}

func TestSummarize_IsPure(t *testing.T) {
	ds := catalog(orderRows(12)...)
	p := New(DefaultOptions())
	assert.Equal(t, p.Summarize(ds), p.Summarize(ds))
}

func TestOverview(t *testing.T) {
	ds := catalog(
		specimen.Row{"Country": specimen.Str("Chile"), "Class": specimen.Str("Aves")},
		specimen.Row{"Country": specimen.Str("Chile"), "Class": specimen.Str("Aves")},
		specimen.Row{"Country": specimen.Str("Peru"), "Class": specimen.Str("Mammalia")},
		specimen.Row{"Country": specimen.Null(), "Class": specimen.Null()},
	)
	opt := DefaultOptions()
	opt.OverviewTop = 1
	ov := New(opt).Overview(ds)
	assert.Equal(t, 4, ov.TotalSpecimens)
	assert.Equal(t, 2, ov.Countries)
	assert.Equal(t, 2, ov.Classes)
	assert.Equal(t, []aggregate.GroupCount{{Label: "Chile", Count: 2, Percentage: 50}}, ov.TopCountries)
}

func TestValidateColumns(t *testing.T) {
	ok := &specimen.Dataset{Columns: []string{"Country", "Class", "Order", "Family"}, Rows: []specimen.Row{{}}}
	assert.NoError(t, ValidateColumns(ok))

	bad := &specimen.Dataset{Columns: []string{"Country", "Order"}, Rows: []specimen.Row{{}}}
	err := ValidateColumns(bad)
	var mce *MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"Class", "Family"}, mce.Columns)
	assert.Contains(t, err.Error(), "Class, Family")

	var mie *MalformedInputError
	assert.True(t, errors.As(ValidateColumns(&specimen.Dataset{Columns: ok.Columns}), &mie))
}
