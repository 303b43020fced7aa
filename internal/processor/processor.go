// Package processor normalizes a loaded specimen dataset and derives the
// statistics bundle the presentation layers render.
//
// Every operation is a pure function of its input dataset; a Processor holds
// only immutable configuration and may be shared between goroutines.
package processor

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
	"github.com/KaramelBytes/specimen-cli/internal/missing"
	"github.com/KaramelBytes/specimen-cli/internal/normalize"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

// RequiredColumns must be present in the header of an uploaded dataset.
var RequiredColumns = []string{
	specimen.FieldCountry,
	specimen.FieldClass,
	specimen.FieldOrder,
	specimen.FieldFamily,
}

// Labels of the synthetic tail buckets.
const (
	OtherOrders   = "Other Orders"
	OtherFamilies = "Other Families"
)

// Options controls normalization and summary behavior.
type Options struct {
	// TopN caps the Order and Family rankings; the rest is folded into an
	// "Other" bucket. Country and Class are never capped. Zero means 10.
	TopN int
	// OverviewTop is how many countries the overview highlights.
	OverviewTop int
	// ExcludedRegions are country labels left out of the country ranking.
	ExcludedRegions []string
	// Normalizer defaults to normalize.Default().
	Normalizer *normalize.Normalizer
	// Logger receives diagnostics; nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the catalog dashboard settings.
func DefaultOptions() Options {
	return Options{
		TopN:        10,
		OverviewTop: 5,
	}
}

// Processor runs normalization and aggregation with fixed options.
type Processor struct {
	topN        int
	overviewTop int
	excluded    map[string]struct{}
	norm        *normalize.Normalizer
	log         *zap.Logger
}

// New builds a Processor from opt.
func New(opt Options) *Processor {
	p := &Processor{
		topN:        opt.TopN,
		overviewTop: opt.OverviewTop,
		excluded:    make(map[string]struct{}, len(opt.ExcludedRegions)),
		norm:        opt.Normalizer,
		log:         opt.Logger,
	}
	if p.topN <= 0 {
		p.topN = 10
	}
	if p.overviewTop <= 0 {
		p.overviewTop = 5
	}
	for _, r := range opt.ExcludedRegions {
		p.excluded[r] = struct{}{}
	}
	if p.norm == nil {
		p.norm = normalize.Default()
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p
}

// Bundle is the set of statistics derived from one normalized dataset.
type Bundle struct {
	Missing   missing.Stats          `json:"missing"`
	Countries []aggregate.GroupCount `json:"countries"`
	Classes   []aggregate.GroupCount `json:"classes"`
	Orders    []aggregate.GroupCount `json:"orders"`
	Families  []aggregate.GroupCount `json:"families"`
}

// Overview holds headline figures for a normalized dataset.
type Overview struct {
	TotalSpecimens int                    `json:"totalSpecimens"`
	Countries      int                    `json:"countries"`
	Classes        int                    `json:"classes"`
	TopCountries   []aggregate.GroupCount `json:"topCountries"`
}

// Process normalizes raw, which may be a *specimen.Dataset, a
// specimen.Dataset, a []specimen.Row, or decoded JSON ([]any or
// []map[string]any of row objects). Malformed input yields an empty dataset
// and a *MalformedInputError; the source is never modified.
func (p *Processor) Process(raw any) (*specimen.Dataset, error) {
	ds, err := toDataset(raw)
	if err != nil {
		p.log.Warn("rejecting malformed dataset", zap.Error(err))
		return &specimen.Dataset{}, err
	}
	out := &specimen.Dataset{
		Columns: append([]string(nil), ds.Columns...),
		Rows:    make([]specimen.Row, len(ds.Rows)),
	}
	for i, r := range ds.Rows {
		out.Rows[i] = p.norm.Row(r)
	}
	p.log.Debug("normalized dataset", zap.Int("rows", len(out.Rows)), zap.Int("columns", len(out.Columns)))
	return out, nil
}

// Summarize computes missing-data counters and the ranked distribution of
// each tracked field. Orders and Families are capped at TopN plus an
// "Other" bucket which is always appended.
func (p *Processor) Summarize(ds *specimen.Dataset) Bundle {
	countries := p.countryLabels(ds)
	return Bundle{
		Missing:   missing.Compute(ds),
		Countries: aggregate.WithPercentages(aggregate.Rank(countries)),
		Classes:   aggregate.WithPercentages(aggregate.Rank(labels(ds, specimen.FieldClass))),
		Orders: aggregate.WithPercentages(aggregate.TopNWithOther(
			aggregate.Rank(labels(ds, specimen.FieldOrder)), p.topN, OtherOrders)),
		Families: aggregate.WithPercentages(aggregate.TopNWithOther(
			aggregate.Rank(labels(ds, specimen.FieldFamily)), p.topN, OtherFamilies)),
	}
}

// Overview computes the headline figures. Top country percentages are
// shares of all rows, not of rows with a country.
func (p *Processor) Overview(ds *specimen.Dataset) Overview {
	countries := labels(ds, specimen.FieldCountry)
	top := aggregate.Head(aggregate.Rank(countries), p.overviewTop)
	return Overview{
		TotalSpecimens: ds.Len(),
		Countries:      aggregate.Distinct(countries),
		Classes:        aggregate.Distinct(labels(ds, specimen.FieldClass)),
		TopCountries:   aggregate.PercentOf(top, ds.Len()),
	}
}

// ValidateColumns checks the header for RequiredColumns.
func ValidateColumns(ds *specimen.Dataset) error {
	if ds.Len() == 0 {
		return &MalformedInputError{Index: -1, Reason: "dataset has no rows"}
	}
	var absent []string
	for _, c := range RequiredColumns {
		if !ds.HasColumn(c) {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		return &MissingColumnsError{Columns: absent}
	}
	return nil
}

func (p *Processor) countryLabels(ds *specimen.Dataset) []string {
	out := labels(ds, specimen.FieldCountry)
	if len(p.excluded) == 0 {
		return out
	}
	for i, l := range out {
		if _, ok := p.excluded[l]; ok {
			out[i] = ""
		}
	}
	return out
}

func labels(ds *specimen.Dataset, field string) []string {
	vals := ds.Values(field)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func toDataset(raw any) (*specimen.Dataset, error) {
	switch x := raw.(type) {
	case *specimen.Dataset:
		if x == nil {
			return nil, &MalformedInputError{Index: -1, Reason: "nil dataset"}
		}
		return x, nil
	case specimen.Dataset:
		return &x, nil
	case []specimen.Row:
		return &specimen.Dataset{Columns: columnsOf(x), Rows: x}, nil
	case []map[string]any:
		rows := make([]specimen.Row, len(x))
		for i, m := range x {
			rows[i] = rowOf(m)
		}
		return &specimen.Dataset{Columns: columnsOf(rows), Rows: rows}, nil
	case []any:
		rows := make([]specimen.Row, len(x))
		for i, el := range x {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, &MalformedInputError{Index: i, Reason: fmt.Sprintf("expected a row object, got %T", el)}
			}
			rows[i] = rowOf(m)
		}
		return &specimen.Dataset{Columns: columnsOf(rows), Rows: rows}, nil
	case nil:
		return nil, &MalformedInputError{Index: -1, Reason: "no input"}
	default:
		return nil, &MalformedInputError{Index: -1, Reason: fmt.Sprintf("expected a sequence of rows, got %T", raw)}
	}
}

func rowOf(m map[string]any) specimen.Row {
	r := make(specimen.Row, len(m))
	for k, v := range m {
		r[k] = specimen.ValueOf(v)
	}
	return r
}

// columnsOf derives a header for rows that arrived without one: keys in
// first-seen order, with each row's keys visited in sorted order.
func columnsOf(rows []specimen.Row) []string {
	seen := map[string]struct{}{}
	var cols []string
	for _, r := range rows {
		for _, k := range sortedKeys(r) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

func sortedKeys(r specimen.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
