// Package normalize maps raw catalog cells to canonical display strings.
//
// Source spreadsheets are hand exported and routinely leak header text into
// data columns, so every normalizer treats a fixed set of placeholder
// literals as missing. A normalizer returns "" for anything unusable.
package normalize

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

// Placeholder literals treated as missing, per field.
var (
	CountryPlaceholders = []string{"Country", "Species"}
	ClassPlaceholders   = []string{"Class", "Coll. #"}
	OrderPlaceholders   = []string{"Order"}
	FamilyPlaceholders  = []string{"Family"}
	// NamePlaceholders covers both Order and Family cells.
	NamePlaceholders = append(append([]string{}, OrderPlaceholders...), FamilyPlaceholders...)
	// NameBleedMarkers reject Order/Family values containing these substrings anywhere.
	NameBleedMarkers = []string{"Class", "Spec"}
)

// Tables holds the lookup tables a Normalizer consults.
type Tables struct {
	CountryAliases map[string]string `mapstructure:"country_aliases" yaml:"country_aliases"`
	ClassCodes     map[string]string `mapstructure:"class_codes" yaml:"class_codes"`
}

// DefaultTables returns fresh copies of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		CountryAliases: map[string]string{
			"USA":                      "United States",
			"U.S.A.":                   "United States",
			"US":                       "United States",
			"U.S.":                     "United States",
			"United States of America": "United States",
			"UK":                       "United Kingdom",
			"U.K.":                     "United Kingdom",
			"Great Britain":            "United Kingdom",
		},
		ClassCodes: map[string]string{
			"1": "Chondrichthyes",
			"2": "Actinopterygii",
			"3": "Amphibia",
			"4": "Reptilia",
			"5": "Aves",
			"6": "Mammalia",
		},
	}
}

// Merge overlays extra entries on top of t and returns the result. t is not modified.
func (t Tables) Merge(extra Tables) Tables {
	out := Tables{
		CountryAliases: make(map[string]string, len(t.CountryAliases)+len(extra.CountryAliases)),
		ClassCodes:     make(map[string]string, len(t.ClassCodes)+len(extra.ClassCodes)),
	}
	for k, v := range t.CountryAliases {
		out.CountryAliases[k] = v
	}
	for k, v := range extra.CountryAliases {
		out.CountryAliases[k] = v
	}
	for k, v := range t.ClassCodes {
		out.ClassCodes[k] = v
	}
	for k, v := range extra.ClassCodes {
		out.ClassCodes[k] = v
	}
	return out
}

// Normalizer applies field rules using its own private copy of the lookup tables.
type Normalizer struct {
	countries map[string]string
	classes   map[string]string
}

// New builds a Normalizer. The tables are copied so later changes by the
// caller have no effect.
func New(t Tables) *Normalizer {
	c := Tables{}.Merge(t)
	return &Normalizer{countries: c.CountryAliases, classes: c.ClassCodes}
}

var std = New(DefaultTables())

// Default returns the Normalizer backed by the built-in tables.
func Default() *Normalizer { return std }

// Country canonicalizes a country cell. Only string cells qualify; the
// alias lookup is exact and case-sensitive.
func (n *Normalizer) Country(v specimen.Value) string {
	s, ok := v.Text()
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" || oneOf(s, CountryPlaceholders) {
		return ""
	}
	if canon, ok := n.countries[s]; ok {
		return canon
	}
	return s
}

// TaxonomicClass canonicalizes a class cell. Numeric cells are coerced to
// text first so 3 and "3" resolve to the same class; booleans become
// "true"/"false".
func (n *Normalizer) TaxonomicClass(v specimen.Value) string {
	if v.IsAbsent() {
		return ""
	}
	s := v.String()
	if b, ok := v.Bool(); ok {
		s = strconv.FormatBool(b)
	}
	s = strings.TrimSpace(s)
	if s == "" || oneOf(s, ClassPlaceholders) {
		return ""
	}
	if name, ok := n.classes[s]; ok {
		return name
	}
	return s
}

// TaxonomicName canonicalizes an Order or Family cell: trims it and upper
// cases the first character, leaving the rest untouched.
func (n *Normalizer) TaxonomicName(v specimen.Value) string {
	s, ok := v.Text()
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" || oneOf(s, NamePlaceholders) || containsAny(s, NameBleedMarkers) {
		return ""
	}
	return upperFirst(s)
}

// Row returns a normalized copy of r. Country, Class, Order and Family are
// rewritten when the row carries them; a canonical "" is stored as Absent so
// the value survives a text round trip. Other columns pass through.
func (n *Normalizer) Row(r specimen.Row) specimen.Row {
	out := r.Clone()
	set := func(key string, canon string) {
		if !r.Has(key) {
			return
		}
		if canon == "" {
			out[key] = specimen.Null()
			return
		}
		out[key] = specimen.Str(canon)
	}
	set(specimen.FieldCountry, n.Country(r.Get(specimen.FieldCountry)))
	set(specimen.FieldClass, n.TaxonomicClass(r.Get(specimen.FieldClass)))
	set(specimen.FieldOrder, n.TaxonomicName(r.Get(specimen.FieldOrder)))
	set(specimen.FieldFamily, n.TaxonomicName(r.Get(specimen.FieldFamily)))
	return out
}

// Country normalizes with the built-in tables.
func Country(v specimen.Value) string { return std.Country(v) }

// TaxonomicClass normalizes with the built-in tables.
func TaxonomicClass(v specimen.Value) string { return std.TaxonomicClass(v) }

// TaxonomicName normalizes an Order or Family cell.
func TaxonomicName(v specimen.Value) string { return std.TaxonomicName(v) }

func oneOf(s string, set []string) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, x := range subs {
		if strings.Contains(s, x) {
			return true
		}
	}
	return false
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
