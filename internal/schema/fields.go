// Package schema defines the QA packet field schema: the required field
// labels, numeric tolerance ranges, and the per-field fallback patterns
// used when positional extraction fails.
package schema

import (
	"fmt"
	"regexp"
	"sort"
)

// Field is a single required field in the packet schema.
type Field struct {
	// Name is the literal label used to locate the field in page text.
	Name string

	// Numeric marks fields whose extracted value must parse as a number
	// within [Lo, Hi] inclusive.
	Numeric bool
	Lo, Hi  float64

	// pattern is the fallback matcher scanned over full page text when
	// positional extraction yields nothing for this field.
	pattern *regexp.Regexp
}

// Pattern returns the field's fallback pattern.
func (f *Field) Pattern() *regexp.Regexp {
	return f.pattern
}

// Schema is an immutable, process-wide set of required fields.
// Field order matters for report layout only, never for extraction.
type Schema struct {
	fields []Field
	byName map[string]*Field
}

// Version is the identifier callers pass at submission time to select a
// field schema. DefaultVersion is the built-in QA packet schema.
const DefaultVersion = "v1"

// defaultNames lists the required fields of a QA packet, in report order.
var defaultNames = []string{
	"Customer Name",
	"Customer P.O. Number",
	"Customer Part Number",
	"Customer Part Number Revision",
	"AEM Part Number",
	"AEM Lot Number",
	"AEM Date Code",
	"AEM Cage Code",
	"Customer Quality Clauses",
	"FAI Form 3",
	"Solderability Test Report",
	"DPA",
	"Visual Inspection Record",
	"Shipment Quantity",
	"Reel Labels",
	"Certificate of Conformance",
	"Route Sheet",
	"Part Number",
	"Lot Number",
	"Date",
	"Resistance",
	"Dimension",
}

// defaultRanges maps numeric field names to their tolerance bounds.
var defaultRanges = map[string][2]float64{
	"Resistance": {95, 105},
	"Dimension":  {0.9, 1.1},
}

// ConsistencyFields are checked for a single distinct value across all
// pages where they appear. Violations are report anomalies, not
// validation failures.
var ConsistencyFields = []string{"Part Number", "Lot Number", "Date"}

// Default returns the built-in QA packet schema.
func Default() *Schema {
	s, err := build(defaultNames, defaultRanges)
	if err != nil {
		// The built-in field names are static; a pattern compile failure
		// here is a programming error.
		panic(err)
	}
	return s
}

// build constructs a Schema from field names and numeric ranges.
func build(names []string, ranges map[string][2]float64) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("schema has no fields")
	}

	s := &Schema{
		fields: make([]Field, 0, len(names)),
		byName: make(map[string]*Field, len(names)),
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		seen[name] = true

		f := Field{Name: name}
		if r, ok := ranges[name]; ok {
			if r[0] > r[1] {
				return nil, fmt.Errorf("field %q: lower bound %v above upper bound %v", name, r[0], r[1])
			}
			f.Numeric = true
			f.Lo, f.Hi = r[0], r[1]
		}

		// Label followed by an optional separator and the rest of the line.
		pat, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name) + `[:\s]*([^\n]+)`)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		f.pattern = pat

		s.fields = append(s.fields, f)
	}
	for name := range ranges {
		if !seen[name] {
			return nil, fmt.Errorf("numeric range declared for unknown field %q", name)
		}
	}

	for i := range s.fields {
		s.byName[s.fields[i].Name] = &s.fields[i]
	}
	return s, nil
}

// Fields returns the schema's fields in report order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Names returns the field names in report order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the field with the given name, or nil.
func (s *Schema) Lookup(name string) *Field {
	return s.byName[name]
}

// Len returns the number of required fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// NumericFields returns the numeric fields sorted by name.
func (s *Schema) NumericFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.Numeric {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
