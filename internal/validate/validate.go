// Package validate checks an extracted field record against a schema.
// Validation is a pure function of its inputs: it performs no I/O and
// never mutates the record.
package validate

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/aemqa/packetcheck/internal/extract"
	"github.com/aemqa/packetcheck/internal/schema"
)

// numericToken matches the first decimal number in a value, so units and
// other trailing text ("98.5 ohms") do not defeat the range check.
var numericToken = regexp.MustCompile(`[0-9]*\.?[0-9]+`)

// RangeViolation describes a numeric field outside its allowed range, or
// one whose value could not be parsed as a number.
type RangeViolation struct {
	Value string  `json:"value"`
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
}

// Inconsistency describes a field that took different values on
// different pages of the same document.
type Inconsistency struct {
	Values []extract.PageValue `json:"values"`
}

// Result is the outcome of validating one record.
type Result struct {
	MissingFields []string                  `json:"missing_fields"`
	OutOfRange    map[string]RangeViolation `json:"out_of_range,omitempty"`
	Inconsistent  map[string]Inconsistency  `json:"inconsistent,omitempty"`
	Valid         bool                      `json:"valid"`
}

// Validate checks the record for missing fields, out-of-range numeric
// values, and cross-page inconsistencies on the schema's designated
// consistency fields. Bounds are inclusive; a numeric field whose value
// yields no parseable number counts as out of range. Inconsistencies
// are reported as anomalies only: Valid depends on missing and range
// outcomes alone.
func Validate(rec *extract.Record, s *schema.Schema) Result {
	res := Result{
		OutOfRange:   make(map[string]RangeViolation),
		Inconsistent: make(map[string]Inconsistency),
	}

	for _, f := range s.Fields() {
		fv := rec.Get(f.Name)
		if fv.Method == extract.MethodMissing {
			res.MissingFields = append(res.MissingFields, f.Name)
			continue
		}
		if !f.Numeric {
			continue
		}
		n, ok := parseNumeric(fv.Value)
		if !ok || n < f.Lo || n > f.Hi {
			res.OutOfRange[f.Name] = RangeViolation{Value: fv.Value, Lo: f.Lo, Hi: f.Hi}
		}
	}
	sort.Strings(res.MissingFields)

	for _, name := range schema.ConsistencyFields {
		if rec.Consistent(name) {
			continue
		}
		res.Inconsistent[name] = Inconsistency{Values: rec.PageValues(name)}
	}

	if len(res.OutOfRange) == 0 {
		res.OutOfRange = nil
	}
	if len(res.Inconsistent) == 0 {
		res.Inconsistent = nil
	}
	res.Valid = len(res.MissingFields) == 0 && res.OutOfRange == nil
	return res
}

// parseNumeric extracts the first numeric token from a value.
func parseNumeric(v string) (float64, bool) {
	tok := numericToken.FindString(v)
	if tok == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
