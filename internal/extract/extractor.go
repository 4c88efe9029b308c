package extract

import (
	"regexp"
	"strings"

	"github.com/aemqa/packetcheck/internal/pagetext"
	"github.com/aemqa/packetcheck/internal/schema"
)

// maxValueLen caps candidate values so a missing boundary never grabs a
// huge block of page text.
const maxValueLen = 1000

var (
	leadingSeparator = regexp.MustCompile(`^[\s:.\-]*`)
	innerWhitespace  = regexp.MustCompile(`\s+`)
)

// Candidate is a field value proposed by a single page.
type Candidate struct {
	Value  string
	Method Method
}

// ExtractPage derives a candidate value for every field it can find on
// one page. Positional extraction runs first: each label's value is the
// span between the end of the label and the next label's offset (or the
// end of the page). Fields that stay empty after the positional pass get
// one attempt with their fallback pattern over the full page text.
func ExtractPage(pt pagetext.PageText, occs []LabelOccurrence, s *schema.Schema) map[string]Candidate {
	out := make(map[string]Candidate)

	for i, occ := range occs {
		raw, bounded := spanAfter(pt.Text, occs, i)
		value := cleanValue(raw, bounded)
		if value != "" {
			out[occ.Field] = Candidate{Value: value, Method: MethodPositional}
		}
	}

	// Pattern fallback for anything the positional pass did not yield.
	for _, f := range s.Fields() {
		if _, ok := out[f.Name]; ok {
			continue
		}
		m := f.Pattern().FindStringSubmatch(pt.Text)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			out[f.Name] = Candidate{Value: v, Method: MethodRegex}
		}
	}

	return out
}

// spanAfter returns the raw text between occurrence i's label end and the
// next label's offset. bounded is false when the span runs to the end of
// the page with no closing label.
func spanAfter(text string, occs []LabelOccurrence, i int) (raw string, bounded bool) {
	start := occs[i].End
	if i+1 < len(occs) {
		return text[start:occs[i+1].Offset], true
	}
	return text[start:], false
}

// cleanValue normalizes a raw positional span: strips the leading
// separator, collapses internal whitespace, and trims. An unbounded span
// is cut at the first line break so a trailing label never drags in the
// rest of the page.
func cleanValue(raw string, bounded bool) string {
	raw = leadingSeparator.ReplaceAllString(raw, "")
	if !bounded {
		if nl := strings.IndexByte(raw, '\n'); nl >= 0 {
			raw = raw[:nl]
		}
	}
	value := strings.TrimSpace(innerWhitespace.ReplaceAllString(raw, " "))
	if len(value) > maxValueLen {
		value = value[:maxValueLen]
	}
	return value
}

// ProcessPage folds one page into the record: locate labels, extract
// candidates, merge under the first-non-missing-wins rule.
func ProcessPage(rec *Record, pt pagetext.PageText, s *schema.Schema) {
	occs := FindLabels(pt, s)
	cands := ExtractPage(pt, occs, s)
	rec.Apply(pt.PageIndex, cands)
}
