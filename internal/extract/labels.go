// Package extract turns noisy page text into a structured field record.
// Field values are derived positionally from the spans between label
// occurrences, with a per-field pattern fallback.
package extract

import (
	"sort"
	"strings"

	"github.com/aemqa/packetcheck/internal/pagetext"
	"github.com/aemqa/packetcheck/internal/schema"
)

// LabelOccurrence is one located field label on a page.
type LabelOccurrence struct {
	Field     string
	PageIndex int
	Offset    int // byte offset of the label in the page text
	End       int // byte offset just past the label
}

// FindLabels locates every schema field label in the page text,
// case-insensitively, keeping at most one occurrence per field: the first
// offset on the page that is not swallowed by a longer label.
//
// Longer field names win at overlapping offsets, so "Part Number" inside
// "Customer Part Number" does not produce a false match.
func FindLabels(pt pagetext.PageText, s *schema.Schema) []LabelOccurrence {
	if strings.TrimSpace(pt.Text) == "" {
		return nil
	}
	lower := strings.ToLower(pt.Text)

	// Longest labels first, so their spans are claimed before any label
	// they contain is considered.
	fields := s.Names()
	sort.SliceStable(fields, func(i, j int) bool { return len(fields[i]) > len(fields[j]) })

	var occs []LabelOccurrence
	for _, field := range fields {
		label := strings.ToLower(field)
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], label)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(label)
			if containedInLonger(occs, field, start, end) {
				from = start + 1
				continue
			}
			occs = append(occs, LabelOccurrence{
				Field:     field,
				PageIndex: pt.PageIndex,
				Offset:    start,
				End:       end,
			})
			break
		}
	}

	sort.Slice(occs, func(i, j int) bool { return occs[i].Offset < occs[j].Offset })
	return occs
}

// containedInLonger reports whether [start, end) lies inside the span of
// an already-accepted occurrence of a longer label.
func containedInLonger(occs []LabelOccurrence, field string, start, end int) bool {
	for _, o := range occs {
		if o.Field == field {
			continue
		}
		if len(o.Field) >= len(field) && start >= o.Offset && end <= o.End {
			return true
		}
	}
	return false
}
