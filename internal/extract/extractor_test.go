package extract

import (
	"strings"
	"testing"

	"github.com/aemqa/packetcheck/internal/pagetext"
	"github.com/aemqa/packetcheck/internal/schema"
)

func extractText(t *testing.T, text string) map[string]Candidate {
	t.Helper()
	s := schema.Default()
	pt := pagetext.PageText{Text: text}
	return ExtractPage(pt, FindLabels(pt, s), s)
}

func TestExtractPage(t *testing.T) {
	t.Run("bounded span between two labels", func(t *testing.T) {
		cands := extractText(t, "Part Number: PN-100\nLot Number: LOT-9\n")
		if got := cands["Part Number"]; got.Value != "PN-100" || got.Method != MethodPositional {
			t.Fatalf("Part Number = %+v", got)
		}
		if got := cands["Lot Number"]; got.Value != "LOT-9" {
			t.Fatalf("Lot Number = %q", got.Value)
		}
	})

	t.Run("leading separators stripped", func(t *testing.T) {
		cands := extractText(t, "Resistance: .- 98.5\nDate: x\n")
		if got := cands["Resistance"].Value; got != "98.5" {
			t.Fatalf("Resistance = %q, want 98.5", got)
		}
	})

	t.Run("internal whitespace collapsed", func(t *testing.T) {
		cands := extractText(t, "Customer Name: Acme \t  Industrial\nDate: x\n")
		if got := cands["Customer Name"].Value; got != "Acme Industrial" {
			t.Fatalf("Customer Name = %q", got)
		}
	})

	t.Run("unbounded span cut at line break", func(t *testing.T) {
		cands := extractText(t, "Date: 2024-03-01\nunrelated trailing text\nmore lines\n")
		if got := cands["Date"].Value; got != "2024-03-01" {
			t.Fatalf("Date = %q, want 2024-03-01", got)
		}
	})

	t.Run("value capped at 1000 characters", func(t *testing.T) {
		long := strings.Repeat("x", 2000)
		cands := extractText(t, "Customer Name "+long+"\nDate: x\n")
		if got := len(cands["Customer Name"].Value); got != maxValueLen {
			t.Fatalf("value length = %d, want %d", got, maxValueLen)
		}
	})

	t.Run("pattern fallback when positional span is empty", func(t *testing.T) {
		// Adjacent labels leave an empty positional span for the first;
		// the fallback pattern then captures the rest of its line.
		cands := extractText(t, "Resistance:\nDimension: 1.02\n")
		got, ok := cands["Resistance"]
		if !ok {
			t.Fatal("Resistance not extracted")
		}
		if got.Method != MethodRegex {
			t.Fatalf("Resistance method = %q, want %q", got.Method, MethodRegex)
		}
	})

	t.Run("absent field produces no candidate", func(t *testing.T) {
		cands := extractText(t, "Date: 2024-01-01\n")
		if _, ok := cands["Shipment Quantity"]; ok {
			t.Fatal("Shipment Quantity extracted from text that never mentions it")
		}
	})
}

func TestProcessPage_MergeAcrossPages(t *testing.T) {
	s := schema.Default()
	rec := NewRecord()

	ProcessPage(rec, pagetext.PageText{PageIndex: 0, Text: "Lot Number: LOT-1\n"}, s)
	ProcessPage(rec, pagetext.PageText{PageIndex: 1, Text: "Lot Number: LOT-2\nPart Number: PN-7\n"}, s)

	if got := rec.Get("Lot Number"); got.Value != "LOT-1" || got.PageIndex != 0 {
		t.Fatalf("Lot Number = %+v, want first page's value", got)
	}
	if got := rec.Get("Part Number"); got.Value != "PN-7" || got.PageIndex != 1 {
		t.Fatalf("Part Number = %+v", got)
	}
	if got := rec.Get("Date"); got.Method != MethodMissing {
		t.Fatalf("Date method = %q, want missing", got.Method)
	}
	if pvs := rec.PageValues("Lot Number"); len(pvs) != 2 {
		t.Fatalf("Lot Number page values = %d, want 2", len(pvs))
	}
}
