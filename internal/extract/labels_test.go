package extract

import (
	"testing"

	"github.com/aemqa/packetcheck/internal/pagetext"
	"github.com/aemqa/packetcheck/internal/schema"
)

func TestFindLabels(t *testing.T) {
	s := schema.Default()

	t.Run("longer label wins at overlapping offset", func(t *testing.T) {
		pt := pagetext.PageText{
			PageIndex: 0,
			Text:      "Customer Part Number: CPN-100\nPart Number: PN-200\n",
		}
		occs := FindLabels(pt, s)

		got := map[string]int{}
		for _, o := range occs {
			got[o.Field] = o.Offset
		}
		if got["Customer Part Number"] != 0 {
			t.Fatalf("Customer Part Number offset = %d, want 0", got["Customer Part Number"])
		}
		// "Part Number" must not match inside "Customer Part Number".
		if got["Part Number"] != 30 {
			t.Fatalf("Part Number offset = %d, want 30", got["Part Number"])
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		pt := pagetext.PageText{Text: "AEM LOT NUMBER: LOT-5\n"}
		occs := FindLabels(pt, s)
		if len(occs) == 0 {
			t.Fatal("no occurrences found")
		}
		found := false
		for _, o := range occs {
			if o.Field == "AEM Lot Number" {
				found = true
			}
		}
		if !found {
			t.Fatal("AEM Lot Number not located in uppercase text")
		}
	})

	t.Run("one occurrence per field", func(t *testing.T) {
		pt := pagetext.PageText{Text: "Date: 2024-01-01\nDate: 2024-02-02\n"}
		occs := FindLabels(pt, s)
		n := 0
		for _, o := range occs {
			if o.Field == "Date" {
				n++
				if o.Offset != 0 {
					t.Fatalf("Date offset = %d, want first occurrence at 0", o.Offset)
				}
			}
		}
		if n != 1 {
			t.Fatalf("Date occurrences = %d, want 1", n)
		}
	})

	t.Run("blank page yields nothing", func(t *testing.T) {
		if occs := FindLabels(pagetext.PageText{Text: "  \n\t "}, s); occs != nil {
			t.Fatalf("got %d occurrences on blank page", len(occs))
		}
	})

	t.Run("sorted by offset", func(t *testing.T) {
		pt := pagetext.PageText{Text: "Resistance: 100\nDate: x\nDimension: 1.0\n"}
		occs := FindLabels(pt, s)
		for i := 1; i < len(occs); i++ {
			if occs[i].Offset < occs[i-1].Offset {
				t.Fatalf("occurrences not sorted: %v", occs)
			}
		}
	})
}
