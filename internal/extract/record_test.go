package extract

import (
	"encoding/json"
	"testing"
)

func TestRecord_FirstWins(t *testing.T) {
	rec := NewRecord()
	rec.Apply(0, map[string]Candidate{"Date": {Value: "2024-01-01", Method: MethodPositional}})
	rec.Apply(1, map[string]Candidate{"Date": {Value: "2024-06-30", Method: MethodRegex}})

	got := rec.Get("Date")
	if got.Value != "2024-01-01" || got.PageIndex != 0 || got.Method != MethodPositional {
		t.Fatalf("Date = %+v, want page 0 positional value", got)
	}
	if pvs := rec.PageValues("Date"); len(pvs) != 2 {
		t.Fatalf("page values = %d, want both sightings kept", len(pvs))
	}
}

func TestRecord_Consistent(t *testing.T) {
	rec := NewRecord()
	rec.Apply(0, map[string]Candidate{
		"Part Number": {Value: "PN-1", Method: MethodPositional},
		"Lot Number":  {Value: "LOT-1", Method: MethodPositional},
	})
	rec.Apply(2, map[string]Candidate{
		"Part Number": {Value: "PN-1", Method: MethodRegex},
		"Lot Number":  {Value: "LOT-2", Method: MethodPositional},
	})

	if !rec.Consistent("Part Number") {
		t.Fatal("Part Number should be consistent")
	}
	if rec.Consistent("Lot Number") {
		t.Fatal("Lot Number should be inconsistent")
	}
	if !rec.Consistent("Date") {
		t.Fatal("never-seen field should be trivially consistent")
	}
}

func TestRecord_PageValue(t *testing.T) {
	rec := NewRecord()
	rec.Apply(3, map[string]Candidate{"Date": {Value: "x", Method: MethodRegex}})

	if v, ok := rec.PageValue("Date", 3); !ok || v != "x" {
		t.Fatalf("PageValue = %q, %v", v, ok)
	}
	if _, ok := rec.PageValue("Date", 0); ok {
		t.Fatal("page 0 should have no value")
	}
}

func TestRecord_SnapshotRoundTrip(t *testing.T) {
	rec := NewRecord()
	rec.Apply(0, map[string]Candidate{"Date": {Value: "a", Method: MethodPositional}})
	rec.Apply(4, map[string]Candidate{"Date": {Value: "b", Method: MethodRegex}})

	raw, err := json.Marshal(rec.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatal(err)
	}

	restored := FromSnapshot(snap)
	if got := restored.Get("Date"); got.Value != "a" || got.Method != MethodPositional {
		t.Fatalf("restored Date = %+v", got)
	}
	if pvs := restored.PageValues("Date"); len(pvs) != 2 || pvs[0].PageIndex != 0 {
		t.Fatalf("restored page values = %+v", pvs)
	}
	if restored.Consistent("Date") {
		t.Fatal("restored record should keep inconsistency")
	}
}
