package validate

import (
	"testing"

	"github.com/aemqa/packetcheck/internal/extract"
	"github.com/aemqa/packetcheck/internal/schema"
)

// fullRecord returns a record with every schema field populated with an
// in-range value.
func fullRecord(t *testing.T, s *schema.Schema) *extract.Record {
	t.Helper()
	cands := make(map[string]extract.Candidate)
	for _, f := range s.Fields() {
		v := "ok"
		switch f.Name {
		case "Resistance":
			v = "100"
		case "Dimension":
			v = "1.0"
		}
		cands[f.Name] = extract.Candidate{Value: v, Method: extract.MethodPositional}
	}
	rec := extract.NewRecord()
	rec.Apply(0, cands)
	return rec
}

func TestValidate_AllPresent(t *testing.T) {
	s := schema.Default()
	res := Validate(fullRecord(t, s), s)

	if !res.Valid {
		t.Fatalf("result not valid: %+v", res)
	}
	if len(res.MissingFields) != 0 || res.OutOfRange != nil || res.Inconsistent != nil {
		t.Fatalf("unexpected violations: %+v", res)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	s := schema.Default()
	rec := extract.NewRecord()
	rec.Apply(0, map[string]extract.Candidate{
		"Date": {Value: "2024-01-01", Method: extract.MethodPositional},
	})

	res := Validate(rec, s)
	if res.Valid {
		t.Fatal("result should be invalid")
	}
	if got := len(res.MissingFields); got != s.Len()-1 {
		t.Fatalf("missing fields = %d, want %d", got, s.Len()-1)
	}
	for i := 1; i < len(res.MissingFields); i++ {
		if res.MissingFields[i] < res.MissingFields[i-1] {
			t.Fatalf("missing fields not sorted: %v", res.MissingFields)
		}
	}
}

func TestValidate_OneFieldAbsent(t *testing.T) {
	s := schema.Default()
	snap := fullRecord(t, s).Snapshot()
	delete(snap.Fields, "Customer P.O. Number")
	delete(snap.Pages, "Customer P.O. Number")

	res := Validate(extract.FromSnapshot(snap), s)
	if res.Valid {
		t.Fatal("result should be invalid")
	}
	if len(res.MissingFields) != 1 || res.MissingFields[0] != "Customer P.O. Number" {
		t.Fatalf("missing fields = %v", res.MissingFields)
	}
	if res.OutOfRange != nil {
		t.Fatalf("unexpected range violations: %+v", res.OutOfRange)
	}
}

func TestValidate_Ranges(t *testing.T) {
	s := schema.Default()

	cases := []struct {
		name  string
		field string
		value string
		ok    bool
	}{
		{"resistance lower bound inclusive", "Resistance", "95", true},
		{"resistance upper bound inclusive", "Resistance", "105", true},
		{"resistance just below", "Resistance", "94.999", false},
		{"resistance just above", "Resistance", "105.001", false},
		{"resistance with units", "Resistance", "98.5 ohms", true},
		{"resistance non-numeric", "Resistance", "n/a", false},
		{"dimension in range", "Dimension", "0.95", true},
		{"dimension out of range", "Dimension", "1.2", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := fullRecord(t, s).Snapshot()
			snap.Fields[tc.field] = extract.FieldValue{Value: tc.value, Method: extract.MethodPositional}
			over := extract.FromSnapshot(snap)

			res := Validate(over, s)
			_, violated := res.OutOfRange[tc.field]
			if tc.ok && violated {
				t.Fatalf("%s=%q flagged out of range: %+v", tc.field, tc.value, res.OutOfRange[tc.field])
			}
			if !tc.ok && !violated {
				t.Fatalf("%s=%q not flagged", tc.field, tc.value)
			}
		})
	}
}

func TestValidate_Inconsistency(t *testing.T) {
	s := schema.Default()
	rec := fullRecord(t, s)
	rec.Apply(1, map[string]extract.Candidate{
		"Lot Number": {Value: "other-lot", Method: extract.MethodPositional},
	})

	res := Validate(rec, s)
	inc, ok := res.Inconsistent["Lot Number"]
	if !ok {
		t.Fatalf("Lot Number not flagged inconsistent: %+v", res)
	}
	if len(inc.Values) != 2 {
		t.Fatalf("inconsistency values = %d, want 2", len(inc.Values))
	}
	// Inconsistency is an anomaly, not a validation failure.
	if !res.Valid {
		t.Fatalf("result should stay valid: %+v", res)
	}
	if len(res.MissingFields) != 0 || res.OutOfRange != nil {
		t.Fatalf("unexpected violations: %+v", res)
	}
}

func TestValidate_Pure(t *testing.T) {
	s := schema.Default()
	rec := fullRecord(t, s)
	before := rec.Snapshot()

	Validate(rec, s)
	Validate(rec, s)

	after := rec.Snapshot()
	if len(before.Fields) != len(after.Fields) || len(before.Pages) != len(after.Pages) {
		t.Fatal("Validate mutated the record")
	}
	for k, v := range before.Fields {
		if after.Fields[k] != v {
			t.Fatalf("field %q changed: %+v -> %+v", k, v, after.Fields[k])
		}
	}
}
