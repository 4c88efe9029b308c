package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.Len() != 22 {
		t.Errorf("Len() = %d, want 22", s.Len())
	}

	t.Run("numeric_ranges", func(t *testing.T) {
		res := s.Lookup("Resistance")
		if res == nil || !res.Numeric {
			t.Fatal("Resistance should be a numeric field")
		}
		if res.Lo != 95 || res.Hi != 105 {
			t.Errorf("Resistance range = (%v, %v), want (95, 105)", res.Lo, res.Hi)
		}

		dim := s.Lookup("Dimension")
		if dim == nil || !dim.Numeric {
			t.Fatal("Dimension should be a numeric field")
		}
		if dim.Lo != 0.9 || dim.Hi != 1.1 {
			t.Errorf("Dimension range = (%v, %v), want (0.9, 1.1)", dim.Lo, dim.Hi)
		}
	})

	t.Run("non_numeric", func(t *testing.T) {
		f := s.Lookup("Customer Name")
		if f == nil {
			t.Fatal("Customer Name missing from default schema")
		}
		if f.Numeric {
			t.Error("Customer Name should not be numeric")
		}
	})

	t.Run("unknown_field", func(t *testing.T) {
		if s.Lookup("No Such Field") != nil {
			t.Error("Lookup returned a field for an unknown name")
		}
	})
}

func TestFieldPattern(t *testing.T) {
	s := Default()
	f := s.Lookup("Customer P.O. Number")
	if f == nil {
		t.Fatal("Customer P.O. Number missing")
	}

	// Dots in the label must be matched literally, case-insensitively.
	m := f.Pattern().FindStringSubmatch("customer p.o. number: PO-12345\nnext line")
	if m == nil {
		t.Fatal("pattern did not match")
	}
	if m[1] != "PO-12345" {
		t.Errorf("captured %q, want %q", m[1], "PO-12345")
	}

	// A different separator char must not satisfy the literal dot.
	if f.Pattern().MatchString("customer pXoX number: nope") {
		t.Error("pattern matched non-literal separator")
	}
}

func TestNumericFields(t *testing.T) {
	nf := Default().NumericFields()
	if len(nf) != 2 {
		t.Fatalf("NumericFields() returned %d fields, want 2", len(nf))
	}
	if nf[0].Name != "Dimension" || nf[1].Name != "Resistance" {
		t.Errorf("NumericFields() order = [%s, %s]", nf[0].Name, nf[1].Name)
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		content := `version: custom-1
fields:
  - name: Serial Number
  - name: Voltage
    range: [4.5, 5.5]
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		version, s, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if version != "custom-1" {
			t.Errorf("version = %q, want %q", version, "custom-1")
		}
		if s.Len() != 2 {
			t.Errorf("Len() = %d, want 2", s.Len())
		}
		v := s.Lookup("Voltage")
		if v == nil || !v.Numeric || v.Lo != 4.5 || v.Hi != 5.5 {
			t.Errorf("Voltage = %+v, want numeric (4.5, 5.5)", v)
		}
	})

	t.Run("missing_version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		if err := os.WriteFile(path, []byte("fields:\n  - name: X\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadFile(path); err == nil {
			t.Error("LoadFile() accepted a file with no version")
		}
	})

	t.Run("inverted_range", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		content := "version: bad\nfields:\n  - name: X\n    range: [10, 5]\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadFile(path); err == nil {
			t.Error("LoadFile() accepted an inverted range")
		}
	})

	t.Run("duplicate_field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		content := "version: dup\nfields:\n  - name: X\n  - name: X\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadFile(path); err == nil {
			t.Error("LoadFile() accepted duplicate field names")
		}
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	t.Run("default_present", func(t *testing.T) {
		s, err := r.Get("")
		if err != nil {
			t.Fatalf("Get(\"\") error = %v", err)
		}
		if s.Len() != 22 {
			t.Errorf("default schema Len() = %d, want 22", s.Len())
		}
	})

	t.Run("unknown_version", func(t *testing.T) {
		if _, err := r.Get("nope"); err == nil {
			t.Error("Get() succeeded for unknown version")
		}
	})

	t.Run("register_and_get", func(t *testing.T) {
		custom, err := build([]string{"A", "B"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := r.Register("v2", custom); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		got, err := r.Get("v2")
		if err != nil {
			t.Fatalf("Get(v2) error = %v", err)
		}
		if got.Len() != 2 {
			t.Errorf("Len() = %d, want 2", got.Len())
		}
	})

	t.Run("cannot_replace_default", func(t *testing.T) {
		if err := r.Register(DefaultVersion, Default()); err == nil {
			t.Error("Register() allowed replacing the built-in version")
		}
	})
}
