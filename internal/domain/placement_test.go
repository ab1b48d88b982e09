package domain

import (
	"testing"
)

func TestShelfLabel(t *testing.T) {
	tests := []struct {
		name  string
		shelf int
		want  string
	}{
		{"first shelf", 1, "A"},
		{"last single letter", 26, "Z"},
		{"first double letter", 27, "AA"},
		{"second double letter", 28, "AB"},
		{"last double letter", 702, "ZZ"},
		{"first triple letter", 703, "AAA"},
		{"zero falls back to A", 0, "A"},
		{"negative falls back to A", -5, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShelfLabel(tt.shelf); got != tt.want {
				t.Errorf("ShelfLabel(%d) = %q, want %q", tt.shelf, got, tt.want)
			}
		})
	}
}

func TestShelfNumber(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		want        int
		expectError bool
	}{
		{"single letter", "A", 1, false},
		{"last single letter", "Z", 26, false},
		{"double letter", "AA", 27, false},
		{"last double letter", "ZZ", 702, false},
		{"triple letter", "AAA", 703, false},
		{"empty label", "", 0, true},
		{"lowercase rejected", "a", 0, true},
		{"digits rejected", "A1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShelfNumber(tt.label)
			if tt.expectError {
				if err == nil {
					t.Errorf("ShelfNumber(%q) expected error, got none", tt.label)
				}
				return
			}
			if err != nil {
				t.Fatalf("ShelfNumber(%q) unexpected error: %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("ShelfNumber(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestShelfLabelRoundTrip(t *testing.T) {
	for shelf := 1; shelf <= 1000; shelf++ {
		label := ShelfLabel(shelf)
		got, err := ShelfNumber(label)
		if err != nil {
			t.Fatalf("ShelfNumber(%q) unexpected error: %v", label, err)
		}
		if got != shelf {
			t.Fatalf("round trip failed for %d: label %q parsed back to %d", shelf, label, got)
		}
	}
}

func TestFormatPlacement(t *testing.T) {
	tests := []struct {
		name    string
		shelf   int
		section int
		want    string
	}{
		{"first position", 1, 1, "A-01"},
		{"single digit padded", 3, 7, "C-07"},
		{"double digit section", 1, 12, "A-12"},
		{"double letter shelf", 27, 12, "AA-12"},
		{"large section unpadded", 2, 100, "B-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPlacement(tt.shelf, tt.section); got != tt.want {
				t.Errorf("FormatPlacement(%d, %d) = %q, want %q", tt.shelf, tt.section, got, tt.want)
			}
		})
	}
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantShelf   int
		wantSection int
		expectError bool
	}{
		{"first position", "A-01", 1, 1, false},
		{"double letter shelf", "AA-12", 27, 12, false},
		{"unpadded section", "B-5", 2, 5, false},
		{"large section", "B-100", 2, 100, false},
		{"missing separator", "A01", 0, 0, true},
		{"empty section", "A-", 0, 0, true},
		{"empty shelf", "-01", 0, 0, true},
		{"non-numeric section", "A-xy", 0, 0, true},
		{"zero section", "A-00", 0, 0, true},
		{"lowercase shelf", "a-01", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shelf, section, err := ParsePlacement(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("ParsePlacement(%q) expected error, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlacement(%q) unexpected error: %v", tt.input, err)
			}
			if shelf != tt.wantShelf || section != tt.wantSection {
				t.Errorf("ParsePlacement(%q) = (%d, %d), want (%d, %d)",
					tt.input, shelf, section, tt.wantShelf, tt.wantSection)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []struct{ shelf, section int }{
		{1, 1}, {5, 9}, {26, 10}, {27, 1}, {702, 99}, {703, 42},
	}
	for _, c := range cases {
		formatted := FormatPlacement(c.shelf, c.section)
		shelf, section, err := ParsePlacement(formatted)
		if err != nil {
			t.Fatalf("ParsePlacement(%q) unexpected error: %v", formatted, err)
		}
		if shelf != c.shelf || section != c.section {
			t.Errorf("round trip (%d, %d) via %q gave (%d, %d)",
				c.shelf, c.section, formatted, shelf, section)
		}
	}
}
