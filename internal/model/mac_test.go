package model

import (
	"errors"
	"testing"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase colons", "aa:bb:cc:dd:ee:ff", "AA:BB:CC:DD:EE:FF"},
		{"uppercase colons", "AA:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF"},
		{"mixed case", "Aa:bB:cC:Dd:Ee:fF", "AA:BB:CC:DD:EE:FF"},
		{"no delimiters", "aabbccddeeff", "AA:BB:CC:DD:EE:FF"},
		{"odd grouping", "aabb:ccdd:eeff", "AA:BB:CC:DD:EE:FF"},
		{"surrounding whitespace", "  aa:bb:cc:dd:ee:ff  ", "AA:BB:CC:DD:EE:FF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMAC(tt.input)
			if err != nil {
				t.Fatalf("NormalizeMAC(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeMAC(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMAC_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "aa:bb:cc:dd:ee"},
		{"too long", "aa:bb:cc:dd:ee:ff:00"},
		{"hyphens rejected", "aa-bb-cc-dd-ee-ff"},
		{"dots rejected", "aabb.ccdd.eeff"},
		{"non-hex", "gg:bb:cc:dd:ee:ff"},
		{"garbage", "not a mac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NormalizeMAC(tt.input); !errors.Is(err, ErrInvalidMAC) {
				t.Errorf("NormalizeMAC(%q) = %v, want ErrInvalidMAC", tt.input, err)
			}
		})
	}
}

func TestNormalizeMAC_EquivalentFormsCollapse(t *testing.T) {
	forms := []string{"aa:bb:cc:dd:ee:ff", "AABBCCDDEEFF", "aabb:ccdd:eeff"}
	for _, f := range forms {
		got, err := NormalizeMAC(f)
		if err != nil {
			t.Fatalf("NormalizeMAC(%q): %v", f, err)
		}
		if got != "AA:BB:CC:DD:EE:FF" {
			t.Errorf("NormalizeMAC(%q) = %q, want AA:BB:CC:DD:EE:FF", f, got)
		}
	}
}
