package parser

import (
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"625", 625, false},
		{"1 250", 1250, false},
		{"12.500", 12500, false},
		{"3,000", 3000, false},
		{"-300", -300, false},
		{"- 300", -300, false},
		{"+45", 45, false},
		{"1\u00a0250", 1250, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseQuantity(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExtractQuantities(t *testing.T) {
	tests := []struct {
		line  string
		miles int
		xp    int
		uxp   int
		hasXP bool
	}{
		{"AMS-BCN KL1673 625 Miles 10 XP 10 UXP", 625, 10, 10, true},
		{"Amazon 1 250 Miles", 1250, 0, 0, false},
		{"XP counter -300 XP", 0, -300, 0, true},
		{"Prämienticket -25.000 Meilen", -25000, 0, 0, false},
		{"Surplus 45XP", 0, 45, 0, true},
		{"Balance 40 UXP", 0, 0, 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			q := extractQuantities(tt.line)
			if q.Miles != tt.miles {
				t.Errorf("miles: got %d, want %d", q.Miles, tt.miles)
			}
			if q.XP != tt.xp || q.HasXP != tt.hasXP {
				t.Errorf("xp: got %d (%v), want %d (%v)", q.XP, q.HasXP, tt.xp, tt.hasXP)
			}
			if q.UXP != tt.uxp {
				t.Errorf("uxp: got %d, want %d", q.UXP, tt.uxp)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Févr.", "fevr."},
		{"MÄRZ", "marz"},
		{"Março", "marco"},
		{"Décembre", "decembre"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := fold(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizeLine(t *testing.T) {
	got := normalizeLine("  AMS\u2013BCN   KL1673\u200B  \u2212300 XP ")
	want := "AMS-BCN KL1673 -300 XP"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
