package utils

import "testing"

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Nováková", "Novakova"},
		{"Ústí nad Labem, Ústecký kraj", "Usti nad Labem, Ustecky kraj"},
		{"Řeřicha žluťoučký", "Rericha zlutoucky"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDiacritics(tt.input); got != tt.want {
			t.Errorf("StripDiacritics(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFoldText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Jana   Nováková ", "jana novakova"},
		{"JANA NOVAKOVA", "jana novakova"},
		{"Ing.\tPetr\nSvoboda", "ing. petr svoboda"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := FoldText(tt.input); got != tt.want {
			t.Errorf("FoldText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
