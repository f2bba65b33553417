package sanitizer

import "testing"

func TestSanitizePromoCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "summer10", "SUMMER10"},
		{"mixed case", "Summer10", "SUMMER10"},
		{"hyphenated", "summer-10", "SUMMER10"},
		{"surrounding spaces", "  Summer 10  ", "SUMMER10"},
		{"already normalized", "SUMMER10", "SUMMER10"},
		{"symbols stripped", "we!rd@code#", "WERDCODE"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePromoCode(tt.input)
			if got != tt.want {
				t.Errorf("SanitizePromoCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
			// idempotency
			if again := SanitizePromoCode(got); again != got {
				t.Errorf("SanitizePromoCode not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeSport(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tennis", "tennis"},
		{"  Table   Tennis ", "table tennis"},
		{"PADEL", "padel"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeSport(tt.input); got != tt.want {
			t.Errorf("SanitizeSport(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeID(t *testing.T) {
	if got := SanitizeID("  venue-42  "); got != "venue-42" {
		t.Errorf("SanitizeID trim failed, got %q", got)
	}
	if got := SanitizeID("bad\x00id"); got != "" {
		t.Errorf("SanitizeID should reject control characters, got %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a  b", "a b"},
		{"\ta\n b\t", "a b"},
		{"single", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CollapseWhitespace(tt.input); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
