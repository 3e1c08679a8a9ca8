package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"e164 passes through", "+14155552671", "+14155552671"},
		{"formatted us number", "+1 (415) 555-2671", "+14155552671"},
		{"national indian mobile", "98765 43210", "+919876543210"},
		{"surrounding whitespace", "  +919876543210 ", "+919876543210"},
		{"empty", "", ""},
		{"garbage", "call me", ""},
		{"too short", "123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got := NormalizePhone(NormalizePhone(tt.input)); got != tt.want {
				t.Errorf("NormalizePhone is not idempotent for %q: %q", tt.input, got)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Jane   Doe ", "Jane Doe"},
		{"tab\tand\nnewline", "tab and newline"},
		{"", ""},
		{"   ", ""},
		{"single", "single"},
	}
	for _, tt := range tests {
		if got := TrimAndNormalize(tt.input); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNormalizeCarNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ka 01 ab-1234", "KA01AB-1234"},
		{"  EV\t001 ", "EV001"},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeCarNumber(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeCarNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if again := NormalizeCarNumber(got); again != got {
			t.Errorf("NormalizeCarNumber not idempotent: %q -> %q", got, again)
		}
	}
}

func TestPipeline(t *testing.T) {
	p := Pipeline{TrimAndNormalize, NormalizeEmail}
	if got := p.Apply("  A  B "); got != "a b" {
		t.Errorf("Pipeline.Apply() = %q", got)
	}
	if got := (Pipeline{}).Apply("x"); got != "x" {
		t.Errorf("empty pipeline changed input: %q", got)
	}
}
