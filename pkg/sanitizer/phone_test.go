package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "valid E.164 format",
			input:  "+972541234567",
			region: "MU",
			want:   "+972541234567",
		},
		{
			name:   "with spaces",
			input:  "+972 54 123 4567",
			region: "MU",
			want:   "+972541234567",
		},
		{
			name:   "with dashes",
			input:  "+972-54-123-4567",
			region: "MU",
			want:   "+972541234567",
		},
		{
			name:   "with parentheses",
			input:  "+1 (201) 555-0123",
			region: "MU",
			want:   "+12015550123",
		},
		{
			name:   "national number read in default region",
			input:  "(201) 555-0123",
			region: "US",
			want:   "+12015550123",
		},
		{
			name:   "lowercase region",
			input:  "054-123-4567",
			region: "il",
			want:   "+972541234567",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +972541234567  ",
			region: "MU",
			want:   "+972541234567",
		},
		{
			name:   "empty string",
			input:  "",
			region: "MU",
			want:   "",
		},
		{
			name:   "only whitespace",
			input:  "   ",
			region: "MU",
			want:   "",
		},
		{
			name:   "letters",
			input:  "not-a-phone",
			region: "MU",
			want:   "",
		},
		{
			name:   "too short",
			input:  "+1",
			region: "MU",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.region)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}
