package validation

import "testing"

func TestIsValidPostalCode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"19125", true},
		{"00000", true},
		{"1912", false},
		{"191255", false},
		{"1912a", false},
		{" 19125", false},
		{"19125 ", false},
		{"", false},
		{"-1912", false},
		{"１９１２５", false}, // fullwidth digits are not ASCII
	}

	for _, tt := range tests {
		if got := IsValidPostalCode(tt.in); got != tt.want {
			t.Errorf("IsValidPostalCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
