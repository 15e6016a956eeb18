// Package validation holds input format checks applied before resolution.
package validation

// PostalCodeLength is the length of a US ZIP code.
const PostalCodeLength = 5

// IsValidPostalCode reports whether s is exactly five ASCII digits.
// No trimming is performed; callers normalize input first.
func IsValidPostalCode(s string) bool {
	if len(s) != PostalCodeLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
