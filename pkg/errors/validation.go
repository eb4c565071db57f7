package errors

import (
	"strings"
	"unicode"
)

// vinLength is the fixed length of a modern (post-1981) VIN.
const vinLength = 17

// ValidateVin validates a vehicle identification number before it is sent to
// the marketplace decoder.
//
// The validation rules are intentionally conservative:
//   - Exactly 17 characters
//   - Alphanumeric only
//   - No I, O, or Q (excluded from the VIN alphabet to avoid digit confusion)
//
// Check-digit verification is left to the remote decoder; a VIN that passes
// here can still fail resolution with VIN_NOT_FOUND.
func ValidateVin(vin string) error {
	if vin == "" {
		return New(ErrCodeInvalidVin, "VIN cannot be empty")
	}

	if len(vin) != vinLength {
		return New(ErrCodeInvalidVin, "VIN must be %d characters, got %d", vinLength, len(vin))
	}

	for _, r := range strings.ToUpper(vin) {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			if r == 'I' || r == 'O' || r == 'Q' {
				return New(ErrCodeInvalidVin, "VIN contains excluded letter %q", string(r))
			}
		default:
			return New(ErrCodeInvalidVin, "VIN contains invalid character %q", string(r))
		}
	}

	return nil
}

// ValidateSearchTerm validates a free-text part search term.
// It rejects inputs that could not map to any part-type suggestion and
// inputs that look like injection attempts rather than part descriptions.
func ValidateSearchTerm(term string) error {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return New(ErrCodeInvalidInput, "search term cannot be empty")
	}

	if len(trimmed) > 256 {
		return New(ErrCodeInvalidInput, "search term too long (max 256 characters)")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search term contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
