package auth

import "strings"

// DefaultCountryCode is prefixed to bare 10-digit mobile numbers when
// normalizing to E.164.
const DefaultCountryCode = "+91"

// OTP codes dispatched by the verification provider are always six digits.
const codeLength = 6

// NormalizeE164 converts a raw phone input to E.164 form. Inputs already
// carrying a leading '+' pass through unchanged; a 10-digit number is assumed
// to belong to the default country; anything else is returned as given.
func NormalizeE164(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	digits := Digits(raw)
	if len(digits) == 10 {
		return DefaultCountryCode + digits
	}
	return raw
}

// Digits strips every non-digit character. The result is the backend's stable
// lookup key for a phone number.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCode rejects codes of the wrong length before any network call.
func ValidateCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return CodeRequiredErr
	}
	if len(code) != codeLength {
		return CodeLengthErr
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return CodeLengthErr
		}
	}
	return nil
}
