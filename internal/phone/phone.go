// Package phone normalizes parent phone numbers to the Ethiopian (+251)
// international form.
package phone

import (
	"fmt"
	"regexp"
	"strings"
)

// mobilePattern is the only shape a normalized number may have: +251
// followed by a 9- or 7-prefixed mobile number.
var mobilePattern = regexp.MustCompile(`^\+251[79]\d{8}$`)

// InvalidPhoneError reports a number that cannot be dialed, keeping the
// original input for display.
type InvalidPhoneError struct {
	Input string
}

func (e *InvalidPhoneError) Error() string {
	return fmt.Sprintf("invalid Ethiopian phone number %q, expected +251xxxxxxxxx or 09xxxxxxxx", e.Input)
}

// Normalize converts a free-text phone number into dialable +251 form.
// Accepted shapes: +251xxxxxxxxx, 251xxxxxxxxx, 0 followed by a 9-digit
// mobile starting 9 or 7, or the bare 9-digit mobile. Everything else fails.
func Normalize(raw string) (string, error) {
	clean := stripNonDial(strings.TrimSpace(raw))

	var formatted string
	switch {
	case strings.HasPrefix(clean, "+251"):
		formatted = clean
	case strings.HasPrefix(clean, "251"):
		formatted = "+" + clean
	case strings.HasPrefix(clean, "09") || strings.HasPrefix(clean, "07"):
		formatted = "+251" + clean[1:]
	case strings.HasPrefix(clean, "9") || strings.HasPrefix(clean, "7"):
		formatted = "+251" + clean
	default:
		return "", &InvalidPhoneError{Input: raw}
	}

	// The prefix cases above accept any length; re-check the full shape so
	// a truncated or padded number never slips through.
	if !mobilePattern.MatchString(formatted) {
		return "", &InvalidPhoneError{Input: raw}
	}

	return formatted, nil
}

// stripNonDial removes everything except digits and a leading +.
func stripNonDial(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if r >= '0' && r <= '9' || r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
