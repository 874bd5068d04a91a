package model

import (
	"errors"
	"strings"
)

// ErrInvalidMAC is returned for addresses that fail the registry's strict
// format rule.
var ErrInvalidMAC = errors.New("invalid mac address")

// NormalizeMAC validates a MAC address and returns it in canonical form:
// uppercase hex, colon-grouped pairs. Accepted input is exactly twelve hex
// digits with optional colon separators in any grouping. Hyphen and dot
// delimiters are rejected; net.ParseMAC would accept them, so the checks
// are explicit.
func NormalizeMAC(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidMAC
	}

	var digits strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			digits.WriteRune(r)
		case r == ':':
			// grouping is free-form, only the digits count
		default:
			return "", ErrInvalidMAC
		}
	}
	if digits.Len() != 12 {
		return "", ErrInvalidMAC
	}

	hex := digits.String()
	pairs := make([]string, 6)
	for i := 0; i < 6; i++ {
		pairs[i] = hex[i*2 : i*2+2]
	}
	return strings.Join(pairs, ":"), nil
}
