package validator

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateRUT checks a Chilean RUT (national ID) against its check digit.
// Accepts dotted and dashed forms ("12.345.678-9") as well as bare digits.
func ValidateRUT(rut string) bool {
	clean := strings.NewReplacer(".", "", "-", "").Replace(rut)
	if len(clean) < 8 || len(clean) > 9 {
		return false
	}

	body := clean[:len(clean)-1]
	dv := strings.ToUpper(clean[len(clean)-1:])

	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		d, err := strconv.Atoi(string(body[i]))
		if err != nil {
			return false
		}
		sum += d * multiplier
		if multiplier == 7 {
			multiplier = 2
		} else {
			multiplier++
		}
	}

	remainder := sum % 11
	var expected string
	switch remainder {
	case 0:
		expected = "0"
	case 1:
		expected = "K"
	default:
		expected = strconv.Itoa(11 - remainder)
	}

	return dv == expected
}

// FormatRUT renders a RUT with thousands dots and the dash before the
// check digit. Inputs too short to carry a check digit are returned as-is.
func FormatRUT(rut string) string {
	clean := strings.NewReplacer(".", "", "-", "").Replace(rut)
	if len(clean) < 8 {
		return rut
	}

	body := clean[:len(clean)-1]
	dv := clean[len(clean)-1:]

	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s-%s", b.String(), dv)
}
