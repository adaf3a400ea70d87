// Package identifier normalizes the free-form identifiers typed by operators:
// national ids (CPF), phone numbers and dates.
package identifier

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// NationalIDLength is the number of digits of a canonical national id.
const NationalIDLength = 11

var dateLayouts = []string{"02-01-2006", "02/01/2006", "02012006", "2006-01-02"}

// ErrInvalidDate is returned by ParseDate when no accepted layout matches.
var ErrInvalidDate = errors.New("invalid date, use DD-MM-YYYY, DD/MM/YYYY, DDMMYYYY or YYYY-MM-DD")

// Digits returns only the ASCII digits contained in raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NationalIDDigits counts the digits present in raw.
func NationalIDDigits(raw string) int {
	return len(Digits(raw))
}

// NormalizeNationalID returns the canonical 11-digit form of raw. Excess digits
// are truncated and short inputs are left-padded with zeros. No checksum is
// validated.
func NormalizeNationalID(raw string) string {
	digits := Digits(raw)
	if len(digits) > NationalIDLength {
		digits = digits[:NationalIDLength]
	}
	if len(digits) < NationalIDLength {
		digits = strings.Repeat("0", NationalIDLength-len(digits)) + digits
	}
	return digits
}

// FormatNationalID renders an id as ddd.ddd.ddd-dd.
func FormatNationalID(raw string) string {
	d := NormalizeNationalID(raw)
	return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
}

// NormalizePhone strips everything but digits.
func NormalizePhone(raw string) string {
	return Digits(raw)
}

// FormatPhone renders 10 and 11 digit numbers with area code. Other inputs are
// returned unchanged.
func FormatPhone(raw string) string {
	d := Digits(raw)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:7], d[7:11])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:6], d[6:10])
	default:
		return raw
	}
}

// ParseDate accepts DD-MM-YYYY, DD/MM/YYYY, DDMMYYYY and YYYY-MM-DD.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimFunc(raw, unicode.IsSpace)
	for _, layout := range dateLayouts {
		if len(value) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders t as DD/MM/YYYY, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
