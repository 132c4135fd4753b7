// =============================================================================
// Auction JSON to DAT Converter - Field Transforms
// =============================================================================
//
// This package provides the value transforms applied while extracting records
// from a source document. All functions are pure.
//
// TRANSFORMS:
//   - Currency:  "$3,453.23"          -> "3453.23"
//   - Timestamp: "Dec-21-01 12:05:00" -> "2001-12-21 12:05:00"
//   - Escape:    `Lot "A"`            -> `"Lot ""A"""`
//
// =============================================================================

package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
)

// =============================================================================
// MONTH TABLE
// =============================================================================

// months maps the three-letter month abbreviations used by the source to
// their two-digit numbers.
var months = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// Month converts a month abbreviation such as "Dec" to "12".
func Month(abbr string) (string, bool) {
	m, ok := months[abbr]
	return m, ok
}

// MonthPolicy decides what Timestamp does with an unknown month abbreviation.
type MonthPolicy int

const (
	// MonthReject fails with an *UnrecognizedMonthError.
	MonthReject MonthPolicy = iota

	// MonthPassThrough copies the unknown token into the output unchanged.
	MonthPassThrough
)

// String returns the configuration spelling of the policy.
func (p MonthPolicy) String() string {
	switch p {
	case MonthPassThrough:
		return "passthrough"
	default:
		return "reject"
	}
}

// ParseMonthPolicy parses "reject" or "passthrough".
func ParseMonthPolicy(s string) (MonthPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return MonthReject, nil
	case "passthrough", "pass_through", "pass-through":
		return MonthPassThrough, nil
	default:
		return MonthReject, fmt.Errorf("unknown month policy %q (want reject or passthrough)", s)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrTimestampLayout is returned when a timestamp does not have the
// "Mon-DD-YY HH:MM:SS" shape.
var ErrTimestampLayout = errors.New("timestamp is not in Mon-DD-YY HH:MM:SS form")

// UnrecognizedMonthError reports a month abbreviation missing from the month
// table.
type UnrecognizedMonthError struct {
	// Token is the offending month abbreviation.
	Token string

	// Input is the whole timestamp it came from.
	Input string
}

// Error implements the error interface.
func (e *UnrecognizedMonthError) Error() string {
	return fmt.Sprintf("unrecognized month %q in timestamp %q", e.Token, e.Input)
}

// =============================================================================
// TRANSFORMS
// =============================================================================

// Timestamp converts "Mon-DD-YY HH:MM:SS" into the sortable form
// "20YY-MM-DD HH:MM:SS".
func Timestamp(s string, policy MonthPolicy) (string, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", fmt.Errorf("%q: %w", s, ErrTimestampLayout)
	}

	date := strings.Split(parts[0], "-")
	if len(date) != 3 || date[0] == "" || date[1] == "" || date[2] == "" {
		return "", fmt.Errorf("%q: %w", s, ErrTimestampLayout)
	}

	month, ok := Month(date[0])
	if !ok {
		if policy != MonthPassThrough {
			return "", &UnrecognizedMonthError{Token: date[0], Input: s}
		}
		month = date[0]
	}

	return "20" + date[2] + "-" + month + "-" + date[1] + " " + parts[1], nil
}

// nonMoney matches every character that cannot appear in a plain amount.
var nonMoney = regexp.MustCompile(`[^\d.]`)

// CurrencyString strips everything but digits and decimal points from a
// money-formatted string. Sign and repeated points are not checked.
func CurrencyString(s string) string {
	if s == "" {
		return s
	}
	return nonMoney.ReplaceAllString(s, "")
}

// Currency applies CurrencyString to a present value. Absent values stay
// absent.
func Currency(v types.Value) types.Value {
	if !v.Valid {
		return v
	}
	return types.Text(CurrencyString(v.Text))
}

// Escape wraps a free-text field in double quotes and doubles every embedded
// double quote, so the field survives a delimiter-and-quote flat-file load.
func Escape(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
