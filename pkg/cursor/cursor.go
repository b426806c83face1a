// Package cursor parses and validates the change-feed cursor date.
//
// A cursor is an ISO calendar date, YYYY-MM-DD, whose hyphens may be omitted.
// Validation is purely lexical: the year is four digits, the month 01-12 and
// the day 01-31. Validation never performs I/O, so callers can reject bad
// input before any request is issued.
package cursor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/ordsync/pkg/errors"
)

var pattern = regexp.MustCompile(`^([0-9]{4})-?(1[0-2]|0[1-9])-?(3[01]|0[1-9]|[12][0-9])$`)

// Cursor is a validated change-feed lower bound.
type Cursor struct {
	Year  int
	Month int
	Day   int
	raw   string
}

// Parse validates s and returns the cursor it names.
func Parse(s string) (Cursor, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Cursor{}, errors.NewInvalidCursorError(s, "cursor is empty")
	}

	m := pattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Cursor{}, errors.NewInvalidCursorError(s, "expected YYYY-MM-DD with month 01-12 and day 01-31")
	}

	// The pattern guarantees digits.
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return Cursor{Year: year, Month: month, Day: day, raw: trimmed}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests and
// compile-time constants.
func MustParse(s string) Cursor {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether s is an acceptable cursor.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the hyphenated form sent as LastChangeDate.
func (c Cursor) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month, c.Day)
}

// Compact returns the cursor without separators, YYYYMMDD.
func (c Cursor) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", c.Year, c.Month, c.Day)
}

// Raw returns the input the cursor was parsed from, trimmed.
func (c Cursor) Raw() string {
	return c.raw
}

// IsZero reports whether c is the zero Cursor.
func (c Cursor) IsZero() bool {
	return c.Year == 0 && c.Month == 0 && c.Day == 0
}
