// Package money implements fixed-point monetary arithmetic in minor units.
//
// Amounts are carried as int64 at a fixed scale of two decimal places
// (cents). Parsing and formatting never go through floating point.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale is the number of decimal places carried by every amount.
const Scale = 2

const unitFactor = 100

var (
	ErrMalformed = errors.New("malformed_amount")
	ErrOverflow  = errors.New("amount_overflow")
)

// Parse converts a decimal string such as "123.45" into minor units.
// At most Scale fractional digits are accepted; shorter fractions are
// right-padded ("12.5" -> 1250).
func Parse(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrMalformed
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return 0, ErrMalformed
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrMalformed
	}
	if len(frac) > Scale {
		return 0, ErrMalformed
	}
	for len(frac) < Scale {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	var cents int64
	if frac != "" {
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrMalformed
		}
	}

	if units > (math.MaxInt64-cents)/unitFactor {
		return 0, ErrOverflow
	}
	value := units*unitFactor + cents
	if negative {
		value = -value
	}
	return value, nil
}

// Format renders minor units as a plain decimal string ("12345" -> "123.45").
func Format(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/unitFactor, v%unitFactor)
}

// Line computes unitPrice * quantity with overflow detection.
func Line(unitPrice, quantity int64) (int64, error) {
	if unitPrice == 0 || quantity == 0 {
		return 0, nil
	}
	total := unitPrice * quantity
	if total/quantity != unitPrice {
		return 0, ErrOverflow
	}
	return total, nil
}
