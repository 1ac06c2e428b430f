// Package money implements the fixed-point decimal representation spec.md
// §9 calls for: every amount is an int64 number of cents internally, so that
// repeated deposits and withdrawals cannot drift the way floating point
// would, while the wire format stays plain decimal text.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cents is an amount scaled to 1/100 of the base currency unit.
type Cents int64

// Parse reads a decimal string ("250", "250.5", "250.00") into Cents.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var fracVal int64
	if hasFrac {
		switch len(frac) {
		case 0:
			fracVal = 0
		case 1:
			d, err := strconv.ParseInt(frac, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
			fracVal = d * 10
		default:
			d, err := strconv.ParseInt(frac[:2], 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
			fracVal = d
		}
	}

	total := Cents(wholeVal*100 + fracVal)
	if negative {
		total = -total
	}
	return total, nil
}

// String renders Cents back into decimal text, e.g. 500 -> "5.00".
func (c Cents) String() string {
	negative := c < 0
	v := int64(c)
	if negative {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if negative {
		return "-" + s
	}
	return s
}
