// README: Common money value object used across modules.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-point amount in cents. Order prices and bid prices carry
// two decimal places on the wire; storing cents keeps arithmetic exact.
type Money struct {
	Cents int64
}

var ErrBadAmount = errors.New("malformed amount")

// ParseMoney parses a decimal string such as "25.00" or "18.5" into Money.
// At most two fractional digits are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") {
		return Money{}, ErrBadAmount
	}
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if whole == "" || len(frac) > 2 {
		return Money{}, ErrBadAmount
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, ErrBadAmount
	}
	f := int64(0)
	if frac != "" {
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, ErrBadAmount
		}
		if len(frac) == 1 {
			f *= 10
		}
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Positive reports whether the amount is strictly greater than zero.
func (m Money) Positive() bool { return m.Cents > 0 }

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON renders Money as a quoted two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}
