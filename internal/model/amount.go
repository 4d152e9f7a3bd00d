package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts a raw statement amount into a fixed-point decimal.
//
// Statement layouts disagree on how negatives are written: some prefix the
// sign, some append it ("1234.50-"). The rule is: a trailing '-' marks the
// amount negative; otherwise a leading '-' does; otherwise it is positive.
// Everything outside [0-9.] is stripped before parsing, so currency symbols
// and thousands separators are tolerated.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	switch {
	case strings.HasSuffix(trimmed, "-"):
		negative = true
	case strings.HasPrefix(trimmed, "-"):
		negative = true
	}

	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, trimmed)

	if digits == "" || digits == "." {
		return decimal.Zero, fmt.Errorf("no numeric content in amount %q", raw)
	}

	amount, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", raw, err)
	}

	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}
