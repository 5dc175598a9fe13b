package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// TokenAmount is an on-chain quantity held as integer base units plus the
// token's decimal places. Arithmetic stays on big.Int; conversion to a decimal
// string happens only at the output boundary.
type TokenAmount struct {
	raw      *big.Int
	decimals int
}

// NewFromBaseUnits parses an integer base-unit string (as returned by
// contracts and subgraphs for raw amounts).
func NewFromBaseUnits(baseUnits string, decimals int) (TokenAmount, error) {
	if decimals < 0 {
		return TokenAmount{}, fmt.Errorf("decimals must be >= 0")
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(baseUnits), 10)
	if !ok || n.Sign() < 0 {
		return TokenAmount{}, fmt.Errorf("amount must be a non-negative integer string")
	}
	return TokenAmount{raw: n, decimals: decimals}, nil
}

// NewFromDecimal parses a decimal string like "1.23" into base units.
// Precision beyond the token's decimals is rejected rather than truncated.
func NewFromDecimal(decimal string, decimals int) (TokenAmount, error) {
	decimal = strings.TrimSpace(decimal)
	if decimals < 0 {
		return TokenAmount{}, fmt.Errorf("decimals must be >= 0")
	}
	if !decimalPattern.MatchString(decimal) {
		return TokenAmount{}, fmt.Errorf("amount must be in decimal form like 1.23")
	}
	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return TokenAmount{}, fmt.Errorf("decimal precision exceeds token decimals (%d)", decimals)
	}
	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		combined = "0"
	}
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return TokenAmount{}, fmt.Errorf("invalid decimal amount")
	}
	return TokenAmount{raw: n, decimals: decimals}, nil
}

// ParseDecimal parses a decimal string the way NewFromDecimal does, but
// truncates fractional digits beyond the declared precision instead of
// rejecting them. Subgraph BigDecimal fields routinely carry 30+ fractional
// digits; everything past the token's own precision is noise.
func ParseDecimal(decimal string, decimals int) (TokenAmount, error) {
	decimal = strings.TrimSpace(decimal)
	if i := strings.IndexByte(decimal, '.'); i >= 0 {
		frac := decimal[i+1:]
		if len(frac) > decimals {
			decimal = decimal[:i]
			if decimals > 0 {
				decimal += "." + frac[:decimals]
			}
		}
	}
	return NewFromDecimal(decimal, decimals)
}

// Zero returns a zero amount at the given precision.
func Zero(decimals int) TokenAmount {
	return TokenAmount{raw: new(big.Int), decimals: decimals}
}

func (a TokenAmount) Decimals() int { return a.decimals }

// Raw returns a copy of the base-unit integer.
func (a TokenAmount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

func (a TokenAmount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Add returns a+b. Both operands must share the same precision.
func (a TokenAmount) Add(b TokenAmount) (TokenAmount, error) {
	if a.decimals != b.decimals {
		return TokenAmount{}, fmt.Errorf("mismatched decimals: %d vs %d", a.decimals, b.decimals)
	}
	return TokenAmount{raw: new(big.Int).Add(a.Raw(), b.Raw()), decimals: a.decimals}, nil
}

// Sub returns a-b. Both operands must share the same precision.
func (a TokenAmount) Sub(b TokenAmount) (TokenAmount, error) {
	if a.decimals != b.decimals {
		return TokenAmount{}, fmt.Errorf("mismatched decimals: %d vs %d", a.decimals, b.decimals)
	}
	return TokenAmount{raw: new(big.Int).Sub(a.Raw(), b.Raw()), decimals: a.decimals}, nil
}

// Fraction returns the amount as an exact rational: raw / 10^decimals.
func (a TokenAmount) Fraction() Fraction {
	return Fraction{num: a.Raw(), den: pow10(a.decimals)}
}

// Decimal renders the amount as a decimal string with trailing zeros trimmed.
func (a TokenAmount) Decimal() string {
	return formatBaseUnits(a.Raw(), a.decimals)
}

// BaseUnits renders the raw integer string.
func (a TokenAmount) BaseUnits() string {
	return a.Raw().String()
}

// ToFixed renders the amount with exactly places fractional digits, truncating
// extra precision.
func (a TokenAmount) ToFixed(places int) string {
	return a.Fraction().ToFixed(places)
}

// ToSignificant renders the amount with at most sig significant digits.
func (a TokenAmount) ToSignificant(sig int) string {
	return a.Fraction().ToSignificant(sig)
}

func formatBaseUnits(n *big.Int, decimals int) string {
	s := n.String()
	if decimals == 0 {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	out := intPart
	if fracPart != "" {
		out = intPart + "." + fracPart
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
