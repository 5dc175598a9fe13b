package amount

import (
	"fmt"
	"math/big"
	"strings"
)

// Fraction is an exact rational value. It backs every price and percentage in
// the valuation path so that no intermediate result picks up binary
// floating-point error.
type Fraction struct {
	num *big.Int
	den *big.Int
}

// NewFraction builds num/den. A zero denominator is the caller's contract
// breach; use denominator 1 explicitly where a collapse is intended (LP share
// pricing with zero total supply).
func NewFraction(num, den *big.Int) (Fraction, error) {
	if den == nil || den.Sign() == 0 {
		return Fraction{}, fmt.Errorf("fraction denominator must be non-zero")
	}
	return Fraction{num: new(big.Int).Set(num), den: new(big.Int).Set(den)}, nil
}

// FractionFromInt builds n/1.
func FractionFromInt(n int64) Fraction {
	return Fraction{num: big.NewInt(n), den: big.NewInt(1)}
}

// ZeroFraction is 0/1.
func ZeroFraction() Fraction {
	return Fraction{num: new(big.Int), den: big.NewInt(1)}
}

func (f Fraction) numOr0() *big.Int {
	if f.num == nil {
		return new(big.Int)
	}
	return f.num
}

func (f Fraction) denOr1() *big.Int {
	if f.den == nil || f.den.Sign() == 0 {
		return big.NewInt(1)
	}
	return f.den
}

func (f Fraction) Numerator() *big.Int   { return new(big.Int).Set(f.numOr0()) }
func (f Fraction) Denominator() *big.Int { return new(big.Int).Set(f.denOr1()) }

func (f Fraction) IsZero() bool { return f.numOr0().Sign() == 0 }

func (f Fraction) Add(other Fraction) Fraction {
	// a/b + c/d = (ad + cb) / bd
	ad := new(big.Int).Mul(f.numOr0(), other.denOr1())
	cb := new(big.Int).Mul(other.numOr0(), f.denOr1())
	return Fraction{
		num: ad.Add(ad, cb),
		den: new(big.Int).Mul(f.denOr1(), other.denOr1()),
	}
}

func (f Fraction) Sub(other Fraction) Fraction {
	ad := new(big.Int).Mul(f.numOr0(), other.denOr1())
	cb := new(big.Int).Mul(other.numOr0(), f.denOr1())
	return Fraction{
		num: ad.Sub(ad, cb),
		den: new(big.Int).Mul(f.denOr1(), other.denOr1()),
	}
}

func (f Fraction) Mul(other Fraction) Fraction {
	return Fraction{
		num: new(big.Int).Mul(f.numOr0(), other.numOr0()),
		den: new(big.Int).Mul(f.denOr1(), other.denOr1()),
	}
}

// Div returns f / other. A zero divisor is a caller contract breach.
func (f Fraction) Div(other Fraction) (Fraction, error) {
	if other.IsZero() {
		return Fraction{}, fmt.Errorf("division by zero fraction")
	}
	return Fraction{
		num: new(big.Int).Mul(f.numOr0(), other.denOr1()),
		den: new(big.Int).Mul(f.denOr1(), other.numOr0()),
	}, nil
}

// Cmp compares f against other: -1, 0, or 1.
func (f Fraction) Cmp(other Fraction) int {
	left := new(big.Int).Mul(f.numOr0(), other.denOr1())
	right := new(big.Int).Mul(other.numOr0(), f.denOr1())
	// Normalize sign when a denominator is negative.
	if f.denOr1().Sign()*other.denOr1().Sign() < 0 {
		return -left.Cmp(right)
	}
	return left.Cmp(right)
}

// ToFixed renders the fraction with exactly places fractional digits,
// truncating toward zero.
func (f Fraction) ToFixed(places int) string {
	if places < 0 {
		places = 0
	}
	num := new(big.Int).Set(f.numOr0())
	den := new(big.Int).Set(f.denOr1())
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	neg := num.Sign() < 0
	if neg {
		num.Neg(num)
	}
	scaled := new(big.Int).Mul(num, pow10(places))
	scaled.Quo(scaled, den)
	out := formatScaled(scaled, places, false)
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// ToSignificant renders the fraction with at most sig significant digits,
// trailing zeros trimmed.
func (f Fraction) ToSignificant(sig int) string {
	if sig <= 0 {
		sig = 1
	}
	if f.IsZero() {
		return "0"
	}
	// Render with generous fixed precision, then trim to significance.
	const guard = 36
	fixed := f.ToFixed(guard)
	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart = fixed[:i]
		fracPart = fixed[i+1:]
	}
	digits := 0
	started := false
	var b strings.Builder
	for _, c := range intPart {
		if c != '0' {
			started = true
		}
		if started && digits < sig {
			digits++
			b.WriteRune(c)
		} else if started {
			b.WriteRune('0')
		} else {
			b.WriteRune(c)
		}
	}
	out := b.String()
	if digits < sig {
		var fb strings.Builder
		for _, c := range fracPart {
			if !started && c == '0' {
				fb.WriteRune(c)
				continue
			}
			started = true
			if digits >= sig {
				break
			}
			digits++
			fb.WriteRune(c)
		}
		frac := strings.TrimRight(fb.String(), "0")
		if frac != "" {
			out = out + "." + frac
		}
	}
	out = strings.TrimLeft(out, "0")
	if out == "" || strings.HasPrefix(out, ".") {
		out = "0" + out
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// Float64 is a lossy conversion for chart payloads only.
func (f Fraction) Float64() float64 {
	r := new(big.Rat).SetFrac(f.numOr0(), f.denOr1())
	v, _ := r.Float64()
	return v
}

func formatScaled(scaled *big.Int, places int, trim bool) string {
	s := scaled.String()
	if places == 0 {
		return s
	}
	if len(s) <= places {
		s = strings.Repeat("0", places-len(s)+1) + s
	}
	intPart := s[:len(s)-places]
	fracPart := s[len(s)-places:]
	if trim {
		fracPart = strings.TrimRight(fracPart, "0")
		if fracPart == "" {
			return intPart
		}
	}
	return intPart + "." + fracPart
}
