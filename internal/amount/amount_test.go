package amount

import (
	"math/big"
	"testing"
)

func TestNewFromBaseUnits(t *testing.T) {
	a, err := NewFromBaseUnits("1500000000000000000", 18)
	if err != nil {
		t.Fatalf("NewFromBaseUnits failed: %v", err)
	}
	if got := a.Decimal(); got != "1.5" {
		t.Fatalf("expected 1.5, got %s", got)
	}
	if got := a.BaseUnits(); got != "1500000000000000000" {
		t.Fatalf("expected raw echo, got %s", got)
	}
}

func TestNewFromBaseUnitsRejectsNegativeAndGarbage(t *testing.T) {
	if _, err := NewFromBaseUnits("-5", 18); err == nil {
		t.Fatal("expected negative rejection")
	}
	if _, err := NewFromBaseUnits("1.5", 18); err == nil {
		t.Fatal("expected decimal rejection")
	}
	if _, err := NewFromBaseUnits("abc", 18); err == nil {
		t.Fatal("expected garbage rejection")
	}
}

func TestNewFromDecimal(t *testing.T) {
	a, err := NewFromDecimal("1.23", 6)
	if err != nil {
		t.Fatalf("NewFromDecimal failed: %v", err)
	}
	if got := a.BaseUnits(); got != "1230000" {
		t.Fatalf("expected 1230000 base units, got %s", got)
	}
	if got := a.Decimal(); got != "1.23" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestNewFromDecimalRejectsExcessPrecision(t *testing.T) {
	if _, err := NewFromDecimal("1.234", 2); err == nil {
		t.Fatal("expected precision rejection")
	}
}

func TestParseDecimalTruncatesExcessPrecision(t *testing.T) {
	a, err := ParseDecimal("1.23456789", 4)
	if err != nil {
		t.Fatalf("ParseDecimal failed: %v", err)
	}
	if got := a.Decimal(); got != "1.2345" {
		t.Fatalf("expected truncation to 1.2345, got %s", got)
	}

	b, err := ParseDecimal("7.999", 0)
	if err != nil {
		t.Fatalf("ParseDecimal with zero decimals failed: %v", err)
	}
	if got := b.Decimal(); got != "7" {
		t.Fatalf("expected 7, got %s", got)
	}
}

func TestTokenAmountAddSubRequireMatchingDecimals(t *testing.T) {
	a, _ := NewFromDecimal("1.5", 18)
	b, _ := NewFromDecimal("0.5", 18)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := sum.Decimal(); got != "2" {
		t.Fatalf("expected 2, got %s", got)
	}
	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if got := diff.Decimal(); got != "1" {
		t.Fatalf("expected 1, got %s", got)
	}

	c, _ := NewFromDecimal("1", 6)
	if _, err := a.Add(c); err == nil {
		t.Fatal("expected mismatched decimals rejection")
	}
	if _, err := a.Sub(c); err == nil {
		t.Fatal("expected mismatched decimals rejection")
	}
}

func TestZeroAmount(t *testing.T) {
	z := Zero(18)
	if !z.IsZero() {
		t.Fatal("expected zero amount")
	}
	if got := z.Decimal(); got != "0" {
		t.Fatalf("expected 0, got %s", got)
	}
}

func TestNewFractionRejectsZeroDenominator(t *testing.T) {
	if _, err := NewFraction(big.NewInt(1), big.NewInt(0)); err == nil {
		t.Fatal("expected zero denominator rejection")
	}
	if _, err := NewFraction(big.NewInt(1), nil); err == nil {
		t.Fatal("expected nil denominator rejection")
	}
}

func TestFractionArithmetic(t *testing.T) {
	half, _ := NewFraction(big.NewInt(1), big.NewInt(2))
	third, _ := NewFraction(big.NewInt(1), big.NewInt(3))

	sum := half.Add(third)
	if got := sum.ToFixed(4); got != "0.8333" {
		t.Fatalf("expected 0.8333, got %s", got)
	}
	diff := half.Sub(third)
	if got := diff.ToFixed(4); got != "0.1666" {
		t.Fatalf("expected 0.1666, got %s", got)
	}
	product := half.Mul(third)
	if got := product.ToFixed(4); got != "0.1666" {
		t.Fatalf("expected 0.1666, got %s", got)
	}
	quot, err := half.Div(third)
	if err != nil {
		t.Fatalf("Div failed: %v", err)
	}
	if got := quot.ToFixed(2); got != "1.50" {
		t.Fatalf("expected 1.50, got %s", got)
	}
}

func TestFractionDivByZeroRejected(t *testing.T) {
	half, _ := NewFraction(big.NewInt(1), big.NewInt(2))
	if _, err := half.Div(ZeroFraction()); err == nil {
		t.Fatal("expected division by zero rejection")
	}
}

func TestFractionCmp(t *testing.T) {
	half, _ := NewFraction(big.NewInt(1), big.NewInt(2))
	third, _ := NewFraction(big.NewInt(1), big.NewInt(3))
	if half.Cmp(third) != 1 {
		t.Fatal("expected 1/2 > 1/3")
	}
	if third.Cmp(half) != -1 {
		t.Fatal("expected 1/3 < 1/2")
	}
	same, _ := NewFraction(big.NewInt(2), big.NewInt(4))
	if half.Cmp(same) != 0 {
		t.Fatal("expected 1/2 == 2/4")
	}
}

func TestFractionToSignificant(t *testing.T) {
	v, _ := NewFraction(big.NewInt(123456), big.NewInt(1000))
	if got := v.ToSignificant(4); got != "123.4" {
		t.Fatalf("expected 123.4, got %s", got)
	}
	small, _ := NewFraction(big.NewInt(123), big.NewInt(1000000))
	if got := small.ToSignificant(2); got != "0.00012" {
		t.Fatalf("expected 0.00012, got %s", got)
	}
	if got := ZeroFraction().ToSignificant(8); got != "0" {
		t.Fatalf("expected 0, got %s", got)
	}
}

func TestTokenAmountFraction(t *testing.T) {
	a, _ := NewFromDecimal("2.5", 18)
	f := a.Fraction()
	if got := f.ToFixed(1); got != "2.5" {
		t.Fatalf("expected 2.5, got %s", got)
	}
	if got := a.ToFixed(3); got != "2.500" {
		t.Fatalf("expected 2.500, got %s", got)
	}
	if got := a.ToSignificant(2); got != "2.5" {
		t.Fatalf("expected 2.5, got %s", got)
	}
}
