package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// moneyScale is the number of fractional digits every Money value carries
	moneyScale = 2

	// maxIntegerDigits matches the NUMERIC(14,2) columns of the SQL schema
	maxIntegerDigits = 12

	// maxFractionDigits bounds input precision so rounding stays cheap
	maxFractionDigits = 32
)

// Money is a fixed-point currency amount with two fractional digits.
// The zero value is 0.00 and ready to use.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is 0.00
var ZeroMoney = Money{}

// MaxMoney is the largest amount any balance, target or entry may hold
var MaxMoney = Money{amount: decimal.New(99999999999999, -moneyScale)}

func newMoney(d decimal.Decimal) Money {
	// decimal.Round rounds half away from zero, which is half-up for positive amounts
	return Money{amount: d.Round(moneyScale)}
}

// quantize range-checks d and rounds it to two places. The digit checks run
// before Round, which would otherwise expand a huge exponent in full.
func quantize(d decimal.Decimal) (Money, error) {
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits {
		return Money{}, fmt.Errorf("%w: more than %d fractional digits", ErrInvalidAmount, maxFractionDigits)
	}
	if int64(d.NumDigits())+exp > maxIntegerDigits {
		return Money{}, fmt.Errorf("%w: magnitude exceeds %s", ErrInvalidAmount, MaxMoney)
	}

	m := newMoney(d)
	if !m.InRange() {
		return Money{}, fmt.Errorf("%w: magnitude exceeds %s", ErrInvalidAmount, MaxMoney)
	}
	return m, nil
}

// Parse converts an external value into Money.
// Accepted inputs: string (dot or comma separator), integers, floats,
// decimal.Decimal and Money. The result is quantized to two decimal places
// before it is returned, so callers never compare or store unrounded values.
func Parse(input any) (Money, error) {
	switch v := input.(type) {
	case Money:
		return quantize(v.amount)
	case *Money:
		if v == nil {
			return Money{}, fmt.Errorf("%w: missing value", ErrInvalidAmount)
		}
		return quantize(v.amount)
	case decimal.Decimal:
		return quantize(v)
	case string:
		return parseMoneyString(v)
	case int:
		return quantize(decimal.NewFromInt(int64(v)))
	case int32:
		return quantize(decimal.NewFromInt32(v))
	case int64:
		return quantize(decimal.NewFromInt(v))
	case float32:
		return parseMoneyFloat(float64(v))
	case float64:
		return parseMoneyFloat(v)
	case nil:
		return Money{}, fmt.Errorf("%w: missing value", ErrInvalidAmount)
	default:
		return Money{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, input)
	}
}

// ParsePositive parses input like Parse and requires the quantized value to be > 0
func ParsePositive(input any) (Money, error) {
	m, err := Parse(input)
	if err != nil {
		return Money{}, err
	}
	if !m.IsPositive() {
		return Money{}, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, m)
	}
	return m, nil
}

// MustParse is Parse for constants and tests. It panics on invalid input.
func MustParse(input any) Money {
	m, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return m
}

func parseMoneyString(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	// Accept a decimal comma when it is the only separator
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidAmount, s)
	}
	return quantize(d)
}

func parseMoneyFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, fmt.Errorf("%w: %v is not a finite number", ErrInvalidAmount, f)
	}
	return quantize(decimal.NewFromFloat(f))
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return newMoney(m.amount.Add(other.amount))
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	return newMoney(m.amount.Sub(other.amount))
}

// Neg returns -m
func (m Money) Neg() Money {
	return newMoney(m.amount.Neg())
}

// DivInt divides m by n and rounds the quotient to two places.
// Division by zero yields zero.
func (m Money) DivInt(n int) Money {
	if n == 0 {
		return ZeroMoney
	}
	return newMoney(m.amount.Div(decimal.NewFromInt(int64(n))))
}

// Cmp returns -1, 0 or +1 depending on whether m is less than, equal to or greater than other
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// Equal reports whether m and other represent the same amount
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan reports m < other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual reports m >= other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// IsZero reports m == 0
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports m > 0
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports m < 0
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// InRange reports |m| <= MaxMoney
func (m Money) InRange() bool {
	return m.amount.Abs().LessThanOrEqual(MaxMoney.amount)
}

// MinMoney returns the smaller of a and b
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Decimal exposes the underlying decimal value for exact arithmetic such as ratios
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Float64 converts m for presentation only; never use the result for arithmetic
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String formats m with exactly two fractional digits
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}

// MarshalJSON encodes m as a decimal string to avoid float precision loss
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts both decimal strings and JSON numbers
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("%w: null value", ErrInvalidAmount)
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := parseMoneyString(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as NUMERIC text
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := parseMoneyString(string(v))
		if err != nil {
			return err
		}
		*m = parsed
	case string:
		parsed, err := parseMoneyString(v)
		if err != nil {
			return err
		}
		*m = parsed
	case int64:
		parsed, err := quantize(decimal.NewFromInt(v))
		if err != nil {
			return err
		}
		*m = parsed
	case float64:
		parsed, err := parseMoneyFloat(v)
		if err != nil {
			return err
		}
		*m = parsed
	case nil:
		*m = ZeroMoney
	default:
		return fmt.Errorf("%w: cannot scan %T into Money", ErrInvalidAmount, src)
	}
	return nil
}
