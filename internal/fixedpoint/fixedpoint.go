// Package fixedpoint implements exact scaled-integer decimal arithmetic.
//
// Monetary amounts are held as integer cents (scale 2) and tax rates as
// integer micros (scale 6). Decimal input is parsed digit by digit from its
// literal form so binary floating-point error never enters the computation;
// floats appear only at the display boundary.
package fixedpoint

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Scales used by the tax engine.
const (
	CentsScale  = 2
	MicrosScale = 6

	// MicrosPerUnit is the divisor that takes cents×micros back to cents.
	MicrosPerUnit = 1_000_000
)

// ErrInvalidNumericLiteral is returned when a string does not have the exact
// decimal-literal shape: optional sign, integer part, optional fractional
// part. Upstream validation should make this unreachable; it is never
// silently zeroed.
var ErrInvalidNumericLiteral = eris.New("fixedpoint: invalid numeric literal")

var literalRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// maxIntegerDigits bounds the integer part so the scaled value fits in int64.
const maxIntegerDigits = 15

// ParseScaled converts a decimal literal to an integer scaled to the given
// number of fractional digits, rounding half-up away from zero at the
// truncation boundary. ParseScaled("1.005", 2) is 101; ParseScaled("-1.005", 2)
// is -101.
func ParseScaled(s string, digits int) (int64, error) {
	if !literalRe.MatchString(s) {
		return 0, eris.Wrapf(ErrInvalidNumericLiteral, "parse %q", s)
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(intPart) > maxIntegerDigits {
		return 0, eris.Wrapf(ErrInvalidNumericLiteral, "parse %q: integer part too long", s)
	}

	var n int64
	for i := 0; i < len(intPart); i++ {
		n = n*10 + int64(intPart[i]-'0')
	}
	for i := 0; i < digits; i++ {
		var d int64
		if i < len(fracPart) {
			d = int64(fracPart[i] - '0')
		}
		n = n*10 + d
	}
	if len(fracPart) > digits && fracPart[digits] >= '5' {
		n++
	}

	if neg {
		n = -n
	}
	return n, nil
}

// Cents parses a decimal literal into integer cents.
func Cents(s string) (int64, error) {
	return ParseScaled(s, CentsScale)
}

// Micros parses a decimal literal into integer micros.
func Micros(s string) (int64, error) {
	return ParseScaled(s, MicrosScale)
}

// CentsFromFloat converts an already-validated numeric amount to cents by
// routing through its shortest decimal literal, so the binary float is
// treated as the decimal value it displays as. Non-finite values fail with
// ErrInvalidNumericLiteral.
func CentsFromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Wrapf(ErrInvalidNumericLiteral, "non-finite value %v", v)
	}
	return Cents(strconv.FormatFloat(v, 'f', -1, 64))
}

// ErrOutOfRange is returned when a scaled computation would exceed int64.
var ErrOutOfRange = eris.New("fixedpoint: value out of range")

// MulDiv computes RoundDiv(a*b, den), failing with ErrOutOfRange when the
// intermediate product does not fit in int64.
func MulDiv(a, b, den int64) (int64, error) {
	if a != 0 && b != 0 {
		absA, absB := a, b
		if absA < 0 {
			absA = -absA
		}
		if absB < 0 {
			absB = -absB
		}
		if absA > math.MaxInt64/absB {
			return 0, eris.Wrapf(ErrOutOfRange, "multiply %d by %d", a, b)
		}
	}
	return RoundDiv(a*b, den), nil
}

// RoundDiv divides num by den with half-up rounding on the remainder,
// breaking ties away from zero for negative numerators as well. den must be
// positive.
func RoundDiv(num, den int64) int64 {
	q := num / den
	r := num % den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if num < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// Format renders a scaled integer as a decimal string with exactly the given
// number of fractional digits.
func Format(n int64, digits int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	pow := int64(1)
	for i := 0; i < digits; i++ {
		pow *= 10
	}
	whole := n / pow
	frac := n % pow

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(whole, 10))
	if digits > 0 {
		b.WriteByte('.')
		fs := strconv.FormatInt(frac, 10)
		b.WriteString(strings.Repeat("0", digits-len(fs)))
		b.WriteString(fs)
	}
	return b.String()
}

// ToFloat converts a scaled integer to a float for display or JSON output.
// Only already-rounded values cross this boundary.
func ToFloat(n int64, digits int) float64 {
	pow := 1.0
	for i := 0; i < digits; i++ {
		pow *= 10
	}
	return float64(n) / pow
}
