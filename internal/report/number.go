package report

import (
	"bytes"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Number is a derived value that may be undefined. NaN marks "no data":
// it serialises as JSON null and prints as "n/a".
type Number float64

// NaN is the undefined Number
func NaN() Number {
	return Number(math.NaN())
}

// Valid reports whether n carries data
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns n as a float64, NaN when undefined
func (n Number) Float() float64 {
	return float64(n)
}

func (n Number) String() string {
	if !n.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// MarshalJSON writes undefined values as null
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(n), 'f', -1, 64), nil
}

// UnmarshalJSON reads null as undefined
func (n *Number) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*n = NaN()
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Round rounds half away from zero on the shortest decimal representation
// of v, so 0.125 rounds to 0.13 at two places. NaN and infinities pass
// through unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundN is Round returning a Number
func RoundN(v float64, places int32) Number {
	return Number(Round(v, places))
}

// Percent is part/whole*100 rounded to places. A zero whole is undefined.
func Percent(part, whole int, places int32) Number {
	if whole == 0 {
		return NaN()
	}
	return RoundN(float64(part)/float64(whole)*100, places)
}

// mean averages the defined values; none defined is NaN
func mean(values []float64) float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// lessNaNLast orders ascending with NaN after every number
func lessNaNLast(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a < b
	}
}
