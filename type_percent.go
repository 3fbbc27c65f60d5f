package folio

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent is a percentage that may be undefined.
//
// An undefined Percent is the result of a division by zero. It carries no
// number, so it cannot leak into further arithmetic, and renders as "-".
type Percent struct {
	value   decimal.Decimal
	defined bool
}

// Undefined is the Percent of a ratio whose base is zero.
var Undefined = Percent{}

// P creates a defined Percent from its value, 1.5 meaning 1.5%.
func P(value float64) Percent { return Percent{value: decimal.NewFromFloat(value), defined: true} }

// Ratio returns num/den in percent, or Undefined when den is zero.
func Ratio(num, den decimal.Decimal) Percent {
	if den.IsZero() {
		return Undefined
	}
	return Percent{value: num.Div(den).Mul(hundred), defined: true}
}

func (p Percent) Defined() bool { return p.defined }

// Value returns the percentage and whether it is defined.
func (p Percent) Value() (decimal.Decimal, bool) { return p.value, p.defined }

// Float64 returns the percentage as a float and whether it is defined.
func (p Percent) Float64() (float64, bool) { return p.value.InexactFloat64(), p.defined }

func (p Percent) IsNegative() bool { return p.defined && p.value.IsNegative() }

func (p Percent) Equal(q Percent) bool {
	if !p.defined || !q.defined {
		return p.defined == q.defined
	}
	// it has to be compared with some precision
	precision := decimal.New(1, -4)
	return p.value.Sub(q.value).Abs().LessThan(precision)
}

func (p Percent) String() string {
	if !p.defined {
		return "-"
	}
	return p.value.StringFixed(2) + "%"
}

// SignedString is like String but always prints the sign, "+" for zero and above.
func (p Percent) SignedString() string {
	if !p.defined {
		return "-"
	}
	if p.value.Round(2).IsNegative() {
		return p.String()
	}
	return "+" + p.String()
}

// MarshalJSON encodes an undefined percent as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.defined {
		return []byte("null"), nil
	}
	return json.Marshal(p.value.Round(4))
}
