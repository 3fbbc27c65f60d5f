package folio

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Quantity is a number of shares. Holdings only ever hold whole shares.
type Quantity int64

func (q Quantity) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(q)) }
func (q Quantity) IsPositive() bool         { return q > 0 }

// String prints the quantity with thousands separators.
func (q Quantity) String() string {
	s := strconv.FormatInt(int64(q), 10)
	neg := false
	if q < 0 {
		neg, s = true, s[1:]
	}
	var b []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, s[i])
	}
	if neg {
		return "-" + string(b)
	}
	return string(b)
}
