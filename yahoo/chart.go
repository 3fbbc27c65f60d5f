package yahoo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

/*
	{
	    "chart": {
	        "result": [
	            {
	                "meta": {
	                    "currency": "KRW",
	                    "symbol": "005930.KS",
	                    "regularMarketPrice": 80000,
	                    "chartPreviousClose": 79000,
	                    "previousClose": 79000
	                }
	            }
	        ],
	        "error": null
	    }
	}
*/

// ErrNoData is returned when the chart document has no result.
var ErrNoData = errors.New("no chart data")

type meta struct {
	price         decimal.Decimal
	previousClose decimal.Decimal
	currency      string
}

// parseMeta reads the quote fields out of a chart document.
// previousClose is preferred, chartPreviousClose is the fallback.
func parseMeta(jobj any) (meta, error) {
	var m meta
	if _, err := get("$.chart.result[0].meta", jobj); err != nil {
		return m, ErrNoData
	}
	var err error
	m.price, err = getDecimal("$.chart.result[0].meta.regularMarketPrice", jobj)
	if err != nil {
		return m, err
	}
	m.previousClose, err = getDecimal("$.chart.result[0].meta.previousClose", jobj)
	if err != nil {
		m.previousClose, err = getDecimal("$.chart.result[0].meta.chartPreviousClose", jobj)
		if err != nil {
			return m, err
		}
	}
	if m.price.IsNegative() || m.previousClose.IsNegative() {
		return m, fmt.Errorf("negative price %s or previous close %s", m.price, m.previousClose)
	}
	if cur, err := get("$.chart.result[0].meta.currency", jobj); err == nil {
		m.currency, _ = cur.(string)
	}
	return m, nil
}

// get evaluates a json path and returns a non null value.
func get(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	if jval == nil {
		return nil, fmt.Errorf("error parsing %q: null", path)
	}
	return jval, nil
}

func getDecimal(path string, jobj any) (decimal.Decimal, error) {
	jval, err := get(path, jobj)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("error parsing %q: not a number %v", path, jval)
	}
}
