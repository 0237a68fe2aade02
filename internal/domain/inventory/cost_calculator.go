package inventory

import "github.com/shopspring/decimal"

// costAccumulator acumula los costos unitarios de las entradas de un (sede, libro).
// Suma y cuenta por separado y divide una sola vez al final: el resultado no depende
// del orden en que lleguen los movimientos (la división incremental sí redondearía distinto).
type costAccumulator struct {
	sum   decimal.Decimal
	count int64
}

func (c *costAccumulator) add(unitCost decimal.NullDecimal) {
	if !unitCost.Valid {
		return
	}
	c.sum = c.sum.Add(unitCost.Decimal)
	c.count++
}

func (c costAccumulator) mean() decimal.NullDecimal {
	return MeanCost(c.sum, c.count)
}

// MeanCost implementa el costo promedio del ledger: Σ costos unitarios / n.
// Con n ≤ 0 no hay costo (ausente), nunca cero.
func MeanCost(sum decimal.Decimal, n int64) decimal.NullDecimal {
	if n <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(n)))
}

// LineValue valor de una existencia: stock × costo promedio.
func LineValue(stock int64, averageCost decimal.Decimal) decimal.Decimal {
	return averageCost.Mul(decimal.NewFromInt(stock))
}
