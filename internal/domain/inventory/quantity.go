package inventory

import "github.com/shopspring/decimal"

// QuantityScale decimales que guardan las columnas NUMERIC(18,4) de cantidades y precios.
const QuantityScale = 4

// maxNumeric primer valor que ya no entra en NUMERIC(18,4): 10^14.
var maxNumeric = decimal.New(1, 18-QuantityScale)

// FitsNumeric indica si d se guarda en NUMERIC(18,4) tal cual, sin redondeo ni desborde.
// "1.50000" entra; "0.00004" no.
func FitsNumeric(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(QuantityScale)) && d.Abs().LessThan(maxNumeric)
}
