package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// WeightedLotCost acumula el costo promedio de los lotes ponderado por su existencia.
// Devuelve la cantidad total y el costo unitario promedio redondeado a 4 decimales.
func WeightedLotCost(quantities, prices []decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	total, cost := decimal.Zero, decimal.Zero
	for i := range quantities {
		if i >= len(prices) || !quantities[i].IsPositive() {
			continue
		}
		cost = CostCalculator(total, cost, quantities[i], prices[i])
		total = total.Add(quantities[i])
	}
	return total, cost.Round(4)
}
