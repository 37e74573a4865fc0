package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

var today = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func validInput() LotInput {
	return LotInput{
		BatchCode:  "L-001",
		Expiration: today.AddDate(1, 0, 0),
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromInt(5),
	}
}

func TestNormalizeBatchCode(t *testing.T) {
	assert.Equal(t, "L-12", NormalizeBatchCode("  l-12 "))
	// ancho completo (NFKC) se unifica con ASCII
	assert.Equal(t, "AB1", NormalizeBatchCode("ａｂ１"))
}

func TestValidateLotInput(t *testing.T) {
	require.NoError(t, ValidateLotInput(validInput(), today))

	sameDay := validInput()
	sameDay.Expiration = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateLotInput(sameDay, today), "vencer hoy sigue siendo válido")

	cases := map[string]func(*LotInput){
		"sin código":      func(in *LotInput) { in.BatchCode = "   " },
		"sin vencimiento": func(in *LotInput) { in.Expiration = time.Time{} },
		"vencido":         func(in *LotInput) { in.Expiration = today.AddDate(0, 0, -1) },
		"cantidad cero":   func(in *LotInput) { in.Quantity = decimal.Zero },
		"precio negativo": func(in *LotInput) { in.UnitPrice = decimal.NewFromInt(-1) },
		"cinco decimales": func(in *LotInput) { in.Quantity = decimal.RequireFromString("0.00004") },
		"precio 5 dec.":   func(in *LotInput) { in.UnitPrice = decimal.RequireFromString("1.23456") },
		"desborde":        func(in *LotInput) { in.Quantity = decimal.New(1, 14) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			err := ValidateLotInput(in, today)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidLotData))
		})
	}
}

func TestSelectFEFO(t *testing.T) {
	mk := func(code string, exp time.Time, onHand, reserved int64) *entity.Lot {
		return &entity.Lot{
			BatchCode:        code,
			ExpirationDate:   exp,
			QuantityOnHand:   decimal.NewFromInt(onHand),
			QuantityReserved: decimal.NewFromInt(reserved),
		}
	}
	lots := []*entity.Lot{
		mk("TARDE", today.AddDate(0, 6, 0), 100, 0),
		mk("VENCIDO", today.AddDate(0, 0, -2), 100, 0),
		mk("PRONTO", today.AddDate(0, 1, 0), 50, 20),
	}

	allocs, short := SelectFEFO(lots, decimal.NewFromInt(60), today)
	assert.True(t, short.IsZero())
	require.Len(t, allocs, 2)
	assert.Equal(t, "PRONTO", allocs[0].Lot.BatchCode)
	assert.True(t, allocs[0].Quantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "TARDE", allocs[1].Lot.BatchCode)
	assert.True(t, allocs[1].Quantity.Equal(decimal.NewFromInt(30)))

	_, short = SelectFEFO(lots, decimal.NewFromInt(200), today)
	assert.True(t, short.Equal(decimal.NewFromInt(70)))
}

func TestWeightedLotCost(t *testing.T) {
	qty, cost := WeightedLotCost(
		[]decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(30), decimal.Zero},
		[]decimal.Decimal{decimal.NewFromInt(2), decimal.NewFromInt(6), decimal.NewFromInt(100)},
	)
	assert.True(t, qty.Equal(decimal.NewFromInt(40)))
	assert.True(t, cost.Equal(decimal.NewFromInt(5)), "(10*2 + 30*6) / 40 = 5, got %s", cost)
}

func TestVencimiento_SeComparaPorDiaCalendarioLocal(t *testing.T) {
	art := time.FixedZone("ART", -3*60*60)
	// 22 h del 17 en Argentina: en UTC ya es el 18
	now := time.Date(2026, 10, 17, 22, 0, 0, 0, art)
	expiration := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	in := validInput()
	in.Expiration = expiration
	assert.NoError(t, ValidateLotInput(in, now), "vence hoy en el día local")

	lot := &entity.Lot{ExpirationDate: expiration}
	assert.False(t, lot.IsExpired(now))
	assert.False(t, lot.IsExpired(time.Date(2026, 10, 17, 0, 30, 0, 0, art)))
	assert.True(t, lot.IsExpired(time.Date(2026, 10, 18, 0, 30, 0, 0, art)))

	// al este de UTC: la 1 h del 17 en Madrid todavía es el 16 en UTC
	cest := time.FixedZone("CEST", 2*60*60)
	early := time.Date(2026, 10, 17, 1, 0, 0, 0, cest)
	assert.False(t, lot.IsExpired(early))
	in.Expiration = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	assert.Error(t, ValidateLotInput(in, early))
}

func TestSameExpiration_IgnoraHoraYZona(t *testing.T) {
	art := time.FixedZone("ART", -3*60*60)
	assert.True(t, SameExpiration(
		time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 17, 23, 0, 0, 0, art),
	))
	assert.False(t, SameExpiration(
		time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	))
}

func TestFitsNumeric(t *testing.T) {
	for _, v := range []string{"1", "0.0001", "1.50000", "99999999999999.9999", "-3.25"} {
		assert.True(t, FitsNumeric(decimal.RequireFromString(v)), v)
	}
	for _, v := range []string{"0.00004", "1.00001", "100000000000000", "-100000000000000.5"} {
		assert.False(t, FitsNumeric(decimal.RequireFromString(v)), v)
	}
}
