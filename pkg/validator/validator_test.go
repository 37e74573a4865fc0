package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string           `validate:"required"`
	Quantity decimal.Decimal  `validate:"gt=0"`
	Price    *decimal.Decimal `validate:"omitempty,gte=0"`
}

func TestValidateStruct_Decimales(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	errs := ValidateStruct(sample{Quantity: decimal.Zero, Price: &neg})
	require.Len(t, errs, 3)
	assert.Equal(t, "sample.Name", errs[0].Field)
	assert.Equal(t, "gt", errs[1].Tag)
	assert.Equal(t, "gte", errs[2].Tag)

	assert.Nil(t, ValidateStruct(sample{Name: "x", Quantity: decimal.RequireFromString("0.5")}))
}
