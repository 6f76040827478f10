package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyFormat(t *testing.T) {
	idr := NewCurrency("IDR", 2)
	assert.Equal(t, "IDR 80.00", idr.Format(8000))
	assert.Equal(t, "IDR 0.05", idr.Format(5))

	whole := NewCurrency("JPY", 0)
	assert.Equal(t, "JPY 1200", whole.Format(1200))
}

func TestGatewayAmountRoundsHalfUp(t *testing.T) {
	idr := NewCurrency("IDR", 2)
	assert.Equal(t, int64(80), idr.GatewayAmount(8049))
	assert.Equal(t, int64(81), idr.GatewayAmount(8050))
	assert.Equal(t, int64(100), idr.GatewayAmount(10000))
}

func TestParse(t *testing.T) {
	idr := NewCurrency("IDR", 2)

	got, err := idr.Parse("80.5")
	require.NoError(t, err)
	assert.Equal(t, Amount(8050), got)

	got, err = idr.Parse("100")
	require.NoError(t, err)
	assert.Equal(t, Amount(10000), got)

	_, err = idr.Parse("1.005")
	require.Error(t, err)

	_, err = idr.Parse("abc")
	require.Error(t, err)
}

func TestAmountJSONUsesMajorUnits(t *testing.T) {
	body, err := json.Marshal(struct {
		Price  Amount  `json:"price"`
		Agreed *Amount `json:"agreed"`
	}{Price: 8050})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":80.5,"agreed":null}`, string(body))

	var in struct {
		Price  Amount  `json:"price"`
		Quoted Amount  `json:"quoted"`
		Agreed *Amount `json:"agreed"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":80,"quoted":"12.25","agreed":null}`), &in))
	assert.Equal(t, Amount(8000), in.Price)
	assert.Equal(t, Amount(1225), in.Quoted)
	assert.Nil(t, in.Agreed)

	assert.Error(t, json.Unmarshal([]byte(`{"price":80.555}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"price":true}`), &in))
}

func TestSetWireCurrency(t *testing.T) {
	t.Cleanup(func() { SetWireCurrency(NewCurrency("IDR", 2)) })
	SetWireCurrency(NewCurrency("JPY", 0))

	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`1200`), &a))
	assert.Equal(t, Amount(1200), a)
	assert.Error(t, json.Unmarshal([]byte(`12.5`), &a))
}

func TestAmountArithmetic(t *testing.T) {
	unit := Amount(1250)
	assert.Equal(t, Amount(3750), unit.Mul(3))
	assert.Equal(t, Amount(2500), unit.Add(unit))
	assert.True(t, unit.IsPositive())
	assert.False(t, Amount(0).IsPositive())
}
