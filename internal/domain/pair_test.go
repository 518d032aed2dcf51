package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	pair, err := ParsePair("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, Pair{Base: "BTC", Quote: "USDT"}, pair)
	assert.Equal(t, "BTC/USDT", pair.String())
	assert.Equal(t, "BTCUSDT", pair.Symbol())

	for _, bad := range []string{"", "BTCUSDT", "BTC/", "/USDT", "BTC/USDT/X"} {
		_, err := ParsePair(bad)
		assert.Errorf(t, err, "input %q", bad)
	}
}

func TestPairJSON(t *testing.T) {
	data, err := json.Marshal(Pair{Base: "ETH", Quote: "USDT"})
	require.NoError(t, err)
	assert.Equal(t, `"ETH/USDT"`, string(data))

	var pair Pair
	require.NoError(t, json.Unmarshal([]byte(`"BTC/USDT"`), &pair))
	assert.Equal(t, Pair{Base: "BTC", Quote: "USDT"}, pair)

	assert.Error(t, json.Unmarshal([]byte(`"BTCUSDT"`), &pair))
}

func TestOrderClone(t *testing.T) {
	price := decimal.NewFromInt(43000)
	order := NewOrder(Pair{Base: "BTC", Quote: "USDT"}, OrderTypeLimit, OrderSideBuy, decimal.NewFromInt(1), &price)

	clone := order.Clone()
	require.NotNil(t, clone.Price)
	*clone.Price = decimal.NewFromInt(1)

	assert.True(t, order.Price.Equal(decimal.NewFromInt(43000)), "clone must not share the price pointer")
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusOpen.IsTerminal())
	assert.True(t, OrderStatusFilled.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
}

func TestAssetRevalue(t *testing.T) {
	a := Asset{Balance: decimal.NewFromFloat(0.5), Price: decimal.NewFromInt(40000)}
	assert.True(t, a.Revalue().Value.Equal(decimal.NewFromInt(20000)))
}
