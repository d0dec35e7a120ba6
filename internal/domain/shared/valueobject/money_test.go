package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestZero(t *testing.T) {
	m := Zero(EUR)
	assert.True(t, m.IsZero())
	assert.Equal(t, EUR, m.Currency())

	assert.True(t, ZeroUSD().IsZero())
	assert.Equal(t, USD, ZeroUSD().Currency())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds amounts with same currency", func(t *testing.T) {
		a, _ := NewMoneyUSDFromString("100.25")
		b, _ := NewMoneyUSDFromString("49.75")
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(150.00)))
	})

	t.Run("rejects different currencies", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromInt(1))
		b, _ := NewMoney(decimal.NewFromInt(1), EUR)
		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

func TestMoneySubtract(t *testing.T) {
	a, _ := NewMoneyUSDFromString("100.00")
	b, _ := NewMoneyUSDFromString("30.50")
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(69.50)))

	neg, err := b.Subtract(a)
	require.NoError(t, err)
	assert.True(t, neg.IsNegative())
}

func TestMoneyMin(t *testing.T) {
	a, _ := NewMoneyUSDFromString("75.00")
	b, _ := NewMoneyUSDFromString("120.00")

	m, err := a.Min(b)
	require.NoError(t, err)
	assert.True(t, m.Equals(a))

	m, err = b.Min(a)
	require.NoError(t, err)
	assert.True(t, m.Equals(a))
}

func TestMoneyComparisons(t *testing.T) {
	small, _ := NewMoneyUSDFromString("10.00")
	large, _ := NewMoneyUSDFromString("20.00")

	lt, err := small.LessThan(large)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := large.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := large.GreaterThanOrEqual(large)
	require.NoError(t, err)
	assert.True(t, gte)

	other, _ := NewMoney(decimal.NewFromInt(10), CNY)
	_, err = small.LessThan(other)
	assert.Error(t, err)
}

func TestMoneyJSON(t *testing.T) {
	m, _ := NewMoneyUSDFromString("42.10")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.1","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("55.25"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(55.25)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans byte slice", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan([]byte("13.37")))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(13.37)))
	})

	t.Run("nil becomes zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(42))
	})
}
