package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/decimal"
)

func TestFromString(t *testing.T) {
	d, err := decimal.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestMustFromString(t *testing.T) {
	d := decimal.MustFromString("999.99")
	assert.True(t, d.Equal(dec.RequireFromString("999.99")))

	assert.Panics(t, func() {
		decimal.MustFromString("invalid")
	})
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"no fraction", "5", "5"},
		{"two digits kept", "5.25", "5.25"},
		{"half rounds away from zero", "2.005", "2.01"},
		{"negative half rounds away from zero", "-2.005", "-2.01"},
		{"truncation case", "28.785", "28.79"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decimal.Round2(dec.RequireFromString(tt.in))
			assert.True(t, got.Equal(dec.RequireFromString(tt.expected)),
				"Round2(%s) = %s, want %s", tt.in, got, tt.expected)
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		rate     string
		expected string
	}{
		{"19% of 151.5", "151.5", "19", "28.79"},
		{"19% of 130", "130", "19", "24.7"},
		{"7% of 100", "100", "7", "7"},
		{"0% of 100", "100", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decimal.Percent(dec.RequireFromString(tt.amount), dec.RequireFromString(tt.rate))
			assert.True(t, got.Equal(dec.RequireFromString(tt.expected)),
				"Percent(%s, %s) = %s, want %s", tt.amount, tt.rate, got, tt.expected)
		})
	}
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(5),
		dec.NewFromInt(5),
		dec.RequireFromString("0.5"),
	}
	assert.True(t, decimal.Sum(values).Equal(dec.RequireFromString("10.5")))
	assert.True(t, decimal.Sum(nil).IsZero())
}

func TestEqual2(t *testing.T) {
	assert.True(t, decimal.Equal2(dec.RequireFromString("10.00"), dec.NewFromInt(10)))
	assert.False(t, decimal.Equal2(dec.RequireFromString("10.01"), dec.NewFromInt(10)))
}
