package money_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightbnb/internal/money"
)

func TestToMinor(t *testing.T) {
	cases := map[string]int64{
		"50":     5000,
		"50.00":  5000,
		"12.5":   1250,
		"0.01":   1,
		"19.999": 2000,
		"0.005":  1,
		"-3.25":  -325,
	}
	for in, want := range cases {
		d := decimal.RequireFromString(in)
		assert.Equal(t, want, money.ToMinor(d), in)
	}
}

func TestFromMinor(t *testing.T) {
	assert.Equal(t, "50", money.FromMinor(5000).String())
	assert.Equal(t, "12.34", money.FromMinor(1234).String())
}

func TestParseMajor(t *testing.T) {
	d, err := money.ParseMajor(" 75.50 ")
	require.NoError(t, err)
	assert.Equal(t, int64(7550), money.ToMinor(d))

	_, err = money.ParseMajor("cheap")
	require.Error(t, err)
}

func TestCheckMajor(t *testing.T) {
	ok := []string{"0", "0.01", "1000000", "-1000000", "999999.999"}
	for _, in := range ok {
		assert.NoError(t, money.CheckMajor(decimal.RequireFromString(in)), in)
	}

	bad := []decimal.Decimal{
		decimal.RequireFromString("1000000.01"),
		decimal.RequireFromString("1e17"),
		decimal.RequireFromString("92233720368547758.08"),
		decimal.New(1, 50000000),
		decimal.New(1, -50000000),
	}
	for _, d := range bad {
		err := money.CheckMajor(d)
		assert.ErrorIs(t, err, money.ErrOutOfRange)
	}
}

func TestParseMajor_RejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"1e17", "1e50000000", "1e-50000000", strings.Repeat("1", 65)} {
		_, err := money.ParseMajor(in)
		assert.ErrorIs(t, err, money.ErrOutOfRange, in)
	}
}

func TestMaxMajor(t *testing.T) {
	assert.Equal(t, "1000000", money.MaxMajor().String())
	assert.Equal(t, money.MaxMinor, money.ToMinor(money.MaxMajor()))
}
