package query_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightbnb/internal/domain"
	"lightbnb/internal/query"
)

func TestParseFilterOptions(t *testing.T) {
	v := url.Values{}
	v.Set("city", "  Vancouver ")
	v.Set("minimum_price_per_night", "50")
	v.Set("maximum_price_per_night", "120.5")
	v.Set("minimum_rating", "4")

	opts, err := query.ParseFilterOptions(v)
	require.NoError(t, err)
	assert.Equal(t, "Vancouver", opts.City)
	require.NotNil(t, opts.MinimumPricePerNight)
	assert.Equal(t, "50", opts.MinimumPricePerNight.String())
	assert.Equal(t, "120.5", opts.MaximumPricePerNight.String())
	assert.Equal(t, "4", opts.MinimumRating.String())
}

func TestParseFilterOptions_EmptyAndZeroAreAbsent(t *testing.T) {
	v := url.Values{}
	v.Set("city", "")
	v.Set("minimum_price_per_night", "0")
	v.Set("maximum_price_per_night", "")
	v.Set("minimum_rating", "0.0")

	opts, err := query.ParseFilterOptions(v)
	require.NoError(t, err)
	assert.Equal(t, domain.FilterOptions{}, opts)
}

func TestParseFilterOptions_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		extra map[string]string
		field string
	}{
		{name: "non-numeric min price", key: "minimum_price_per_night", value: "cheap", field: "minimum_price_per_night"},
		{name: "non-numeric max price", key: "maximum_price_per_night", value: "1e", field: "maximum_price_per_night"},
		{name: "non-numeric rating", key: "minimum_rating", value: "great", field: "minimum_rating"},
		{name: "negative price", key: "minimum_price_per_night", value: "-5", field: "minimum_price_per_night"},
		{name: "rating above five", key: "minimum_rating", value: "5.5", field: "minimum_rating"},
		{name: "max price above cap", key: "maximum_price_per_night", value: "1e17", field: "maximum_price_per_night"},
		{name: "max price past int64 cents", key: "maximum_price_per_night", value: "92233720368547758.08", field: "maximum_price_per_night"},
		{name: "huge exponent", key: "minimum_price_per_night", value: "1e50000000", field: "minimum_price_per_night"},
		{name: "tiny exponent", key: "minimum_price_per_night", value: "1e-50000000", field: "minimum_price_per_night"},
		{name: "huge exponent rating", key: "minimum_rating", value: "1e50000000", field: "minimum_rating"},
		{name: "overlong number", key: "minimum_price_per_night", value: strings.Repeat("9", 100), field: "minimum_price_per_night"},
		{name: "min above max", key: "minimum_price_per_night", value: "300",
			extra: map[string]string{"maximum_price_per_night": "100"}, field: "minimum_price_per_night"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := url.Values{}
			v.Set(tc.key, tc.value)
			for k, x := range tc.extra {
				v.Set(k, x)
			}
			_, err := query.ParseFilterOptions(v)
			require.Error(t, err)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %T", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestParseFilterOptions_PriceCapIsInclusive(t *testing.T) {
	v := url.Values{}
	v.Set("maximum_price_per_night", "1000000")

	opts, err := query.ParseFilterOptions(v)
	require.NoError(t, err)
	plan := query.BuildPropertyQuery(opts, 10)
	assert.Equal(t, []any{int64(100000000), 10}, plan.Args)
}

func TestValidateFilterOptions_RejectsOversizedDecimalsQuickly(t *testing.T) {
	huge := decimal.New(1, 50000000)
	cases := map[string]domain.FilterOptions{
		"min price": {MinimumPricePerNight: &huge},
		"max price": {MaximumPricePerNight: &huge},
		"rating":    {MinimumRating: &huge},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			err := query.ValidateFilterOptions(opts)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}
