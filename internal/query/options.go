package query

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"lightbnb/internal/domain"
	"lightbnb/internal/money"
)

// Query-string keys accepted by ParseFilterOptions.
const (
	KeyCity     = "city"
	KeyMinPrice = "minimum_price_per_night"
	KeyMaxPrice = "maximum_price_per_night"
	KeyRating   = "minimum_rating"
)

var (
	five     = decimal.NewFromInt(5)
	maxPrice = money.MaxMajor()
)

// ParseFilterOptions reads filter options from query values. Empty and zero
// values are treated as absent; anything non-numeric or out of range is a
// *domain.ValidationError.
func ParseFilterOptions(v url.Values) (domain.FilterOptions, error) {
	opts := domain.FilterOptions{City: strings.TrimSpace(v.Get(KeyCity))}

	var err error
	if opts.MinimumPricePerNight, err = parseDecimal(v, KeyMinPrice); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.MaximumPricePerNight, err = parseDecimal(v, KeyMaxPrice); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.MinimumRating, err = parseDecimal(v, KeyRating); err != nil {
		return domain.FilterOptions{}, err
	}

	if err := ValidateFilterOptions(opts); err != nil {
		return domain.FilterOptions{}, err
	}
	return opts, nil
}

func ValidateFilterOptions(opts domain.FilterOptions) error {
	checks := []struct {
		field string
		value *decimal.Decimal
		rule  validation.Rule
	}{
		{KeyMinPrice, opts.MinimumPricePerNight, validation.By(decimalBetween(decimal.Zero, &maxPrice))},
		{KeyMaxPrice, opts.MaximumPricePerNight, validation.By(decimalBetween(decimal.Zero, &maxPrice))},
		{KeyRating, opts.MinimumRating, validation.By(decimalBetween(decimal.Zero, &five))},
	}
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rule); err != nil {
			return &domain.ValidationError{Field: c.field, Err: err}
		}
	}

	lo, hi := opts.MinimumPricePerNight, opts.MaximumPricePerNight
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return &domain.ValidationError{Field: KeyMinPrice, Err: errors.New("must not exceed maximum_price_per_night")}
	}
	return nil
}

func parseDecimal(v url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := money.ParseMajor(raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: key, Err: err}
	}
	if d.IsZero() {
		return nil, nil
	}
	return &d, nil
}

func decimalBetween(min decimal.Decimal, max *decimal.Decimal) validation.RuleFunc {
	return func(value interface{}) error {
		d, _ := value.(*decimal.Decimal)
		if d == nil {
			return nil
		}
		if err := money.CheckMajor(*d); err != nil {
			return err
		}
		if d.LessThan(min) {
			return errors.New("must be no less than " + min.String())
		}
		if max != nil && d.GreaterThan(*max) {
			return errors.New("must be no greater than " + max.String())
		}
		return nil
	}
}
