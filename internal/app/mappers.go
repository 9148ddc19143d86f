package app

import (
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"lightbnb/internal/domain"
	"lightbnb/internal/money"
)

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func toProperty(in domain.NewProperty) domain.Property {
	return domain.Property{
		OwnerID:           in.OwnerID,
		Title:             in.Title,
		Description:       in.Description,
		ThumbnailPhotoURL: in.ThumbnailPhotoURL,
		CoverPhotoURL:     in.CoverPhotoURL,
		CostPerNight:      money.ToMinor(in.CostPerNight),
		ParkingSpaces:     in.ParkingSpaces,
		NumberOfBathrooms: in.NumberOfBathrooms,
		NumberOfBedrooms:  in.NumberOfBedrooms,
		Country:           in.Country,
		Street:            in.Street,
		City:              in.City,
		Province:          in.Province,
		PostCode:          in.PostCode,
		Active:            true,
	}
}

// positivePrice accepts amounts in (0, money.MaxMajor()].
func positivePrice(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if err := money.CheckMajor(d); err != nil {
		return err
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
}

// validationError turns ozzo field errors into a *domain.ValidationError naming
// the first failing field in alphabetical order.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 1 {
		return &domain.ValidationError{Field: keys[0], Err: fields[keys[0]]}
	}
	return &domain.ValidationError{Field: keys[0], Err: fields}
}
