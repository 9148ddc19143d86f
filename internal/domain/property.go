package domain

import "github.com/shopspring/decimal"

type Property struct {
	ID                int64  `json:"id"`
	OwnerID           int64  `json:"owner_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	ThumbnailPhotoURL string `json:"thumbnail_photo_url"`
	CoverPhotoURL     string `json:"cover_photo_url"`
	CostPerNight      int64  `json:"cost_per_night"` // minor units (cents)
	ParkingSpaces     int    `json:"parking_spaces"`
	NumberOfBathrooms int    `json:"number_of_bathrooms"`
	NumberOfBedrooms  int    `json:"number_of_bedrooms"`
	Country           string `json:"country"`
	Street            string `json:"street"`
	City              string `json:"city"`
	Province          string `json:"province"`
	PostCode          string `json:"post_code"`
	Active            bool   `json:"active"`
}

// PropertyRow is a property with the mean of its review ratings.
// AverageRating is nil when the property has no reviews.
type PropertyRow struct {
	Property
	AverageRating *float64 `json:"average_rating"`
}

// FilterOptions narrows a property search. A nil or zero field imposes no predicate.
// Prices are in major currency units.
type FilterOptions struct {
	City                 string
	MinimumPricePerNight *decimal.Decimal
	MaximumPricePerNight *decimal.Decimal
	MinimumRating        *decimal.Decimal
}

// NewProperty is the create-property input; CostPerNight is in major units.
type NewProperty struct {
	OwnerID           int64           `json:"owner_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	ThumbnailPhotoURL string          `json:"thumbnail_photo_url"`
	CoverPhotoURL     string          `json:"cover_photo_url"`
	CostPerNight      decimal.Decimal `json:"cost_per_night"`
	ParkingSpaces     int             `json:"parking_spaces"`
	NumberOfBathrooms int             `json:"number_of_bathrooms"`
	NumberOfBedrooms  int             `json:"number_of_bedrooms"`
	Country           string          `json:"country"`
	Street            string          `json:"street"`
	City              string          `json:"city"`
	Province          string          `json:"province"`
	PostCode          string          `json:"post_code"`
}
