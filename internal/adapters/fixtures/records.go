// Package fixtures loads seed data sets from a directory or an HTTP base URL.
//
// A data set is four JSON documents: users.json, properties.json,
// reservations.json and property_reviews.json. Each is either an array of
// records or an object keyed by record id. Prices are in major currency units.
package fixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"lightbnb/internal/domain"
	"lightbnb/internal/money"
)

const (
	UsersFile        = "users.json"
	PropertiesFile   = "properties.json"
	ReservationsFile = "reservations.json"
	ReviewsFile      = "property_reviews.json"
)

const dateLayout = "2006-01-02"

type userRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type propertyRecord struct {
	ID                int64           `json:"id"`
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
	Active            *bool           `json:"active"`
}

type reservationRecord struct {
	ID         int64  `json:"id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PropertyID int64  `json:"property_id"`
	GuestID    int64  `json:"guest_id"`
}

type reviewRecord struct {
	ID            int64  `json:"id"`
	GuestID       int64  `json:"guest_id"`
	PropertyID    int64  `json:"property_id"`
	ReservationID int64  `json:"reservation_id"`
	Rating        int    `json:"rating"`
	Message       string `json:"message"`
}

// Decode builds a data set from the raw documents keyed by file name.
// Missing reservations or reviews documents yield empty slices.
func Decode(docs map[string][]byte) (domain.Fixtures, error) {
	var fx domain.Fixtures

	users, err := decodeRecords[userRecord](docs, UsersFile, true, func(r *userRecord, id int64) { r.ID = id })
	if err != nil {
		return fx, err
	}
	for _, r := range users {
		fx.Users = append(fx.Users, domain.User{ID: r.ID, Name: r.Name, Email: r.Email, Password: r.Password})
	}

	props, err := decodeRecords[propertyRecord](docs, PropertiesFile, true, func(r *propertyRecord, id int64) { r.ID = id })
	if err != nil {
		return fx, err
	}
	for _, r := range props {
		p, err := r.toDomain()
		if err != nil {
			return fx, err
		}
		fx.Properties = append(fx.Properties, p)
	}

	res, err := decodeRecords[reservationRecord](docs, ReservationsFile, false, func(r *reservationRecord, id int64) { r.ID = id })
	if err != nil {
		return fx, err
	}
	for _, r := range res {
		d, err := r.toDomain()
		if err != nil {
			return fx, err
		}
		fx.Reservations = append(fx.Reservations, d)
	}

	revs, err := decodeRecords[reviewRecord](docs, ReviewsFile, false, func(r *reviewRecord, id int64) { r.ID = id })
	if err != nil {
		return fx, err
	}
	for _, r := range revs {
		fx.Reviews = append(fx.Reviews, domain.Review{
			ID: r.ID, GuestID: r.GuestID, PropertyID: r.PropertyID, ReservationID: r.ReservationID,
			Rating: r.Rating, Message: r.Message,
		})
	}
	return fx, nil
}

func (r propertyRecord) toDomain() (domain.Property, error) {
	if err := money.CheckMajor(r.CostPerNight); err != nil {
		return domain.Property{}, fmt.Errorf("property %d: cost_per_night: %w", r.ID, err)
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return domain.Property{
		ID:                r.ID,
		OwnerID:           r.OwnerID,
		Title:             r.Title,
		Description:       r.Description,
		ThumbnailPhotoURL: r.ThumbnailPhotoURL,
		CoverPhotoURL:     r.CoverPhotoURL,
		CostPerNight:      money.ToMinor(r.CostPerNight),
		ParkingSpaces:     r.ParkingSpaces,
		NumberOfBathrooms: r.NumberOfBathrooms,
		NumberOfBedrooms:  r.NumberOfBedrooms,
		Country:           r.Country,
		Street:            r.Street,
		City:              r.City,
		Province:          r.Province,
		PostCode:          r.PostCode,
		Active:            active,
	}, nil
}

func (r reservationRecord) toDomain() (domain.Reservation, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("reservation %d: start_date: %w", r.ID, err)
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("reservation %d: end_date: %w", r.ID, err)
	}
	if end.Before(start) {
		return domain.Reservation{}, fmt.Errorf("reservation %d: end_date before start_date", r.ID)
	}
	return domain.Reservation{ID: r.ID, StartDate: start, EndDate: end, PropertyID: r.PropertyID, GuestID: r.GuestID}, nil
}

// decodeRecords accepts an array or an id-keyed object and returns records sorted by id.
func decodeRecords[T any](docs map[string][]byte, name string, required bool, setID func(*T, int64)) ([]T, error) {
	b, ok := docs[name]
	if !ok || len(bytes.TrimSpace(b)) == 0 {
		if required {
			return nil, fmt.Errorf("%s: missing", name)
		}
		return nil, nil
	}

	type keyed struct {
		id  int64
		rec T
	}
	var out []keyed

	switch bytes.TrimSpace(b)[0] {
	case '[':
		var recs []json.RawMessage
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for i, raw := range recs {
			var probe struct {
				ID int64 `json:"id"`
			}
			var rec T
			if err := json.Unmarshal(raw, &probe); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			if probe.ID <= 0 {
				return nil, fmt.Errorf("%s[%d]: id is required", name, i)
			}
			out = append(out, keyed{probe.ID, rec})
		}
	case '{':
		var recs map[string]T
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for k, rec := range recs {
			id, err := strconv.ParseInt(k, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("%s: key %q is not an id", name, k)
			}
			setID(&rec, id)
			out = append(out, keyed{id, rec})
		}
	default:
		return nil, fmt.Errorf("%s: expected an array or object", name)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	recs := make([]T, 0, len(out))
	for _, k := range out {
		recs = append(recs, k.rec)
	}
	return recs, nil
}
