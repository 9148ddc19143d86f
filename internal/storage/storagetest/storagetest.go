// Package storagetest provides a fixture data set and a behavioural suite shared by
// the store implementations' integration tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lightbnb/internal/domain"
	"lightbnb/internal/query"
	"lightbnb/internal/storage"
)

type Store = storage.Store

const (
	OwnerID = int64(1)
	GuestA  = int64(2)
	GuestB  = int64(3)
)

func day(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

// Fixtures returns four properties:
//
//	1 Vancouver        $100  ratings 4,5 -> 4.5
//	2 North Vancouver  $250  rating  3   -> 3
//	3 Vancouver        $50   no reviews
//	4 Toronto          $80   rating  5   -> 5
func Fixtures(t testing.TB) domain.Fixtures {
	t.Helper()
	f := gofakeit.New(42)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	users := []domain.User{
		{ID: OwnerID, Name: f.Name(), Email: "owner@example.com", Password: string(hash)},
		{ID: GuestA, Name: f.Name(), Email: "guest.a@example.com", Password: string(hash)},
		{ID: GuestB, Name: f.Name(), Email: "guest.b@example.com", Password: string(hash)},
	}

	property := func(id int64, city string, cost int64) domain.Property {
		return domain.Property{
			ID: id, OwnerID: OwnerID,
			Title:             f.Sentence(3),
			Description:       f.Paragraph(1, 2, 8, " "),
			ThumbnailPhotoURL: f.URL(), CoverPhotoURL: f.URL(),
			CostPerNight:  cost,
			ParkingSpaces: f.Number(0, 3), NumberOfBathrooms: f.Number(1, 3), NumberOfBedrooms: f.Number(1, 5),
			Country: "Canada", Street: f.Street(), City: city, Province: f.State(), PostCode: f.Zip(),
			Active: true,
		}
	}

	return domain.Fixtures{
		Users: users,
		Properties: []domain.Property{
			property(1, "Vancouver", 10000),
			property(2, "North Vancouver", 25000),
			property(3, "Vancouver", 5000),
			property(4, "Toronto", 8000),
		},
		Reservations: []domain.Reservation{
			{ID: 1, StartDate: day(1, 10), EndDate: day(1, 15), PropertyID: 1, GuestID: GuestA},
			{ID: 2, StartDate: day(2, 1), EndDate: day(2, 3), PropertyID: 2, GuestID: GuestA},
			{ID: 3, StartDate: day(3, 5), EndDate: day(3, 9), PropertyID: 1, GuestID: GuestB},
			{ID: 4, StartDate: day(4, 2), EndDate: day(4, 4), PropertyID: 4, GuestID: GuestB},
		},
		Reviews: []domain.Review{
			{ID: 1, GuestID: GuestA, PropertyID: 1, ReservationID: 1, Rating: 4, Message: f.Sentence(6)},
			{ID: 2, GuestID: GuestB, PropertyID: 1, ReservationID: 3, Rating: 5, Message: f.Sentence(6)},
			{ID: 3, GuestID: GuestA, PropertyID: 2, ReservationID: 2, Rating: 3, Message: f.Sentence(6)},
			{ID: 4, GuestID: GuestB, PropertyID: 4, ReservationID: 4, Rating: 5, Message: f.Sentence(6)},
		},
	}
}

// Seed writes fx in foreign-key order.
func Seed(t testing.TB, s Store, fx domain.Fixtures) {
	t.Helper()
	ctx := context.Background()
	for _, u := range fx.Users {
		require.NoError(t, s.UpsertUser(ctx, u))
	}
	for _, p := range fx.Properties {
		require.NoError(t, s.UpsertProperty(ctx, p))
	}
	for _, r := range fx.Reservations {
		require.NoError(t, s.UpsertReservation(ctx, r))
	}
	for _, r := range fx.Reviews {
		require.NoError(t, s.UpsertReview(ctx, r))
	}
	require.NoError(t, s.SyncSequences(ctx))
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ids(rows []domain.PropertyRow) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

// RunSuite seeds s and checks search, owner listing, reservations and users.
func RunSuite(t *testing.T, s Store, placeholder query.Format) {
	fx := Fixtures(t)
	Seed(t, s, fx)
	ctx := context.Background()
	b := query.Builder{Placeholder: placeholder}

	search := func(t *testing.T, opts domain.FilterOptions, limit int) []domain.PropertyRow {
		t.Helper()
		plan := b.Build(opts, limit)
		rows, err := s.ExecutePropertyQuery(ctx, plan.SQL, plan.Args)
		require.NoError(t, err)
		return rows
	}

	t.Run("city substring is case-insensitive with per-property average", func(t *testing.T) {
		rows := search(t, domain.FilterOptions{City: "VAN"}, 10)
		require.Equal(t, []int64{3, 1, 2}, ids(rows))

		assert.Nil(t, rows[0].AverageRating)
		require.NotNil(t, rows[1].AverageRating)
		assert.InDelta(t, 4.5, *rows[1].AverageRating, 1e-9)
		require.NotNil(t, rows[2].AverageRating)
		assert.InDelta(t, 3.0, *rows[2].AverageRating, 1e-9)
		assert.Equal(t, "Vancouver", rows[1].City)
	})

	t.Run("no filters returns every property", func(t *testing.T) {
		assert.Equal(t, []int64{3, 4, 1, 2}, ids(search(t, domain.FilterOptions{}, 10)))
	})

	t.Run("price range in major units", func(t *testing.T) {
		rows := search(t, domain.FilterOptions{MinimumPricePerNight: dec("60"), MaximumPricePerNight: dec("200")}, 10)
		assert.Equal(t, []int64{4, 1}, ids(rows))
	})

	t.Run("price filter without city", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2}, ids(search(t, domain.FilterOptions{MinimumPricePerNight: dec("100")}, 10)))
	})

	t.Run("minimum rating excludes unrated properties", func(t *testing.T) {
		assert.Equal(t, []int64{4, 1}, ids(search(t, domain.FilterOptions{MinimumRating: dec("4")}, 10)))
	})

	t.Run("all filters", func(t *testing.T) {
		rows := search(t, domain.FilterOptions{
			City: "van", MinimumPricePerNight: dec("50"), MaximumPricePerNight: dec("300"), MinimumRating: dec("3"),
		}, 10)
		assert.Equal(t, []int64{1, 2}, ids(rows))
	})

	t.Run("limit", func(t *testing.T) {
		assert.Equal(t, []int64{3, 4}, ids(search(t, domain.FilterOptions{}, 2)))
	})

	t.Run("same plan same rows", func(t *testing.T) {
		a := search(t, domain.FilterOptions{City: "van"}, 10)
		c := search(t, domain.FilterOptions{City: "van"}, 10)
		assert.Equal(t, a, c)
	})

	t.Run("owner listing newest first", func(t *testing.T) {
		rows, err := s.PropertiesByOwner(ctx, OwnerID, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{4, 3, 2, 1}, ids(rows))
	})

	t.Run("reservations for guest", func(t *testing.T) {
		rows, err := s.ListReservations(ctx, GuestA, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(1), rows[0].ID)
		assert.Equal(t, "2026-01-10", rows[0].StartDate.Format("2006-01-02"))
		assert.Equal(t, int64(1), rows[0].Property.ID)
		require.NotNil(t, rows[0].Property.AverageRating)
		assert.InDelta(t, 4.5, *rows[0].Property.AverageRating, 1e-9)
		assert.Equal(t, int64(2), rows[1].ID)
	})

	t.Run("users", func(t *testing.T) {
		u, err := s.GetUserByEmail(ctx, "guest.a@example.com")
		require.NoError(t, err)
		assert.Equal(t, GuestA, u.ID)

		_, err = s.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		added, err := s.AddUser(ctx, domain.User{Name: "New", Email: "new@example.com", Password: "x"})
		require.NoError(t, err)
		assert.Greater(t, added.ID, GuestB)

		_, err = s.AddUser(ctx, domain.User{Name: "Dup", Email: "new@example.com", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("add property", func(t *testing.T) {
		p := fx.Properties[0]
		p.ID = 0
		p.City = "Kelowna"
		got, err := s.AddProperty(ctx, p)
		require.NoError(t, err)
		assert.Greater(t, got.ID, int64(4))
		assert.Equal(t, "Kelowna", got.City)
		assert.Equal(t, p.CostPerNight, got.CostPerNight)

		rows := search(t, domain.FilterOptions{City: "kelowna"}, 10)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].AverageRating)
	})
}
