package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightbnb/internal/domain"
	"lightbnb/internal/query"
)

var propertyCols = []string{
	"id", "owner_id", "title", "description", "thumbnail_photo_url", "cover_photo_url",
	"cost_per_night", "parking_spaces", "number_of_bathrooms", "number_of_bedrooms",
	"country", "street", "city", "province", "post_code", "active",
}

func propertyValues(id int64, city string, cost int64) []driver.Value {
	return []driver.Value{
		id, int64(1), "Cozy loft", "Near the sea", "thumb.jpg", "cover.jpg",
		cost, int64(1), int64(1), int64(2),
		"Canada", "1 Main St", city, "BC", "V5K 0A1", true,
	}
}

func newMock(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestExecutePropertyQuery(t *testing.T) {
	repo, mock := newMock(t)
	lo := decimal.RequireFromString("50")
	plan := query.Builder{Placeholder: Placeholder}.Build(domain.FilterOptions{City: "van", MinimumPricePerNight: &lo}, 10)

	rows := sqlmock.NewRows(append(propertyCols, "average_rating")).
		AddRow(append(propertyValues(1, "Vancouver", 9000), "4.5000")...).
		AddRow(append(propertyValues(2, "Vanderhoof", 12000), nil)...)
	mock.ExpectQuery(plan.SQL).WithArgs("%van%", int64(5000), 10).WillReturnRows(rows)

	out, err := repo.ExecutePropertyQuery(context.Background(), plan.SQL, plan.Args)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Vancouver", out[0].City)
	assert.Equal(t, int64(9000), out[0].CostPerNight)
	require.NotNil(t, out[0].AverageRating)
	assert.InDelta(t, 4.5, *out[0].AverageRating, 1e-9)
	assert.Nil(t, out[1].AverageRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutePropertyQuery_StoreError(t *testing.T) {
	repo, mock := newMock(t)
	plan := query.Builder{Placeholder: Placeholder}.Build(domain.FilterOptions{}, 10)
	boom := errors.New("connection refused")
	mock.ExpectQuery(plan.SQL).WithArgs(10).WillReturnError(boom)

	_, err := repo.ExecutePropertyQuery(context.Background(), plan.SQL, plan.Args)

	var se *domain.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "search_properties", se.Op)
	assert.ErrorIs(t, err, boom)
}

func TestPropertiesByOwner(t *testing.T) {
	repo, mock := newMock(t)
	rows := sqlmock.NewRows(append(propertyCols, "average_rating")).
		AddRow(append(propertyValues(3, "Toronto", 15000), nil)...)
	mock.ExpectQuery(propertiesByOwnerSQL).WithArgs(int64(1), 20).WillReturnRows(rows)

	out, err := repo.PropertiesByOwner(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Nil(t, out[0].AverageRating)
}

func TestAddProperty(t *testing.T) {
	repo, mock := newMock(t)
	p := domain.Property{
		OwnerID: 1, Title: "Cozy loft", Description: "Near the sea",
		ThumbnailPhotoURL: "thumb.jpg", CoverPhotoURL: "cover.jpg", CostPerNight: 9000,
		ParkingSpaces: 1, NumberOfBathrooms: 1, NumberOfBedrooms: 2,
		Country: "Canada", Street: "1 Main St", City: "Vancouver", Province: "BC", PostCode: "V5K 0A1", Active: true,
	}
	mock.ExpectExec(insertPropertySQL).
		WithArgs(p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL, p.CoverPhotoURL, p.CostPerNight,
			p.ParkingSpaces, p.NumberOfBathrooms, p.NumberOfBedrooms,
			p.Country, p.Street, p.City, p.Province, p.PostCode, p.Active).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(getPropertySQL).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(propertyCols).AddRow(propertyValues(7, "Vancouver", 9000)...))

	got, err := repo.AddProperty(context.Background(), p)
	require.NoError(t, err)

	want := p
	want.ID = 7
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReservations(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)
	cols := append([]string{"id", "start_date", "end_date", "property_id", "guest_id"}, propertyCols...)
	cols = append(cols, "average_rating")
	vals := append([]driver.Value{int64(11), start, end, int64(1), int64(4)}, propertyValues(1, "Vancouver", 9000)...)
	vals = append(vals, "3.0000")
	mock.ExpectQuery(reservationsSQL).WithArgs(int64(4), 10).WillReturnRows(sqlmock.NewRows(cols).AddRow(vals...))

	out, err := repo.ListReservations(context.Background(), 4, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(11), out[0].ID)
	assert.Equal(t, start, out[0].StartDate)
	assert.Equal(t, int64(1), out[0].Property.ID)
	require.NotNil(t, out[0].Property.AverageRating)
	assert.InDelta(t, 3.0, *out[0].Property.AverageRating, 1e-9)
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(getUserByIDSQL).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}))

	_, err := repo.GetUserByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddUser(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(insertUserSQL).WithArgs("Ana", "ana@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(5, 1))

	u, err := repo.AddUser(context.Background(), domain.User{Name: "Ana", Email: "ana@example.com", Password: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
}

func TestAddUser_DuplicateEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(insertUserSQL).WithArgs("Ana", "ana@example.com", "hash").
		WillReturnError(&gomysql.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry"})

	_, err := repo.AddUser(context.Background(), domain.User{Name: "Ana", Email: "ana@example.com", Password: "hash"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
