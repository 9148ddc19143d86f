package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/domain"
	"lightbnb/internal/query"
)

const driverName = "postgres"

// Placeholder is the placeholder style the search builder must use for this store.
const Placeholder = query.Dollar

const uniqueViolation = "23505"

type Repo struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func observe(op string, start time.Time, err error) error {
	observability.ObserveStore(driverName, op, err, time.Since(start))
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == uniqueViolation
}

func propertyDest(p *domain.Property) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.ThumbnailPhotoURL, &p.CoverPhotoURL,
		&p.CostPerNight, &p.ParkingSpaces, &p.NumberOfBathrooms, &p.NumberOfBedrooms,
		&p.Country, &p.Street, &p.City, &p.Province, &p.PostCode, &p.Active,
	}
}

func scanPropertyRow(row pgx.Row, lead ...any) (domain.PropertyRow, error) {
	var pr domain.PropertyRow
	dest := append(lead, propertyDest(&pr.Property)...)
	dest = append(dest, &pr.AverageRating)
	if err := row.Scan(dest...); err != nil {
		return domain.PropertyRow{}, err
	}
	return pr, nil
}

func (r *Repo) ExecutePropertyQuery(ctx context.Context, statement string, args []any) ([]domain.PropertyRow, error) {
	return r.queryProperties(ctx, "search_properties", statement, args)
}

func (r *Repo) PropertiesByOwner(ctx context.Context, ownerID int64, limit int) ([]domain.PropertyRow, error) {
	return r.queryProperties(ctx, "properties_by_owner", propertiesByOwnerSQL, []any{ownerID, limit})
}

func (r *Repo) queryProperties(ctx context.Context, op, statement string, args []any) (out []domain.PropertyRow, err error) {
	defer func(start time.Time) { err = observe(op, start, err) }(time.Now())

	rows, err := r.pool.Query(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		pr, err := scanPropertyRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *Repo) AddProperty(ctx context.Context, p domain.Property) (out domain.Property, err error) {
	defer func(start time.Time) { err = observe("add_property", start, err) }(time.Now())

	err = r.pool.QueryRow(ctx, insertPropertySQL,
		p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL, p.CoverPhotoURL, p.CostPerNight,
		p.ParkingSpaces, p.NumberOfBathrooms, p.NumberOfBedrooms,
		p.Country, p.Street, p.City, p.Province, p.PostCode, p.Active,
	).Scan(propertyDest(&out)...)
	if err != nil {
		return domain.Property{}, err
	}
	return out, nil
}

func (r *Repo) ListReservations(ctx context.Context, guestID int64, limit int) (out []domain.ReservationRow, err error) {
	defer func(start time.Time) { err = observe("list_reservations", start, err) }(time.Now())

	rows, err := r.pool.Query(ctx, reservationsSQL, guestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rv domain.Reservation
		pr, err := scanPropertyRow(rows, &rv.ID, &rv.StartDate, &rv.EndDate, &rv.PropertyID, &rv.GuestID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ReservationRow{Reservation: rv, Property: pr})
	}
	return out, rows.Err()
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, "get_user_by_email", getUserByEmailSQL, email)
}

func (r *Repo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getUser(ctx, "get_user_by_id", getUserByIDSQL, id)
}

func (r *Repo) getUser(ctx context.Context, op, stmt string, arg any) (u domain.User, err error) {
	defer func(start time.Time) { err = observe(op, start, err) }(time.Now())

	err = r.pool.QueryRow(ctx, stmt, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func (r *Repo) AddUser(ctx context.Context, u domain.User) (_ domain.User, err error) {
	defer func(start time.Time) { err = observe("add_user", start, err) }(time.Now())

	if err := r.pool.QueryRow(ctx, insertUserSQL, u.Name, u.Email, u.Password).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrConflict
		}
		return domain.User{}, err
	}
	return u, nil
}

// ---- seeding ----

func (r *Repo) exec(ctx context.Context, op, stmt string, args ...any) (err error) {
	defer func(start time.Time) { err = observe(op, start, err) }(time.Now())
	_, err = r.pool.Exec(ctx, stmt, args...)
	return err
}

func (r *Repo) UpsertUser(ctx context.Context, u domain.User) error {
	return r.exec(ctx, "upsert_user", upsertUserSQL, u.ID, u.Name, u.Email, u.Password)
}

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	return r.exec(ctx, "upsert_property", upsertPropertySQL,
		p.ID, p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL, p.CoverPhotoURL, p.CostPerNight,
		p.ParkingSpaces, p.NumberOfBathrooms, p.NumberOfBedrooms,
		p.Country, p.Street, p.City, p.Province, p.PostCode, p.Active,
	)
}

func (r *Repo) UpsertReservation(ctx context.Context, rv domain.Reservation) error {
	return r.exec(ctx, "upsert_reservation", upsertReservationSQL, rv.ID, rv.StartDate, rv.EndDate, rv.PropertyID, rv.GuestID)
}

func (r *Repo) UpsertReview(ctx context.Context, rv domain.Review) error {
	return r.exec(ctx, "upsert_review", upsertReviewSQL, rv.ID, rv.GuestID, rv.PropertyID, rv.ReservationID, rv.Rating, rv.Message)
}

func (r *Repo) SyncSequences(ctx context.Context) error {
	for _, table := range sequencedTables {
		if err := r.exec(ctx, "sync_sequences", fmt.Sprintf(syncSequenceSQL, table), table); err != nil {
			return err
		}
	}
	return nil
}
