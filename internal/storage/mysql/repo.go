package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/domain"
	"lightbnb/internal/query"
)

const driverName = "mysql"

// Placeholder is the placeholder style the search builder must use for this store.
const Placeholder = query.Question

const errDuplicateEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

type scanner interface {
	Scan(dest ...any) error
}

// observe records the statement and wraps a failure as a StoreError.
// ErrNotFound and ErrConflict pass through unwrapped.
func observe(op string, start time.Time, err error) error {
	observability.ObserveStore(driverName, op, err, time.Since(start))
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}

func isDuplicate(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}

func propertyDest(p *domain.Property, desc *sql.NullString) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.Title, desc, &p.ThumbnailPhotoURL, &p.CoverPhotoURL,
		&p.CostPerNight, &p.ParkingSpaces, &p.NumberOfBathrooms, &p.NumberOfBedrooms,
		&p.Country, &p.Street, &p.City, &p.Province, &p.PostCode, &p.Active,
	}
}

// scanPropertyRow scans PropertyColumns followed by average_rating, after any lead columns.
func scanPropertyRow(s scanner, lead ...any) (domain.PropertyRow, error) {
	var (
		row  domain.PropertyRow
		desc sql.NullString
		avg  sql.NullFloat64
	)
	dest := append(lead, propertyDest(&row.Property, &desc)...)
	dest = append(dest, &avg)
	if err := s.Scan(dest...); err != nil {
		return domain.PropertyRow{}, err
	}
	row.Description = desc.String
	if avg.Valid {
		a := avg.Float64
		row.AverageRating = &a
	}
	return row, nil
}

func (r *Repo) ExecutePropertyQuery(ctx context.Context, statement string, args []any) ([]domain.PropertyRow, error) {
	return r.queryProperties(ctx, "search_properties", statement, args)
}

func (r *Repo) PropertiesByOwner(ctx context.Context, ownerID int64, limit int) ([]domain.PropertyRow, error) {
	return r.queryProperties(ctx, "properties_by_owner", propertiesByOwnerSQL, []any{ownerID, limit})
}

func (r *Repo) queryProperties(ctx context.Context, op, statement string, args []any) (out []domain.PropertyRow, err error) {
	defer func(start time.Time) { err = observe(op, start, err) }(time.Now())

	rows, err := r.db.QueryContext(ctx, statement, args...)
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

func (r *Repo) AddProperty(ctx context.Context, p domain.Property) (_ domain.Property, err error) {
	defer func(start time.Time) { err = observe("add_property", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, insertPropertySQL,
		p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL, p.CoverPhotoURL, p.CostPerNight,
		p.ParkingSpaces, p.NumberOfBathrooms, p.NumberOfBedrooms,
		p.Country, p.Street, p.City, p.Province, p.PostCode, p.Active,
	)
	if err != nil {
		return domain.Property{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Property{}, err
	}

	var (
		out  domain.Property
		desc sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, getPropertySQL, id).Scan(propertyDest(&out, &desc)...); err != nil {
		return domain.Property{}, err
	}
	out.Description = desc.String
	return out, nil
}

func (r *Repo) ListReservations(ctx context.Context, guestID int64, limit int) (out []domain.ReservationRow, err error) {
	defer func(start time.Time) { err = observe("list_reservations", start, err) }(time.Now())

	rows, err := r.db.QueryContext(ctx, reservationsSQL, guestID, limit)
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

	err = r.db.QueryRowContext(ctx, stmt, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func (r *Repo) AddUser(ctx context.Context, u domain.User) (_ domain.User, err error) {
	defer func(start time.Time) { err = observe("add_user", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, u.Password)
	if err != nil {
		if isDuplicate(err) {
			return domain.User{}, domain.ErrConflict
		}
		return domain.User{}, err
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ---- seeding ----

func (r *Repo) UpsertUser(ctx context.Context, u domain.User) (err error) {
	defer func(start time.Time) { err = observe("upsert_user", start, err) }(time.Now())
	_, err = r.db.ExecContext(ctx, upsertUserSQL, u.ID, u.Name, u.Email, u.Password)
	return err
}

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) (err error) {
	defer func(start time.Time) { err = observe("upsert_property", start, err) }(time.Now())
	_, err = r.db.ExecContext(ctx, upsertPropertySQL,
		p.ID, p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL, p.CoverPhotoURL, p.CostPerNight,
		p.ParkingSpaces, p.NumberOfBathrooms, p.NumberOfBedrooms,
		p.Country, p.Street, p.City, p.Province, p.PostCode, p.Active,
	)
	return err
}

func (r *Repo) UpsertReservation(ctx context.Context, rv domain.Reservation) (err error) {
	defer func(start time.Time) { err = observe("upsert_reservation", start, err) }(time.Now())
	_, err = r.db.ExecContext(ctx, upsertReservationSQL, rv.ID, rv.StartDate, rv.EndDate, rv.PropertyID, rv.GuestID)
	return err
}

func (r *Repo) UpsertReview(ctx context.Context, rv domain.Review) (err error) {
	defer func(start time.Time) { err = observe("upsert_review", start, err) }(time.Now())
	_, err = r.db.ExecContext(ctx, upsertReviewSQL, rv.ID, rv.GuestID, rv.PropertyID, rv.ReservationID, rv.Rating, rv.Message)
	return err
}

// SyncSequences is a no-op: AUTO_INCREMENT follows explicit ids on its own.
func (r *Repo) SyncSequences(context.Context) error { return nil }
