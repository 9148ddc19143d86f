package domain

import "context"

// PropertyExecutor runs a built property statement with its positional args.
type PropertyExecutor interface {
	ExecutePropertyQuery(ctx context.Context, statement string, args []any) ([]PropertyRow, error)
}

type PropertyRepository interface {
	PropertyExecutor

	PropertiesByOwner(ctx context.Context, ownerID int64, limit int) ([]PropertyRow, error)
	AddProperty(ctx context.Context, p Property) (Property, error)
}

type ReservationRepository interface {
	ListReservations(ctx context.Context, guestID int64, limit int) ([]ReservationRow, error)
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	AddUser(ctx context.Context, u User) (User, error)
}

// SeedRepository writes fixture rows with their explicit ids.
type SeedRepository interface {
	UpsertUser(ctx context.Context, u User) error
	UpsertProperty(ctx context.Context, p Property) error
	UpsertReservation(ctx context.Context, r Reservation) error
	UpsertReview(ctx context.Context, r Review) error
	SyncSequences(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// Incr atomically adds one to the integer at key, starting from zero.
	Incr(ctx context.Context, key string) (int64, error)
}

type FixtureSource interface {
	Load(ctx context.Context) (Fixtures, error)
}

// Fixtures is a full data set for seeding a store.
type Fixtures struct {
	Users        []User
	Properties   []Property
	Reservations []Reservation
	Reviews      []Review
}
