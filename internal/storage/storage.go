// Package storage opens the configured backing store.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"lightbnb/internal/domain"
	"lightbnb/internal/migrations"
	"lightbnb/internal/query"
	mysqlrepo "lightbnb/internal/storage/mysql"
	pgrepo "lightbnb/internal/storage/postgres"
)

// Store is everything a backing store implements.
type Store interface {
	domain.PropertyRepository
	domain.ReservationRepository
	domain.UserRepository
	domain.SeedRepository
}

type Options struct {
	Driver      string
	MySQLDSN    string
	PostgresURL string
	Migrate     bool
	// Reset rolls every migration back before migrating up again. Implies Migrate.
	Reset bool
}

// Handle is an open store with the builder matching its placeholder style.
type Handle struct {
	Store   Store
	Builder query.Builder
	close   func()
}

func (h *Handle) Close() {
	if h.close != nil {
		h.close()
	}
}

func Open(ctx context.Context, o Options) (*Handle, error) {
	switch o.Driver {
	case migrations.MySQL:
		db, err := sql.Open("mysql", o.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db.Ping: %w", err)
		}
		if err := migrate(db, o); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Handle{
			Store:   mysqlrepo.New(db),
			Builder: query.Builder{Placeholder: mysqlrepo.Placeholder},
			close:   func() { _ = db.Close() },
		}, nil

	case migrations.Postgres:
		pool, err := pgrepo.NewPool(ctx, o.PostgresURL)
		if err != nil {
			return nil, err
		}
		if o.Migrate || o.Reset {
			db := pgrepo.SQLDB(pool)
			err := migrate(db, o)
			_ = db.Close()
			if err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Handle{
			Store:   pgrepo.New(pool),
			Builder: query.Builder{Placeholder: pgrepo.Placeholder},
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", o.Driver)
	}
}

func migrate(db *sql.DB, o Options) error {
	if !o.Migrate && !o.Reset {
		return nil
	}
	if o.Reset {
		n, err := migrations.Down(db, o.Driver)
		if err != nil {
			return fmt.Errorf("reset %s: %w", o.Driver, err)
		}
		log.Warn().Str("driver", o.Driver).Int("rolled_back", n).Msg("schema reset")
	}
	n, err := migrations.Up(db, o.Driver)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", o.Driver, err)
	}
	log.Info().Str("driver", o.Driver).Int("applied", n).Msg("migrations applied")
	return nil
}
