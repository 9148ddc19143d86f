package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"lightbnb/internal/domain"
)

// Create stores a listing for in.OwnerID and invalidates cached searches.
func (s *PropertyService) Create(ctx context.Context, in domain.NewProperty) (domain.Property, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.City = strings.TrimSpace(in.City)
	if err := validateNewProperty(in); err != nil {
		return domain.Property{}, err
	}

	p, err := s.repo.AddProperty(ctx, toProperty(in))
	if err != nil {
		return domain.Property{}, err
	}
	s.invalidateSearch(ctx)
	return p, nil
}

// Register hashes the password and stores the user. A taken email yields domain.ErrConflict.
func (s *UserService) Register(ctx context.Context, in domain.NewUser) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateNewUser(in); err != nil {
		return domain.User{}, err
	}
	// AddUser still reports a race on the unique index as ErrConflict
	switch _, err := s.repo.GetUserByEmail(ctx, in.Email); {
	case err == nil:
		return domain.User{}, domain.ErrConflict
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, err
	}

	cost := s.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.AddUser(ctx, domain.User{Name: in.Name, Email: in.Email, Password: string(hash)})
}

type SeedService struct {
	repo  domain.SeedRepository
	cache domain.Cache
}

func NewSeedService(r domain.SeedRepository, cache domain.Cache) *SeedService {
	return &SeedService{repo: r, cache: cache}
}

// Seed writes fx in foreign-key order. Properties are written by up to workers
// goroutines; the first failure is returned once all of them finish.
func (s *SeedService) Seed(ctx context.Context, fx domain.Fixtures, workers int) error {
	if workers < 1 {
		workers = 1
	}

	for _, u := range fx.Users {
		if err := s.repo.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, p := range fx.Properties {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(p domain.Property) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.repo.UpsertProperty(ctx, p); err != nil {
				log.Warn().Int64("id", p.ID).Err(err).Msg("seed property failed")
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("seed property %d: %w", p.ID, err)
				}
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	for _, r := range fx.Reservations {
		if err := s.repo.UpsertReservation(ctx, r); err != nil {
			return fmt.Errorf("seed reservation %d: %w", r.ID, err)
		}
	}
	for _, r := range fx.Reviews {
		if err := s.repo.UpsertReview(ctx, r); err != nil {
			return fmt.Errorf("seed review %d: %w", r.ID, err)
		}
	}
	if err := s.repo.SyncSequences(ctx); err != nil {
		return fmt.Errorf("sync sequences: %w", err)
	}

	bumpSearchGeneration(ctx, s.cache)

	log.Info().
		Int("users", len(fx.Users)).
		Int("properties", len(fx.Properties)).
		Int("reservations", len(fx.Reservations)).
		Int("reviews", len(fx.Reviews)).
		Msg("seed completed")
	return nil
}

func validateNewProperty(in domain.NewProperty) error {
	return validationError(validation.ValidateStruct(&in,
		validation.Field(&in.OwnerID, validation.Required, validation.Min(int64(1))),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.CostPerNight, validation.By(positivePrice)),
		validation.Field(&in.ParkingSpaces, validation.Min(0)),
		validation.Field(&in.NumberOfBathrooms, validation.Min(0)),
		validation.Field(&in.NumberOfBedrooms, validation.Min(0)),
		validation.Field(&in.Country, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Street, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.City, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Province, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.PostCode, validation.Required, validation.Length(1, 255)),
	))
}

func validateNewUser(in domain.NewUser) error {
	return validationError(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 255), validation.Match(emailRE)),
		// bcrypt ignores input past 72 bytes
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
	))
}
