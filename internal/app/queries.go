package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"lightbnb/internal/domain"
	"lightbnb/internal/query"
)

const (
	searchKeyPrefix     = "properties:search:"
	searchGenerationKey = searchKeyPrefix + "generation"
)

type PropertyService struct {
	repo     domain.PropertyRepository
	builder  query.Builder
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewPropertyService wires a store with the builder matching its placeholder style.
// cache may be nil.
func NewPropertyService(r domain.PropertyRepository, b query.Builder, c domain.Cache, ttl time.Duration) *PropertyService {
	return &PropertyService{repo: r, builder: b, cache: c, cacheTTL: ttl}
}

// Search builds the statement for opts and runs it, serving repeated plans from cache.
func (s *PropertyService) Search(ctx context.Context, opts domain.FilterOptions, limit int) ([]domain.PropertyRow, error) {
	if err := query.ValidateFilterOptions(opts); err != nil {
		return nil, err
	}
	plan := s.builder.Build(opts, limit)

	var key string
	if s.cache != nil {
		key = s.searchKey(ctx, plan)
	}
	if key != "" {
		var cached []domain.PropertyRow
		hit, err := s.cache.Get(ctx, key, &cached)
		if hit {
			return nonNil(cached), nil
		}
		if err != nil {
			// unreadable entry; the store result below replaces it
			_ = s.cache.Del(ctx, key)
		}
	}

	rows, err := s.repo.ExecutePropertyQuery(ctx, plan.SQL, plan.Args)
	if err != nil {
		return nil, err
	}
	rows = nonNil(rows)
	if key != "" {
		_ = s.cache.Set(ctx, key, rows, int(s.cacheTTL.Seconds()))
	}
	return rows, nil
}

func (s *PropertyService) ByOwner(ctx context.Context, ownerID int64, limit int) ([]domain.PropertyRow, error) {
	if ownerID <= 0 {
		return nil, &domain.ValidationError{Field: "owner_id", Err: fmt.Errorf("must be a positive id")}
	}
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	rows, err := s.repo.PropertiesByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// searchKey is properties:search:<generation>:<sha1 of plan>. It returns ""
// when the generation cannot be read, and the search skips the cache.
func (s *PropertyService) searchKey(ctx context.Context, plan query.Plan) string {
	var gen int64
	if _, err := s.cache.Get(ctx, searchGenerationKey, &gen); err != nil {
		log.Warn().Err(err).Msg("search generation unavailable, bypassing cache")
		return ""
	}

	b, _ := json.Marshal(plan)
	sum := sha1.Sum(b)
	return fmt.Sprintf("%s%d:%s", searchKeyPrefix, gen, hex.EncodeToString(sum[:]))
}

// invalidateSearch moves searches to a fresh key space; old entries age out by TTL.
func (s *PropertyService) invalidateSearch(ctx context.Context) { bumpSearchGeneration(ctx, s.cache) }

func bumpSearchGeneration(ctx context.Context, c domain.Cache) {
	if c == nil {
		return
	}
	if _, err := c.Incr(ctx, searchGenerationKey); err != nil {
		log.Warn().Err(err).Msg("bump search generation failed, cached searches expire by TTL")
	}
}

type ReservationService struct {
	repo domain.ReservationRepository
}

func NewReservationService(r domain.ReservationRepository) *ReservationService {
	return &ReservationService{repo: r}
}

func (s *ReservationService) ForGuest(ctx context.Context, guestID int64, limit int) ([]domain.ReservationRow, error) {
	if guestID <= 0 {
		return nil, &domain.ValidationError{Field: "guest_id", Err: fmt.Errorf("must be a positive id")}
	}
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	rows, err := s.repo.ListReservations(ctx, guestID, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.ReservationRow{}
	}
	return rows, nil
}

type UserService struct {
	repo       domain.UserRepository
	bcryptCost int
}

// NewUserService hashes passwords with cost; zero means bcrypt.DefaultCost.
func NewUserService(r domain.UserRepository, cost int) *UserService {
	return &UserService{repo: r, bcryptCost: cost}
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	if id <= 0 {
		return domain.User{}, &domain.ValidationError{Field: "id", Err: fmt.Errorf("must be a positive id")}
	}
	return s.repo.GetUserByID(ctx, id)
}

func nonNil(rows []domain.PropertyRow) []domain.PropertyRow {
	if rows == nil {
		return []domain.PropertyRow{}
	}
	return rows
}
