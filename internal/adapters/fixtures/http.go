package fixtures

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/domain"
)

const (
	serviceName = "fixtures"
	maxAttempts = 4
	maxDocBytes = 32 << 20
)

var (
	ErrUnauthorized = errors.New("fixtures: unauthorized")
	ErrForbidden    = errors.New("fixtures: forbidden")
)

// HTTPSource fetches a data set from <base>/<file>. Requests are rate limited and
// retried on 429 and transient 5xx, honoring Retry-After when provided.
type HTTPSource struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func NewHTTPSource(base string, rps int) (*HTTPSource, error) {
	if base == "" {
		return nil, fmt.Errorf("fixtures base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &HTTPSource{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (s *HTTPSource) Load(ctx context.Context) (domain.Fixtures, error) {
	docs := make(map[string][]byte, 4)
	for _, name := range []string{UsersFile, PropertiesFile, ReservationsFile, ReviewsFile} {
		b, err := s.get(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.Fixtures{}, fmt.Errorf("fetch %s: %w", name, err)
		}
		docs[name] = b
	}
	return Decode(docs)
}

func (s *HTTPSource) get(ctx context.Context, name string) ([]byte, error) {
	// client-side rate limiting
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	url := s.base + "/" + name

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		last := i == maxAttempts-1
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "lightbnb-seeder/1.0")

		start := time.Now()
		resp, err := s.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(serviceName, name, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug().Str("file", name).Str("err_type", observability.LabelErr(err)).Int("attempt", i+1).Msg("fixture fetch failed")
			lastErr = err
			if !last && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal(serviceName, name, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocBytes))
			resp.Body.Close()
			return b, err

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if !last && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
