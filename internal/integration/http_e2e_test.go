//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	goredis "github.com/redis/go-redis/v9"

	"lightbnb/internal/adapters/fixtures"
	server "lightbnb/internal/adapters/http_server"
	redisad "lightbnb/internal/adapters/redis"
	"lightbnb/internal/app"
	"lightbnb/internal/domain"
	"lightbnb/internal/storage"
)

// ---------- helpers ----------

func startMySQL(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=lightbnb",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	return fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/lightbnb?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
}

type propertiesBody struct {
	Properties []domain.PropertyRow `json:"properties"`
}

func getJSON(t *testing.T, url string, hdr map[string]string, dst any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if dst != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return res.StatusCode
}

func post(t *testing.T, url, body string, hdr map[string]string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	res.Body.Close()
	return res.StatusCode
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SeedAndSearch(t *testing.T) {
	dsn := startMySQL(t)
	ctx := context.Background()

	var h *storage.Handle
	deadline := time.Now().Add(90 * time.Second)
	for {
		var err error
		h, err = storage.Open(ctx, storage.Options{Driver: "mysql", MySQLDSN: dsn, Migrate: true, Reset: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("open store: %v", err)
		}
		time.Sleep(time.Second)
	}
	t.Cleanup(h.Close)

	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	// Seed with the sample data set shipped in the repo
	fx, err := fixtures.NewFileSource("../../seeds").Load(ctx)
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	if err := app.NewSeedService(h.Store, cache).Seed(ctx, fx, 2); err != nil {
		t.Fatalf("seed: %v", err)
	}

	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{
		Properties:   app.NewPropertyService(h.Store, h.Builder, cache, time.Minute),
		Reservations: app.NewReservationService(h.Store),
		Users:        app.NewUserService(h.Store, 4),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// City filter, case-insensitive substring, with average rating
	var body propertiesBody
	if code := getJSON(t, ts.URL+"/v1/properties?city=BOHB", nil, &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body.Properties) != 1 || body.Properties[0].ID != 2 ||
		body.Properties[0].AverageRating == nil || *body.Properties[0].AverageRating != 4 {
		t.Fatalf("unexpected search result: %+v", body.Properties)
	}
	if body.Properties[0].CostPerNight != 46051 {
		t.Fatalf("cost per night stored in cents, got %d", body.Properties[0].CostPerNight)
	}

	// Rating and price filters
	body = propertiesBody{}
	getJSON(t, ts.URL+"/v1/properties?minimum_rating=3.5", nil, &body)
	if len(body.Properties) != 1 || body.Properties[0].ID != 2 {
		t.Fatalf("unexpected rating filter result: %+v", body.Properties)
	}
	body = propertiesBody{}
	getJSON(t, ts.URL+"/v1/properties?minimum_price_per_night=500", nil, &body)
	if len(body.Properties) != 1 || body.Properties[0].ID != 1 {
		t.Fatalf("unexpected price filter result: %+v", body.Properties)
	}

	// Reservations for guest 2
	var res struct {
		Reservations []domain.ReservationRow `json:"reservations"`
	}
	if code := getJSON(t, ts.URL+"/v1/reservations", map[string]string{server.UserHeader: "2"}, &res); code != http.StatusOK {
		t.Fatalf("reservations status %d", code)
	}
	if len(res.Reservations) != 2 || res.Reservations[0].Property.ID != 1 {
		t.Fatalf("unexpected reservations: %+v", res.Reservations)
	}
	if code := getJSON(t, ts.URL+"/v1/reservations", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user header, got %d", code)
	}

	// New listing shows up in a previously cached search
	body = propertiesBody{}
	getJSON(t, ts.URL+"/v1/properties?city=kel", nil, &body)
	if len(body.Properties) != 0 {
		t.Fatalf("expected no Kelowna listings yet: %+v", body.Properties)
	}
	created := post(t, ts.URL+"/v1/properties",
		`{"title":"Lake house","cost_per_night":"180","country":"Canada","street":"9 Shore Rd","city":"Kelowna","province":"BC","post_code":"V1Y"}`,
		map[string]string{server.UserHeader: "1"})
	if created != http.StatusCreated {
		t.Fatalf("create property status %d", created)
	}
	body = propertiesBody{}
	getJSON(t, ts.URL+"/v1/properties?city=kel", nil, &body)
	if len(body.Properties) != 1 || body.Properties[0].AverageRating != nil {
		t.Fatalf("expected the new unrated listing: %+v", body.Properties)
	}

	// Users
	if code := post(t, ts.URL+"/v1/users", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`, nil); code != http.StatusCreated {
		t.Fatalf("register status %d", code)
	}
	if code := post(t, ts.URL+"/v1/users", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`, nil); code != http.StatusConflict {
		t.Fatalf("duplicate register status %d", code)
	}
	var u domain.User
	if code := getJSON(t, ts.URL+"/v1/users/1", nil, &u); code != http.StatusOK || u.Name != "Eva Stanley" {
		t.Fatalf("get user: status %d body %+v", code, u)
	}

	// Reset drops seeded rows along with the schema
	h2, err := storage.Open(ctx, storage.Options{Driver: "mysql", MySQLDSN: dsn, Reset: true})
	if err != nil {
		t.Fatalf("reset store: %v", err)
	}
	defer h2.Close()
	if _, err := h2.Store.GetUserByID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected empty users after reset, got %v", err)
	}
}
