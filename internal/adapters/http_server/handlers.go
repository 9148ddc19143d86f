package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"lightbnb/internal/app"
	"lightbnb/internal/domain"
	"lightbnb/internal/query"
)

const (
	// UserHeader carries the authenticated user id set by the upstream gateway.
	UserHeader = "X-User-ID"

	defaultPropertyLimit = 20
	maxLimit             = 100
	maxBodyBytes         = 1 << 20
)

type Handlers struct {
	Properties   *app.PropertyService
	Reservations *app.ReservationService
	Users        *app.UserService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/properties", h.listProperties)
		r.Post("/properties", h.createProperty)
		r.Get("/reservations", h.listReservations)
		r.Post("/users", h.createUser)
		r.Get("/users/{id}", h.getUser)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	var se *domain.StoreError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid request", ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", "resource already exists")
	case errors.As(err, &se):
		log.Error().Err(err).Str("op", se.Op).Str("path", r.URL.Path).Str("request_id", chimw.GetReqID(r.Context())).Msg("store failure")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "storage unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", chimw.GetReqID(r.Context())).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable writes v as JSON with a weak ETag, answering 304 when the client has it.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func parseLimit(r *http.Request, def int) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > maxLimit {
		return 0, false
	}
	return l, true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}

// userID reads UserHeader; it writes a 401 problem and returns false when absent or malformed.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(r.Header.Get(UserHeader))
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", UserHeader+" header is required")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r, defaultPropertyLimit)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit))
		return
	}

	var (
		rows []domain.PropertyRow
		err  error
	)
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		ownerID, ok := parseID(owner)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid owner_id", "owner_id must be a positive integer")
			return
		}
		rows, err = h.Properties.ByOwner(r.Context(), ownerID, limit)
	} else {
		var opts domain.FilterOptions
		opts, err = query.ParseFilterOptions(r.URL.Query())
		if err == nil {
			rows, err = h.Properties.Search(r.Context(), opts, limit)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeCacheable(w, r, struct {
		Properties []domain.PropertyRow `json:"properties"`
	}{rows})
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	var in domain.NewProperty
	if !decodeBody(w, r, &in) {
		return
	}
	in.OwnerID = owner

	p, err := h.Properties.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, _ := json.Marshal(p)
	w.Header().Set("Location", fmt.Sprintf("/v1/properties?owner_id=%d", p.OwnerID))
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	guest, ok := userID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(r, query.DefaultLimit)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit))
		return
	}

	rows, err := h.Reservations.ForGuest(r.Context(), guest, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, struct {
		Reservations []domain.ReservationRow `json:"reservations"`
	}{rows})
}

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in domain.NewUser
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := h.Users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, _ := json.Marshal(u)
	w.Header().Set("Location", fmt.Sprintf("/v1/users/%d", u.ID))
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, u)
}
