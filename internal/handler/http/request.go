package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// principal writes a 401 and reports false when the request carries no caller.
func principal(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrUnauthenticated)
		return user.Principal{}, false
	}
	return p, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. A missing value is 0.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(w, "invalid "+key+" parameter", nil)
		return 0, false
	}
	return v, true
}

func queryString(r *http.Request, key string) *string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	return &raw
}

// pathID reads a URL id parameter. A malformed id cannot name a stored row,
// so it answers with notFound.
func pathID(w http.ResponseWriter, r *http.Request, key string, notFound error) (string, bool) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		response.HandleError(w, notFound)
		return "", false
	}
	return id, true
}

// queryID reads an optional id query parameter. A malformed value is a 400.
func queryID(w http.ResponseWriter, r *http.Request, key string) (*string, bool) {
	raw := queryString(r, key)
	if raw != nil && !validator.IsValidUUID(*raw) {
		response.ValidationError(w, map[string]string{key: "must be a valid ID"})
		return nil, false
	}
	return raw, true
}

// period reads the year and month query parameters.
func period(w http.ResponseWriter, r *http.Request) (year, month int, ok bool) {
	if year, ok = queryInt(w, r, "year"); !ok {
		return 0, 0, false
	}
	if month, ok = queryInt(w, r, "month"); !ok {
		return 0, 0, false
	}
	return year, month, true
}
