package route

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"davcal/src-server/caldav"
	"davcal/src-server/ical"
	"davcal/src-server/utils"
)

// Require `Authorization: Bearer <API_TOKEN>` when a token is configured
func AuthMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		token := as.Config.GetAPIToken()
		if token == "" {
			next(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="davcal"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid or missing bearer token"))
			return
		}
		next(w, r)
	}
}

// Map an error to its HTTP status by kind
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ical.ErrLookupFailure), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, ical.ErrInvalidArgument),
		errors.Is(err, ical.ErrOutOfRange),
		errors.Is(err, ical.ErrNoSuchOperation):
		return http.StatusBadRequest
	case errors.Is(err, ical.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, caldav.ErrUnexpectedStatus):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("can't write to response", "error", err)
	}
}

const maxBodyBytes = 1 << 20
