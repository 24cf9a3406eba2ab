package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// maxBodyBytes caps request bodies; ledger payloads are tiny
const maxBodyBytes = 1 << 16

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain error kinds to HTTP status codes.
// NotFound is checked before Unauthorized so ownership mismatches read as 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIrreversibleState),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrReferenced):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err and logs server-side failures. Storage details never reach the client.
func writeError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		message = "internal error"
		if errors.Is(err, domain.ErrStorageFailure) {
			message = "storage failure"
		}
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return err
		}
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a UUID", domain.ErrInvalidInput, name)
	}
	return &id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func entryFilter(r *http.Request) (domain.EntryFilter, error) {
	var f domain.EntryFilter
	var err error

	if f.WalletID, err = queryUUID(r, "wallet_id"); err != nil {
		return f, err
	}
	if f.GoalID, err = queryUUID(r, "goal_id"); err != nil {
		return f, err
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		if f.Kind, err = domain.ParseEntryKind(kind); err != nil {
			return f, err
		}
	}
	f.IncludeReversed = queryBool(r, "include_reversed")
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}
