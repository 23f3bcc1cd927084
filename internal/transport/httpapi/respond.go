package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

var errUnauthenticated = errors.New("requester identity is missing or invalid")

// requesterFromHeaders извлекает предаутентифицированную личность
// запрашивающего. Роль обязательна; идентификатор обязателен для customer.
func requesterFromHeaders(r *http.Request) (domain.Requester, error) {
	role := domain.Role(strings.TrimSpace(r.Header.Get(headerUserRole)))
	if !role.Valid() {
		return domain.Requester{}, errUnauthenticated
	}

	requester := domain.Requester{
		ID:   strings.TrimSpace(r.Header.Get(headerUserID)),
		Role: role,
	}
	if requester.Role == domain.RoleCustomer && requester.ID == "" {
		return domain.Requester{}, errUnauthenticated
	}
	return requester, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError переводит доменную ошибку в HTTP-статус. Детали ошибок
// хранилища наружу не уходят.
func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
	default:
		logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrInvalidBody
	}
	return nil
}
