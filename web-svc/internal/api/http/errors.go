package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"noah-food/web-svc/internal/service"
	"noah-food/web-svc/internal/upstream"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var transportErr *upstream.TransportError
	switch {
	case errors.Is(err, service.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrRestaurantUndetermined),
		errors.Is(err, service.ErrItemNotSelected),
		errors.Is(err, service.ErrCredentialsRequired),
		errors.Is(err, service.ErrInvalidMenuItem),
		errors.Is(err, service.ErrItemRestaurantUnknown):
		return http.StatusUnprocessableEntity
	case upstream.IsAuthError(err):
		return http.StatusUnauthorized
	}

	if status := upstream.StatusOf(err); status != 0 {
		if status >= 400 && status < 500 {
			return status
		}
		return http.StatusBadGateway
	}
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
