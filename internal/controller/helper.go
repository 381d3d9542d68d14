package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sharetube/watchparty/internal/service"
	"github.com/sharetube/watchparty/pkg/rest"
)

const bearerPrefix = "Bearer "

var idCounter atomic.Uint64

// generateTimeBasedId returns an id that sorts by creation time within a process.
func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 36) + "-" + strconv.FormatUint(idCounter.Add(1), 36)
}

func (c controller) getToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}

	return r.URL.Query().Get("token")
}

type errorOutput struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapError translates a service error into an HTTP status and a stable error code.
func (c controller) mapError(err error) (int, errorOutput) {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, errorOutput{Code: "UNAUTHORIZED", Message: "invalid token"}
	case errors.Is(err, service.ErrRoomNotFound):
		return http.StatusNotFound, errorOutput{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, service.ErrMemberNotFound):
		return http.StatusNotFound, errorOutput{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrWrongSecret):
		return http.StatusForbidden, errorOutput{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest, errorOutput{Code: "INVALID_ACTION", Message: err.Error()}
	case errors.Is(err, service.ErrInvalidParams):
		return http.StatusBadRequest, errorOutput{Code: "INVALID_PARAMS", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorOutput{Code: "INTERNAL", Message: "internal error"}
	}
}

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, output := c.mapError(err)
	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	} else {
		c.logger.DebugContext(r.Context(), "request rejected", "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": output})
}
