package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sternrassler/lenta-assistant/internal/assistant"
	"github.com/Sternrassler/lenta-assistant/pkg/client"
	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
)

// Error codes returned in ErrorInfo.Code.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeNoStore          = "NO_STORE"
	CodeNotFound         = "NOT_FOUND"
	CodeUpstreamRejected = "UPSTREAM_REJECTED"
	CodeUpstreamFailure  = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamInvalid  = "UPSTREAM_INVALID_RESPONSE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnhealthy        = "UNHEALTHY"
)

// statusFor maps a service error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	var (
		clientErr    *client.ClientError
		serverErr    *client.ServerError
		transportErr *client.TransportError
		parseErr     *lenta.ParseError
	)

	switch {
	case errors.Is(err, assistant.ErrNoStore):
		return http.StatusConflict, CodeNoStore
	case errors.Is(err, assistant.ErrStoreNotFound),
		errors.Is(err, assistant.ErrSkuNotFound),
		errors.Is(err, assistant.ErrCityNotFound),
		errors.Is(err, assistant.ErrNotTracked):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &clientErr):
		if clientErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, CodeNotFound
		}
		if clientErr.StatusCode >= 400 && clientErr.StatusCode < 500 {
			return clientErr.StatusCode, CodeUpstreamRejected
		}
		return http.StatusBadGateway, CodeUpstreamRejected
	case errors.As(err, &serverErr), errors.As(err, &transportErr):
		return http.StatusBadGateway, CodeUpstreamFailure
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, CodeUpstreamInvalid
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondError writes err as a JSON error and logs server-side failures.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	event := h.logger.Debug()
	if status >= http.StatusInternalServerError {
		event = h.logger.Warn()
	}
	event.Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request failed")

	c.AbortWithStatusJSON(status, errorResponse(code, message))
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(CodeInvalidRequest, message))
}
