// internal/handler/errors.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"mcintosh-service/internal/driver/mcintosh"
	"mcintosh-service/internal/protocol"
	"mcintosh-service/internal/utils"
)

// errUnsupportedFeature is returned for controls the configured model lacks
var errUnsupportedFeature = errors.New("feature not supported by this model")

// statusForError maps a command error to an HTTP status code
func statusForError(err error) int {
	switch {
	case errors.Is(err, protocol.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, protocol.ErrNotConnected),
		errors.Is(err, protocol.ErrConnectionLost),
		errors.Is(err, protocol.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, mcintosh.ErrInvalidControl),
		errors.Is(err, mcintosh.ErrUnknownModel),
		errors.Is(err, errUnsupportedFeature):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	utils.ErrorResponse(c, statusForError(err), message, err)
}

// bindJSON binds the request body into req, answering 400 on failure.
// Field rule violations are reported per field.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		utils.ValidationErrorResponse(c, fields)
		return false
	}
	utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
	return false
}
