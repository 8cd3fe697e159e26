package response

import (
	"github.com/gin-gonic/gin"

	"kerya/internal/shared/apperrors"
)

// RespondAppError renders a domain error using its mapped HTTP status.
// Non-domain errors fall through to a generic 500.
func RespondAppError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := "Internal server error"
	if appErr, ok := apperrors.AsError(err); ok {
		message = appErr.Message
	}
	RespondJSON(c, "error", status, message, nil, nil)
}
