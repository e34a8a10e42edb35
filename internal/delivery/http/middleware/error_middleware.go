package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"placement-backoffice/internal/delivery/http/response"
	"placement-backoffice/internal/domain"
	"placement-backoffice/pkg/apperror"
	"placement-backoffice/pkg/logger"
)

// ErrorHandler maps errors appended to the gin context onto the response
// envelope. Domain errors carry their own HTTP semantics; anything else is a
// generic 500 so internal details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		if appErr = mapDomainError(err); appErr != nil {
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		logger.Log.Error("unhandled error", "error", err, "path", c.FullPath())
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

// mapDomainError translates the domain error taxonomy to HTTP. The
// user_friendly / scroll_to_documents hints drive the cancellation dialog.
func mapDomainError(err error) *apperror.AppError {
	var (
		invalidTransition *domain.InvalidTransitionError
		missingDate       *domain.MissingRequiredDateError
		docsIncomplete    *domain.DocumentsIncompleteError
		illegalCancel     *domain.IllegalCancellationError
		mixedCurrency     *domain.MixedCurrencyError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Resource not found")
	case errors.As(err, &invalidTransition):
		return apperror.Conflict(invalidTransition.Error())
	case errors.As(err, &missingDate):
		return apperror.BadRequest(missingDate.Error()).WithDetails(gin.H{
			"missing_date": missingDate.Field,
		})
	case errors.As(err, &docsIncomplete):
		return apperror.BadRequest("Required documents are incomplete").WithDetails(gin.H{
			"missing_documents":   docsIncomplete.Missing,
			"user_friendly":       true,
			"scroll_to_documents": true,
		})
	case errors.As(err, &illegalCancel):
		return apperror.Conflict(illegalCancel.Error()).WithDetails(gin.H{
			"user_friendly": true,
		})
	case errors.As(err, &mixedCurrency):
		return apperror.UnprocessableEntity(mixedCurrency.Error())
	case errors.Is(err, domain.ErrMissingDeportationTemplate):
		return apperror.UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrSameClientTransfer):
		return apperror.BadRequest(err.Error())
	}
	return nil
}
