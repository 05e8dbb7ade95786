package middleware

import (
	"errors"
	"net/http"

	"livecast/internal/core/domain"
	"livecast/internal/infrastructure/platform"
	"livecast/pkg/circuitbreaker"
	apperrors "livecast/pkg/errors"
	"livecast/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFoundSentinels = []error{
	domain.ErrVideoNotFound,
	domain.ErrSessionNotFound,
	domain.ErrEntryNotFound,
	domain.ErrSettingsNotFound,
	domain.ErrCredentialsNotFound,
	domain.ErrInputNotFound,
}

var conflictSentinels = []error{
	domain.ErrAlreadyStreaming,
	domain.ErrNoActiveStream,
	domain.ErrVideoInUse,
	domain.ErrEncoderRunning,
	domain.ErrInvalidTransition,
}

// classify maps an error chain to the response it should produce.
// Explicit AppErrors win; domain sentinels and infrastructure failures
// get stable codes so clients never parse wrapped message text.
func classify(err error) *apperrors.AppError {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr
	}

	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return apperrors.NewValidationError(vErr.Error())
	}

	for _, sentinel := range notFoundSentinels {
		if errors.Is(err, sentinel) {
			return apperrors.NewAppError(apperrors.ErrCodeNotFound, sentinel.Error(), http.StatusNotFound)
		}
	}
	for _, sentinel := range conflictSentinels {
		if errors.Is(err, sentinel) {
			return apperrors.NewConflictError(sentinel.Error())
		}
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return apperrors.NewServiceUnavailableError("remote platform temporarily unavailable")
	}

	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		return apperrors.NewExternalServiceError("platform", apiErr)
	}

	return nil
}

// ErrorHandlerMiddleware converts errors attached to the context into
// structured HTTP responses.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appErr := classify(err); appErr != nil {
			logger.Errorw("request failed",
				"code", appErr.Code,
				"message", appErr.Message,
				"status", appErr.HTTPStatus,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", err,
			)

			c.JSON(appErr.HTTPStatus, gin.H{
				"error":   string(appErr.Code),
				"message": appErr.Message,
				"details": appErr.Context,
			})
			return
		}

		logger.Errorw("unhandled error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(apperrors.ErrCodeInternal),
			"message": "Internal server error",
		})
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   string(apperrors.ErrCodeInternal),
					"message": "Internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
