package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
	"github.com/worklinkgh/tasker-onboarding/pkg/auth"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

const GinContextKeyWorkerID = "workerID"

// AuthMiddleware resolves the session token to a worker ID. Token issuance
// belongs to the identity service; this engine only consumes it.
func AuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyWorkerID, claims.WorkerID)

		c.Next()
	}
}

func GetWorkerIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(GinContextKeyWorkerID)
	if !ok {
		return uuid.Nil, false
	}
	workerID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return workerID, true
}

// ErrorMiddleware turns errors collected on the gin context into JSON
// responses, mapping the engine's error taxonomy onto statuses and
// user-facing messages.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var slotErr *onboarding.SlotError
		var uploadErr *onboarding.UploadError
		var subErr *onboarding.SubmissionError

		switch {
		case errors.As(err, &slotErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "We couldn't upload your file. Please try again.",
				"purpose": string(slotErr.Purpose),
			})
		case errors.As(err, &uploadErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "We couldn't upload your file. Please try again.",
				"purpose": string(uploadErr.Purpose),
			})
		case errors.As(err, &subErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": subErr.UserMessage()})
		default:
			status := apperror.ToHTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("request failed", err, zap.String("path", c.FullPath()))
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				c.JSON(status, gin.H{"error": appErr.Message})
				return
			}
			c.JSON(status, gin.H{"error": http.StatusText(status)})
		}
	}
}
