package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"worklog/internal/domain"
	"worklog/internal/errors"
	"worklog/internal/logging"
	"worklog/internal/services"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	userKey      = "user"
	authRealm    = `Basic realm="worklog"`
)

// requestID tags every request with an id, reusing the caller's when present
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// basicAuth resolves HTTP Basic credentials to a user
func basicAuth(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", authRealm)
			abortWithError(c, errors.NewUnauthenticatedError("credentials required"))
			return
		}

		user, err := users.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			c.Header("WWW-Authenticate", authRealm)
			abortWithError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// currentUser returns the user basicAuth stored on the context
func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

func abortWithError(c *gin.Context, err error) {
	id := c.GetString(requestIDKey)
	if errors.ShouldLogError(err) {
		logging.Errorf("request %s %s %s: %v", id, c.Request.Method, c.Request.URL.Path, err)
	}
	resp := ErrorResponse{
		Error:     errors.GetUserMessage(err),
		Code:      errors.GetErrorCode(err),
		RequestID: id,
	}
	if appErr, ok := errors.AsAppError(err); ok {
		resp.Fields = appErr.Fields()
	}
	c.AbortWithStatusJSON(errors.HTTPStatus(err), resp)
}
