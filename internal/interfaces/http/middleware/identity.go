// Package middleware provides HTTP middleware for the Q&A API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/infrastructure/logger"
	"github.com/setof/qna-backend/internal/interfaces/http/dto"
)

// Identity headers set by the authenticating gateway
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderUserName = "X-User-Name"
)

// MaxUserNameLength bounds the X-User-Name header
const MaxUserNameLength = 50

const viewerKey = "viewer"

// Identity reads the caller from the identity headers. Requests without an
// X-User-ID header continue as anonymous; malformed identity is rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader(HeaderUserID)
		if rawID == "" {
			c.Next()
			return
		}

		viewer, ok := parseViewer(rawID, c.GetHeader(HeaderUserRole), c.GetHeader(HeaderUserName))
		if !ok {
			abortUnauthorized(c, "Invalid caller identity headers")
			return
		}

		c.Set(viewerKey, viewer)
		c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), viewer.ID.String(), string(viewer.Type)))
		c.Next()
	}
}

// RequireViewer rejects anonymous callers. It must run after Identity.
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetViewer(c); !ok {
			abortUnauthorized(c, "Caller identity is required")
			return
		}
		c.Next()
	}
}

// GetViewer returns the identified caller. The zero Viewer and false are
// returned for anonymous requests.
func GetViewer(c *gin.Context) (appqna.Viewer, bool) {
	v, exists := c.Get(viewerKey)
	if !exists {
		return appqna.Viewer{}, false
	}
	viewer, ok := v.(appqna.Viewer)
	return viewer, ok
}

func parseViewer(rawID, rawRole, rawName string) (appqna.Viewer, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil || id == uuid.Nil {
		return appqna.Viewer{}, false
	}
	role := qna.WriterType(strings.ToUpper(strings.TrimSpace(rawRole)))
	if !role.IsValid() {
		return appqna.Viewer{}, false
	}
	name := strings.TrimSpace(rawName)
	if len([]rune(name)) > MaxUserNameLength {
		return appqna.Viewer{}, false
	}
	return appqna.Viewer{ID: id, Type: role, Name: name}, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
		dto.ErrCodeUnauthorized, message, GetRequestID(c),
	))
}
