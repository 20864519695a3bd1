package middleware

import (
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/splitmate-api/internal/constants"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
)

// RequireAuth resolves the session user and rejects the request with the
// engine's permission error when nobody is signed in.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := toUserID(sessions.Default(c).Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Respond(c, apierrors.ErrPermission)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// RequireEventID parses the :id route parameter and stores it for handlers.
// Membership and ownership are checked by the services so a missing event and
// a forbidden one look the same to the caller.
func RequireEventID() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || eventID == 0 {
			apierrors.BadRequestResponse(c, "Invalid event ID")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyEventID, eventID)
		c.Next()
	}
}

// GetUserID returns the user stored by RequireAuth
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(v)
}

// GetEventID returns the event stored by RequireEventID
func GetEventID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyEventID)
	if !exists {
		return 0, false
	}
	eventID, ok := v.(uint64)
	return eventID, ok
}

// toUserID accepts the integer kinds a session codec may hand back. Zero is
// never a valid user.
func toUserID(v interface{}) (uint64, bool) {
	var id uint64
	switch n := v.(type) {
	case uint64:
		id = n
	case uint:
		id = uint64(n)
	case int64:
		if n < 0 {
			return 0, false
		}
		id = uint64(n)
	case int:
		if n < 0 {
			return 0, false
		}
		id = uint64(n)
	default:
		return 0, false
	}
	return id, id != 0
}
