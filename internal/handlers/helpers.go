package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/middleware"
)

// requestContext returns the caller and the event from the route. It writes
// the error response and returns false when either is missing.
func requestContext(c *gin.Context) (userID, eventID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	eventID, exists = middleware.GetEventID(c)
	if !exists {
		apierrors.BadRequestResponse(c, "Invalid event ID")
		return 0, 0, false
	}

	return userID, eventID, true
}

func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		apierrors.BadRequestResponse(c, "Invalid "+name)
		return 0, false
	}
	return v, true
}
