package handlers

import (
	"net/http"

	"tutorhive/services/booking"
	"tutorhive/utils"

	"github.com/gin-gonic/gin"
)

// actorFromContext builds the acting identity from values set by the auth
// middleware.
func actorFromContext(c *gin.Context) booking.Actor {
	actor := booking.Actor{}
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			actor.ID = id
		}
	}
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			actor.Role = role
		}
	}
	if v, ok := c.Get("isAdmin"); ok {
		if admin, ok := v.(bool); ok {
			actor.Admin = admin
		}
	}
	return actor
}

// respondError maps engine error codes onto HTTP statuses and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch booking.CodeOf(err) {
	case booking.CodeValidation:
		status = http.StatusBadRequest
	case booking.CodeAuthentication:
		status = http.StatusUnauthorized
	case booking.CodeAuthorization:
		status = http.StatusForbidden
	case booking.CodeNotFound:
		status = http.StatusNotFound
	case booking.CodeStateConflict:
		status = http.StatusConflict
	case booking.CodeExternalService:
		status = http.StatusBadGateway
	}
	utils.JSONError(c, status, err.Error())
}
