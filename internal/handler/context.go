package handler

import (
	"net/http"

	"refstack/internal/middleware"
	"refstack/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireOrg pulls the organization id out of the authenticated context.
// Profiles that have not finished onboarding get a 403 and must call the
// onboarding endpoint first.
func requireOrg(c *gin.Context) (uuid.UUID, bool) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Organization setup required. Complete onboarding first."))
		return uuid.Nil, false
	}
	return orgID, true
}

// currentUserID returns the authenticated profile id as a string
func currentUserID(c *gin.Context) string {
	raw, _ := c.Get("userID")
	str, _ := raw.(string)
	return str
}
