package handler

import (
	"errors"
	"net/http"

	"refstack/internal/middleware"
	"refstack/internal/model"
	"refstack/internal/repository"
	"refstack/internal/service"
	"refstack/pkg/pagination"
	"refstack/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler groups endpoints for dashboard stats, invites and the audit log
type AdminHandler struct {
	statsService  service.StatsService
	inviteService service.InviteService
	auditRepo     repository.AuditRepository
}

// NewAdminHandler sets up the routing dependencies for admin endpoints
func NewAdminHandler(
	statsService service.StatsService,
	inviteService service.InviteService,
	auditRepo repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		statsService:  statsService,
		inviteService: inviteService,
		auditRepo:     auditRepo,
	}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stats/dashboard", middleware.RequireRole(model.RoleAdmin, model.RoleSales), h.GetDashboardStats)

	// Invite creation is admin only, validation is public (the invitee has no account yet)
	router.POST("/invites", middleware.RequireRole(model.RoleAdmin), h.CreateInvite)
	router.GET("/invites/:token", h.ValidateInvite)

	router.GET("/audit", middleware.RequireRole(model.RoleAdmin), h.ListAuditLog)
}

// GetDashboardStats returns reference and deal aggregates for the dashboard
// @Summary      Dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardStatsResponse}
// @Router       /stats/dashboard [get]
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetDashboardStats(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// CreateInvite issues an organization invite and emails the link
// @Summary      Create an organization invite
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInviteRequest  true  "Invite Payload"
// @Success      201      {object}  response.Response{data=service.InviteResponse}
// @Failure      400      {object}  response.Response
// @Router       /invites [post]
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid profile id"))
		return
	}

	var req service.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invite, err := h.inviteService.CreateInvite(c.Request.Context(), orgID, profileID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invite))
}

// ValidateInvite previews the organization behind an invite token
// @Summary      Validate an invite token
// @Tags         admin
// @Produce      json
// @Param        token  path      string  true  "Invite Token"
// @Success      200    {object}  response.Response{data=service.InvitePreviewResponse}
// @Failure      404    {object}  response.Response
// @Router       /invites/{token} [get]
func (h *AdminHandler) ValidateInvite(c *gin.Context) {
	preview, err := h.inviteService.ValidateInvite(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "invalid or expired invite"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// ListAuditLog returns audit entries, optionally filtered by action
// @Summary      List audit log entries
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        action  query     string  false  "Filter by action"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Paginated{data=[]model.AuditLog}
// @Router       /audit [get]
func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	params := pagination.Parse(c)
	entries, total, err := h.auditRepo.List(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, entries, total, params.Page, params.Limit))
}
