package handler

import (
	"errors"
	"net/http"

	"refstack/internal/middleware"
	"refstack/internal/model"
	"refstack/internal/service"
	"refstack/pkg/pagination"
	"refstack/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

// NewApprovalHandler sets up the routing dependencies for approval endpoints
func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Internal review routes
	approvals := router.Group("/approvals", middleware.RequireRole(model.RoleAdmin, model.RoleSales))
	{
		approvals.GET("", h.ListApprovals)
		approvals.PUT("/:id/review", h.ReviewRequest)
	}

	// Public token routes, the customer contact has no account
	router.GET("/approval/:token", h.GetPendingByToken)
	router.POST("/approval/:token", h.DecideByToken)
}

// ListApprovals returns approval requests, optionally filtered by status
// @Summary      List approval requests
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (pending, approved, rejected)"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Paginated{data=[]service.ApprovalResponse}
// @Router       /approvals [get]
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := service.ApprovalFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	approvals, total, err := h.approvalService.ListApprovals(c.Request.Context(), orgID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, approvals, total, params.Page, params.Limit))
}

type reviewRequestPayload struct {
	Decision string `json:"decision" binding:"required"`
}

// ReviewRequest decides a pending approval request on behalf of the organization
// @Summary      Review an approval request
// @Description  Applies approve_external, approve_internal or reject to a pending request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Approval Request ID"
// @Param        payload  body      reviewRequestPayload   true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.ApprovalResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /approvals/{id}/review [put]
func (h *ApprovalHandler) ReviewRequest(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var payload reviewRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	approval, err := h.approvalService.ReviewRequest(c.Request.Context(), orgID, c.Param("id"), payload.Decision, currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "approval request not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// GetPendingByToken returns the reference preview behind an approval token
// @Summary      Preview a pending reference by token
// @Description  Public endpoint for the customer contact reviewing a reference
// @Tags         approvals
// @Produce      json
// @Param        token  path      string  true  "Approval Token"
// @Success      200    {object}  response.Response{data=service.PendingReferenceResponse}
// @Failure      404    {object}  response.Response
// @Router       /approval/{token} [get]
func (h *ApprovalHandler) GetPendingByToken(c *gin.Context) {
	preview, err := h.approvalService.GetPendingByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "invalid or expired token"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

type tokenDecisionPayload struct {
	ReferenceID string `json:"reference_id" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

// DecideByToken applies the customer's visibility decision via approval token
// @Summary      Decide a pending reference by token
// @Description  Sets the reference to one of the released statuses and consumes the single-use token
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        token    path      string                true  "Approval Token"
// @Param        payload  body      tokenDecisionPayload  true  "Decision Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /approval/{token} [post]
func (h *ApprovalHandler) DecideByToken(c *gin.Context) {
	var payload tokenDecisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	err := h.approvalService.UpdateStatusViaToken(c.Request.Context(), payload.ReferenceID, c.Param("token"), payload.Status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "invalid or expired token"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "status updated"}))
}
