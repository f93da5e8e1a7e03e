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

type DealHandler struct {
	dealService service.DealService
}

// NewDealHandler sets up the routing dependencies for deal endpoints
func NewDealHandler(dealService service.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *DealHandler) RegisterRoutes(router *gin.RouterGroup) {
	deals := router.Group("/deals", middleware.RequireRole(model.RoleAdmin, model.RoleSales))
	{
		deals.GET("", h.ListDeals)
		deals.GET("/expiring", h.ListExpiringDeals)
		deals.GET("/:id", h.GetDeal)
		deals.POST("", h.CreateDeal)
		deals.PUT("/:id", h.UpdateDeal)
		deals.DELETE("/:id", h.DeleteDeal)
		deals.POST("/:id/references/:referenceId", h.AddReference)
		deals.DELETE("/:id/references/:referenceId", h.RemoveReference)
		deals.POST("/:id/reference-request", h.SubmitReferenceRequest)
	}
}

// ListDeals returns deals, optionally filtered by status
// @Summary      List deals
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Paginated{data=[]service.DealResponse}
// @Router       /deals [get]
func (h *DealHandler) ListDeals(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	deals, total, err := h.dealService.ListDeals(c.Request.Context(), orgID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, deals, total, params.Page, params.Limit))
}

// ListExpiringDeals returns deals whose expiry date falls inside the warning window
// @Summary      List expiring deals
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.DealResponse}
// @Router       /deals/expiring [get]
func (h *DealHandler) ListExpiringDeals(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	deals, err := h.dealService.ListExpiringDeals(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deals))
}

// GetDeal returns a single deal with relations
// @Summary      Get a deal
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Deal ID"
// @Success      200  {object}  response.Response{data=service.DealResponse}
// @Failure      404  {object}  response.Response
// @Router       /deals/{id} [get]
func (h *DealHandler) GetDeal(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	deal, err := h.dealService.GetDeal(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "deal not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// CreateDeal creates a deal
// @Summary      Create a deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDealRequest  true  "Create Payload"
// @Success      201      {object}  response.Response{data=service.DealResponse}
// @Failure      400      {object}  response.Response
// @Router       /deals [post]
func (h *DealHandler) CreateDeal(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), orgID, currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deal))
}

// UpdateDeal updates a deal
// @Summary      Update a deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Deal ID"
// @Param        payload  body      service.UpdateDealRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.DealResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /deals/{id} [put]
func (h *DealHandler) UpdateDeal(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.UpdateDeal(c.Request.Context(), orgID, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "deal not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// DeleteDeal removes a deal
// @Summary      Delete a deal
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Deal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /deals/{id} [delete]
func (h *DealHandler) DeleteDeal(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.dealService.DeleteDeal(c.Request.Context(), orgID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "deal not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "deal deleted"}))
}

// AddReference links a reference to a deal
// @Summary      Link a reference to a deal
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Deal ID"
// @Param        referenceId  path      string  true  "Reference ID"
// @Success      200          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /deals/{id}/references/{referenceId} [post]
func (h *DealHandler) AddReference(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.dealService.AddReference(c.Request.Context(), orgID, c.Param("id"), c.Param("referenceId")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "deal or reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "reference linked"}))
}

// RemoveReference unlinks a reference from a deal
// @Summary      Unlink a reference from a deal
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Deal ID"
// @Param        referenceId  path      string  true  "Reference ID"
// @Success      200          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /deals/{id}/references/{referenceId} [delete]
func (h *DealHandler) RemoveReference(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.dealService.RemoveReference(c.Request.Context(), orgID, c.Param("id"), c.Param("referenceId")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "deal or reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "reference unlinked"}))
}

type referenceRequestPayload struct {
	Message string `json:"message"`
}

// SubmitReferenceRequest emails the reference manager about reference demand for a deal
// @Summary      Request references for a deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true   "Deal ID"
// @Param        payload  body      referenceRequestPayload  false  "Optional message"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /deals/{id}/reference-request [post]
func (h *DealHandler) SubmitReferenceRequest(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var payload referenceRequestPayload
	_ = c.ShouldBindJSON(&payload)

	if err := h.dealService.SubmitReferenceRequest(c.Request.Context(), orgID, currentUserID(c), c.Param("id"), payload.Message); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "deal not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "reference request sent"}))
}
