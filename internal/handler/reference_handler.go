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

type ReferenceHandler struct {
	referenceService service.ReferenceService
	approvalService  service.ApprovalService
	favoriteService  service.FavoriteService
}

// NewReferenceHandler sets up the routing dependencies for reference endpoints
func NewReferenceHandler(
	referenceService service.ReferenceService,
	approvalService service.ApprovalService,
	favoriteService service.FavoriteService,
) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
		approvalService:  approvalService,
		favoriteService:  favoriteService,
	}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	refs := router.Group("/references", middleware.RequireRole(model.RoleAdmin, model.RoleSales))
	{
		refs.GET("", h.ListReferences)
		refs.GET("/:id", h.GetReference)
		refs.POST("", h.CreateReference)
		refs.PUT("/:id", h.UpdateReference)
		refs.DELETE("/:id", h.DeleteReference)
		refs.POST("/:id/submit", h.SubmitForApproval)
		refs.POST("/:id/favorite", h.ToggleFavorite)
	}

	router.GET("/favorites", middleware.RequireRole(model.RoleAdmin, model.RoleSales), h.ListFavorites)
}

// ListReferences returns references, optionally filtered by status and search term
// @Summary      List references
// @Tags         references
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        search  query     string  false  "Search in title and company name"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Paginated{data=[]service.ReferenceResponse}
// @Router       /references [get]
func (h *ReferenceHandler) ListReferences(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := repository.ReferenceFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	refs, total, err := h.referenceService.ListReferences(c.Request.Context(), orgID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, refs, total, params.Page, params.Limit))
}

// GetReference returns a single reference with relations
// @Summary      Get a reference
// @Tags         references
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reference ID"
// @Success      200  {object}  response.Response{data=service.ReferenceResponse}
// @Failure      404  {object}  response.Response
// @Router       /references/{id} [get]
func (h *ReferenceHandler) GetReference(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	ref, err := h.referenceService.GetReference(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ref))
}

// CreateReference creates a reference in draft, optionally submitting it right away
// @Summary      Create a reference
// @Tags         references
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateReferenceRequest  true  "Create Payload"
// @Success      201      {object}  response.Response{data=service.ReferenceResponse}
// @Failure      400      {object}  response.Response
// @Router       /references [post]
func (h *ReferenceHandler) CreateReference(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ref, err := h.referenceService.CreateReference(c.Request.Context(), orgID, currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ref))
}

// UpdateReference updates an editable reference
// @Summary      Update a reference
// @Description  Only draft and pending references are editable. Setting status to pending submits for approval.
// @Tags         references
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Reference ID"
// @Param        payload  body      service.UpdateReferenceRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.ReferenceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /references/{id} [put]
func (h *ReferenceHandler) UpdateReference(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.UpdateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ref, err := h.referenceService.UpdateReference(c.Request.Context(), orgID, currentUserID(c), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ref))
}

// DeleteReference soft deletes a reference
// @Summary      Delete a reference
// @Tags         references
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reference ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /references/{id} [delete]
func (h *ReferenceHandler) DeleteReference(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.referenceService.DeleteReference(c.Request.Context(), orgID, currentUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "reference deleted"}))
}

// SubmitForApproval moves a reference to pending and notifies the contact person
// @Summary      Submit a reference for approval
// @Description  Issues a fresh approval token, sets the status to pending and emails the contact person
// @Tags         references
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reference ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /references/{id}/submit [post]
func (h *ReferenceHandler) SubmitForApproval(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.approvalService.SubmitForApproval(c.Request.Context(), orgID, c.Param("id"), currentUserID(c)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "reference submitted for approval"}))
}

// ToggleFavorite flips the caller's bookmark on a reference
// @Summary      Toggle favorite
// @Tags         references
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reference ID"
// @Success      200  {object}  response.Response{data=service.FavoriteToggleResponse}
// @Failure      404  {object}  response.Response
// @Router       /references/{id}/favorite [post]
func (h *ReferenceHandler) ToggleFavorite(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid profile id"))
		return
	}

	result, err := h.favoriteService.ToggleFavorite(c.Request.Context(), profileID, orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "reference not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListFavorites returns the caller's bookmarked references
// @Summary      List favorites
// @Tags         references
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ReferenceResponse}
// @Router       /favorites [get]
func (h *ReferenceHandler) ListFavorites(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid profile id"))
		return
	}

	refs, err := h.favoriteService.ListFavorites(c.Request.Context(), profileID, orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, refs))
}
