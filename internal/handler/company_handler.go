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

type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler sets up the routing dependencies for company endpoints
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies", middleware.RequireRole(model.RoleAdmin, model.RoleSales))
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompany)
		companies.POST("", h.CreateCompany)
		companies.PUT("/:id", h.UpdateCompany)
		companies.DELETE("/:id", h.DeleteCompany)
		companies.POST("/:id/contacts", h.AddContact)
		companies.PUT("/:id/contacts/:contactId", h.UpdateContact)
		companies.DELETE("/:id/contacts/:contactId", h.DeleteContact)
	}
}

// ListCompanies returns companies, optionally filtered by a search term
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Search in company name"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Paginated{data=[]service.CompanyResponse}
// @Router       /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	companies, total, err := h.companyService.ListCompanies(c.Request.Context(), orgID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, companies, total, params.Page, params.Limit))
}

// GetCompany returns a single company with its contact persons
// @Summary      Get a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "company not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// CreateCompany creates a company
// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCompanyRequest  true  "Create Payload"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), orgID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// UpdateCompany updates a company
// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Company ID"
// @Param        payload  body      service.UpdateCompanyRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), orgID, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "company not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// DeleteCompany removes a company
// @Summary      Delete a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.companyService.DeleteCompany(c.Request.Context(), orgID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "company not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "company deleted"}))
}

// AddContact adds a contact person to a company
// @Summary      Add a contact person
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Company ID"
// @Param        payload  body      service.ContactPersonRequest  true  "Contact Payload"
// @Success      201      {object}  response.Response{data=service.ContactPersonResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /companies/{id}/contacts [post]
func (h *CompanyHandler) AddContact(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.ContactPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.companyService.AddContact(c.Request.Context(), orgID, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "company not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contact))
}

// UpdateContact updates a contact person
// @Summary      Update a contact person
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string                        true  "Company ID"
// @Param        contactId  path      string                        true  "Contact ID"
// @Param        payload    body      service.ContactPersonRequest  true  "Contact Payload"
// @Success      200        {object}  response.Response{data=service.ContactPersonResponse}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /companies/{id}/contacts/{contactId} [put]
func (h *CompanyHandler) UpdateContact(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	var req service.ContactPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.companyService.UpdateContact(c.Request.Context(), orgID, c.Param("id"), c.Param("contactId"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "contact not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

// DeleteContact removes a contact person
// @Summary      Delete a contact person
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Company ID"
// @Param        contactId  path      string  true  "Contact ID"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /companies/{id}/contacts/{contactId} [delete]
func (h *CompanyHandler) DeleteContact(c *gin.Context) {
	orgID, ok := requireOrg(c)
	if !ok {
		return
	}

	if err := h.companyService.DeleteContact(c.Request.Context(), orgID, c.Param("id"), c.Param("contactId")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "contact not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "contact deleted"}))
}
