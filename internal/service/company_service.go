package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Country  string `json:"country"`
	Website  string `json:"website"`
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name"`
	Industry *string `json:"industry"`
	Country  *string `json:"country"`
	Website  *string `json:"website"`
}

type ContactPersonRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

type ContactPersonResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

type CompanyResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Industry  string                  `json:"industry"`
	Country   string                  `json:"country"`
	Website   string                  `json:"website"`
	Contacts  []ContactPersonResponse `json:"contacts,omitempty"`
	CreatedAt string                  `json:"created_at"`
	UpdatedAt string                  `json:"updated_at"`
}

// CompanyService defines the interface for company and contact person logic
type CompanyService interface {
	CreateCompany(ctx context.Context, orgID uuid.UUID, req CreateCompanyRequest) (CompanyResponse, error)
	GetCompany(ctx context.Context, orgID uuid.UUID, id string) (CompanyResponse, error)
	ListCompanies(ctx context.Context, orgID uuid.UUID, search string, page, limit int) ([]CompanyResponse, int64, error)
	UpdateCompany(ctx context.Context, orgID uuid.UUID, id string, req UpdateCompanyRequest) (CompanyResponse, error)
	DeleteCompany(ctx context.Context, orgID uuid.UUID, id string) error

	AddContact(ctx context.Context, orgID uuid.UUID, companyID string, req ContactPersonRequest) (ContactPersonResponse, error)
	UpdateContact(ctx context.Context, orgID uuid.UUID, companyID, contactID string, req ContactPersonRequest) (ContactPersonResponse, error)
	DeleteContact(ctx context.Context, orgID uuid.UUID, companyID, contactID string) error
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

// NewCompanyService returns a new instance of CompanyService
func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) CreateCompany(ctx context.Context, orgID uuid.UUID, req CreateCompanyRequest) (CompanyResponse, error) {
	// Company names are kept unique per organization so pick-or-create on
	// reference creation stays deterministic.
	if existing, err := s.companyRepo.FindByName(ctx, orgID, req.Name); err == nil && existing != nil {
		return CompanyResponse{}, errors.New("a company with this name already exists")
	}

	company := &model.Company{
		OrganizationID: orgID,
		Name:           req.Name,
		Industry:       req.Industry,
		Country:        req.Country,
		Website:        req.Website,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return CompanyResponse{}, fmt.Errorf("failed to create company: %w", err)
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) GetCompany(ctx context.Context, orgID uuid.UUID, id string) (CompanyResponse, error) {
	company, err := s.loadCompany(ctx, orgID, id)
	if err != nil {
		return CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) ListCompanies(ctx context.Context, orgID uuid.UUID, search string, page, limit int) ([]CompanyResponse, int64, error) {
	companies, total, err := s.companyRepo.List(ctx, orgID, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}

	responses := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		responses = append(responses, toCompanyResponse(&companies[i]))
	}
	return responses, total, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, orgID uuid.UUID, id string, req UpdateCompanyRequest) (CompanyResponse, error) {
	company, err := s.loadCompany(ctx, orgID, id)
	if err != nil {
		return CompanyResponse{}, err
	}

	if req.Name != nil && *req.Name != "" && *req.Name != company.Name {
		if existing, findErr := s.companyRepo.FindByName(ctx, orgID, *req.Name); findErr == nil && existing != nil {
			return CompanyResponse{}, errors.New("a company with this name already exists")
		}
		company.Name = *req.Name
	}
	if req.Industry != nil {
		company.Industry = *req.Industry
	}
	if req.Country != nil {
		company.Country = *req.Country
	}
	if req.Website != nil {
		company.Website = *req.Website
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return CompanyResponse{}, fmt.Errorf("failed to update company: %w", err)
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) DeleteCompany(ctx context.Context, orgID uuid.UUID, id string) error {
	company, err := s.loadCompany(ctx, orgID, id)
	if err != nil {
		return err
	}
	return s.companyRepo.Delete(ctx, orgID, company.ID)
}

func (s *companyService) AddContact(ctx context.Context, orgID uuid.UUID, companyID string, req ContactPersonRequest) (ContactPersonResponse, error) {
	company, err := s.loadCompany(ctx, orgID, companyID)
	if err != nil {
		return ContactPersonResponse{}, err
	}

	contact := &model.ContactPerson{
		CompanyID: company.ID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
	}
	if err := s.companyRepo.CreateContact(ctx, contact); err != nil {
		return ContactPersonResponse{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return toContactResponse(contact), nil
}

func (s *companyService) UpdateContact(ctx context.Context, orgID uuid.UUID, companyID, contactID string, req ContactPersonRequest) (ContactPersonResponse, error) {
	contact, err := s.loadContact(ctx, orgID, companyID, contactID)
	if err != nil {
		return ContactPersonResponse{}, err
	}

	contact.Name = req.Name
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Position = req.Position

	if err := s.companyRepo.UpdateContact(ctx, contact); err != nil {
		return ContactPersonResponse{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return toContactResponse(contact), nil
}

func (s *companyService) DeleteContact(ctx context.Context, orgID uuid.UUID, companyID, contactID string) error {
	contact, err := s.loadContact(ctx, orgID, companyID, contactID)
	if err != nil {
		return err
	}
	return s.companyRepo.DeleteContact(ctx, contact.ID)
}

func (s *companyService) loadCompany(ctx context.Context, orgID uuid.UUID, id string) (*model.Company, error) {
	companyID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid company id")
	}
	company, err := s.companyRepo.FindByID(ctx, orgID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return company, nil
}

// loadContact resolves a contact and verifies it belongs to a company of the
// caller's organization.
func (s *companyService) loadContact(ctx context.Context, orgID uuid.UUID, companyID, contactID string) (*model.ContactPerson, error) {
	company, err := s.loadCompany(ctx, orgID, companyID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(contactID)
	if err != nil {
		return nil, errors.New("invalid contact id")
	}
	contact, err := s.companyRepo.FindContactByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	if contact.CompanyID != company.ID {
		return nil, ErrNotFound
	}
	return contact, nil
}

func toContactResponse(contact *model.ContactPerson) ContactPersonResponse {
	return ContactPersonResponse{
		ID:       contact.ID.String(),
		Name:     contact.Name,
		Email:    contact.Email,
		Phone:    contact.Phone,
		Position: contact.Position,
	}
}

func toCompanyResponse(company *model.Company) CompanyResponse {
	resp := CompanyResponse{
		ID:        company.ID.String(),
		Name:      company.Name,
		Industry:  company.Industry,
		Country:   company.Country,
		Website:   company.Website,
		CreatedAt: company.CreatedAt.Format(time.RFC3339),
		UpdatedAt: company.UpdatedAt.Format(time.RFC3339),
	}
	for i := range company.Contacts {
		resp.Contacts = append(resp.Contacts, toContactResponse(&company.Contacts[i]))
	}
	return resp
}
