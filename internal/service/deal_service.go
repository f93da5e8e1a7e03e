package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deals with an expiry date inside this window show up on the dashboard's
// "expiring soon" list.
const dealExpiryWindowDays = 180

// --- DTOs ---

type CreateDealRequest struct {
	Title            string     `json:"title" binding:"required"`
	CompanyID        string     `json:"company_id"`
	Industry         string     `json:"industry"`
	Volume           string     `json:"volume"` // decimal string, e.g. "250000.00"
	IsPublic         *bool      `json:"is_public"`
	AccountManagerID string     `json:"account_manager_id"`
	SalesManagerID   string     `json:"sales_manager_id"`
	Status           string     `json:"status"`
	ExpiryDate       *time.Time `json:"expiry_date"`
}

type UpdateDealRequest struct {
	Title            *string    `json:"title"`
	CompanyID        *string    `json:"company_id"`
	Industry         *string    `json:"industry"`
	Volume           *string    `json:"volume"`
	IsPublic         *bool      `json:"is_public"`
	AccountManagerID *string    `json:"account_manager_id"`
	SalesManagerID   *string    `json:"sales_manager_id"`
	Status           *string    `json:"status"`
	ExpiryDate       *time.Time `json:"expiry_date"`
}

type DealReferenceSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
}

type DealResponse struct {
	ID                 string                 `json:"id"`
	Title              string                 `json:"title"`
	CompanyID          *string                `json:"company_id"`
	CompanyName        string                 `json:"company_name,omitempty"`
	Industry           string                 `json:"industry"`
	Volume             string                 `json:"volume"`
	IsPublic           bool                   `json:"is_public"`
	AccountManagerID   *string                `json:"account_manager_id"`
	AccountManagerName string                 `json:"account_manager_name,omitempty"`
	SalesManagerID     *string                `json:"sales_manager_id"`
	SalesManagerName   string                 `json:"sales_manager_name,omitempty"`
	Status             string                 `json:"status"`
	ExpiryDate         *time.Time             `json:"expiry_date"`
	References         []DealReferenceSummary `json:"references,omitempty"`
	CreatedAt          string                 `json:"created_at"`
	UpdatedAt          string                 `json:"updated_at"`
}

// --- Interface ---

type DealService interface {
	CreateDeal(ctx context.Context, orgID uuid.UUID, profileID string, req CreateDealRequest) (DealResponse, error)
	GetDeal(ctx context.Context, orgID uuid.UUID, id string) (DealResponse, error)
	ListDeals(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]DealResponse, int64, error)
	ListExpiringDeals(ctx context.Context, orgID uuid.UUID) ([]DealResponse, error)
	UpdateDeal(ctx context.Context, orgID uuid.UUID, id string, req UpdateDealRequest) (DealResponse, error)
	DeleteDeal(ctx context.Context, orgID uuid.UUID, id string) error
	AddReference(ctx context.Context, orgID uuid.UUID, dealID, referenceID string) error
	RemoveReference(ctx context.Context, orgID uuid.UUID, dealID, referenceID string) error
	SubmitReferenceRequest(ctx context.Context, orgID uuid.UUID, profileID, dealID, message string) error
}

type dealService struct {
	dealRepo      repository.DealRepository
	referenceRepo repository.ReferenceRepository
	profileRepo   repository.ProfileRepository
	auditRepo     repository.AuditRepository
	sender        Sender
	managerEmail  string // reference manager inbox for reference-need reports
	baseURL       string
}

func NewDealService(
	dealRepo repository.DealRepository,
	referenceRepo repository.ReferenceRepository,
	profileRepo repository.ProfileRepository,
	auditRepo repository.AuditRepository,
	sender Sender,
	managerEmail string,
	baseURL string,
) DealService {
	return &dealService{
		dealRepo:      dealRepo,
		referenceRepo: referenceRepo,
		profileRepo:   profileRepo,
		auditRepo:     auditRepo,
		sender:        sender,
		managerEmail:  managerEmail,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

// --- Implementation ---

func (s *dealService) CreateDeal(ctx context.Context, orgID uuid.UUID, profileID string, req CreateDealRequest) (DealResponse, error) {
	if req.Title == "" {
		return DealResponse{}, fmt.Errorf("title is required")
	}

	status := req.Status
	if status == "" {
		status = model.DealStatusInNegotiation
	}
	if !model.ValidDealStatuses[status] {
		return DealResponse{}, fmt.Errorf("status must be one of: in_negotiation, rfp_phase, won, lost, on_hold")
	}

	volume := decimal.Zero
	if req.Volume != "" {
		parsed, err := decimal.NewFromString(req.Volume)
		if err != nil {
			return DealResponse{}, fmt.Errorf("invalid volume: %w", err)
		}
		volume = parsed
	}

	deal := model.Deal{
		OrganizationID: orgID,
		Title:          req.Title,
		Industry:       req.Industry,
		Volume:         volume,
		IsPublic:       true,
		Status:         status,
		ExpiryDate:     req.ExpiryDate,
	}
	if req.IsPublic != nil {
		deal.IsPublic = *req.IsPublic
	}
	var err error
	if deal.CompanyID, err = parseOptionalUUID(req.CompanyID); err != nil {
		return DealResponse{}, fmt.Errorf("invalid company_id: %w", err)
	}
	if deal.AccountManagerID, err = parseOptionalUUID(req.AccountManagerID); err != nil {
		return DealResponse{}, fmt.Errorf("invalid account_manager_id: %w", err)
	}
	if deal.SalesManagerID, err = parseOptionalUUID(req.SalesManagerID); err != nil {
		return DealResponse{}, fmt.Errorf("invalid sales_manager_id: %w", err)
	}

	if err := s.dealRepo.Create(ctx, &deal); err != nil {
		return DealResponse{}, fmt.Errorf("failed to create deal: %w", err)
	}

	if actor, parseErr := uuid.Parse(profileID); parseErr == nil {
		entry := model.AuditLog{
			ProfileID:  &actor,
			Action:     model.ActionCreateDeal,
			EntityID:   deal.ID.String(),
			EntityName: deal.Title,
			Details:    "{}",
		}
		if logErr := s.auditRepo.Log(ctx, &entry); logErr != nil {
			log.Printf("audit log write failed for %s: %v", model.ActionCreateDeal, logErr)
		}
	}

	return s.GetDeal(ctx, orgID, deal.ID.String())
}

func (s *dealService) GetDeal(ctx context.Context, orgID uuid.UUID, id string) (DealResponse, error) {
	dealID, err := uuid.Parse(id)
	if err != nil {
		return DealResponse{}, fmt.Errorf("invalid deal id: %w", err)
	}

	deal, err := s.dealRepo.FindByID(ctx, orgID, dealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DealResponse{}, ErrNotFound
	}
	if err != nil {
		return DealResponse{}, fmt.Errorf("failed to load deal: %w", err)
	}

	return toDealResponse(deal), nil
}

func (s *dealService) ListDeals(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]DealResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if status != "" && !model.ValidDealStatuses[status] {
		return nil, 0, fmt.Errorf("unknown status filter: %s", status)
	}

	deals, total, err := s.dealRepo.List(ctx, orgID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch deals: %w", err)
	}

	result := make([]DealResponse, 0, len(deals))
	for i := range deals {
		result = append(result, toDealResponse(&deals[i]))
	}
	return result, total, nil
}

func (s *dealService) ListExpiringDeals(ctx context.Context, orgID uuid.UUID) ([]DealResponse, error) {
	cutoff := time.Now().AddDate(0, 0, dealExpiryWindowDays)
	deals, err := s.dealRepo.ListExpiring(ctx, orgID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expiring deals: %w", err)
	}

	result := make([]DealResponse, 0, len(deals))
	for i := range deals {
		result = append(result, toDealResponse(&deals[i]))
	}
	return result, nil
}

func (s *dealService) UpdateDeal(ctx context.Context, orgID uuid.UUID, id string, req UpdateDealRequest) (DealResponse, error) {
	dealID, err := uuid.Parse(id)
	if err != nil {
		return DealResponse{}, fmt.Errorf("invalid deal id: %w", err)
	}

	deal, err := s.dealRepo.FindByID(ctx, orgID, dealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DealResponse{}, ErrNotFound
	}
	if err != nil {
		return DealResponse{}, fmt.Errorf("failed to load deal: %w", err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return DealResponse{}, fmt.Errorf("title is required")
		}
		deal.Title = *req.Title
	}
	if req.Industry != nil {
		deal.Industry = *req.Industry
	}
	if req.Volume != nil {
		parsed, parseErr := decimal.NewFromString(*req.Volume)
		if parseErr != nil {
			return DealResponse{}, fmt.Errorf("invalid volume: %w", parseErr)
		}
		deal.Volume = parsed
	}
	if req.IsPublic != nil {
		deal.IsPublic = *req.IsPublic
	}
	if req.Status != nil {
		if !model.ValidDealStatuses[*req.Status] {
			return DealResponse{}, fmt.Errorf("unknown status: %s", *req.Status)
		}
		deal.Status = *req.Status
	}
	if req.ExpiryDate != nil {
		deal.ExpiryDate = req.ExpiryDate
	}
	if req.CompanyID != nil {
		if deal.CompanyID, err = parseOptionalUUID(*req.CompanyID); err != nil {
			return DealResponse{}, fmt.Errorf("invalid company_id: %w", err)
		}
	}
	if req.AccountManagerID != nil {
		if deal.AccountManagerID, err = parseOptionalUUID(*req.AccountManagerID); err != nil {
			return DealResponse{}, fmt.Errorf("invalid account_manager_id: %w", err)
		}
	}
	if req.SalesManagerID != nil {
		if deal.SalesManagerID, err = parseOptionalUUID(*req.SalesManagerID); err != nil {
			return DealResponse{}, fmt.Errorf("invalid sales_manager_id: %w", err)
		}
	}

	// Clear loaded associations so Save does not re-write join rows.
	deal.References = nil

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return DealResponse{}, fmt.Errorf("failed to update deal: %w", err)
	}

	return s.GetDeal(ctx, orgID, deal.ID.String())
}

func (s *dealService) DeleteDeal(ctx context.Context, orgID uuid.UUID, id string) error {
	dealID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid deal id: %w", err)
	}
	if _, err := s.dealRepo.FindByID(ctx, orgID, dealID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load deal: %w", err)
	}
	if err := s.dealRepo.Delete(ctx, orgID, dealID); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	return nil
}

func (s *dealService) AddReference(ctx context.Context, orgID uuid.UUID, dealID, referenceID string) error {
	dID, rID, err := s.resolveDealAndReference(ctx, orgID, dealID, referenceID)
	if err != nil {
		return err
	}
	if err := s.dealRepo.AddReference(ctx, dID, rID); err != nil {
		return fmt.Errorf("failed to link reference: %w", err)
	}
	return nil
}

func (s *dealService) RemoveReference(ctx context.Context, orgID uuid.UUID, dealID, referenceID string) error {
	dID, rID, err := s.resolveDealAndReference(ctx, orgID, dealID, referenceID)
	if err != nil {
		return err
	}
	if err := s.dealRepo.RemoveReference(ctx, dID, rID); err != nil {
		return fmt.Errorf("failed to unlink reference: %w", err)
	}
	return nil
}

// SubmitReferenceRequest reports a reference need on a deal to the configured
// reference manager. Unlike the approval notification this send is the whole
// point of the operation, so a delivery failure is surfaced to the caller.
func (s *dealService) SubmitReferenceRequest(ctx context.Context, orgID uuid.UUID, profileID, dealID, message string) error {
	if s.managerEmail == "" {
		return fmt.Errorf("no reference manager email is configured")
	}

	deal, err := s.GetDeal(ctx, orgID, dealID)
	if err != nil {
		return err
	}

	requesterName := "A user"
	requesterEmail := ""
	if actor, parseErr := uuid.Parse(profileID); parseErr == nil {
		if profile, profErr := s.profileRepo.GetByID(ctx, actor); profErr == nil {
			if profile.FullName != "" {
				requesterName = profile.FullName
			}
			requesterEmail = profile.Email
		}
	}

	body := fmt.Sprintf(`
		<h2>Reference need reported</h2>
		<p><strong>From:</strong> %s (%s)</p>
		<p><strong>Deal:</strong> %s</p>
		<p><strong>Message:</strong></p>
		<pre style="white-space: pre-wrap; background: #f5f5f5; padding: 12px;">%s</pre>
		<p><a href="%s/dashboard/deals/%s">Open deal in Refstack</a></p>`,
		requesterName, requesterEmail, deal.Title, message, s.baseURL, deal.ID)

	if err := s.sender.Send(ctx, s.managerEmail, "Reference need: "+deal.Title, body); err != nil {
		return fmt.Errorf("failed to send reference request: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *dealService) resolveDealAndReference(ctx context.Context, orgID uuid.UUID, dealID, referenceID string) (uuid.UUID, uuid.UUID, error) {
	dID, err := uuid.Parse(dealID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid deal id: %w", err)
	}
	rID, err := uuid.Parse(referenceID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid reference id: %w", err)
	}

	if _, err := s.dealRepo.FindByID(ctx, orgID, dID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, uuid.Nil, ErrNotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to load deal: %w", err)
	}
	if _, err := s.referenceRepo.FindByID(ctx, orgID, rID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, uuid.Nil, ErrNotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to load reference: %w", err)
	}
	return dID, rID, nil
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func toDealResponse(deal *model.Deal) DealResponse {
	resp := DealResponse{
		ID:         deal.ID.String(),
		Title:      deal.Title,
		Industry:   deal.Industry,
		Volume:     deal.Volume.StringFixed(2),
		IsPublic:   deal.IsPublic,
		Status:     deal.Status,
		ExpiryDate: deal.ExpiryDate,
		CreatedAt:  deal.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  deal.UpdatedAt.Format(time.RFC3339),
	}
	if deal.CompanyID != nil {
		str := deal.CompanyID.String()
		resp.CompanyID = &str
	}
	if deal.Company != nil {
		resp.CompanyName = deal.Company.Name
	}
	if deal.AccountManagerID != nil {
		str := deal.AccountManagerID.String()
		resp.AccountManagerID = &str
	}
	if deal.AccountManager != nil {
		resp.AccountManagerName = deal.AccountManager.FullName
	}
	if deal.SalesManagerID != nil {
		str := deal.SalesManagerID.String()
		resp.SalesManagerID = &str
	}
	if deal.SalesManager != nil {
		resp.SalesManagerName = deal.SalesManager.FullName
	}
	for _, ref := range deal.References {
		summary := DealReferenceSummary{
			ID:    ref.ID.String(),
			Title: ref.Title,
		}
		if ref.Company != nil {
			summary.CompanyName = ref.Company.Name
		}
		resp.References = append(resp.References, summary)
	}
	return resp
}
