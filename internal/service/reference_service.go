package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateReferenceRequest struct {
	CompanyID       string     `json:"company_id"`
	NewCompanyName  string     `json:"new_company_name"`
	Title           string     `json:"title" binding:"required"`
	Summary         string     `json:"summary"`
	Industry        string     `json:"industry"`
	Country         string     `json:"country"`
	Tags            []string   `json:"tags"`
	ContactPersonID string     `json:"contact_person_id"`
	FilePath        string     `json:"file_path"`
	ProjectStatus   string     `json:"project_status"`
	ProjectStart    *time.Time `json:"project_start"`
	ProjectEnd      *time.Time `json:"project_end"`
	Status          string     `json:"status"` // draft or pending; omitted defaults to draft
}

type UpdateReferenceRequest struct {
	CompanyName     *string    `json:"company_name"` // renames the owning company
	Title           *string    `json:"title"`
	Summary         *string    `json:"summary"`
	Industry        *string    `json:"industry"`
	Country         *string    `json:"country"`
	Tags            *[]string  `json:"tags"`
	ContactPersonID *string    `json:"contact_person_id"`
	FilePath        *string    `json:"file_path"`
	ProjectStatus   *string    `json:"project_status"`
	ProjectStart    *time.Time `json:"project_start"`
	ProjectEnd      *time.Time `json:"project_end"`
	Status          *string    `json:"status"` // draft or pending; pending re-runs the submit flow
}

type ReferenceResponse struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	CompanyName     string     `json:"company_name"`
	ContactPersonID *string    `json:"contact_person_id"`
	ContactName     string     `json:"contact_name,omitempty"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	Industry        string     `json:"industry"`
	Country         string     `json:"country"`
	Tags            []string   `json:"tags"`
	FilePath        string     `json:"file_path"`
	ProjectStatus   string     `json:"project_status"`
	ProjectStart    *time.Time `json:"project_start"`
	ProjectEnd      *time.Time `json:"project_end"`
	Status          string     `json:"status"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// --- Interface ---

type ReferenceService interface {
	CreateReference(ctx context.Context, orgID uuid.UUID, profileID string, req CreateReferenceRequest) (ReferenceResponse, error)
	GetReference(ctx context.Context, orgID uuid.UUID, id string) (ReferenceResponse, error)
	ListReferences(ctx context.Context, orgID uuid.UUID, filter repository.ReferenceFilter) ([]ReferenceResponse, int64, error)
	UpdateReference(ctx context.Context, orgID uuid.UUID, profileID, id string, req UpdateReferenceRequest) (ReferenceResponse, error)
	DeleteReference(ctx context.Context, orgID uuid.UUID, profileID, id string) error
}

type referenceService struct {
	referenceRepo repository.ReferenceRepository
	companyRepo   repository.CompanyRepository
	auditRepo     repository.AuditRepository
	approvals     ApprovalService
}

func NewReferenceService(
	referenceRepo repository.ReferenceRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	approvals ApprovalService,
) ReferenceService {
	return &referenceService{
		referenceRepo: referenceRepo,
		companyRepo:   companyRepo,
		auditRepo:     auditRepo,
		approvals:     approvals,
	}
}

// --- Validation helpers ---

// validateEditableStatus guards statuses writable through create/edit.
// Terminal visibility levels are only reachable through an approval decision.
func validateEditableStatus(status string) error {
	if status != model.ReferenceStatusDraft && status != model.ReferenceStatusPending {
		return fmt.Errorf("status must be draft or pending; visibility levels are set through the approval flow")
	}
	return nil
}

func validateProject(status string, end *time.Time) error {
	if status != "" && status != model.ProjectStatusPlanned &&
		status != model.ProjectStatusOngoing && status != model.ProjectStatusCompleted {
		return fmt.Errorf("project_status must be one of: planned, ongoing, completed")
	}
	if status == model.ProjectStatusCompleted && end == nil {
		return fmt.Errorf("a completed project requires an end date")
	}
	return nil
}

// --- Implementation ---

// CreateReference stores a new case study, creating the owning company on the
// fly when no existing one is picked. Company insert and reference insert are
// two independent writes; if the second fails the fresh company is removed
// again on a best-effort basis.
func (s *referenceService) CreateReference(ctx context.Context, orgID uuid.UUID, profileID string, req CreateReferenceRequest) (ReferenceResponse, error) {
	if req.Title == "" {
		return ReferenceResponse{}, fmt.Errorf("title is required")
	}

	status := req.Status
	if status == "" {
		status = model.ReferenceStatusDraft
	}
	if err := validateEditableStatus(status); err != nil {
		return ReferenceResponse{}, err
	}
	if err := validateProject(req.ProjectStatus, req.ProjectEnd); err != nil {
		return ReferenceResponse{}, err
	}

	var companyID uuid.UUID
	var companyCreated bool

	if req.CompanyID != "" {
		parsed, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return ReferenceResponse{}, fmt.Errorf("invalid company_id: %w", err)
		}
		company, err := s.companyRepo.FindByID(ctx, orgID, parsed)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReferenceResponse{}, ErrNotFound
		}
		if err != nil {
			return ReferenceResponse{}, fmt.Errorf("failed to load company: %w", err)
		}
		companyID = company.ID
	} else {
		if req.NewCompanyName == "" {
			return ReferenceResponse{}, fmt.Errorf("pick a company or provide a new company name")
		}
		company := model.Company{
			OrganizationID: orgID,
			Name:           req.NewCompanyName,
			Industry:       req.Industry,
			Country:        req.Country,
		}
		if err := s.companyRepo.Create(ctx, &company); err != nil {
			return ReferenceResponse{}, fmt.Errorf("failed to create company: %w", err)
		}
		companyID = company.ID
		companyCreated = true
	}

	var contactID *uuid.UUID
	if req.ContactPersonID != "" {
		parsed, err := uuid.Parse(req.ContactPersonID)
		if err != nil {
			return ReferenceResponse{}, fmt.Errorf("invalid contact_person_id: %w", err)
		}
		contactID = &parsed
	}

	ref := model.Reference{
		OrganizationID:  orgID,
		CompanyID:       companyID,
		ContactPersonID: contactID,
		Title:           req.Title,
		Summary:         req.Summary,
		Industry:        req.Industry,
		Country:         req.Country,
		Tags:            marshalTags(req.Tags),
		FilePath:        req.FilePath,
		ProjectStatus:   req.ProjectStatus,
		ProjectStart:    req.ProjectStart,
		ProjectEnd:      req.ProjectEnd,
		Status:          model.ReferenceStatusDraft,
	}

	if err := s.referenceRepo.Create(ctx, &ref); err != nil {
		if companyCreated {
			// Compensate the orphaned company. Failure here is silent; the
			// original insert error is what the caller needs to see.
			if delErr := s.companyRepo.Delete(ctx, orgID, companyID); delErr != nil {
				log.Printf("compensation delete of company %s failed: %v", companyID, delErr)
			}
		}
		return ReferenceResponse{}, fmt.Errorf("failed to create reference: %w", err)
	}

	s.auditAction(ctx, profileID, model.ActionCreateReference, ref.ID.String(), ref.Title)

	if status == model.ReferenceStatusPending {
		if err := s.approvals.SubmitForApproval(ctx, orgID, ref.ID.String(), profileID); err != nil {
			return ReferenceResponse{}, err
		}
	}

	return s.GetReference(ctx, orgID, ref.ID.String())
}

func (s *referenceService) GetReference(ctx context.Context, orgID uuid.UUID, id string) (ReferenceResponse, error) {
	refID, err := uuid.Parse(id)
	if err != nil {
		return ReferenceResponse{}, fmt.Errorf("invalid reference id: %w", err)
	}

	ref, err := s.referenceRepo.FindByIDWithRelations(ctx, orgID, refID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReferenceResponse{}, ErrNotFound
	}
	if err != nil {
		return ReferenceResponse{}, fmt.Errorf("failed to load reference: %w", err)
	}

	return toReferenceResponse(ref), nil
}

func (s *referenceService) ListReferences(ctx context.Context, orgID uuid.UUID, filter repository.ReferenceFilter) ([]ReferenceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !model.ValidReferenceStatuses[filter.Status] {
		return nil, 0, fmt.Errorf("unknown status filter: %s", filter.Status)
	}

	refs, total, err := s.referenceRepo.List(ctx, orgID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch references: %w", err)
	}

	result := make([]ReferenceResponse, 0, len(refs))
	for i := range refs {
		result = append(result, toReferenceResponse(&refs[i]))
	}
	return result, total, nil
}

// UpdateReference loads the row, merges the supplied fields and writes the
// full replacement back. Setting status to pending re-runs the submit flow,
// which issues a fresh token and invalidates the previous one.
func (s *referenceService) UpdateReference(ctx context.Context, orgID uuid.UUID, profileID, id string, req UpdateReferenceRequest) (ReferenceResponse, error) {
	refID, err := uuid.Parse(id)
	if err != nil {
		return ReferenceResponse{}, fmt.Errorf("invalid reference id: %w", err)
	}

	ref, err := s.referenceRepo.FindByID(ctx, orgID, refID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReferenceResponse{}, ErrNotFound
	}
	if err != nil {
		return ReferenceResponse{}, fmt.Errorf("failed to load reference: %w", err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return ReferenceResponse{}, fmt.Errorf("title is required")
		}
		ref.Title = *req.Title
	}
	if req.Summary != nil {
		ref.Summary = *req.Summary
	}
	if req.Industry != nil {
		ref.Industry = *req.Industry
	}
	if req.Country != nil {
		ref.Country = *req.Country
	}
	if req.Tags != nil {
		ref.Tags = marshalTags(*req.Tags)
	}
	if req.FilePath != nil {
		ref.FilePath = *req.FilePath
	}
	if req.ProjectStatus != nil {
		ref.ProjectStatus = *req.ProjectStatus
	}
	if req.ProjectStart != nil {
		ref.ProjectStart = req.ProjectStart
	}
	if req.ProjectEnd != nil {
		ref.ProjectEnd = req.ProjectEnd
	}
	if req.ContactPersonID != nil {
		if *req.ContactPersonID == "" {
			ref.ContactPersonID = nil
		} else {
			parsed, parseErr := uuid.Parse(*req.ContactPersonID)
			if parseErr != nil {
				return ReferenceResponse{}, fmt.Errorf("invalid contact_person_id: %w", parseErr)
			}
			ref.ContactPersonID = &parsed
		}
	}
	if err := validateProject(ref.ProjectStatus, ref.ProjectEnd); err != nil {
		return ReferenceResponse{}, err
	}

	submitRequested := false
	if req.Status != nil && *req.Status != ref.Status {
		if err := validateEditableStatus(*req.Status); err != nil {
			return ReferenceResponse{}, err
		}
		// The only way out of a terminal visibility level is a fresh approval round.
		if model.TerminalReferenceStatuses[ref.Status] && *req.Status != model.ReferenceStatusPending {
			return ReferenceResponse{}, fmt.Errorf("a published reference can only be re-submitted for approval")
		}
		if *req.Status == model.ReferenceStatusPending {
			submitRequested = true
		} else {
			ref.Status = model.ReferenceStatusDraft
			ref.ApprovalToken = nil
		}
	}

	if req.CompanyName != nil && *req.CompanyName != "" {
		company, companyErr := s.companyRepo.FindByID(ctx, orgID, ref.CompanyID)
		if companyErr != nil {
			return ReferenceResponse{}, fmt.Errorf("failed to load company: %w", companyErr)
		}
		company.Name = *req.CompanyName
		if saveErr := s.companyRepo.Update(ctx, company); saveErr != nil {
			return ReferenceResponse{}, fmt.Errorf("failed to update company: %w", saveErr)
		}
	}

	if err := s.referenceRepo.Update(ctx, ref); err != nil {
		return ReferenceResponse{}, fmt.Errorf("failed to update reference: %w", err)
	}

	s.auditAction(ctx, profileID, model.ActionUpdateReference, ref.ID.String(), ref.Title)

	if submitRequested {
		if err := s.approvals.SubmitForApproval(ctx, orgID, ref.ID.String(), profileID); err != nil {
			return ReferenceResponse{}, err
		}
	}

	return s.GetReference(ctx, orgID, ref.ID.String())
}

func (s *referenceService) DeleteReference(ctx context.Context, orgID uuid.UUID, profileID, id string) error {
	refID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid reference id: %w", err)
	}

	ref, err := s.referenceRepo.FindByID(ctx, orgID, refID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load reference: %w", err)
	}

	if err := s.referenceRepo.Delete(ctx, orgID, refID); err != nil {
		return fmt.Errorf("failed to delete reference: %w", err)
	}

	s.auditAction(ctx, profileID, model.ActionDeleteReference, ref.ID.String(), ref.Title)
	return nil
}

// --- Helpers ---

func (s *referenceService) auditAction(ctx context.Context, profileID, action, entityID, entityName string) {
	var actor *uuid.UUID
	if parsed, err := uuid.Parse(profileID); err == nil {
		actor = &parsed
	}
	entry := model.AuditLog{
		ProfileID:  actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    "{}",
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("audit log write failed for %s: %v", action, err)
	}
}

func marshalTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	payload, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(payload)
}

func unmarshalTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}

func toReferenceResponse(ref *model.Reference) ReferenceResponse {
	resp := ReferenceResponse{
		ID:            ref.ID.String(),
		CompanyID:     ref.CompanyID.String(),
		Title:         ref.Title,
		Summary:       ref.Summary,
		Industry:      ref.Industry,
		Country:       ref.Country,
		Tags:          unmarshalTags(ref.Tags),
		FilePath:      ref.FilePath,
		ProjectStatus: ref.ProjectStatus,
		ProjectStart:  ref.ProjectStart,
		ProjectEnd:    ref.ProjectEnd,
		Status:        ref.Status,
		CreatedAt:     ref.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     ref.UpdatedAt.Format(time.RFC3339),
	}
	if ref.Company != nil {
		resp.CompanyName = ref.Company.Name
	}
	if ref.ContactPersonID != nil {
		str := ref.ContactPersonID.String()
		resp.ContactPersonID = &str
	}
	if ref.ContactPerson != nil {
		resp.ContactName = ref.ContactPerson.Name
	}
	return resp
}
