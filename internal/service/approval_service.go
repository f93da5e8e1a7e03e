package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type ApprovalFilter struct {
	Status string // pending, approved, rejected or empty for all
	Page   int
	Limit  int
}

type ApprovalResponse struct {
	ID             string  `json:"id"`
	ReferenceID    string  `json:"reference_id"`
	ReferenceTitle string  `json:"reference_title"`
	CompanyName    string  `json:"company_name"`
	Status         string  `json:"status"`
	RequestedBy    *string `json:"requested_by"`
	RequesterName  string  `json:"requester_name"`
	ReviewedBy     *string `json:"reviewed_by"`
	ReviewerName   string  `json:"reviewer_name"`
	ReviewedAt     *string `json:"reviewed_at"`
	CreatedAt      string  `json:"created_at"`
}

// PendingReferenceResponse is what the public approval page gets to see:
// just enough to render the decision form, nothing org-internal.
type PendingReferenceResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	CompanyName string `json:"company_name"`
}

// statusEvent is broadcast to connected dashboards on every transition
type statusEvent struct {
	Event       string `json:"event"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}

// --- Interface ---

type ApprovalService interface {
	SubmitForApproval(ctx context.Context, orgID uuid.UUID, referenceID, requesterID string) error
	GetPendingByToken(ctx context.Context, token string) (PendingReferenceResponse, error)
	UpdateStatusViaToken(ctx context.Context, referenceID, token, newStatus string) error
	ReviewRequest(ctx context.Context, orgID uuid.UUID, approvalID, decision, reviewerID string) (ApprovalResponse, error)
	ListApprovals(ctx context.Context, orgID uuid.UUID, filter ApprovalFilter) ([]ApprovalResponse, int64, error)
}

type approvalService struct {
	referenceRepo repository.ReferenceRepository
	approvalRepo  repository.ApprovalRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	sender        Sender
	baseURL       string
	broadcast     chan<- []byte // optional websocket hub channel
}

// Sender mirrors mailer.Sender so the service stays mockable without
// importing the mailer package.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

func NewApprovalService(
	referenceRepo repository.ReferenceRepository,
	approvalRepo repository.ApprovalRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	sender Sender,
	baseURL string,
	broadcast chan<- []byte,
) ApprovalService {
	return &approvalService{
		referenceRepo: referenceRepo,
		approvalRepo:  approvalRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		sender:        sender,
		baseURL:       strings.TrimRight(baseURL, "/"),
		broadcast:     broadcast,
	}
}

// --- Implementation ---

// SubmitForApproval moves a reference into pending, issues a fresh single-use
// token (invalidating any earlier one), records an approval request for the
// caller unless one is already open, and mails the linked contact. Email
// delivery is best effort and never fails the submission.
func (s *approvalService) SubmitForApproval(ctx context.Context, orgID uuid.UUID, referenceID, requesterID string) error {
	refID, err := uuid.Parse(referenceID)
	if err != nil {
		return fmt.Errorf("invalid reference id: %w", err)
	}

	ref, err := s.referenceRepo.FindByIDWithRelations(ctx, orgID, refID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load reference: %w", err)
	}

	// Fresh 128-bit token per submission. Collisions are treated as
	// negligible; no uniqueness check against existing tokens.
	token := uuid.NewString()
	if err := s.referenceRepo.SetPending(ctx, refID, token); err != nil {
		return fmt.Errorf("failed to update reference status: %w", err)
	}

	var requesterUUID *uuid.UUID
	if parsed, parseErr := uuid.Parse(requesterID); parseErr == nil {
		requesterUUID = &parsed
	}

	existing, err := s.approvalRepo.FindPendingByReference(ctx, refID)
	if err != nil {
		return fmt.Errorf("failed to check pending approvals: %w", err)
	}
	if existing == nil {
		approval := model.Approval{
			ReferenceID: refID,
			RequestedBy: requesterUUID,
			Status:      model.ApprovalPending,
		}
		if err := s.approvalRepo.Create(ctx, &approval); err != nil {
			return fmt.Errorf("failed to create approval request: %w", err)
		}
	}

	s.audit(ctx, requesterUUID, model.ActionSubmitForApproval, ref.ID.String(), ref.Title, map[string]interface{}{
		"reference_id": ref.ID.String(),
	})

	if ref.ContactPerson != nil && strings.Contains(ref.ContactPerson.Email, "@") {
		if mailErr := s.sendApprovalMail(ctx, ref, token); mailErr != nil {
			log.Printf("approval mail for reference %s failed: %v", ref.ID, mailErr)
		}
	}

	s.publish(statusEvent{Event: "reference.pending", ReferenceID: ref.ID.String(), Status: model.ReferenceStatusPending})
	return nil
}

func (s *approvalService) GetPendingByToken(ctx context.Context, token string) (PendingReferenceResponse, error) {
	ref, err := s.referenceRepo.FindByApprovalToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PendingReferenceResponse{}, ErrInvalidToken
	}
	if err != nil {
		return PendingReferenceResponse{}, fmt.Errorf("failed to look up token: %w", err)
	}

	resp := PendingReferenceResponse{
		ID:      ref.ID.String(),
		Title:   ref.Title,
		Summary: ref.Summary,
	}
	if ref.Company != nil {
		resp.CompanyName = ref.Company.Name
	}
	return resp, nil
}

// UpdateStatusViaToken applies an external decision. The update is a single
// conditional write keyed on (id, token): zero affected rows means the token
// is wrong or already consumed, surfaced uniformly as ErrInvalidToken.
func (s *approvalService) UpdateStatusViaToken(ctx context.Context, referenceID, token, newStatus string) error {
	refID, err := uuid.Parse(referenceID)
	if err != nil {
		return fmt.Errorf("invalid reference id: %w", err)
	}

	if !model.TerminalReferenceStatuses[newStatus] {
		return fmt.Errorf("status must be one of: external, internal, anonymous, restricted")
	}

	rows, err := s.referenceRepo.ConsumeToken(ctx, refID, token, newStatus)
	if err != nil {
		return fmt.Errorf("failed to apply decision: %w", err)
	}
	if rows == 0 {
		return ErrInvalidToken
	}

	s.audit(ctx, nil, model.ActionTokenDecision, refID.String(), "", map[string]interface{}{
		"reference_id": refID.String(),
		"status":       newStatus,
	})

	s.publish(statusEvent{Event: "reference.decided", ReferenceID: refID.String(), Status: newStatus})
	return nil
}

// ReviewRequest resolves a pending approval from the internal review queue.
// The approval row and the reference status change as one transaction.
func (s *approvalService) ReviewRequest(ctx context.Context, orgID uuid.UUID, approvalID, decision, reviewerID string) (ApprovalResponse, error) {
	id, err := uuid.Parse(approvalID)
	if err != nil {
		return ApprovalResponse{}, fmt.Errorf("invalid approval id: %w", err)
	}

	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return ApprovalResponse{}, fmt.Errorf("invalid reviewer id: %w", err)
	}

	var refStatus, approvalStatus, action string
	switch decision {
	case model.DecisionApproveExternal:
		refStatus = model.ReferenceStatusExternal
		approvalStatus = model.ApprovalApproved
		action = model.ActionApproveRequest
	case model.DecisionApproveInternal:
		refStatus = model.ReferenceStatusInternal
		approvalStatus = model.ApprovalApproved
		action = model.ActionApproveRequest
	case model.DecisionReject:
		// Rejection sends the reference back to the drawing board.
		refStatus = model.ReferenceStatusDraft
		approvalStatus = model.ApprovalRejected
		action = model.ActionRejectRequest
	default:
		return ApprovalResponse{}, fmt.Errorf("decision must be one of: approve_external, approve_internal, reject")
	}

	var approval *model.Approval
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approval, err = s.approvalRepo.FindByID(txCtx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load approval request: %w", err)
		}

		// Reference must be visible to the reviewer's organization.
		if _, scopeErr := s.referenceRepo.FindByID(txCtx, orgID, approval.ReferenceID); scopeErr != nil {
			if errors.Is(scopeErr, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load reference: %w", scopeErr)
		}

		if approval.Status != model.ApprovalPending {
			return fmt.Errorf("approval request is already %s", approval.Status)
		}

		now := time.Now()
		approval.Status = approvalStatus
		approval.ReviewedBy = &reviewerUUID
		approval.ReviewedAt = &now
		if saveErr := s.approvalRepo.Update(txCtx, approval); saveErr != nil {
			return fmt.Errorf("failed to update approval request: %w", saveErr)
		}

		if refErr := s.referenceRepo.SetStatusClearToken(txCtx, approval.ReferenceID, refStatus); refErr != nil {
			return fmt.Errorf("failed to update reference status: %w", refErr)
		}

		s.audit(txCtx, &reviewerUUID, action, approval.ID.String(), decision, map[string]interface{}{
			"reference_id": approval.ReferenceID.String(),
			"decision":     decision,
		})
		return nil
	})
	if err != nil {
		return ApprovalResponse{}, err
	}

	s.publish(statusEvent{Event: "reference.reviewed", ReferenceID: approval.ReferenceID.String(), Status: refStatus})

	// Reload with relations
	reloaded, loadErr := s.approvalRepo.FindByIDWithRelations(ctx, approval.ID)
	if loadErr != nil {
		return ApprovalResponse{}, fmt.Errorf("failed to reload approval request: %w", loadErr)
	}
	return toApprovalResponse(*reloaded), nil
}

func (s *approvalService) ListApprovals(ctx context.Context, orgID uuid.UUID, filter ApprovalFilter) ([]ApprovalResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	approvals, total, err := s.approvalRepo.List(ctx, orgID, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch approval requests: %w", err)
	}

	result := make([]ApprovalResponse, 0, len(approvals))
	for _, a := range approvals {
		result = append(result, toApprovalResponse(a))
	}
	return result, total, nil
}

// --- Helpers ---

func (s *approvalService) sendApprovalMail(ctx context.Context, ref *model.Reference, token string) error {
	companyName := ""
	if ref.Company != nil {
		companyName = ref.Company.Name
	}
	link := fmt.Sprintf("%s/approval/%s", s.baseURL, token)
	body := fmt.Sprintf(`
		<h2>Reference release requested</h2>
		<p><strong>Title:</strong> %s</p>
		<p><strong>Company:</strong> %s</p>
		<p>Please choose how this reference may be used:</p>
		<p><a href="%s">Review and decide</a></p>
		<p>The link is valid for a single decision.</p>`,
		ref.Title, companyName, link)

	return s.sender.Send(ctx, ref.ContactPerson.Email, "Approval requested: "+ref.Title, body)
}

// audit writes a best-effort log entry; a failed write is logged, not surfaced.
func (s *approvalService) audit(ctx context.Context, profileID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		ProfileID:  profileID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("audit log write failed for %s: %v", action, err)
	}
}

func (s *approvalService) publish(ev statusEvent) {
	if s.broadcast == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case s.broadcast <- payload:
	default: // never block a request on a slow hub
	}
}

func toApprovalResponse(a model.Approval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:          a.ID.String(),
		ReferenceID: a.ReferenceID.String(),
		Status:      a.Status,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}

	if a.Reference != nil {
		resp.ReferenceTitle = a.Reference.Title
		if a.Reference.Company != nil {
			resp.CompanyName = a.Reference.Company.Name
		}
	}
	if a.RequestedBy != nil {
		str := a.RequestedBy.String()
		resp.RequestedBy = &str
	}
	if a.Requester != nil {
		resp.RequesterName = a.Requester.FullName
	}
	if a.ReviewedBy != nil {
		str := a.ReviewedBy.String()
		resp.ReviewedBy = &str
	}
	if a.Reviewer != nil {
		resp.ReviewerName = a.Reviewer.FullName
	}
	if a.ReviewedAt != nil {
		str := a.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &str
	}

	return resp
}
