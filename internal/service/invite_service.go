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

const inviteTTL = 7 * 24 * time.Hour

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type InviteResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Link      string `json:"link"`
	ExpiresAt string `json:"expires_at"`
}

type InvitePreviewResponse struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
}

// InviteService defines the interface for organization invite logic
type InviteService interface {
	CreateInvite(ctx context.Context, orgID, invitedBy uuid.UUID, req CreateInviteRequest) (*InviteResponse, error)
	ValidateInvite(ctx context.Context, token string) (*InvitePreviewResponse, error)
}

type inviteService struct {
	orgRepo   repository.OrganizationRepository
	auditRepo repository.AuditRepository
	sender    Sender
	baseURL   string
}

// NewInviteService returns a new instance of InviteService
func NewInviteService(
	orgRepo repository.OrganizationRepository,
	auditRepo repository.AuditRepository,
	sender Sender,
	baseURL string,
) InviteService {
	return &inviteService{
		orgRepo:   orgRepo,
		auditRepo: auditRepo,
		sender:    sender,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (s *inviteService) CreateInvite(ctx context.Context, orgID, invitedBy uuid.UUID, req CreateInviteRequest) (*InviteResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	invite := &model.OrganizationInvite{
		OrganizationID: org.ID,
		Email:          req.Email,
		Token:          uuid.NewString(),
		InvitedBy:      &invitedBy,
		ExpiresAt:      time.Now().Add(inviteTTL),
	}
	if err := s.orgRepo.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	link := s.baseURL + "/register?invite=" + invite.Token

	details, _ := json.Marshal(map[string]string{"email": req.Email})
	if err := s.auditRepo.Log(ctx, &model.AuditLog{
		ProfileID: &invitedBy,
		Action:    model.ActionCreateInvite,
		Details:   string(details),
	}); err != nil {
		log.Printf("failed to write audit log for invite %s: %v", invite.ID, err)
	}

	// Invite emails are best effort, the link is returned either way so the
	// admin can share it manually.
	subject := fmt.Sprintf("You have been invited to join %s", org.Name)
	body := fmt.Sprintf(
		"<p>You have been invited to join <strong>%s</strong>.</p>"+
			"<p><a href=\"%s\">Accept the invitation</a></p>"+
			"<p>The link expires on %s.</p>",
		org.Name, link, invite.ExpiresAt.Format("2006-01-02"),
	)
	if err := s.sender.Send(ctx, req.Email, subject, body); err != nil {
		log.Printf("failed to send invite email to %s: %v", req.Email, err)
	}

	return &InviteResponse{
		ID:        invite.ID.String(),
		Email:     invite.Email,
		Link:      link,
		ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (s *inviteService) ValidateInvite(ctx context.Context, token string) (*InvitePreviewResponse, error) {
	invite, err := s.orgRepo.FindInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	org, err := s.orgRepo.FindByID(ctx, invite.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	return &InvitePreviewResponse{OrganizationName: org.Name, Email: invite.Email}, nil
}
