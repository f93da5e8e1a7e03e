package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"refstack/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestCreateInvite_BuildsRegistrationLink(t *testing.T) {
	orgRepo := new(MockOrganizationRepository)
	auditRepo := new(MockAuditRepository)
	sender := new(MockSender)
	svc := NewInviteService(orgRepo, auditRepo, sender, "https://refs.example.com/")

	org := &model.Organization{ID: uuid.New(), Name: "Contoso"}
	inviter := uuid.New()

	orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
	orgRepo.On("CreateInvite", mock.Anything, mock.MatchedBy(func(inv *model.OrganizationInvite) bool {
		return inv.OrganizationID == org.ID &&
			inv.Email == "new@contoso.example" &&
			inv.Token != "" &&
			inv.ExpiresAt.After(time.Now().Add(6*24*time.Hour))
	})).Return(nil)
	auditRepo.On("Log", mock.Anything, mock.MatchedBy(func(entry *model.AuditLog) bool {
		return entry.Action == model.ActionCreateInvite
	})).Return(nil)
	sender.On("Send", mock.Anything, "new@contoso.example", mock.Anything, mock.Anything).Return(nil)

	invite, err := svc.CreateInvite(context.Background(), org.ID, inviter, CreateInviteRequest{Email: "new@contoso.example"})

	assert.NoError(t, err)
	assert.Equal(t, "new@contoso.example", invite.Email)
	assert.True(t, strings.HasPrefix(invite.Link, "https://refs.example.com/register?invite="))
	orgRepo.AssertExpectations(t)
}

func TestValidateInvite_ExpiredTokenRejected(t *testing.T) {
	orgRepo := new(MockOrganizationRepository)
	svc := NewInviteService(orgRepo, new(MockAuditRepository), new(MockSender), "https://refs.example.com")

	stale := &model.OrganizationInvite{
		OrganizationID: uuid.New(),
		Token:          "stale",
		ExpiresAt:      time.Now().Add(-time.Hour),
	}
	orgRepo.On("FindInviteByToken", mock.Anything, "stale").Return(stale, nil)

	_, err := svc.ValidateInvite(context.Background(), "stale")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateInvite_UnknownTokenRejected(t *testing.T) {
	orgRepo := new(MockOrganizationRepository)
	svc := NewInviteService(orgRepo, new(MockAuditRepository), new(MockSender), "https://refs.example.com")

	orgRepo.On("FindInviteByToken", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ValidateInvite(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateInvite_ReturnsOrganizationPreview(t *testing.T) {
	orgRepo := new(MockOrganizationRepository)
	svc := NewInviteService(orgRepo, new(MockAuditRepository), new(MockSender), "https://refs.example.com")

	org := &model.Organization{ID: uuid.New(), Name: "Contoso"}
	invite := &model.OrganizationInvite{
		OrganizationID: org.ID,
		Email:          "new@contoso.example",
		Token:          "fresh",
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
	orgRepo.On("FindInviteByToken", mock.Anything, "fresh").Return(invite, nil)
	orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)

	preview, err := svc.ValidateInvite(context.Background(), "fresh")

	assert.NoError(t, err)
	assert.Equal(t, "Contoso", preview.OrganizationName)
	assert.Equal(t, "new@contoso.example", preview.Email)
}
