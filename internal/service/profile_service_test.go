package service

import (
	"context"
	"testing"
	"time"

	"refstack/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func hashedPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestLogin_WrongPassword(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewProfileService(profileRepo, new(MockOrganizationRepository), stubTxManager{})

	profile := &model.Profile{
		ID:       uuid.New(),
		Email:    "sam@refs.example.com",
		Password: hashedPassword(t, "correct horse"),
		Role:     model.RoleSales,
	}
	profileRepo.On("GetByEmail", mock.Anything, profile.Email).Return(profile, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: profile.Email, Password: "wrong"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLogin_IssuesTokenPair(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewProfileService(profileRepo, new(MockOrganizationRepository), stubTxManager{})

	orgID := uuid.New()
	profile := &model.Profile{
		ID:             uuid.New(),
		OrganizationID: &orgID,
		Email:          "sam@refs.example.com",
		Password:       hashedPassword(t, "correct horse"),
		Role:           model.RoleSales,
	}
	profileRepo.On("GetByEmail", mock.Anything, profile.Email).Return(profile, nil)
	profileRepo.On("CreateRefreshToken", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.ProfileID == profile.ID && rt.Token != ""
	})).Return(nil)

	tokens, err := svc.Login(context.Background(), LoginRequest{Email: profile.Email, Password: "correct horse"})

	assert.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	profileRepo.AssertExpectations(t)
}

func TestRefresh_ExpiredTokenRemoved(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewProfileService(profileRepo, new(MockOrganizationRepository), stubTxManager{})

	stale := &model.RefreshToken{
		ProfileID: uuid.New(),
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	profileRepo.On("GetRefreshToken", mock.Anything, "stale").Return(stale, nil)
	profileRepo.On("DeleteRefreshToken", mock.Anything, "stale").Return(nil)

	_, err := svc.Refresh(context.Background(), "stale")

	assert.Error(t, err)
	profileRepo.AssertCalled(t, "DeleteRefreshToken", mock.Anything, "stale")
}

func TestRefresh_RotatesToken(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewProfileService(profileRepo, new(MockOrganizationRepository), stubTxManager{})

	profile := &model.Profile{ID: uuid.New(), Role: model.RoleSales}
	stored := &model.RefreshToken{
		ProfileID: profile.ID,
		Token:     "old",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	profileRepo.On("GetRefreshToken", mock.Anything, "old").Return(stored, nil)
	profileRepo.On("GetByID", mock.Anything, profile.ID).Return(profile, nil)
	profileRepo.On("DeleteRefreshToken", mock.Anything, "old").Return(nil)
	profileRepo.On("CreateRefreshToken", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.Token != "old"
	})).Return(nil)

	tokens, err := svc.Refresh(context.Background(), "old")

	assert.NoError(t, err)
	assert.NotEqual(t, "old", tokens.RefreshToken)
}

func TestCompleteOnboarding_InviteJoinsOrganization(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	orgRepo := new(MockOrganizationRepository)
	svc := NewProfileService(profileRepo, orgRepo, stubTxManager{})

	profile := &model.Profile{ID: uuid.New(), Role: model.RoleSales}
	invite := &model.OrganizationInvite{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Token:          "welcome",
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}

	profileRepo.On("GetByID", mock.Anything, profile.ID).Return(profile, nil)
	orgRepo.On("FindInviteByToken", mock.Anything, "welcome").Return(invite, nil)
	orgRepo.On("DeleteInvite", mock.Anything, invite.ID).Return(nil)
	profileRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.OrganizationID != nil && *p.OrganizationID == invite.OrganizationID
	})).Return(nil)

	resp, err := svc.CompleteOnboarding(context.Background(), profile.ID.String(), OnboardingRequest{
		FullName:    "Sam Seller",
		InviteToken: "welcome",
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp.OrganizationID)
	assert.Equal(t, invite.OrganizationID.String(), *resp.OrganizationID)
	orgRepo.AssertCalled(t, "DeleteInvite", mock.Anything, invite.ID)
}

func TestCompleteOnboarding_ExpiredInvite(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	orgRepo := new(MockOrganizationRepository)
	svc := NewProfileService(profileRepo, orgRepo, stubTxManager{})

	profile := &model.Profile{ID: uuid.New(), Role: model.RoleSales}
	invite := &model.OrganizationInvite{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Token:          "stale",
		ExpiresAt:      time.Now().Add(-time.Hour),
	}

	profileRepo.On("GetByID", mock.Anything, profile.ID).Return(profile, nil)
	orgRepo.On("FindInviteByToken", mock.Anything, "stale").Return(invite, nil)

	_, err := svc.CompleteOnboarding(context.Background(), profile.ID.String(), OnboardingRequest{InviteToken: "stale"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	profileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCompleteOnboarding_CreatesOrganizationWithoutInvite(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	orgRepo := new(MockOrganizationRepository)
	svc := NewProfileService(profileRepo, orgRepo, stubTxManager{})

	profile := &model.Profile{ID: uuid.New(), Role: model.RoleSales}

	profileRepo.On("GetByID", mock.Anything, profile.ID).Return(profile, nil)
	orgRepo.On("Create", mock.Anything, mock.MatchedBy(func(org *model.Organization) bool {
		return org.Name == "Contoso"
	})).Return(nil)
	profileRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.OrganizationID != nil && p.Role == model.RoleAdmin
	})).Return(nil)

	_, err := svc.CompleteOnboarding(context.Background(), profile.ID.String(), OnboardingRequest{
		Role:             model.RoleAdmin,
		OrganizationName: "Contoso",
	})

	assert.NoError(t, err)
	orgRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewProfileService(profileRepo, new(MockOrganizationRepository), stubTxManager{})

	existing := &model.Profile{ID: uuid.New(), Email: "sam@refs.example.com"}
	profileRepo.On("GetByEmail", mock.Anything, existing.Email).Return(existing, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: existing.Email, Password: "long enough pw"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_HashesPassword(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	svc := NewProfileService(profileRepo, new(MockOrganizationRepository), stubTxManager{})

	profileRepo.On("GetByEmail", mock.Anything, "new@refs.example.com").Return(nil, gorm.ErrRecordNotFound)
	profileRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.Password != "plaintext pw" && bcrypt.CompareHashAndPassword([]byte(p.Password), []byte("plaintext pw")) == nil
	})).Return(nil)

	resp, err := svc.Register(context.Background(), RegisterRequest{Email: "new@refs.example.com", Password: "plaintext pw"})

	assert.NoError(t, err)
	assert.Equal(t, model.RoleSales, resp.Role)
}
