package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
}

// OnboardingRequest finishes account setup: join an organization via invite
// token, or create a fresh one.
type OnboardingRequest struct {
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	OrganizationName string `json:"organization_name"`
	InviteToken      string `json:"invite_token"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning Profile without exposing sensitive data
type ProfileResponse struct {
	ID             string  `json:"id"`
	OrganizationID *string `json:"organization_id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ProfileService defines the interface for account and organization membership logic
type ProfileService interface {
	Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, id string) (*ProfileResponse, error)
	ListColleagues(ctx context.Context, orgID uuid.UUID) ([]ProfileResponse, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*ProfileResponse, error)
	CompleteOnboarding(ctx context.Context, id string, req OnboardingRequest) (*ProfileResponse, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	orgRepo     repository.OrganizationRepository
	txManager   repository.TransactionManager
}

// NewProfileService returns a new instance of ProfileService
func NewProfileService(
	profileRepo repository.ProfileRepository,
	orgRepo repository.OrganizationRepository,
	txManager repository.TransactionManager,
) ProfileService {
	return &profileService{profileRepo: profileRepo, orgRepo: orgRepo, txManager: txManager}
}

// Helper: check if role is allowed
func validateProfileRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleSales
}

func mapToProfileResponse(profile *model.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt.Format(time.RFC3339),
		UpdatedAt: profile.UpdatedAt.Format(time.RFC3339),
	}
	if profile.OrganizationID != nil {
		str := profile.OrganizationID.String()
		resp.OrganizationID = &str
	}
	return resp
}

func (s *profileService) Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error) {
	if _, err := s.profileRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	profile := &model.Profile{
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		Role:     model.RoleSales,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return mapToProfileResponse(profile), nil
}

func (s *profileService) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return s.issueTokenPair(ctx, profile)
}

func (s *profileService) Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	stored, err := s.profileRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.profileRepo.DeleteRefreshToken(ctx, refreshToken)
		return nil, errors.New("refresh token expired")
	}

	profile, err := s.profileRepo.GetByID(ctx, stored.ProfileID)
	if err != nil {
		return nil, errors.New("profile not found")
	}

	// Rotate: the old refresh token is spent
	if err := s.profileRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokenPair(ctx, profile)
}

func (s *profileService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.profileRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*ProfileResponse, error) {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid profile id")
	}
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, errors.New("profile not found")
	}
	return mapToProfileResponse(profile), nil
}

func (s *profileService) ListColleagues(ctx context.Context, orgID uuid.UUID) ([]ProfileResponse, error) {
	profiles, err := s.profileRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var responses []ProfileResponse
	for i := range profiles {
		responses = append(responses, *mapToProfileResponse(&profiles[i]))
	}
	return responses, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*ProfileResponse, error) {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid profile id")
	}
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, errors.New("profile not found")
	}

	if req.FullName != nil && *req.FullName != "" {
		profile.FullName = *req.FullName
	}
	if req.Role != nil {
		if !validateProfileRole(*req.Role) {
			return nil, errors.New("invalid role: must be admin or sales")
		}
		profile.Role = *req.Role
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return mapToProfileResponse(profile), nil
}

// CompleteOnboarding attaches the profile to an organization. A valid invite
// token wins over everything; otherwise an existing membership is kept, and
// as a last resort a fresh organization is created.
func (s *profileService) CompleteOnboarding(ctx context.Context, id string, req OnboardingRequest) (*ProfileResponse, error) {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid profile id")
	}

	role := req.Role
	if !validateProfileRole(role) {
		role = model.RoleSales
	}

	var profile *model.Profile
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err = s.profileRepo.GetByID(txCtx, profileID)
		if err != nil {
			return errors.New("profile not found")
		}

		var orgID *uuid.UUID
		if req.InviteToken != "" {
			invite, inviteErr := s.orgRepo.FindInviteByToken(txCtx, req.InviteToken)
			if inviteErr != nil && !errors.Is(inviteErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up invite: %w", inviteErr)
			}
			if invite != nil {
				if time.Now().After(invite.ExpiresAt) {
					return errors.New("invite has expired")
				}
				orgID = &invite.OrganizationID
				if delErr := s.orgRepo.DeleteInvite(txCtx, invite.ID); delErr != nil {
					return fmt.Errorf("failed to consume invite: %w", delErr)
				}
			}
		}

		if orgID == nil {
			orgID = profile.OrganizationID
		}

		if orgID == nil {
			name := req.OrganizationName
			if name == "" {
				name = "My organization"
			}
			org := model.Organization{Name: name}
			if createErr := s.orgRepo.Create(txCtx, &org); createErr != nil {
				return fmt.Errorf("failed to create organization: %w", createErr)
			}
			orgID = &org.ID
		}

		profile.OrganizationID = orgID
		profile.Role = role
		if req.FullName != "" {
			profile.FullName = req.FullName
		}

		return s.profileRepo.Update(txCtx, profile)
	})
	if err != nil {
		return nil, err
	}

	return mapToProfileResponse(profile), nil
}

// --- Token helpers ---

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // Development fallback only
	}
	return []byte(secret)
}

func (s *profileService) issueTokenPair(ctx context.Context, profile *model.Profile) (*TokenPairResponse, error) {
	claims := jwt.MapClaims{
		"sub":  profile.ID.String(),
		"role": profile.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	}
	if profile.OrganizationID != nil {
		claims["org"] = profile.OrganizationID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(jwtSecret())
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh := model.RefreshToken{
		ProfileID: profile.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.profileRepo.CreateRefreshToken(ctx, &refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPairResponse{AccessToken: accessToken, RefreshToken: refresh.Token}, nil
}
