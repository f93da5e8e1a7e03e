package service

import (
	"context"
	"errors"
	"fmt"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteToggleResponse struct {
	ReferenceID string `json:"reference_id"`
	Favorited   bool   `json:"favorited"`
}

// FavoriteService defines the interface for per-user reference bookmarks
type FavoriteService interface {
	ToggleFavorite(ctx context.Context, profileID uuid.UUID, orgID uuid.UUID, referenceID string) (*FavoriteToggleResponse, error)
	ListFavorites(ctx context.Context, profileID uuid.UUID, orgID uuid.UUID) ([]ReferenceResponse, error)
}

type favoriteService struct {
	favoriteRepo  repository.FavoriteRepository
	referenceRepo repository.ReferenceRepository
}

// NewFavoriteService returns a new instance of FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, referenceRepo repository.ReferenceRepository) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, referenceRepo: referenceRepo}
}

// ToggleFavorite flips the bookmark state and reports the new one.
func (s *favoriteService) ToggleFavorite(ctx context.Context, profileID uuid.UUID, orgID uuid.UUID, referenceID string) (*FavoriteToggleResponse, error) {
	refID, err := uuid.Parse(referenceID)
	if err != nil {
		return nil, errors.New("invalid reference id")
	}

	// Scope check before touching the favorites table
	if _, err := s.referenceRepo.FindByID(ctx, orgID, refID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load reference: %w", err)
	}

	exists, err := s.favoriteRepo.Exists(ctx, profileID, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}

	if exists {
		if err := s.favoriteRepo.Delete(ctx, profileID, refID); err != nil {
			return nil, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return &FavoriteToggleResponse{ReferenceID: refID.String(), Favorited: false}, nil
	}

	fav := &model.Favorite{ProfileID: profileID, ReferenceID: refID}
	if err := s.favoriteRepo.Create(ctx, fav); err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return &FavoriteToggleResponse{ReferenceID: refID.String(), Favorited: true}, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, profileID uuid.UUID, orgID uuid.UUID) ([]ReferenceResponse, error) {
	ids, err := s.favoriteRepo.ListReferenceIDs(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	var responses []ReferenceResponse
	for _, id := range ids {
		ref, err := s.referenceRepo.FindByIDWithRelations(ctx, orgID, id)
		if err != nil {
			// A favorite may point at a reference that was deleted or moved
			// out of the organization, skip it.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load reference: %w", err)
		}
		responses = append(responses, toReferenceResponse(ref))
	}
	return responses, nil
}
