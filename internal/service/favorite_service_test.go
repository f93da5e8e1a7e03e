package service

import (
	"context"
	"testing"

	"refstack/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestToggleFavorite_AddsWhenMissing(t *testing.T) {
	favRepo := new(MockFavoriteRepository)
	refRepo := new(MockReferenceRepository)
	svc := NewFavoriteService(favRepo, refRepo)

	orgID := uuid.New()
	profileID := uuid.New()
	ref := &model.Reference{ID: uuid.New(), OrganizationID: orgID}

	refRepo.On("FindByID", mock.Anything, orgID, ref.ID).Return(ref, nil)
	favRepo.On("Exists", mock.Anything, profileID, ref.ID).Return(false, nil)
	favRepo.On("Create", mock.Anything, mock.MatchedBy(func(fav *model.Favorite) bool {
		return fav.ProfileID == profileID && fav.ReferenceID == ref.ID
	})).Return(nil)

	result, err := svc.ToggleFavorite(context.Background(), profileID, orgID, ref.ID.String())

	assert.NoError(t, err)
	assert.True(t, result.Favorited)
}

func TestToggleFavorite_RemovesWhenPresent(t *testing.T) {
	favRepo := new(MockFavoriteRepository)
	refRepo := new(MockReferenceRepository)
	svc := NewFavoriteService(favRepo, refRepo)

	orgID := uuid.New()
	profileID := uuid.New()
	ref := &model.Reference{ID: uuid.New(), OrganizationID: orgID}

	refRepo.On("FindByID", mock.Anything, orgID, ref.ID).Return(ref, nil)
	favRepo.On("Exists", mock.Anything, profileID, ref.ID).Return(true, nil)
	favRepo.On("Delete", mock.Anything, profileID, ref.ID).Return(nil)

	result, err := svc.ToggleFavorite(context.Background(), profileID, orgID, ref.ID.String())

	assert.NoError(t, err)
	assert.False(t, result.Favorited)
	favRepo.AssertCalled(t, "Delete", mock.Anything, profileID, ref.ID)
}

func TestToggleFavorite_ReferenceOutsideOrganization(t *testing.T) {
	favRepo := new(MockFavoriteRepository)
	refRepo := new(MockReferenceRepository)
	svc := NewFavoriteService(favRepo, refRepo)

	orgID := uuid.New()
	foreign := uuid.New()
	refRepo.On("FindByID", mock.Anything, orgID, foreign).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ToggleFavorite(context.Background(), uuid.New(), orgID, foreign.String())

	assert.ErrorIs(t, err, ErrNotFound)
	favRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListFavorites_SkipsVanishedReferences(t *testing.T) {
	favRepo := new(MockFavoriteRepository)
	refRepo := new(MockReferenceRepository)
	svc := NewFavoriteService(favRepo, refRepo)

	orgID := uuid.New()
	profileID := uuid.New()
	alive := &model.Reference{ID: uuid.New(), OrganizationID: orgID, Title: "Still here"}
	gone := uuid.New()

	favRepo.On("ListReferenceIDs", mock.Anything, profileID).Return([]uuid.UUID{alive.ID, gone}, nil)
	refRepo.On("FindByIDWithRelations", mock.Anything, orgID, alive.ID).Return(alive, nil)
	refRepo.On("FindByIDWithRelations", mock.Anything, orgID, gone).Return(nil, gorm.ErrRecordNotFound)

	refs, err := svc.ListFavorites(context.Background(), profileID, orgID)

	assert.NoError(t, err)
	assert.Len(t, refs, 1)
	assert.Equal(t, "Still here", refs[0].Title)
}
