package repository

import (
	"context"
	"errors"

	"refstack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(ctx context.Context, fav *model.Favorite) error
	Delete(ctx context.Context, profileID, referenceID uuid.UUID) error
	Exists(ctx context.Context, profileID, referenceID uuid.UUID) (bool, error)
	ListReferenceIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, fav *model.Favorite) error {
	return GetDB(ctx, r.db).Create(fav).Error
}

func (r *favoriteRepository) Delete(ctx context.Context, profileID, referenceID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("profile_id = ? AND reference_id = ?", profileID, referenceID).
		Delete(&model.Favorite{}).Error
}

func (r *favoriteRepository) Exists(ctx context.Context, profileID, referenceID uuid.UUID) (bool, error) {
	var fav model.Favorite
	err := GetDB(ctx, r.db).
		First(&fav, "profile_id = ? AND reference_id = ?", profileID, referenceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *favoriteRepository) ListReferenceIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&model.Favorite{}).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Pluck("reference_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
