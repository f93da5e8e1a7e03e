package repository

import (
	"context"
	"time"

	"refstack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Deal, error)
	List(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]model.Deal, int64, error)
	ListExpiring(ctx context.Context, orgID uuid.UUID, before time.Time) ([]model.Deal, error)
	Update(ctx context.Context, deal *model.Deal) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	AddReference(ctx context.Context, dealID, referenceID uuid.UUID) error
	RemoveReference(ctx context.Context, dealID, referenceID uuid.UUID) error
	CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int64, error)
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return GetDB(ctx, r.db).Create(deal).Error
}

func (r *dealRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Deal, error) {
	var deal model.Deal
	if err := GetDB(ctx, r.db).
		Preload("Company").
		Preload("AccountManager").
		Preload("SalesManager").
		Preload("References").
		Preload("References.Company").
		First(&deal, "id = ? AND organization_id = ?", id, orgID).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) List(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]model.Deal, int64, error) {
	var deals []model.Deal
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Deal{}).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.
		Preload("Company").
		Preload("AccountManager").
		Preload("SalesManager").
		Where("organization_id = ?", orgID)
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if err := fetch.
		Order("expiry_date ASC NULLS LAST").
		Offset(offset).Limit(limit).
		Find(&deals).Error; err != nil {
		return nil, 0, err
	}

	return deals, total, nil
}

// ListExpiring returns deals whose expiry date falls before the cutoff,
// already-expired deals included.
func (r *dealRepository) ListExpiring(ctx context.Context, orgID uuid.UUID, before time.Time) ([]model.Deal, error) {
	var deals []model.Deal
	if err := GetDB(ctx, r.db).
		Preload("Company").
		Where("organization_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", orgID, before).
		Order("expiry_date ASC").
		Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) Update(ctx context.Context, deal *model.Deal) error {
	return GetDB(ctx, r.db).Save(deal).Error
}

func (r *dealRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&model.Deal{}).Error
}

func (r *dealRepository) AddReference(ctx context.Context, dealID, referenceID uuid.UUID) error {
	return GetDB(ctx, r.db).Exec(
		`INSERT INTO deal_references (deal_id, reference_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		dealID, referenceID,
	).Error
}

func (r *dealRepository) RemoveReference(ctx context.Context, dealID, referenceID uuid.UUID) error {
	return GetDB(ctx, r.db).Exec(
		`DELETE FROM deal_references WHERE deal_id = ? AND reference_id = ?`,
		dealID, referenceID,
	).Error
}

func (r *dealRepository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := GetDB(ctx, r.db).Model(&model.Deal{}).
		Select("status, COUNT(*) AS count").
		Where("organization_id = ?", orgID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
