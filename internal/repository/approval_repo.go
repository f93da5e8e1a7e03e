package repository

import (
	"context"
	"errors"

	"refstack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.Approval) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Approval, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Approval, error)
	FindPendingByReference(ctx context.Context, referenceID uuid.UUID) (*model.Approval, error)
	List(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]model.Approval, int64, error)
	CountPending(ctx context.Context, orgID uuid.UUID) (int64, error)
	Update(ctx context.Context, approval *model.Approval) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Create(approval).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	var approval model.Approval
	if err := GetDB(ctx, r.db).First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	var approval model.Approval
	if err := GetDB(ctx, r.db).
		Preload("Reference").
		Preload("Reference.Company").
		Preload("Requester").
		Preload("Reviewer").
		First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

// FindPendingByReference returns nil, nil when no pending approval exists.
func (r *approvalRepository) FindPendingByReference(ctx context.Context, referenceID uuid.UUID) (*model.Approval, error) {
	var approval model.Approval
	err := GetDB(ctx, r.db).
		First(&approval, "reference_id = ? AND status = ?", referenceID, model.ApprovalPending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) List(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]model.Approval, int64, error) {
	var approvals []model.Approval
	var total int64

	db := GetDB(ctx, r.db)
	base := func(q *gorm.DB) *gorm.DB {
		q = q.Joins("INNER JOIN \"references\" ON \"references\".id = approvals.reference_id").
			Where("\"references\".organization_id = ?", orgID)
		if status != "" {
			q = q.Where("approvals.status = ?", status)
		}
		return q
	}

	if err := base(db.Model(&model.Approval{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := base(db.Model(&model.Approval{})).
		Preload("Reference").
		Preload("Reference.Company").
		Preload("Requester").
		Preload("Reviewer").
		Order("approvals.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&approvals).Error; err != nil {
		return nil, 0, err
	}

	return approvals, total, nil
}

// CountPending counts open approval requests, not references in the pending
// status. The two drift apart when a token decision lands while a request is
// still open.
func (r *approvalRepository) CountPending(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Approval{}).
		Joins("INNER JOIN \"references\" ON \"references\".id = approvals.reference_id").
		Where("\"references\".organization_id = ? AND approvals.status = ?", orgID, model.ApprovalPending).
		Count(&total).Error
	return total, err
}

func (r *approvalRepository) Update(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Save(approval).Error
}
