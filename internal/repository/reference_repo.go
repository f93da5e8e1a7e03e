package repository

import (
	"context"

	"refstack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceFilter narrows reference listings
type ReferenceFilter struct {
	Status string // empty = all
	Search string // matches title or company name
	Page   int
	Limit  int
}

type ReferenceRepository interface {
	Create(ctx context.Context, ref *model.Reference) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Reference, error)
	FindByIDWithRelations(ctx context.Context, orgID, id uuid.UUID) (*model.Reference, error)
	List(ctx context.Context, orgID uuid.UUID, filter ReferenceFilter) ([]model.Reference, int64, error)
	Update(ctx context.Context, ref *model.Reference) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	FindByApprovalToken(ctx context.Context, token string) (*model.Reference, error)
	SetPending(ctx context.Context, id uuid.UUID, token string) error
	ConsumeToken(ctx context.Context, id uuid.UUID, token, newStatus string) (int64, error)
	SetStatusClearToken(ctx context.Context, id uuid.UUID, status string) error
	CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int64, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) Create(ctx context.Context, ref *model.Reference) error {
	return GetDB(ctx, r.db).Create(ref).Error
}

func (r *referenceRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Reference, error) {
	var ref model.Reference
	if err := GetDB(ctx, r.db).
		First(&ref, "id = ? AND organization_id = ?", id, orgID).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *referenceRepository) FindByIDWithRelations(ctx context.Context, orgID, id uuid.UUID) (*model.Reference, error) {
	var ref model.Reference
	if err := GetDB(ctx, r.db).
		Preload("Company").
		Preload("ContactPerson").
		First(&ref, "id = ? AND organization_id = ?", id, orgID).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *referenceRepository) List(ctx context.Context, orgID uuid.UUID, filter ReferenceFilter) ([]model.Reference, int64, error) {
	var refs []model.Reference
	var total int64

	db := GetDB(ctx, r.db)
	// REFERENCES is a reserved word in Postgres; the table qualifier must be quoted.
	base := func(q *gorm.DB) *gorm.DB {
		q = q.Where(`"references".organization_id = ?`, orgID)
		if filter.Status != "" {
			q = q.Where(`"references".status = ?`, filter.Status)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			q = q.Joins(`LEFT JOIN companies ON companies.id = "references".company_id`).
				Where(`"references".title ILIKE ? OR companies.name ILIKE ?`, pattern, pattern)
		}
		return q
	}

	if err := base(db.Model(&model.Reference{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := base(db.Preload("Company").Preload("ContactPerson")).
		Order(`"references".created_at DESC`).
		Offset(offset).Limit(filter.Limit).
		Find(&refs).Error; err != nil {
		return nil, 0, err
	}

	return refs, total, nil
}

func (r *referenceRepository) Update(ctx context.Context, ref *model.Reference) error {
	return GetDB(ctx, r.db).Save(ref).Error
}

func (r *referenceRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&model.Reference{}).Error
}

// FindByApprovalToken resolves a pending reference from its bearer token.
// Used by the public approval page to render the decision form.
func (r *referenceRepository) FindByApprovalToken(ctx context.Context, token string) (*model.Reference, error) {
	var ref model.Reference
	if err := GetDB(ctx, r.db).
		Preload("Company").
		First(&ref, "approval_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

// SetPending moves the reference into the pending status and stores a fresh
// approval token, overwriting any prior one.
func (r *referenceRepository) SetPending(ctx context.Context, id uuid.UUID, token string) error {
	return GetDB(ctx, r.db).Model(&model.Reference{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         model.ReferenceStatusPending,
			"approval_token": token,
		}).Error
}

// ConsumeToken applies a terminal status and clears the token in a single
// conditional update. A zero row count means the token is wrong or was already
// consumed; the caller cannot tell the two apart, and neither can an attacker.
func (r *referenceRepository) ConsumeToken(ctx context.Context, id uuid.UUID, token, newStatus string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Reference{}).
		Where("id = ? AND approval_token = ?", id, token).
		Updates(map[string]interface{}{
			"status":         newStatus,
			"approval_token": nil,
		})
	return res.RowsAffected, res.Error
}

// SetStatusClearToken is the internal-review counterpart of ConsumeToken:
// the reviewer decision replaces the status and invalidates the outstanding token.
func (r *referenceRepository) SetStatusClearToken(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Reference{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"approval_token": nil,
		}).Error
}

func (r *referenceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := GetDB(ctx, r.db).Model(&model.Reference{}).
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
