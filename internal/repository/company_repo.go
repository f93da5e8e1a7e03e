package repository

import (
	"context"

	"refstack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Company, error)
	FindByName(ctx context.Context, orgID uuid.UUID, name string) (*model.Company, error)
	List(ctx context.Context, orgID uuid.UUID, search string, page, limit int) ([]model.Company, int64, error)
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	CreateContact(ctx context.Context, contact *model.ContactPerson) error
	FindContactByID(ctx context.Context, id uuid.UUID) (*model.ContactPerson, error)
	UpdateContact(ctx context.Context, contact *model.ContactPerson) error
	DeleteContact(ctx context.Context, id uuid.UUID) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Create(company).Error
}

func (r *companyRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).Preload("Contacts").
		First(&company, "id = ? AND organization_id = ?", id, orgID).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).
		First(&company, "organization_id = ? AND name = ?", orgID, name).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, orgID uuid.UUID, search string, page, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Company{}).Where("organization_id = ?", orgID)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Contacts").Where("organization_id = ?", orgID)
	if search != "" {
		fetch = fetch.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := fetch.Order("name ASC").Offset(offset).Limit(limit).Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Save(company).Error
}

func (r *companyRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&model.Company{}).Error
}

func (r *companyRepository) CreateContact(ctx context.Context, contact *model.ContactPerson) error {
	return GetDB(ctx, r.db).Create(contact).Error
}

func (r *companyRepository) FindContactByID(ctx context.Context, id uuid.UUID) (*model.ContactPerson, error) {
	var contact model.ContactPerson
	if err := GetDB(ctx, r.db).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *companyRepository) UpdateContact(ctx context.Context, contact *model.ContactPerson) error {
	return GetDB(ctx, r.db).Save(contact).Error
}

func (r *companyRepository) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.ContactPerson{}, "id = ?", id).Error
}
