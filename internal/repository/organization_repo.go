package repository

import (
	"context"

	"refstack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	Update(ctx context.Context, org *model.Organization) error

	CreateInvite(ctx context.Context, invite *model.OrganizationInvite) error
	FindInviteByToken(ctx context.Context, token string) (*model.OrganizationInvite, error)
	DeleteInvite(ctx context.Context, id uuid.UUID) error
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) error {
	return GetDB(ctx, r.db).Create(org).Error
}

func (r *organizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := GetDB(ctx, r.db).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *model.Organization) error {
	return GetDB(ctx, r.db).Save(org).Error
}

func (r *organizationRepository) CreateInvite(ctx context.Context, invite *model.OrganizationInvite) error {
	return GetDB(ctx, r.db).Create(invite).Error
}

func (r *organizationRepository) FindInviteByToken(ctx context.Context, token string) (*model.OrganizationInvite, error) {
	var invite model.OrganizationInvite
	if err := GetDB(ctx, r.db).First(&invite, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *organizationRepository) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.OrganizationInvite{}, "id = ?", id).Error
}
