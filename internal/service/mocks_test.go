package service

import (
	"context"
	"time"

	"refstack/internal/model"
	"refstack/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- Reference repository mock ---

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Create(ctx context.Context, ref *model.Reference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Reference, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reference), args.Error(1)
}

func (m *MockReferenceRepository) FindByIDWithRelations(ctx context.Context, orgID, id uuid.UUID) (*model.Reference, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reference), args.Error(1)
}

func (m *MockReferenceRepository) List(ctx context.Context, orgID uuid.UUID, filter repository.ReferenceFilter) ([]model.Reference, int64, error) {
	args := m.Called(ctx, orgID, filter)
	var refs []model.Reference
	if args.Get(0) != nil {
		refs = args.Get(0).([]model.Reference)
	}
	return refs, args.Get(1).(int64), args.Error(2)
}

func (m *MockReferenceRepository) Update(ctx context.Context, ref *model.Reference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockReferenceRepository) FindByApprovalToken(ctx context.Context, token string) (*model.Reference, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reference), args.Error(1)
}

func (m *MockReferenceRepository) SetPending(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockReferenceRepository) ConsumeToken(ctx context.Context, id uuid.UUID, token, newStatus string) (int64, error) {
	args := m.Called(ctx, id, token, newStatus)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReferenceRepository) SetStatusClearToken(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReferenceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int64, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// --- Approval repository mock ---

type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) Create(ctx context.Context, approval *model.Approval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

func (m *MockApprovalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Approval), args.Error(1)
}

func (m *MockApprovalRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Approval, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Approval), args.Error(1)
}

func (m *MockApprovalRepository) FindPendingByReference(ctx context.Context, referenceID uuid.UUID) (*model.Approval, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Approval), args.Error(1)
}

func (m *MockApprovalRepository) List(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]model.Approval, int64, error) {
	args := m.Called(ctx, orgID, status, page, limit)
	var approvals []model.Approval
	if args.Get(0) != nil {
		approvals = args.Get(0).([]model.Approval)
	}
	return approvals, args.Get(1).(int64), args.Error(2)
}

func (m *MockApprovalRepository) CountPending(ctx context.Context, orgID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApprovalRepository) Update(ctx context.Context, approval *model.Approval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

// --- Company repository mock ---

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Company, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*model.Company, error) {
	args := m.Called(ctx, orgID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, orgID uuid.UUID, search string, page, limit int) ([]model.Company, int64, error) {
	args := m.Called(ctx, orgID, search, page, limit)
	var companies []model.Company
	if args.Get(0) != nil {
		companies = args.Get(0).([]model.Company)
	}
	return companies, args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) Update(ctx context.Context, company *model.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) CreateContact(ctx context.Context, contact *model.ContactPerson) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindContactByID(ctx context.Context, id uuid.UUID) (*model.ContactPerson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContactPerson), args.Error(1)
}

func (m *MockCompanyRepository) UpdateContact(ctx context.Context, contact *model.ContactPerson) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockCompanyRepository) DeleteContact(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Deal repository mock ---

type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) Create(ctx context.Context, deal *model.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Deal, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deal), args.Error(1)
}

func (m *MockDealRepository) List(ctx context.Context, orgID uuid.UUID, status string, page, limit int) ([]model.Deal, int64, error) {
	args := m.Called(ctx, orgID, status, page, limit)
	var deals []model.Deal
	if args.Get(0) != nil {
		deals = args.Get(0).([]model.Deal)
	}
	return deals, args.Get(1).(int64), args.Error(2)
}

func (m *MockDealRepository) ListExpiring(ctx context.Context, orgID uuid.UUID, before time.Time) ([]model.Deal, error) {
	args := m.Called(ctx, orgID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Deal), args.Error(1)
}

func (m *MockDealRepository) Update(ctx context.Context, deal *model.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockDealRepository) AddReference(ctx context.Context, dealID, referenceID uuid.UUID) error {
	args := m.Called(ctx, dealID, referenceID)
	return args.Error(0)
}

func (m *MockDealRepository) RemoveReference(ctx context.Context, dealID, referenceID uuid.UUID) error {
	args := m.Called(ctx, dealID, referenceID)
	return args.Error(0)
}

func (m *MockDealRepository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int64, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// --- Profile repository mock ---

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]model.Profile, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockProfileRepository) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *MockProfileRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockProfileRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) error {
	args := m.Called(ctx, before)
	return args.Error(0)
}

// --- Organization repository mock ---

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *model.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) CreateInvite(ctx context.Context, invite *model.OrganizationInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindInviteByToken(ctx context.Context, token string) (*model.OrganizationInvite, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrganizationInvite), args.Error(1)
}

func (m *MockOrganizationRepository) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Audit repository mock ---

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, action, page, limit)
	var entries []model.AuditLog
	if args.Get(0) != nil {
		entries = args.Get(0).([]model.AuditLog)
	}
	return entries, args.Get(1).(int64), args.Error(2)
}

// --- Favorite repository mock ---

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Create(ctx context.Context, fav *model.Favorite) error {
	args := m.Called(ctx, fav)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, profileID, referenceID uuid.UUID) error {
	args := m.Called(ctx, profileID, referenceID)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Exists(ctx context.Context, profileID, referenceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, profileID, referenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) ListReferenceIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// --- Sender mock ---

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// stubTxManager runs the closure directly, no real transaction in unit tests
type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
