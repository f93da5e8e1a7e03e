package service

import (
	"context"
	"strings"
	"testing"

	"refstack/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type dealServiceFixture struct {
	dealRepo    *MockDealRepository
	refRepo     *MockReferenceRepository
	profileRepo *MockProfileRepository
	auditRepo   *MockAuditRepository
	sender      *MockSender
	svc         DealService
}

func newDealServiceFixture(managerEmail string) *dealServiceFixture {
	f := &dealServiceFixture{
		dealRepo:    new(MockDealRepository),
		refRepo:     new(MockReferenceRepository),
		profileRepo: new(MockProfileRepository),
		auditRepo:   new(MockAuditRepository),
		sender:      new(MockSender),
	}
	f.svc = NewDealService(f.dealRepo, f.refRepo, f.profileRepo, f.auditRepo, f.sender, managerEmail, "https://refs.example.com")
	return f
}

func TestCreateDeal_ParsesVolumeAndDefaultsStatus(t *testing.T) {
	f := newDealServiceFixture("")
	orgID := uuid.New()

	f.dealRepo.On("Create", mock.Anything, mock.MatchedBy(func(deal *model.Deal) bool {
		return deal.Status == model.DealStatusInNegotiation &&
			deal.Volume.Equal(decimal.RequireFromString("250000.50")) &&
			deal.IsPublic
	})).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)
	f.dealRepo.On("FindByID", mock.Anything, orgID, mock.Anything).Return(&model.Deal{
		OrganizationID: orgID,
		Title:          "Fleet expansion",
		Status:         model.DealStatusInNegotiation,
		Volume:         decimal.RequireFromString("250000.50"),
	}, nil)

	resp, err := f.svc.CreateDeal(context.Background(), orgID, uuid.NewString(), CreateDealRequest{
		Title:  "Fleet expansion",
		Volume: "250000.50",
	})

	assert.NoError(t, err)
	assert.Equal(t, "250000.50", resp.Volume)
}

func TestCreateDeal_RejectsUnknownStatus(t *testing.T) {
	f := newDealServiceFixture("")

	_, err := f.svc.CreateDeal(context.Background(), uuid.New(), uuid.NewString(), CreateDealRequest{
		Title:  "Fleet expansion",
		Status: "signed",
	})

	assert.Error(t, err)
	f.dealRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateDeal_RejectsInvalidVolume(t *testing.T) {
	f := newDealServiceFixture("")

	_, err := f.svc.CreateDeal(context.Background(), uuid.New(), uuid.NewString(), CreateDealRequest{
		Title:  "Fleet expansion",
		Volume: "a lot",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid volume")
}

func TestAddReference_ScopesBothSides(t *testing.T) {
	f := newDealServiceFixture("")
	orgID := uuid.New()
	deal := &model.Deal{ID: uuid.New(), OrganizationID: orgID}
	ref := &model.Reference{ID: uuid.New(), OrganizationID: orgID}

	f.dealRepo.On("FindByID", mock.Anything, orgID, deal.ID).Return(deal, nil)
	f.refRepo.On("FindByID", mock.Anything, orgID, ref.ID).Return(ref, nil)
	f.dealRepo.On("AddReference", mock.Anything, deal.ID, ref.ID).Return(nil)

	err := f.svc.AddReference(context.Background(), orgID, deal.ID.String(), ref.ID.String())

	assert.NoError(t, err)
	f.dealRepo.AssertExpectations(t)
}

func TestAddReference_ForeignReferenceRejected(t *testing.T) {
	f := newDealServiceFixture("")
	orgID := uuid.New()
	deal := &model.Deal{ID: uuid.New(), OrganizationID: orgID}
	foreign := uuid.New()

	f.dealRepo.On("FindByID", mock.Anything, orgID, deal.ID).Return(deal, nil)
	f.refRepo.On("FindByID", mock.Anything, orgID, foreign).Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.AddReference(context.Background(), orgID, deal.ID.String(), foreign.String())

	assert.ErrorIs(t, err, ErrNotFound)
	f.dealRepo.AssertNotCalled(t, "AddReference", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReferenceRequest_RequiresManagerEmail(t *testing.T) {
	f := newDealServiceFixture("")

	err := f.svc.SubmitReferenceRequest(context.Background(), uuid.New(), uuid.NewString(), uuid.NewString(), "need two logistics references")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reference manager email")
}

func TestSubmitReferenceRequest_SendsToManager(t *testing.T) {
	f := newDealServiceFixture("manager@refs.example.com")
	orgID := uuid.New()
	profile := &model.Profile{ID: uuid.New(), FullName: "Sam Seller", Email: "sam@refs.example.com"}
	deal := &model.Deal{ID: uuid.New(), OrganizationID: orgID, Title: "Fleet expansion"}

	f.dealRepo.On("FindByID", mock.Anything, orgID, deal.ID).Return(deal, nil)
	f.profileRepo.On("GetByID", mock.Anything, profile.ID).Return(profile, nil)
	f.sender.On("Send", mock.Anything, "manager@refs.example.com", mock.MatchedBy(func(subject string) bool {
		return strings.Contains(subject, "Fleet expansion")
	}), mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Sam Seller") && strings.Contains(body, "two references please")
	})).Return(nil)

	err := f.svc.SubmitReferenceRequest(context.Background(), orgID, profile.ID.String(), deal.ID.String(), "two references please")

	assert.NoError(t, err)
	f.sender.AssertExpectations(t)
}
