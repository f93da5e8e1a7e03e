package service

import (
	"context"
	"testing"

	"refstack/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetDashboardStats_AggregatesCounts(t *testing.T) {
	refRepo := new(MockReferenceRepository)
	apprRepo := new(MockApprovalRepository)
	dealRepo := new(MockDealRepository)
	svc := NewStatsService(refRepo, apprRepo, dealRepo)

	orgID := uuid.New()
	refRepo.On("CountByStatus", mock.Anything, orgID).Return(map[string]int64{
		"draft":    3,
		"pending":  2,
		"external": 5,
	}, nil)
	apprRepo.On("CountPending", mock.Anything, orgID).Return(int64(2), nil)
	dealRepo.On("CountByStatus", mock.Anything, orgID).Return(map[string]int64{
		"won": 4,
	}, nil)
	dealRepo.On("ListExpiring", mock.Anything, orgID, mock.Anything).Return([]model.Deal{
		{ID: uuid.New(), Title: "Renewal due"},
	}, nil)

	stats, err := svc.GetDashboardStats(context.Background(), orgID)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalReferences)
	assert.Equal(t, int64(2), stats.PendingApprovals)
	assert.Equal(t, int64(4), stats.DealsByStatus["won"])
	assert.Len(t, stats.ExpiringDeals, 1)
}

// A token decision can move a reference out of pending while its approval
// request is still open; the dashboard counts open requests.
func TestGetDashboardStats_PendingCountsOpenRequests(t *testing.T) {
	refRepo := new(MockReferenceRepository)
	apprRepo := new(MockApprovalRepository)
	dealRepo := new(MockDealRepository)
	svc := NewStatsService(refRepo, apprRepo, dealRepo)

	orgID := uuid.New()
	refRepo.On("CountByStatus", mock.Anything, orgID).Return(map[string]int64{
		"external": 1,
	}, nil)
	apprRepo.On("CountPending", mock.Anything, orgID).Return(int64(1), nil)
	dealRepo.On("CountByStatus", mock.Anything, orgID).Return(map[string]int64{}, nil)
	dealRepo.On("ListExpiring", mock.Anything, orgID, mock.Anything).Return([]model.Deal{}, nil)

	stats, err := svc.GetDashboardStats(context.Background(), orgID)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingApprovals)
	assert.Zero(t, stats.ReferencesByStatus["pending"])
}
