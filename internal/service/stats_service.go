package service

import (
	"context"
	"fmt"
	"time"

	"refstack/internal/repository"

	"github.com/google/uuid"
)

type DashboardStatsResponse struct {
	ReferencesByStatus map[string]int64 `json:"references_by_status"`
	TotalReferences    int64            `json:"total_references"`
	PendingApprovals   int64            `json:"pending_approvals"`
	DealsByStatus      map[string]int64 `json:"deals_by_status"`
	ExpiringDeals      []DealResponse   `json:"expiring_deals"`
}

// StatsService defines the interface for dashboard aggregates
type StatsService interface {
	GetDashboardStats(ctx context.Context, orgID uuid.UUID) (*DashboardStatsResponse, error)
}

type statsService struct {
	referenceRepo repository.ReferenceRepository
	approvalRepo  repository.ApprovalRepository
	dealRepo      repository.DealRepository
}

// NewStatsService returns a new instance of StatsService
func NewStatsService(
	referenceRepo repository.ReferenceRepository,
	approvalRepo repository.ApprovalRepository,
	dealRepo repository.DealRepository,
) StatsService {
	return &statsService{referenceRepo: referenceRepo, approvalRepo: approvalRepo, dealRepo: dealRepo}
}

func (s *statsService) GetDashboardStats(ctx context.Context, orgID uuid.UUID) (*DashboardStatsResponse, error) {
	refCounts, err := s.referenceRepo.CountByStatus(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count references: %w", err)
	}

	// Open requests, not references currently in the pending status. A token
	// decision can close the reference side while the request stays open.
	pending, err := s.approvalRepo.CountPending(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	dealCounts, err := s.dealRepo.CountByStatus(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count deals: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, dealExpiryWindowDays)
	expiring, err := s.dealRepo.ListExpiring(ctx, orgID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring deals: %w", err)
	}

	var total int64
	for _, n := range refCounts {
		total += n
	}

	resp := &DashboardStatsResponse{
		ReferencesByStatus: refCounts,
		TotalReferences:    total,
		PendingApprovals:   pending,
		DealsByStatus:      dealCounts,
	}
	for i := range expiring {
		resp.ExpiringDeals = append(resp.ExpiringDeals, toDealResponse(&expiring[i]))
	}
	return resp, nil
}
