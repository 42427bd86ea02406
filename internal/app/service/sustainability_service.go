package service

import (
	"github.com/verdana/verdana-backend/config"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/pkg/logger"
)

// SustainabilityStats is the storefront impact rollup. Figures are
// computed per request from committed orders and the live catalog.
type SustainabilityStats struct {
	TreesPlanted            int     `json:"trees_planted"`
	CO2OffsetKg             float64 `json:"co2_offset_kg"`
	SustainablePackagingPct float64 `json:"sustainable_packaging_pct"`
	HappyCustomers          int64   `json:"happy_customers"`
}

// UserImpact is one customer's share of the program.
type UserImpact struct {
	TreesPlanted int     `json:"trees_planted"`
	CO2OffsetKg  float64 `json:"co2_offset_kg"`
	OrderCount   int64   `json:"order_count"`
}

type SustainabilityService interface {
	GetStats() (*SustainabilityStats, error)
	GetUserImpact(userID uint) (*UserImpact, error)
}

type sustainabilityService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	policy      config.SustainabilityConfig
}

func NewSustainabilityService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	policy config.SustainabilityConfig,
) SustainabilityService {
	return &sustainabilityService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		policy:      policy,
	}
}

func (s *sustainabilityService) GetStats() (*SustainabilityStats, error) {
	totals, err := s.orderRepo.SumSustainability(0)
	if err != nil {
		logger.Error("Failed to sum sustainability totals", err)
		return nil, err
	}

	total, sustainable, err := s.productRepo.CountByScoreThreshold(s.policy.PackagingScoreThreshold)
	if err != nil {
		logger.Error("Failed to count sustainable products", err)
		return nil, err
	}

	stats := &SustainabilityStats{
		TreesPlanted:   int(totals.TreesPlanted),
		CO2OffsetKg:    totals.CO2Offset,
		HappyCustomers: totals.HappyCustomers,
	}
	if total > 0 {
		stats.SustainablePackagingPct = float64(sustainable) / float64(total) * 100
	}
	return stats, nil
}

func (s *sustainabilityService) GetUserImpact(userID uint) (*UserImpact, error) {
	totals, err := s.orderRepo.SumSustainability(userID)
	if err != nil {
		logger.Error("Failed to sum user sustainability", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	count, err := s.orderRepo.CountNonCancelledByUser(userID)
	if err != nil {
		return nil, err
	}

	return &UserImpact{
		TreesPlanted: int(totals.TreesPlanted),
		CO2OffsetKg:  totals.CO2Offset,
		OrderCount:   count,
	}, nil
}
