package service

import (
	"context"
	"fmt"

	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// statisticsService implements StatisticsService.
type statisticsService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewStatisticsService creates a statistics service that reads orders fresh
// on every call.
func NewStatisticsService(orderRepo repository.OrderRepository, logger zerolog.Logger) StatisticsService {
	return &statisticsService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "statistics").Logger(),
	}
}

// Summary aggregates all orders at call time.
func (s *statisticsService) Summary(ctx context.Context) (*model.Summary, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	summary := Summarize(orders)
	return &summary, nil
}

// Summarize folds orders into totals. Revenue counts every order regardless
// of status.
func Summarize(orders []model.Order) model.Summary {
	summary := model.Summary{TotalRevenue: decimal.Zero}
	for _, o := range orders {
		summary.TotalOrders++
		if o.Status == model.StatusPending {
			summary.PendingOrders++
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(o.TotalAmount)
	}
	return summary
}
