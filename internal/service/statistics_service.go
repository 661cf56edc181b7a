package service

import (
	"context"
	"fmt"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"
)

const topProductsLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, actor model.Actor, startDate, endDate time.Time) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics builds the dashboard for [startDate, endDate]. Request sections
// are included only when the actor may view that kind of request.
func (s *statisticsService) GetStatistics(ctx context.Context, actor model.Actor, startDate, endDate time.Time) (*model.StatisticsResponse, error) {
	if err := authorize(actor, rbac.CapViewInventory); err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end_date is before start_date", errs.ErrValidation)
	}

	res := &model.StatisticsResponse{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}

	lowStock, err := s.repo.CountLowStockMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock materials: %w", err)
	}
	res.LowStockMaterials = lowStock

	if actor.Can(rbac.CapViewInternalRequests) {
		if res.InternalRequestsByStatus, err = s.repo.CountInternalRequestsByStatus(ctx, startDate, endDate); err != nil {
			return nil, err
		}
		if res.TopRequestedProducts, err = s.repo.TopRequestedProducts(ctx, startDate, endDate, topProductsLimit); err != nil {
			return nil, err
		}
		for i := range res.TopRequestedProducts {
			if res.TopRequestedProducts[i].ProductName == "" {
				res.TopRequestedProducts[i].ProductName = removedProductName
			}
		}
	}

	if actor.Can(rbac.CapViewPurchaseRequests) {
		if res.PurchaseRequestsByStatus, err = s.repo.CountPurchaseRequestsByStatus(ctx, startDate, endDate); err != nil {
			return nil, err
		}
		value, err := s.repo.PurchasedValue(ctx, startDate, endDate)
		if err != nil {
			return nil, err
		}
		res.PurchasedValue = &value
	}

	return res, nil
}
