package repository

import (
	"context"
	"fmt"
	"time"

	"inventario/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountInternalRequestsByStatus(ctx context.Context, start, end time.Time) (map[string]int64, error)
	CountPurchaseRequestsByStatus(ctx context.Context, start, end time.Time) (map[string]int64, error)
	PurchasedValue(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	TopRequestedProducts(ctx context.Context, start, end time.Time, limit int) ([]model.ProductRanking, error)
	CountLowStockMaterials(ctx context.Context) (int64, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) countByStatus(ctx context.Context, table string, start, end time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := GetDB(ctx, r.db).Table(table).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count %s by status: %w", table, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *statisticsRepository) CountInternalRequestsByStatus(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	return r.countByStatus(ctx, "internal_requests", start, end)
}

func (r *statisticsRepository) CountPurchaseRequestsByStatus(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	return r.countByStatus(ctx, "purchase_requests", start, end)
}

// PurchasedValue sums the selected quotation of every request bought in the range.
func (r *statisticsRepository) PurchasedValue(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var result struct {
		Value decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Table("purchase_requests AS pr").
		Select("COALESCE(SUM(q.unit_value * q.quantity), 0) AS value").
		Joins("JOIN quotations q ON q.id = pr.selected_quotation_id").
		Where("pr.status IN ? AND pr.updated_at >= ? AND pr.updated_at <= ?",
			[]string{model.PurchaseStatusComprado, model.PurchaseStatusConcluido}, start, end).
		Scan(&result).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum purchased value: %w", err)
	}
	return result.Value, nil
}

// TopRequestedProducts ranks products by requested quantity. Deleted products keep
// their rows with an empty name.
func (r *statisticsRepository) TopRequestedProducts(ctx context.Context, start, end time.Time, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	if err := GetDB(ctx, r.db).Table("internal_requests AS ir").
		Select("ir.product_type, ir.product_id, COALESCE(m.name, t.model, '') AS product_name, SUM(ir.quantity) AS total_quantity, COUNT(*) AS request_count").
		Joins("LEFT JOIN materials m ON ir.product_type = ? AND m.id = ir.product_id AND m.deleted_at IS NULL", model.ProductTypeMaterial).
		Joins("LEFT JOIN toners t ON ir.product_type = ? AND t.id = ir.product_id AND t.deleted_at IS NULL", model.ProductTypeToner).
		Where("ir.created_at >= ? AND ir.created_at <= ?", start, end).
		Group("ir.product_type, ir.product_id, m.name, t.model").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}

func (r *statisticsRepository) CountLowStockMaterials(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Material{}).
		Where("minimum_stock > 0 AND COALESCE(current_stock, 0) < minimum_stock").
		Count(&n).Error
	return n, err
}
