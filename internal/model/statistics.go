package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRanking is one row of the most requested products
type ProductRanking struct {
	ProductType   string    `json:"product_type"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	TotalQuantity int64     `json:"total_quantity"`
	RequestCount  int64     `json:"request_count"`
}

// StatisticsResponse is the dashboard summary for a time range.
// Sections the caller may not see are left empty.
type StatisticsResponse struct {
	TimeRangeStartDate       time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate         time.Time        `json:"time_range_end_date"`
	LowStockMaterials        int64            `json:"low_stock_materials"`
	InternalRequestsByStatus map[string]int64 `json:"internal_requests_by_status,omitempty"`
	TopRequestedProducts     []ProductRanking `json:"top_requested_products,omitempty"`
	PurchaseRequestsByStatus map[string]int64 `json:"purchase_requests_by_status,omitempty"`
	PurchasedValue           *decimal.Decimal `json:"purchased_value,omitempty" swaggertype:"string"`
}
