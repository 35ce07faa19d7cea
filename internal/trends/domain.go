// Package trends reconstructs day-level purchase/sale/delivery/rejection and
// running-stock figures for one product at one shop over a month range.
package trends

import (
	"errors"
	"time"
)

// MaxRangeMonths bounds a trend query's inclusive month span.
const MaxRangeMonths = 6

// ErrRangeTooWide is returned before any store access when the requested
// month span exceeds MaxRangeMonths.
var ErrRangeTooWide = errors.New("trends: range exceeds six months")

// ErrInvalidRange is returned when the range is malformed.
var ErrInvalidRange = errors.New("trends: invalid month range")

// DayLayout keys day buckets; lexicographic order equals chronological order.
const DayLayout = "2006/01/02"

// Request identifies one trend query.
type Request struct {
	ShopCode    string
	ProductCode string
	FromMonth   time.Time // first month of the inclusive range
	ToMonth     time.Time // last month of the inclusive range
	// FinalCostPrice values the running stock; it is the caller-supplied
	// current cost, not a historical cost.
	FinalCostPrice float64
}

// DayFigures carries the ten numeric fields tracked per day.
type DayFigures struct {
	PurchaseCount  int     `json:"purchase_count"`
	PurchaseCost   float64 `json:"purchase_cost"`
	SaleCount      int     `json:"sale_count"`
	SaleTotal      float64 `json:"sale_total"`
	DeliveryCount  int     `json:"delivery_count"`
	DeliveryCost   float64 `json:"delivery_cost"`
	RejectionCount int     `json:"rejection_count"`
	RejectionCost  float64 `json:"rejection_cost"`
	StockCount     int     `json:"stock_count"`
	StockCost      float64 `json:"stock_cost"`
}

// DayTrend pairs a day key with its figures.
type DayTrend struct {
	Date string `json:"date"`
	DayFigures
}

// Result is an ordered day-by-day trend ledger.
type Result struct {
	ShopCode    string     `json:"shop_code"`
	ProductCode string     `json:"product_code"`
	Baseline    int        `json:"baseline"`
	Days        []DayTrend `json:"days"`
}

// MovementLine is one purchase/delivery/rejection line dated by its header.
type MovementLine struct {
	Date      time.Time
	Quantity  int
	CostPrice float64
}

// SaleLine is one sale line dated by its header.
type SaleLine struct {
	Date         time.Time
	Returned     bool
	DivisionCode string
	Quantity     int
	SellingPrice float64
	Discount     float64
}
