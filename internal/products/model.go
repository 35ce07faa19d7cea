package products

import (
	"time"
)

// Product represents a product master entity.
type Product struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Kana         string    `json:"kana"`
	SellingPrice float64   `json:"selling_price"`
	CostPrice    float64   `json:"cost_price"`
	AvgCostPrice *float64  `json:"avg_cost_price,omitempty"`
	Hidden       bool      `json:"hidden"`
	NoReturn     bool      `json:"no_return"`
	Unregistered bool      `json:"unregistered"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
