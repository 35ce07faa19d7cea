package stocks

import (
	"time"
)

// MonthLayout is the label format for monthly snapshots.
const MonthLayout = "2006/01"

// Stock is the live quantity of one product at one shop.
type Stock struct {
	ShopCode    string    `json:"shop_code"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MonthlyStock is a frozen copy of Stock taken at a month boundary. Snapshots
// are written with overwrite semantics and never mutated afterwards.
type MonthlyStock struct {
	Month       string `json:"month"`
	ShopCode    string `json:"shop_code"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}
