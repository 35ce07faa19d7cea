// Package trade records the four transaction streams feeding stock and
// reporting: purchases, deliveries, rejections (returns and waste) and sales.
package trade

import (
	"time"
)

// Division codes tag a sale line's accounting category. The set is closed;
// classification into closing-report buckets lives in internal/closing.
const (
	DivisionHealthCopayment = "1"
	DivisionMedicineSales   = "2"
	DivisionContainerCost   = "3"
	DivisionCopayAdjustment = "4"
	DivisionOTC             = "5"
	DivisionCareCopayment   = "6"
	DivisionReturnFee       = "7"
	DivisionPlasticBag      = "8"
	DivisionHearingAid      = "9"
)

// PaymentType distinguishes cash and credit settlements.
const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
)

// Sale is a register transaction header. Immutable once written except for
// product-name cascades into its lines.
type Sale struct {
	ID          int64      `json:"id"`
	SequenceNo  int64      `json:"sequence_no"`
	ShopCode    string     `json:"shop_code" validate:"required"`
	Date        time.Time  `json:"date"`
	Returned    bool       `json:"returned"`
	PaymentType string     `json:"payment_type" validate:"omitempty,oneof=cash credit"`
	CreditTotal float64    `json:"credit_total"`
	CreatedAt   time.Time  `json:"created_at"`
	Lines       []SaleLine `json:"lines,omitempty" validate:"required,min=1,dive"`
}

// SaleLine is one sold item.
type SaleLine struct {
	SaleID       int64   `json:"sale_id"`
	Index        int     `json:"index"`
	ProductCode  string  `json:"product_code" validate:"required"`
	ProductName  string  `json:"product_name"`
	DivisionCode string  `json:"division_code" validate:"required,oneof=1 2 3 4 5 6 7 8 9"`
	Quantity     int     `json:"quantity" validate:"required"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
	Discount     float64 `json:"discount" validate:"gte=0"`
	TaxRate      int     `json:"tax_rate" validate:"omitempty,oneof=8 10"`
}

// Subtotal is the discounted line amount.
func (l SaleLine) Subtotal() float64 {
	return l.SellingPrice*float64(l.Quantity) - l.Discount
}

// Movement is a purchase, delivery or rejection header.
type Movement struct {
	ID         int64          `json:"id"`
	SequenceNo int64          `json:"sequence_no"`
	ShopCode   string         `json:"shop_code" validate:"required"`
	Date       time.Time      `json:"date"`
	CreatedAt  time.Time      `json:"created_at"`
	Lines      []MovementLine `json:"lines,omitempty" validate:"required,min=1,dive"`
}

// MovementLine is one line of a purchase, delivery or rejection.
type MovementLine struct {
	HeaderID    int64   `json:"header_id"`
	Index       int     `json:"index"`
	ProductCode string  `json:"product_code" validate:"required"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity" validate:"required"`
	CostPrice   float64 `json:"cost_price" validate:"gte=0"`
}

// RegisterSession is the open/close interval of a shop's register, scoping
// one daily closing.
type RegisterSession struct {
	ID       int64      `json:"id"`
	ShopCode string     `json:"shop_code"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}
