// Package closing assembles a shop's daily closing report from its register
// session and delivers it downstream.
package closing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoSession indicates no register session preceded the query time.
var ErrNoSession = errors.New("closing: no register session before query")

// TaxedBucket accumulates a pre-tax total and its computed tax amount.
type TaxedBucket struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
}

// Report is the daily closing report for one shop, one register session.
// Amounts are signed: returned sales subtract from their buckets.
type Report struct {
	ID        string    `json:"id"`
	ShopCode  string    `json:"shop_code"`
	Date      string    `json:"date"`
	SessionID int64     `json:"session_id"`
	OpenedAt  time.Time `json:"opened_at"`
	ClosedAt  time.Time `json:"closed_at"`

	// The nine accounting buckets. Hearing aid shares the health copayment
	// bucket; plastic bag shares the container cost bucket. OTC splits by the
	// line's own tax rate.
	HealthCopayment     decimal.Decimal `json:"health_copayment"`
	MedicineSales       decimal.Decimal `json:"medicine_sales"`
	ContainerCost       decimal.Decimal `json:"container_cost"`
	CopaymentAdjustment decimal.Decimal `json:"copayment_adjustment"`
	OTCNormal           TaxedBucket     `json:"otc_normal"`
	OTCReduced          TaxedBucket     `json:"otc_reduced"`
	CareCopayment       decimal.Decimal `json:"care_copayment"`
	ReturnFee           decimal.Decimal `json:"return_fee"`

	// Credit carries one signed adjustment per credit-settled sale:
	// -(credit total + both computed tax amounts).
	Credit decimal.Decimal `json:"credit"`

	SaleCount   int       `json:"sale_count"`
	GeneratedAt time.Time `json:"generated_at"`
}
