package closing

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-pos/meridian-pos/internal/trade"
)

// saleTotals holds one sale's classified amounts before folding into the report.
type saleTotals struct {
	healthCopayment     decimal.Decimal
	medicineSales       decimal.Decimal
	containerCost       decimal.Decimal
	copaymentAdjustment decimal.Decimal
	otcNormalSubtotal   decimal.Decimal
	otcReducedSubtotal  decimal.Decimal
	careCopayment       decimal.Decimal
	returnFee           decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// classifySale routes every line into its accounting bucket by division code.
// Returned sales invert the sign of every amount.
func classifySale(sale trade.Sale, lines []trade.SaleLine) saleTotals {
	sign := decimal.NewFromInt(1)
	if sale.Returned {
		sign = decimal.NewFromInt(-1)
	}

	var totals saleTotals
	for _, line := range lines {
		amount := decimal.NewFromFloat(line.Subtotal()).Mul(sign)
		switch line.DivisionCode {
		case trade.DivisionHealthCopayment, trade.DivisionHearingAid:
			totals.healthCopayment = totals.healthCopayment.Add(amount)
		case trade.DivisionMedicineSales:
			totals.medicineSales = totals.medicineSales.Add(amount)
		case trade.DivisionContainerCost, trade.DivisionPlasticBag:
			totals.containerCost = totals.containerCost.Add(amount)
		case trade.DivisionCopayAdjustment:
			totals.copaymentAdjustment = totals.copaymentAdjustment.Add(amount)
		case trade.DivisionOTC:
			if line.TaxRate == 8 {
				totals.otcReducedSubtotal = totals.otcReducedSubtotal.Add(amount)
			} else {
				totals.otcNormalSubtotal = totals.otcNormalSubtotal.Add(amount)
			}
		case trade.DivisionCareCopayment:
			totals.careCopayment = totals.careCopayment.Add(amount)
		case trade.DivisionReturnFee:
			totals.returnFee = totals.returnFee.Add(amount)
		}
	}
	return totals
}

// taxOn computes floor(subtotal * rate / 100).
func taxOn(subtotal decimal.Decimal, rate int) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(rate))).Div(hundred).Floor()
}

// fold accumulates one sale's totals into the report, computing the two OTC
// tax amounts and the credit adjustment for credit-settled sales.
func (r *Report) fold(sale trade.Sale, totals saleTotals) {
	tax10 := taxOn(totals.otcNormalSubtotal, 10)
	tax8 := taxOn(totals.otcReducedSubtotal, 8)

	r.HealthCopayment = r.HealthCopayment.Add(totals.healthCopayment)
	r.MedicineSales = r.MedicineSales.Add(totals.medicineSales)
	r.ContainerCost = r.ContainerCost.Add(totals.containerCost)
	r.CopaymentAdjustment = r.CopaymentAdjustment.Add(totals.copaymentAdjustment)
	r.OTCNormal.Subtotal = r.OTCNormal.Subtotal.Add(totals.otcNormalSubtotal)
	r.OTCNormal.Tax = r.OTCNormal.Tax.Add(tax10)
	r.OTCReduced.Subtotal = r.OTCReduced.Subtotal.Add(totals.otcReducedSubtotal)
	r.OTCReduced.Tax = r.OTCReduced.Tax.Add(tax8)
	r.CareCopayment = r.CareCopayment.Add(totals.careCopayment)
	r.ReturnFee = r.ReturnFee.Add(totals.returnFee)

	if sale.PaymentType == trade.PaymentCredit {
		credit := decimal.NewFromFloat(sale.CreditTotal).Add(tax10).Add(tax8).Neg()
		r.Credit = r.Credit.Add(credit)
	}

	r.SaleCount++
}
