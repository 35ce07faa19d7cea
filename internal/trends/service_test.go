package trends

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/platform/cache"
	"github.com/meridian-pos/meridian-pos/internal/trade"
)

type mockRepository struct {
	queried       bool
	movements     map[trade.MovementKind][]MovementLine
	sales         []SaleLine
	baseline      int
	baselineMonth string
}

func (m *mockRepository) MovementLines(ctx context.Context, kind trade.MovementKind, shopCode, productCode string, from, to time.Time) ([]MovementLine, error) {
	m.queried = true
	return m.movements[kind], nil
}

func (m *mockRepository) SaleLines(ctx context.Context, shopCode, productCode string, from, to time.Time) ([]SaleLine, error) {
	m.queried = true
	return m.sales, nil
}

func (m *mockRepository) MonthlyBaseline(ctx context.Context, month, shopCode, productCode string) (int, error) {
	m.queried = true
	m.baselineMonth = month
	return m.baseline, nil
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo Repository) *Service {
	// nil redis client: the cache helper degrades to a pass-through loader.
	return NewService(repo, cache.New(nil, 0))
}

func TestQueryRejectsSevenMonthRange(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	_, err := svc.QueryItemTrends(context.Background(), Request{
		ShopCode:    "S001",
		ProductCode: "P001",
		FromMonth:   month(2026, time.February),
		ToMonth:     month(2026, time.August),
	})
	require.ErrorIs(t, err, ErrRangeTooWide)
	assert.False(t, repo.queried, "range must be rejected before any store access")
}

func TestQueryAcceptsSixMonthRange(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	_, err := svc.QueryItemTrends(context.Background(), Request{
		ShopCode:    "S001",
		ProductCode: "P001",
		FromMonth:   month(2026, time.March),
		ToMonth:     month(2026, time.August),
	})
	require.NoError(t, err)
	assert.True(t, repo.queried)
}

func TestQueryRejectsInvertedRange(t *testing.T) {
	svc := newTestService(&mockRepository{})

	_, err := svc.QueryItemTrends(context.Background(), Request{
		ShopCode:    "S001",
		ProductCode: "P001",
		FromMonth:   month(2026, time.August),
		ToMonth:     month(2026, time.March),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRunningStockFold(t *testing.T) {
	repo := &mockRepository{
		baseline: 10,
		movements: map[trade.MovementKind][]MovementLine{
			trade.KindPurchase: {
				{Date: day(1), Quantity: 5, CostPrice: 100},
				{Date: day(3), Quantity: 2, CostPrice: 110},
			},
			trade.KindDelivery: {
				{Date: day(2), Quantity: 1, CostPrice: 100},
			},
			trade.KindRejection: {
				{Date: day(3), Quantity: 1, CostPrice: 100},
			},
		},
		sales: []SaleLine{
			{Date: day(1), DivisionCode: trade.DivisionOTC, Quantity: 2, SellingPrice: 200},
			{Date: day(2), DivisionCode: trade.DivisionOTC, Quantity: 1, SellingPrice: 200, Discount: 50},
			// Non-OTC lines are excluded from the sale stream.
			{Date: day(2), DivisionCode: trade.DivisionMedicineSales, Quantity: 4, SellingPrice: 300},
		},
	}
	svc := newTestService(repo)

	result, err := svc.QueryItemTrends(context.Background(), Request{
		ShopCode:       "S001",
		ProductCode:    "P001",
		FromMonth:      month(2026, time.August),
		ToMonth:        month(2026, time.August),
		FinalCostPrice: 100,
	})
	require.NoError(t, err)
	require.Len(t, result.Days, 3)
	assert.Equal(t, 10, result.Baseline)
	assert.Equal(t, "2026/08", repo.baselineMonth)

	// Day 1: 10 + 5 - 2 = 13
	assert.Equal(t, "2026/08/01", result.Days[0].Date)
	assert.Equal(t, 5, result.Days[0].PurchaseCount)
	assert.Equal(t, 500.0, result.Days[0].PurchaseCost)
	assert.Equal(t, 2, result.Days[0].SaleCount)
	assert.Equal(t, 400.0, result.Days[0].SaleTotal)
	assert.Equal(t, 13, result.Days[0].StockCount)
	assert.Equal(t, 1300.0, result.Days[0].StockCost)

	// Day 2: 13 - 1 (sale) - 1 (delivery) = 11
	assert.Equal(t, "2026/08/02", result.Days[1].Date)
	assert.Equal(t, 1, result.Days[1].SaleCount)
	assert.Equal(t, 150.0, result.Days[1].SaleTotal, "discount must be subtracted")
	assert.Equal(t, 11, result.Days[1].StockCount)

	// Day 3: 11 + 2 (purchase) - 1 (rejection) = 12
	assert.Equal(t, "2026/08/03", result.Days[2].Date)
	assert.Equal(t, 12, result.Days[2].StockCount)
}

func TestReturnedSaleInvertsTrend(t *testing.T) {
	repo := &mockRepository{
		sales: []SaleLine{
			{Date: day(1), DivisionCode: trade.DivisionOTC, Quantity: 3, SellingPrice: 100},
			{Date: day(1), DivisionCode: trade.DivisionOTC, Quantity: 1, SellingPrice: 100, Returned: true},
		},
	}
	svc := newTestService(repo)

	result, err := svc.QueryItemTrends(context.Background(), Request{
		ShopCode:       "S001",
		ProductCode:    "P001",
		FromMonth:      month(2026, time.August),
		ToMonth:        month(2026, time.August),
		FinalCostPrice: 50,
	})
	require.NoError(t, err)
	require.Len(t, result.Days, 1)
	assert.Equal(t, 2, result.Days[0].SaleCount)
	assert.Equal(t, 200.0, result.Days[0].SaleTotal)
	// 0 baseline - 2 net sales = -2
	assert.Equal(t, -2, result.Days[0].StockCount)
}

func TestMonthSpan(t *testing.T) {
	assert.Equal(t, 1, monthSpan(month(2026, time.August), month(2026, time.August)))
	assert.Equal(t, 6, monthSpan(month(2026, time.March), month(2026, time.August)))
	assert.Equal(t, 7, monthSpan(month(2025, time.December), month(2026, time.June)))
}
