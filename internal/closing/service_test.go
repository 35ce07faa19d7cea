package closing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/backoffice"
	"github.com/meridian-pos/meridian-pos/internal/trade"
)

func TestClassifySaleOTCByTaxRate(t *testing.T) {
	sale := trade.Sale{}
	lines := []trade.SaleLine{
		{DivisionCode: trade.DivisionOTC, Quantity: 3, SellingPrice: 500, TaxRate: 10},
		{DivisionCode: trade.DivisionOTC, Quantity: 2, SellingPrice: 240, TaxRate: 8},
	}
	totals := classifySale(sale, lines)

	assert.True(t, totals.otcNormalSubtotal.Equal(decimal.NewFromInt(1500)))
	assert.True(t, totals.otcReducedSubtotal.Equal(decimal.NewFromInt(480)))

	var report Report
	report.fold(sale, totals)
	// floor(1500 * 10 / 100) = 150, floor(480 * 8 / 100) = 38
	assert.True(t, report.OTCNormal.Tax.Equal(decimal.NewFromInt(150)))
	assert.True(t, report.OTCReduced.Tax.Equal(decimal.NewFromInt(38)))
}

func TestTaxFloors(t *testing.T) {
	// floor(333 * 8 / 100) = floor(26.64) = 26
	assert.True(t, taxOn(decimal.NewFromInt(333), 8).Equal(decimal.NewFromInt(26)))
	// floor(99 * 10 / 100) = 9
	assert.True(t, taxOn(decimal.NewFromInt(99), 10).Equal(decimal.NewFromInt(9)))
}

func TestClassifySaleSharedBuckets(t *testing.T) {
	lines := []trade.SaleLine{
		{DivisionCode: trade.DivisionHealthCopayment, Quantity: 1, SellingPrice: 1000},
		{DivisionCode: trade.DivisionHearingAid, Quantity: 1, SellingPrice: 30000},
		{DivisionCode: trade.DivisionContainerCost, Quantity: 1, SellingPrice: 10},
		{DivisionCode: trade.DivisionPlasticBag, Quantity: 2, SellingPrice: 5},
	}
	totals := classifySale(trade.Sale{}, lines)

	assert.True(t, totals.healthCopayment.Equal(decimal.NewFromInt(31000)))
	assert.True(t, totals.containerCost.Equal(decimal.NewFromInt(20)))
}

func TestClassifySaleReturnedInvertsSign(t *testing.T) {
	lines := []trade.SaleLine{
		{DivisionCode: trade.DivisionMedicineSales, Quantity: 2, SellingPrice: 700},
	}
	totals := classifySale(trade.Sale{Returned: true}, lines)
	assert.True(t, totals.medicineSales.Equal(decimal.NewFromInt(-1400)))
}

func TestClassifySaleSubtractsDiscount(t *testing.T) {
	lines := []trade.SaleLine{
		{DivisionCode: trade.DivisionOTC, Quantity: 1, SellingPrice: 1000, Discount: 100, TaxRate: 10},
	}
	totals := classifySale(trade.Sale{}, lines)
	assert.True(t, totals.otcNormalSubtotal.Equal(decimal.NewFromInt(900)))
}

func TestFoldCreditAdjustment(t *testing.T) {
	sale := trade.Sale{PaymentType: trade.PaymentCredit, CreditTotal: 2000}
	lines := []trade.SaleLine{
		{DivisionCode: trade.DivisionOTC, Quantity: 1, SellingPrice: 1000, TaxRate: 10},
		{DivisionCode: trade.DivisionOTC, Quantity: 1, SellingPrice: 500, TaxRate: 8},
	}
	var report Report
	report.fold(sale, classifySale(sale, lines))

	// -(2000 + floor(1000*10/100) + floor(500*8/100)) = -(2000 + 100 + 40)
	assert.True(t, report.Credit.Equal(decimal.NewFromInt(-2140)))
}

// ---- service orchestration ----

type mockSaleSource struct {
	session    trade.RegisterSession
	sessionErr error
	sales      []trade.Sale
	lines      map[int64][]trade.SaleLine
}

func (m *mockSaleSource) LatestSessionBefore(ctx context.Context, shopCode string, at time.Time) (trade.RegisterSession, error) {
	if m.sessionErr != nil {
		return trade.RegisterSession{}, m.sessionErr
	}
	return m.session, nil
}

func (m *mockSaleSource) ListSales(ctx context.Context, shopCode string, from, to time.Time) ([]trade.Sale, error) {
	return m.sales, nil
}

func (m *mockSaleSource) SaleLines(ctx context.Context, saleID int64) ([]trade.SaleLine, error) {
	return m.lines[saleID], nil
}

type mockDeliverer struct {
	filename string
	data     []byte
	err      error
}

func (m *mockDeliverer) Store(ctx context.Context, filename string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.filename = filename
	m.data = data
	return nil
}

type mockConnector struct {
	authErr    error
	triggered  bool
	signedOut  bool
	triggerErr error
}

func (m *mockConnector) Authenticate(ctx context.Context) error { return m.authErr }

func (m *mockConnector) FetchRoster(ctx context.Context, date time.Time) ([]backoffice.RosterShop, error) {
	return nil, nil
}

func (m *mockConnector) TriggerClosing(ctx context.Context, shopCode string, date time.Time) error {
	if m.triggerErr != nil {
		return m.triggerErr
	}
	m.triggered = true
	return nil
}

func (m *mockConnector) SignOut(ctx context.Context) error {
	m.signedOut = true
	return nil
}

func newTestService(source *mockSaleSource, deliverer *mockDeliverer, connector *mockConnector) *Service {
	svc := NewService(source, deliverer, connector, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.WithNow(func() time.Time {
		return time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	})
	return svc
}

func TestRunDeliversReportAndTriggersClosing(t *testing.T) {
	opened := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	closed := time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC)
	source := &mockSaleSource{
		session: trade.RegisterSession{ID: 1, ShopCode: "S001", OpenedAt: opened, ClosedAt: &closed},
		sales:   []trade.Sale{{ID: 10, ShopCode: "S001"}},
		lines: map[int64][]trade.SaleLine{
			10: {{DivisionCode: trade.DivisionOTC, Quantity: 1, SellingPrice: 100, TaxRate: 10}},
		},
	}
	deliverer := &mockDeliverer{}
	connector := &mockConnector{}
	svc := newTestService(source, deliverer, connector)

	report, err := svc.Run(context.Background(), "S001", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, report.SaleCount)
	assert.Equal(t, "meridian-S001-20260831.json", deliverer.filename)
	assert.NotEmpty(t, deliverer.data)
	assert.True(t, connector.triggered)
	assert.True(t, connector.signedOut)
}

func TestRunSignsOutOnDeliveryFailure(t *testing.T) {
	opened := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	source := &mockSaleSource{
		session: trade.RegisterSession{ID: 1, ShopCode: "S001", OpenedAt: opened},
	}
	deliverer := &mockDeliverer{err: fmt.Errorf("ftp down")}
	connector := &mockConnector{}
	svc := newTestService(source, deliverer, connector)

	_, err := svc.Run(context.Background(), "S001", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, connector.signedOut, "sign out must be attempted even on failure")
	assert.False(t, connector.triggered)
}

func TestBuildReportsNoSession(t *testing.T) {
	source := &mockSaleSource{sessionErr: trade.ErrNoSession}
	svc := newTestService(source, &mockDeliverer{}, &mockConnector{})

	_, err := svc.Build(context.Background(), "S001", time.Now())
	assert.ErrorIs(t, err, ErrNoSession)
}
