package costing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedAverage(t *testing.T) {
	cases := []struct {
		name         string
		priorAvg     float64
		priorStock   int
		purchaseCost float64
		purchaseQty  int
		want         float64
		ok           bool
	}{
		{
			name:     "first purchase with no prior average",
			priorAvg: 0, priorStock: 0,
			purchaseCost: 10 * 120.0, purchaseQty: 10,
			want: 120, ok: true,
		},
		{
			name:     "fold new purchase into prior stock",
			priorAvg: 100, priorStock: 30,
			purchaseCost: 10 * 150.0, purchaseQty: 10,
			// (100*30 + 1500) / 40 = 112.5 -> 113
			want: 113, ok: true,
		},
		{
			name:     "rounds down below half",
			priorAvg: 100, priorStock: 20,
			purchaseCost: 5 * 101.0, purchaseQty: 5,
			// (2000 + 505) / 25 = 100.2 -> 100
			want: 100, ok: true,
		},
		{
			name:     "skip when combined stock is zero",
			priorAvg: 100, priorStock: -10,
			purchaseCost: 10 * 150.0, purchaseQty: 10,
			ok: false,
		},
		{
			name:     "skip when combined stock is negative",
			priorAvg: 100, priorStock: -20,
			purchaseCost: 5 * 150.0, purchaseQty: 5,
			ok: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := weightedAverage(tc.priorAvg, tc.priorStock, tc.purchaseCost, tc.purchaseQty)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestGroupByProduct(t *testing.T) {
	lines := []PurchaseLine{
		{ProductCode: "P001", Quantity: 3, CostPrice: 100},
		{ProductCode: "P002", Quantity: 1, CostPrice: 50},
		{ProductCode: "P001", Quantity: 2, CostPrice: 110},
	}
	grouped := groupByProduct(lines)
	require.Len(t, grouped, 2)
	assert.Equal(t, 5, grouped["P001"].quantity)
	assert.Equal(t, 3*100.0+2*110.0, grouped["P001"].totalCost)
	assert.Equal(t, 1, grouped["P002"].quantity)
}

type mockRepository struct {
	mu       sync.Mutex
	lines    []PurchaseLine
	avgCosts map[string]*float64
	stocks   map[string]int
	written  map[string]float64
}

func (m *mockRepository) PurchaseLinesForDate(ctx context.Context, date time.Time) ([]PurchaseLine, error) {
	return m.lines, nil
}

func (m *mockRepository) AvgCost(ctx context.Context, productCode string) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.avgCosts[productCode], nil
}

func (m *mockRepository) TotalStock(ctx context.Context, productCode string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stocks[productCode], nil
}

func (m *mockRepository) SetAvgCost(ctx context.Context, productCode string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[productCode] = value
	return nil
}

func TestRecomputeForDate(t *testing.T) {
	prior := 100.0
	repo := &mockRepository{
		lines: []PurchaseLine{
			{ProductCode: "P001", Quantity: 10, CostPrice: 150},
			{ProductCode: "P002", Quantity: 4, CostPrice: 80},
			{ProductCode: "P003", Quantity: 5, CostPrice: 60},
		},
		avgCosts: map[string]*float64{"P001": &prior},
		stocks:   map[string]int{"P001": 30, "P003": -10},
		written:  make(map[string]float64),
	}
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updated, err := svc.RecomputeForDate(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	// P001: (100*30 + 1500) / 40 = 112.5 -> 113
	assert.Equal(t, 113.0, repo.written["P001"])
	// P002 has no prior average, so prior stock is not consulted: 320/4 = 80
	assert.Equal(t, 80.0, repo.written["P002"])
	// P003 has no prior average either, so its negative stock is ignored too.
	assert.Equal(t, 60.0, repo.written["P003"])
}

func TestRecomputeSkipsNonPositiveStock(t *testing.T) {
	prior := 200.0
	repo := &mockRepository{
		lines: []PurchaseLine{
			{ProductCode: "P001", Quantity: 5, CostPrice: 100},
		},
		avgCosts: map[string]*float64{"P001": &prior},
		stocks:   map[string]int{"P001": -5},
		written:  make(map[string]float64),
	}
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updated, err := svc.RecomputeForDate(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Empty(t, repo.written)
}
