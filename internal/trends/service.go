package trends

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/meridian-pos/meridian-pos/internal/platform/cache"
	"github.com/meridian-pos/meridian-pos/internal/stocks"
	"github.com/meridian-pos/meridian-pos/internal/trade"
)

type Service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// QueryItemTrends builds the day-by-day ledger for one product at one shop.
// The month range is inclusive and validated before any store access.
func (s *Service) QueryItemTrends(ctx context.Context, req Request) (Result, error) {
	if err := validateRange(req.FromMonth, req.ToMonth); err != nil {
		return Result{}, err
	}

	key, err := s.cache.BuildKey(ctx, "trends", req.ShopCode, req.ProductCode,
		req.FromMonth.Format(stocks.MonthLayout), req.ToMonth.Format(stocks.MonthLayout),
		fmt.Sprintf("%.2f", req.FinalCostPrice))
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		return s.build(ctx, req)
	})
	return result, err
}

func (s *Service) build(ctx context.Context, req Request) (Result, error) {
	from := monthStart(req.FromMonth)
	to := monthStart(req.ToMonth).AddDate(0, 1, 0) // exclusive upper bound

	days := make(map[string]*DayFigures)
	at := func(date time.Time) *DayFigures {
		key := date.Format(DayLayout)
		figures, ok := days[key]
		if !ok {
			figures = &DayFigures{}
			days[key] = figures
		}
		return figures
	}

	purchases, err := s.repo.MovementLines(ctx, trade.KindPurchase, req.ShopCode, req.ProductCode, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("trends: purchases: %w", err)
	}
	for _, line := range purchases {
		figures := at(line.Date)
		figures.PurchaseCount += line.Quantity
		figures.PurchaseCost += float64(line.Quantity) * line.CostPrice
	}

	deliveries, err := s.repo.MovementLines(ctx, trade.KindDelivery, req.ShopCode, req.ProductCode, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("trends: deliveries: %w", err)
	}
	for _, line := range deliveries {
		figures := at(line.Date)
		figures.DeliveryCount += line.Quantity
		figures.DeliveryCost += float64(line.Quantity) * line.CostPrice
	}

	rejections, err := s.repo.MovementLines(ctx, trade.KindRejection, req.ShopCode, req.ProductCode, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("trends: rejections: %w", err)
	}
	for _, line := range rejections {
		figures := at(line.Date)
		figures.RejectionCount += line.Quantity
		figures.RejectionCost += float64(line.Quantity) * line.CostPrice
	}

	sales, err := s.repo.SaleLines(ctx, req.ShopCode, req.ProductCode, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("trends: sales: %w", err)
	}
	for _, line := range sales {
		if line.DivisionCode != trade.DivisionOTC {
			continue
		}
		amount := float64(line.Quantity)*line.SellingPrice - line.Discount
		figures := at(line.Date)
		if line.Returned {
			figures.SaleCount -= line.Quantity
			figures.SaleTotal -= amount
		} else {
			figures.SaleCount += line.Quantity
			figures.SaleTotal += amount
		}
	}

	baseline, err := s.repo.MonthlyBaseline(ctx,
		req.FromMonth.Format(stocks.MonthLayout), req.ShopCode, req.ProductCode)
	if err != nil {
		return Result{}, fmt.Errorf("trends: baseline: %w", err)
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := Result{
		ShopCode:    req.ShopCode,
		ProductCode: req.ProductCode,
		Baseline:    baseline,
		Days:        make([]DayTrend, 0, len(keys)),
	}
	running := baseline
	for _, key := range keys {
		figures := days[key]
		running += figures.PurchaseCount - figures.SaleCount - figures.DeliveryCount - figures.RejectionCount
		figures.StockCount = running
		figures.StockCost = float64(running) * req.FinalCostPrice
		result.Days = append(result.Days, DayTrend{Date: key, DayFigures: *figures})
	}
	return result, nil
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return ErrInvalidRange
	}
	if monthSpan(from, to) > MaxRangeMonths {
		return ErrRangeTooWide
	}
	return nil
}

// monthSpan counts the inclusive number of months between two month values.
func monthSpan(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month()) + 1
}

func monthStart(month time.Time) time.Time {
	return time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
}
