package costing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentUpdates bounds the per-product fan-out during recomputation.
const maxConcurrentUpdates = 8

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// accumulation collects one product's purchases for the target day.
type accumulation struct {
	quantity  int
	totalCost float64 // Σ(quantity_i * costPrice_i)
}

// RecomputeForDate folds the day's purchases into each affected product's
// moving-average cost. Products update concurrently and independently; the
// stock read is not transactional with the update, so a concurrent stock
// mutation can bias the result. That race is accepted, matching how the
// figures are consumed (next-day reporting). Re-running for the same date
// folds the same purchases in again; callers must not double-schedule a day.
func (s *Service) RecomputeForDate(ctx context.Context, date time.Time) (int, error) {
	lines, err := s.repo.PurchaseLinesForDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("costing: load purchases: %w", err)
	}

	grouped := groupByProduct(lines)
	if len(grouped) == 0 {
		s.logger.Info("no purchases to fold", slog.String("date", date.Format("2006-01-02")))
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUpdates)
	var updated atomic.Int64
	for code, acc := range grouped {
		code, acc := code, acc
		g.Go(func() error {
			ok, err := s.recomputeProduct(gctx, code, acc)
			if err != nil {
				return err
			}
			if ok {
				updated.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	s.logger.Info("average costs recomputed",
		slog.String("date", date.Format("2006-01-02")),
		slog.Int("products", len(grouped)),
		slog.Int64("updated", updated.Load()))
	return int(updated.Load()), nil
}

func (s *Service) recomputeProduct(ctx context.Context, code string, acc accumulation) (bool, error) {
	prior, err := s.repo.AvgCost(ctx, code)
	if err != nil {
		return false, fmt.Errorf("costing: read avg cost %s: %w", code, err)
	}

	priorAvg := 0.0
	priorStock := 0
	if prior != nil {
		priorAvg = *prior
		priorStock, err = s.repo.TotalStock(ctx, code)
		if err != nil {
			return false, fmt.Errorf("costing: read stock %s: %w", code, err)
		}
	}

	newAvg, ok := weightedAverage(priorAvg, priorStock, acc.totalCost, acc.quantity)
	if !ok {
		return false, nil
	}
	if err := s.repo.SetAvgCost(ctx, code, newAvg); err != nil {
		return false, fmt.Errorf("costing: set avg cost %s: %w", code, err)
	}
	return true, nil
}

// weightedAverage applies the moving weighted-average costing rule, rounding
// to the nearest integer. The second return is false when the combined stock
// is not positive, in which case the stored average must stay unchanged.
func weightedAverage(priorAvg float64, priorStock int, purchaseCost float64, purchaseQty int) (float64, bool) {
	denominator := priorStock + purchaseQty
	if denominator <= 0 {
		return 0, false
	}
	value := (priorAvg*float64(priorStock) + purchaseCost) / float64(denominator)
	return math.Round(value), true
}

func groupByProduct(lines []PurchaseLine) map[string]accumulation {
	grouped := make(map[string]accumulation)
	for _, line := range lines {
		acc := grouped[line.ProductCode]
		acc.quantity += line.Quantity
		acc.totalCost += float64(line.Quantity) * line.CostPrice
		grouped[line.ProductCode] = acc
	}
	return grouped
}
