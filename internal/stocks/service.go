package stocks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListByShop(ctx context.Context, shopCode string) ([]Stock, error) {
	return s.repo.ListByShop(ctx, shopCode)
}

// SnapshotMonth copies every shop's live stock into the monthly archive under
// the given month's label. Overwrite semantics make re-runs idempotent for
// unchanged stock; this is not a point-in-time capture unless run exactly
// once at the month boundary.
func (s *Service) SnapshotMonth(ctx context.Context, month time.Time) (int, error) {
	label := month.Format(MonthLayout)

	live, err := s.repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("stocks: load live stock: %w", err)
	}

	snapshots := make([]MonthlyStock, 0, len(live))
	for _, stock := range live {
		snapshots = append(snapshots, MonthlyStock{
			Month:       label,
			ShopCode:    stock.ShopCode,
			ProductCode: stock.ProductCode,
			ProductName: stock.ProductName,
			Quantity:    stock.Quantity,
		})
	}
	if err := s.repo.UpsertMonthly(ctx, snapshots); err != nil {
		return 0, fmt.Errorf("stocks: archive month %s: %w", label, err)
	}

	s.logger.Info("monthly stock snapshot written",
		slog.String("month", label),
		slog.Int("rows", len(snapshots)))
	return len(snapshots), nil
}
