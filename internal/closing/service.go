package closing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-pos/meridian-pos/internal/backoffice"
	"github.com/meridian-pos/meridian-pos/internal/trade"
)

// SaleSource reads register sessions and sales. Satisfied by trade.Repository.
type SaleSource interface {
	LatestSessionBefore(ctx context.Context, shopCode string, at time.Time) (trade.RegisterSession, error)
	ListSales(ctx context.Context, shopCode string, from, to time.Time) ([]trade.Sale, error)
	SaleLines(ctx context.Context, saleID int64) ([]trade.SaleLine, error)
}

// Deliverer ships the serialized report file. Satisfied by ftpx.Client.
type Deliverer interface {
	Store(ctx context.Context, filename string, data []byte) error
}

type Service struct {
	sales     SaleSource
	deliverer Deliverer
	connector backoffice.Connector
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(sales SaleSource, deliverer Deliverer, connector backoffice.Connector, logger *slog.Logger) *Service {
	return &Service{
		sales:     sales,
		deliverer: deliverer,
		connector: connector,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Run assembles the closing report for the shop's most recent register
// session on the given date, ships it to the file endpoint and triggers the
// back-office system's own closing for the same date. A back-office sign-out
// is attempted on every path, including failures.
func (s *Service) Run(ctx context.Context, shopCode string, date time.Time) (report Report, err error) {
	if err := s.connector.Authenticate(ctx); err != nil {
		return Report{}, fmt.Errorf("closing: authenticate: %w", err)
	}
	defer func() {
		if signOutErr := s.connector.SignOut(ctx); signOutErr != nil {
			s.logger.Warn("back-office sign out", slog.Any("error", signOutErr))
		}
	}()

	report, err = s.Build(ctx, shopCode, date)
	if err != nil {
		return Report{}, err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return Report{}, fmt.Errorf("closing: marshal report: %w", err)
	}
	filename := fmt.Sprintf("meridian-%s-%s.json", shopCode, date.Format("20060102"))
	if err := s.deliverer.Store(ctx, filename, payload); err != nil {
		return Report{}, fmt.Errorf("closing: deliver %s: %w", filename, err)
	}

	if err := s.connector.TriggerClosing(ctx, shopCode, date); err != nil {
		return Report{}, fmt.Errorf("closing: trigger back-office closing: %w", err)
	}

	s.logger.Info("daily closing completed",
		slog.String("shop", shopCode),
		slog.String("date", date.Format("2006-01-02")),
		slog.Int("sales", report.SaleCount))
	return report, nil
}

// Build aggregates the session's sales into the report without delivering it.
func (s *Service) Build(ctx context.Context, shopCode string, date time.Time) (Report, error) {
	queryAt := endOfDay(date)
	if now := s.now(); now.Before(queryAt) {
		queryAt = now
	}

	session, err := s.sales.LatestSessionBefore(ctx, shopCode, queryAt)
	if err != nil {
		if errors.Is(err, trade.ErrNoSession) {
			return Report{}, ErrNoSession
		}
		return Report{}, fmt.Errorf("closing: load session: %w", err)
	}

	windowEnd := queryAt
	if session.ClosedAt != nil {
		windowEnd = *session.ClosedAt
	}

	sales, err := s.sales.ListSales(ctx, shopCode, session.OpenedAt, windowEnd)
	if err != nil {
		return Report{}, fmt.Errorf("closing: list sales: %w", err)
	}

	report := Report{
		ID:          uuid.NewString(),
		ShopCode:    shopCode,
		Date:        date.Format("2006/01/02"),
		SessionID:   session.ID,
		OpenedAt:    session.OpenedAt,
		ClosedAt:    windowEnd,
		GeneratedAt: s.now(),
	}
	for _, sale := range sales {
		lines, err := s.sales.SaleLines(ctx, sale.ID)
		if err != nil {
			return Report{}, fmt.Errorf("closing: load sale %d lines: %w", sale.ID, err)
		}
		report.fold(sale, classifySale(sale, lines))
	}
	return report, nil
}

func endOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).AddDate(0, 0, 1)
}
