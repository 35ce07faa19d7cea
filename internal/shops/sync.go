package shops

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-pos/meridian-pos/internal/backoffice"
)

// upsertBatchSize bounds a single transactional write to the shop master.
const upsertBatchSize = 100

// Syncer pulls the shop roster from the back-office system and merges it into
// the shop master.
type Syncer struct {
	service   *Service
	repo      Repository
	connector backoffice.Connector
	logger    *slog.Logger
}

// NewSyncer wires dependencies for the roster sync job.
func NewSyncer(service *Service, repo Repository, connector backoffice.Connector, logger *slog.Logger) *Syncer {
	return &Syncer{service: service, repo: repo, connector: connector, logger: logger}
}

// SyncResult summarises one sync run.
type SyncResult struct {
	Total       int `json:"total"`
	Provisioned int `json:"provisioned"`
	Batches     int `json:"batches"`
}

// Sync fetches the roster for the given date, provisions missing login
// identities and upserts every shop. Upserts run as concurrent batches of
// 100; each batch commits independently, so a failed batch never rolls back
// the others. The back-office session is closed best-effort on every path.
func (s *Syncer) Sync(ctx context.Context, date time.Time) (SyncResult, error) {
	if err := s.connector.Authenticate(ctx); err != nil {
		return SyncResult{}, fmt.Errorf("shops: authenticate: %w", err)
	}
	defer func() {
		if err := s.connector.SignOut(ctx); err != nil {
			s.logger.Warn("back-office sign out", slog.Any("error", err))
		}
	}()

	roster, err := s.connector.FetchRoster(ctx, date)
	if err != nil {
		return SyncResult{}, fmt.Errorf("shops: fetch roster: %w", err)
	}

	result := SyncResult{Total: len(roster)}
	upserts := make([]UpsertShop, 0, len(roster))
	for _, row := range roster {
		created, err := s.service.EnsureAccount(ctx, row.Code)
		if err != nil {
			return result, fmt.Errorf("shops: ensure account %s: %w", row.Code, err)
		}
		if created {
			result.Provisioned++
		}
		upserts = append(upserts, UpsertShop{
			Shop: Shop{
				Code:    row.Code,
				Name:    row.Name,
				Kana:    row.Kana,
				Address: row.Address,
				Phone:   row.Phone,
			},
			SetDefaults: created,
		})
	}

	batches := chunkUpserts(upserts, upsertBatchSize)
	result.Batches = len(batches)

	var g errgroup.Group
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			return s.repo.UpsertBatch(ctx, batch)
		})
	}
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("shops: upsert batch: %w", err)
	}

	s.logger.Info("shop roster synced",
		slog.Int("total", result.Total),
		slog.Int("provisioned", result.Provisioned),
		slog.Int("batches", result.Batches))
	return result, nil
}

// chunkUpserts partitions rows into fixed-size batches, the last one holding
// the remainder.
func chunkUpserts(rows []UpsertShop, size int) [][]UpsertShop {
	if size <= 0 || len(rows) == 0 {
		return nil
	}
	batches := make([][]UpsertShop, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
