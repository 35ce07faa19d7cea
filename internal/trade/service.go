package trade

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SequenceStore hands out monotonically increasing transaction numbers.
type SequenceStore interface {
	Next(ctx context.Context, name string) (int64, error)
}

var sequenceNames = map[MovementKind]string{
	KindPurchase:  "purchases",
	KindDelivery:  "deliveries",
	KindRejection: "rejections",
}

type Service struct {
	repo      Repository
	sequences SequenceStore
	now       func() time.Time
}

func NewService(repo Repository, sequences SequenceStore) *Service {
	return &Service{repo: repo, sequences: sequences, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RecordSale assigns the next sale sequence number and persists the sale.
func (s *Service) RecordSale(ctx context.Context, sale Sale) (Sale, error) {
	if err := validateSale(sale); err != nil {
		return Sale{}, err
	}
	seq, err := s.sequences.Next(ctx, "sales")
	if err != nil {
		return Sale{}, err
	}
	sale.SequenceNo = seq
	if sale.Date.IsZero() {
		sale.Date = s.now()
	}
	recorded, err := s.repo.RecordSale(ctx, sale)
	if err != nil {
		return Sale{}, err
	}
	return recorded, nil
}

// RecordMovement assigns a sequence number and persists a purchase, delivery
// or rejection.
func (s *Service) RecordMovement(ctx context.Context, kind MovementKind, movement Movement) (Movement, error) {
	if movement.ShopCode == "" {
		return Movement{}, errors.New("trade: shop code required")
	}
	if len(movement.Lines) == 0 {
		return Movement{}, errors.New("trade: at least one line required")
	}
	name, ok := sequenceNames[kind]
	if !ok {
		return Movement{}, fmt.Errorf("trade: unknown movement kind %q", kind)
	}
	seq, err := s.sequences.Next(ctx, name)
	if err != nil {
		return Movement{}, err
	}
	movement.SequenceNo = seq
	if movement.Date.IsZero() {
		movement.Date = s.now()
	}
	return s.repo.RecordMovement(ctx, kind, movement)
}

// OpenRegister starts a register session for the shop.
func (s *Service) OpenRegister(ctx context.Context, shopCode string) (RegisterSession, error) {
	if shopCode == "" {
		return RegisterSession{}, errors.New("trade: shop code required")
	}
	return s.repo.OpenSession(ctx, shopCode, s.now())
}

// CloseRegister closes the open register session for the shop.
func (s *Service) CloseRegister(ctx context.Context, shopCode string) error {
	if shopCode == "" {
		return errors.New("trade: shop code required")
	}
	return s.repo.CloseSession(ctx, shopCode, s.now())
}

func validateSale(sale Sale) error {
	if sale.ShopCode == "" {
		return errors.New("trade: shop code required")
	}
	if len(sale.Lines) == 0 {
		return errors.New("trade: at least one line required")
	}
	for _, line := range sale.Lines {
		if line.ProductCode == "" {
			return errors.New("trade: line product code required")
		}
		if line.Quantity <= 0 {
			return errors.New("trade: line quantity must be positive")
		}
	}
	return nil
}
