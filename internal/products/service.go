package products

import (
	"context"
	"errors"
	"strings"
)

const collectionName = "products"

// CounterStore records collection totals on create/delete.
type CounterStore interface {
	Add(ctx context.Context, collection string, delta int64) error
}

type Service struct {
	repo     Repository
	counters CounterStore
}

// NewService wires the product master service. A nil counterStore disables
// the collection counter hooks.
func NewService(repo Repository, counterStore CounterStore) *Service {
	return &Service{repo: repo, counters: counterStore}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, code string) (Product, error) {
	if strings.TrimSpace(code) == "" {
		return Product{}, errors.New("products: code required")
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	if s.counters != nil {
		if err := s.counters.Add(ctx, collectionName, 1); err != nil {
			return Product{}, err
		}
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, code string, product Product) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("products: code required")
	}
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, code, product)
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("products: code required")
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	if s.counters != nil {
		return s.counters.Add(ctx, collectionName, -1)
	}
	return nil
}
