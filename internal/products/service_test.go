package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	products map[string]Product
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: make(map[string]Product)}
}

func (m *mockRepository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return nil, len(m.products), nil
}

func (m *mockRepository) GetByCode(ctx context.Context, code string) (Product, error) {
	p, ok := m.products[code]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(ctx context.Context, product Product) (Product, error) {
	m.products[product.Code] = product
	return product, nil
}

func (m *mockRepository) Update(ctx context.Context, code string, product Product) error {
	if _, ok := m.products[code]; !ok {
		return ErrNotFound
	}
	m.products[code] = product
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, code string) error {
	if _, ok := m.products[code]; !ok {
		return ErrNotFound
	}
	delete(m.products, code)
	return nil
}

type mockCounterStore struct {
	deltas map[string]int64
}

func (m *mockCounterStore) Add(ctx context.Context, collection string, delta int64) error {
	if m.deltas == nil {
		m.deltas = make(map[string]int64)
	}
	m.deltas[collection] += delta
	return nil
}

func TestCreateAndDeleteAdjustCollectionCounter(t *testing.T) {
	repo := newMockRepository()
	counterStore := &mockCounterStore{}
	svc := NewService(repo, counterStore)

	_, err := svc.Create(context.Background(), Product{Code: "P001", Name: "Bandage"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counterStore.deltas[collectionName])

	require.NoError(t, svc.Delete(context.Background(), "P001"))
	assert.Equal(t, int64(0), counterStore.deltas[collectionName])
}

func TestCreateWithoutCounterStore(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Product{Code: "P001", Name: "Bandage"})
	require.NoError(t, err)
	assert.Equal(t, "P001", created.Code)

	require.NoError(t, svc.Delete(context.Background(), "P001"))
}

func TestCreateRejectsInvalidProduct(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), Product{Code: "", Name: "Bandage"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{Code: "P001", Name: "Bandage", SellingPrice: -1})
	require.Error(t, err)
}
