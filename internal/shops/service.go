package shops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const collectionName = "shops"

// CounterStore records collection totals on create/delete.
type CounterStore interface {
	Add(ctx context.Context, collection string, delta int64) error
}

type Service struct {
	repo        Repository
	counters    CounterStore
	emailDomain string
}

// NewService wires the shop master service. A nil counterStore disables the
// collection counter hooks.
func NewService(repo Repository, counterStore CounterStore, emailDomain string) *Service {
	return &Service{repo: repo, counters: counterStore, emailDomain: emailDomain}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Shop, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, code string) (Shop, error) {
	if strings.TrimSpace(code) == "" {
		return Shop{}, errors.New("shops: code required")
	}
	return s.repo.GetByCode(ctx, code)
}

// EnsureAccount creates a login identity for the shop code with a
// deterministic email. Returns true when the identity was created by this
// call; a pre-existing identity is left untouched and reported as false.
func (s *Service) EnsureAccount(ctx context.Context, code string) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, errors.New("shops: code required")
	}
	hash, err := randomPasswordHash()
	if err != nil {
		return false, err
	}
	err = s.repo.CreateIdentity(ctx, s.emailFor(code), hash, "shop")
	if errors.Is(err, ErrIdentityExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if s.counters != nil {
		if err := s.counters.Add(ctx, collectionName, 1); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *Service) emailFor(code string) string {
	return fmt.Sprintf("%s@%s", strings.ToLower(code), s.emailDomain)
}

// randomPasswordHash generates an unguessable initial credential. Shops reset
// the password through the back-office flow before first login.
func randomPasswordHash() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
