package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

// MemoryAccountStore is an in-process account store with the same uniqueness
// and version semantics as AccountRepository.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	now      func() time.Time
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]models.Account),
		now:      time.Now,
	}
}

func (s *MemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Email == account.Email || existing.Username == account.Username {
			return ErrDuplicateAccount
		}
	}
	if _, ok := s.accounts[account.ID]; ok {
		return ErrDuplicateAccount
	}

	now := s.now()
	account.Version = 1
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.Email == email {
			return account.Clone(), nil
		}
	}
	return models.Account{}, ErrAccountNotFound
}

func (s *MemoryAccountStore) FindByID(_ context.Context, id string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *MemoryAccountStore) FindByOrderToken(_ context.Context, token string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.HasOrderToken(token) {
			return account.Clone(), nil
		}
	}
	return models.Account{}, ErrAccountNotFound
}

func (s *MemoryAccountStore) Save(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	if stored.Version != account.Version {
		return ErrVersionConflict
	}
	for id, existing := range s.accounts {
		if id != account.ID && (existing.Email == account.Email || existing.Username == account.Username) {
			return ErrDuplicateAccount
		}
	}

	account.Version++
	account.UpdatedAt = s.now()
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *MemoryAccountStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryAccountStore) List(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryAccountStore) ListPendingOrders(_ context.Context, olderThan time.Time, limit int) ([]models.PendingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []models.PendingOrder
	for _, account := range s.accounts {
		for _, order := range account.OrderTokens {
			if order.CreatedAt.Before(olderThan) {
				pending = append(pending, models.PendingOrder{
					AccountID: account.ID,
					OrderID:   order.Token,
					CreatedAt: order.CreatedAt,
				})
			}
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// MemoryRecipeStore mirrors RecipeRepository, including the owner scoping.
type MemoryRecipeStore struct {
	mu      sync.RWMutex
	recipes map[string]models.Recipe
	now     func() time.Time
}

func NewMemoryRecipeStore() *MemoryRecipeStore {
	return &MemoryRecipeStore{
		recipes: make(map[string]models.Recipe),
		now:     time.Now,
	}
}

func (s *MemoryRecipeStore) Create(_ context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	s.recipes[recipe.ID] = recipe.Clone()
	return nil
}

func (s *MemoryRecipeStore) GetForOwner(_ context.Context, id, userID string) (models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[id]
	if !ok || recipe.UserID != userID {
		return models.Recipe{}, ErrRecipeNotFound
	}
	return recipe.Clone(), nil
}

func (s *MemoryRecipeStore) ListByOwner(_ context.Context, userID string) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Recipe
	for _, recipe := range s.recipes {
		if recipe.UserID == userID {
			out = append(out, recipe.Clone())
		}
	}
	slices.SortFunc(out, func(a, b models.Recipe) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *MemoryRecipeStore) Update(_ context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.recipes[recipe.ID]
	if !ok || stored.UserID != recipe.UserID {
		return ErrRecipeNotFound
	}
	recipe.CreatedAt = stored.CreatedAt
	recipe.UpdatedAt = s.now()
	s.recipes[recipe.ID] = recipe.Clone()
	return nil
}

func (s *MemoryRecipeStore) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.recipes[id]
	if !ok || stored.UserID != userID {
		return ErrRecipeNotFound
	}
	delete(s.recipes, id)
	return nil
}
