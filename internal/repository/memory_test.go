package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

func newAccount(id, username, email string) *models.Account {
	return &models.Account{ID: id, Username: username, Email: email, PasswordHash: []byte("hash")}
}

func TestMemoryAccountStore_CreateEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()

	require.NoError(t, store.Create(ctx, newAccount("1", "alice", "a@x.com")))
	assert.ErrorIs(t, store.Create(ctx, newAccount("2", "bob", "a@x.com")), ErrDuplicateAccount)
	assert.ErrorIs(t, store.Create(ctx, newAccount("3", "alice", "b@x.com")), ErrDuplicateAccount)
	require.NoError(t, store.Create(ctx, newAccount("4", "bob", "b@x.com")))
}

func TestMemoryAccountStore_FindNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()

	_, err := store.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = store.FindByOrderToken(ctx, "order-x")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMemoryAccountStore_SaveDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	require.NoError(t, store.Create(ctx, newAccount("1", "alice", "a@x.com")))

	first, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	second, err := store.FindByID(ctx, "1")
	require.NoError(t, err)

	first.LoginAttempts = 1
	require.NoError(t, store.Save(ctx, &first))
	assert.EqualValues(t, 2, first.Version)

	second.LoginAttempts = 1
	assert.ErrorIs(t, store.Save(ctx, &second), ErrVersionConflict)

	missing := models.Account{ID: "nope"}
	assert.ErrorIs(t, store.Save(ctx, &missing), ErrAccountNotFound)
}

func TestMemoryAccountStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	require.NoError(t, store.Create(ctx, newAccount("1", "alice", "a@x.com")))

	acc, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	acc.AddToken("digest")

	again, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, again.Tokens)
}

func TestMemoryAccountStore_ListPendingOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	now := time.Now()

	acc := newAccount("1", "alice", "a@x.com")
	acc.AddOrderToken("order-old", now.Add(-time.Hour))
	acc.AddOrderToken("order-new", now)
	require.NoError(t, store.Create(ctx, acc))

	pending, err := store.ListPendingOrders(ctx, now.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order-old", pending[0].OrderID)
	assert.Equal(t, "1", pending[0].AccountID)

	owner, err := store.FindByOrderToken(ctx, "order-new")
	require.NoError(t, err)
	assert.Equal(t, "1", owner.ID)
}

func TestMemoryAccountStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	require.NoError(t, store.Create(ctx, newAccount("1", "alice", "a@x.com")))

	require.NoError(t, store.Delete(ctx, "1"))
	assert.ErrorIs(t, store.Delete(ctx, "1"), ErrAccountNotFound)
}

func TestMemoryRecipeStore_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecipeStore()

	recipe := &models.Recipe{ID: "r1", UserID: "alice", Name: "Soto", Ingredients: []string{"ayam"}, Instructions: "rebus semuanya"}
	require.NoError(t, store.Create(ctx, recipe))

	_, err := store.GetForOwner(ctx, "r1", "bob")
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	stolen := recipe.Clone()
	stolen.UserID = "bob"
	assert.ErrorIs(t, store.Update(ctx, &stolen), ErrRecipeNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "r1", "bob"), ErrRecipeNotFound)

	list, err := store.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, "r1", "alice"))
	_, err = store.GetForOwner(ctx, "r1", "alice")
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}
