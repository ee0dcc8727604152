//go:build integration

package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SulTenZ/Food-Recipe-App/internal/database"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("resep"),
		postgres.WithUsername("resep"),
		postgres.WithPassword("resep"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to get connection string: %s", err)
	}

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect: %s", err)
	}
	if err := database.Migrate(ctx, testPool); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}

	code := m.Run()

	testPool.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func truncate(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE accounts CASCADE`)
	require.NoError(t, err)
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewAccountRepository(testPool)

	acc := newAccount("acc-1", "alice", "a@x.com")
	require.NoError(t, repo.Create(ctx, acc))
	assert.EqualValues(t, 1, acc.Version)

	assert.ErrorIs(t, repo.Create(ctx, newAccount("acc-2", "bob", "a@x.com")), ErrDuplicateAccount)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Empty(t, found.Tokens)
	assert.Empty(t, found.OrderTokens)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRepository_SaveVersioning(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewAccountRepository(testPool)
	require.NoError(t, repo.Create(ctx, newAccount("acc-1", "alice", "a@x.com")))

	a, err := repo.FindByID(ctx, "acc-1")
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, "acc-1")
	require.NoError(t, err)

	a.AddToken("digest-1")
	a.AddOrderToken("order-1", time.Now().Add(-time.Hour))
	require.NoError(t, repo.Save(ctx, &a))
	assert.EqualValues(t, 2, a.Version)

	b.LoginAttempts = 2
	assert.ErrorIs(t, repo.Save(ctx, &b), ErrVersionConflict)

	owner, err := repo.FindByOrderToken(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"digest-1"}, owner.Tokens)

	pending, err := repo.ListPendingOrders(ctx, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.PendingOrder{AccountID: "acc-1", OrderID: "order-1", CreatedAt: pending[0].CreatedAt}, pending[0])
}

func TestRecipeRepository_CascadeOnAccountDelete(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	accounts := NewAccountRepository(testPool)
	recipes := NewRecipeRepository(testPool)

	require.NoError(t, accounts.Create(ctx, newAccount("acc-1", "alice", "a@x.com")))
	recipe := &models.Recipe{ID: "r1", UserID: "acc-1", Name: "Soto", Ingredients: []string{"ayam"}, Instructions: "rebus semuanya"}
	require.NoError(t, recipes.Create(ctx, recipe))

	require.NoError(t, accounts.Delete(ctx, "acc-1"))
	_, err := recipes.GetForOwner(ctx, "r1", "acc-1")
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}
