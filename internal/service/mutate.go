package service

import (
	"context"
	"errors"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/metrics"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
)

const maxMutateAttempts = 3

// mutation edits an account in memory. save=false discards the edit; err is
// returned to the caller either way, after the save when save=true.
type mutation func(account *models.Account) (save bool, err error)

// mutateAccount runs load → fn → Save and restarts from a fresh load when the
// store reports a concurrent write.
func mutateAccount(ctx context.Context, store AccountStore, load func(ctx context.Context) (models.Account, error), fn mutation) (models.Account, error) {
	var lastErr error
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		account, err := load(ctx)
		if err != nil {
			return models.Account{}, storeError(err)
		}

		save, result := fn(&account)
		if !save {
			return account, result
		}

		if err := store.Save(ctx, &account); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				metrics.StoreConflicts.Inc()
				lastErr = err
				continue
			}
			return models.Account{}, storeError(err)
		}
		return account, result
	}
	return models.Account{}, apperr.Wrap(apperr.KindInternal, "account update kept conflicting", lastErr)
}

func byID(store AccountStore, id string) func(ctx context.Context) (models.Account, error) {
	return func(ctx context.Context) (models.Account, error) {
		return store.FindByID(ctx, id)
	}
}

func byEmail(store AccountStore, email string) func(ctx context.Context) (models.Account, error) {
	return func(ctx context.Context) (models.Account, error) {
		return store.FindByEmail(ctx, email)
	}
}

// storeError translates repository sentinels into the shared taxonomy.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrAccountNotFound):
		return apperr.Wrap(apperr.KindNotFound, "User not found", err)
	case errors.Is(err, repository.ErrDuplicateAccount):
		return apperr.Wrap(apperr.KindConflict, "Email or username already registered", err)
	case errors.Is(err, repository.ErrRecipeNotFound):
		return apperr.Wrap(apperr.KindNotFound, "Recipe not found", err)
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Wrap(apperr.KindInternal, "store failure", err)
	}
}
