package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
	"github.com/SulTenZ/Food-Recipe-App/internal/security"
)

// SessionManager issues bearer tokens and keeps the account's token set as the
// source of truth for revocation. Only SHA-256 digests are persisted.
type SessionManager struct {
	store       AccountStore
	signer      *security.TokenSigner
	maxSessions int
	log         zerolog.Logger
}

func NewSessionManager(store AccountStore, signer *security.TokenSigner, maxSessions int, log zerolog.Logger) *SessionManager {
	return &SessionManager{store: store, signer: signer, maxSessions: maxSessions, log: log}
}

// attach mints a token for account and adds its digest to the token set
// without persisting. The oldest digests are dropped past maxSessions.
func (m *SessionManager) attach(account *models.Account) (string, error) {
	token, _, err := m.signer.Sign(account.ID, account.Email)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "sign session token", err)
	}
	account.AddToken(security.TokenDigest(token))
	if m.maxSessions > 0 && len(account.Tokens) > m.maxSessions {
		account.Tokens = append([]string(nil), account.Tokens[len(account.Tokens)-m.maxSessions:]...)
	}
	return token, nil
}

// Issue mints and persists a new token for an existing account.
func (m *SessionManager) Issue(ctx context.Context, accountID string) (string, error) {
	var token string
	_, err := mutateAccount(ctx, m.store, byID(m.store, accountID), func(account *models.Account) (bool, error) {
		t, err := m.attach(account)
		if err != nil {
			return false, err
		}
		token = t
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to its account. The signature must be
// valid, unexpired, and the digest still present in the account's token set.
func (m *SessionManager) Authenticate(ctx context.Context, token string) (models.Account, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return models.Account{}, apperr.Wrap(apperr.KindUnauthenticated, "Invalid or expired token", err)
	}

	account, err := m.store.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return models.Account{}, apperr.New(apperr.KindUnauthenticated, "Invalid or expired token")
		}
		return models.Account{}, storeError(err)
	}

	if !account.HasToken(security.TokenDigest(token)) {
		return models.Account{}, apperr.New(apperr.KindUnauthenticated, "Invalid or expired token")
	}
	return account, nil
}

// Revoke removes token from the account's set. Revoking a token that is
// already absent is a no-op.
func (m *SessionManager) Revoke(ctx context.Context, accountID, token string) error {
	digest := security.TokenDigest(token)
	_, err := mutateAccount(ctx, m.store, byID(m.store, accountID), func(account *models.Account) (bool, error) {
		return account.RemoveToken(digest), nil
	})
	if err == nil {
		m.log.Debug().Str("account_id", accountID).Msg("session revoked")
	}
	return err
}
