package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

type AccountLoader interface {
	Profile(ctx context.Context, accountID string) (models.Account, error)
}

// RequirePremium runs after RequireSession. It reloads the account so an
// upgrade granted after the session was resolved is seen.
func RequirePremium(accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := CurrentAccount(c)
		if !ok {
			abort(c, apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided."))
			return
		}

		account, err := accounts.Profile(c.Request.Context(), current.ID)
		if err != nil {
			abort(c, err)
			return
		}
		if !account.IsPremium {
			abort(c, apperr.New(apperr.KindForbidden, "Access denied. Premium membership required."))
			return
		}

		c.Set(currentAccountKey, account)
		c.Next()
	}
}
