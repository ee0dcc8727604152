package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

const (
	currentAccountKey = "current_account"
	accessTokenKey    = "access_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Account, error)
}

// RequireSession accepts "Authorization: Bearer <token>" and stores the
// resolved account and raw token on the context.
func RequireSession(sessions Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided."))
			return
		}

		account, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(accessTokenKey, token)
		c.Set(currentAccountKey, account)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func CurrentAccount(c *gin.Context) (models.Account, bool) {
	v, ok := c.Get(currentAccountKey)
	if !ok {
		return models.Account{}, false
	}
	account, ok := v.(models.Account)
	return account, ok
}

func AccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
}
