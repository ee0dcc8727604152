package service

import (
	"time"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/metrics"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

// LoginGuard tracks consecutive password failures and applies a temporary ban
// once the threshold is reached. Ban deadlines are evaluated lazily.
type LoginGuard struct {
	threshold   int
	banDuration time.Duration
	now         func() time.Time
}

func NewLoginGuard(threshold int, banDuration time.Duration) *LoginGuard {
	return &LoginGuard{threshold: threshold, banDuration: banDuration, now: time.Now}
}

// Check rejects a login while a ban is active. An elapsed ban is left in
// place; RecordSuccess clears it.
func (g *LoginGuard) Check(account *models.Account) error {
	now := g.now()
	if account.BanActive(now) {
		return apperr.Banned(account.BanExpires.Sub(now))
	}
	return nil
}

// RecordFailure counts a wrong password and reports whether it started a ban.
// Reaching the threshold resets the counter.
func (g *LoginGuard) RecordFailure(account *models.Account) bool {
	account.LoginAttempts++
	if account.LoginAttempts < g.threshold {
		return false
	}
	expires := g.now().Add(g.banDuration)
	account.BanExpires = &expires
	account.LoginAttempts = 0
	metrics.Bans.Inc()
	return true
}

func (g *LoginGuard) RecordSuccess(account *models.Account) {
	account.LoginAttempts = 0
	account.BanExpires = nil
}
