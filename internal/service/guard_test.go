package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

func TestLoginGuardTransitions(t *testing.T) {
	clock := &testClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	guard := NewLoginGuard(3, 10*time.Minute)
	guard.now = clock.Now

	var account models.Account
	assert.NoError(t, guard.Check(&account))

	assert.False(t, guard.RecordFailure(&account))
	assert.False(t, guard.RecordFailure(&account))
	assert.Equal(t, 2, account.LoginAttempts)

	assert.True(t, guard.RecordFailure(&account))
	assert.Zero(t, account.LoginAttempts)
	assert.Equal(t, clock.Now().Add(10*time.Minute), *account.BanExpires)

	err := guard.Check(&account)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	clock.Advance(10 * time.Minute)
	assert.NoError(t, guard.Check(&account), "ban is a deadline, not a flag")
	assert.NotNil(t, account.BanExpires)

	guard.RecordSuccess(&account)
	assert.Nil(t, account.BanExpires)
	assert.Zero(t, account.LoginAttempts)
}
