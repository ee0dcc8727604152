package apperr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindNotFound, "User not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("login: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal server error", Message(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("smtp down")
	err := Wrap(KindDeliveryFailed, "Failed to send OTP email", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, "Failed to send OTP email", Message(err))
}

func TestBanMinutesRoundUp(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{10 * time.Minute, 10},
		{9*time.Minute + time.Second, 10},
		{30 * time.Second, 1},
		{time.Minute, 1},
	}
	for _, tc := range cases {
		b := &BanError{Remaining: tc.remaining}
		assert.Equal(t, tc.want, b.Minutes(), tc.remaining.String())
	}
}

func TestBannedIsForbidden(t *testing.T) {
	err := Banned(5 * time.Minute)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Contains(t, Message(err), "5 minute(s)")

	var ban *BanError
	assert.True(t, errors.As(err, &ban))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, 404},
		{New(KindConflict, "taken"), 400},
		{ErrInvalidOTP, 400},
		{ErrExpired, 400},
		{ErrInvalidCredentials, 400},
		{Invalid("bad", "name"), 400},
		{ErrAlreadyPremium, 400},
		{Banned(time.Minute), 403},
		{ErrUnauthenticated, 401},
		{ErrDeliveryFailed, 502},
		{ErrGatewayError, 502},
		{errors.New("plain"), 500},
		{Wrap(KindInternal, "x", nil), 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}
