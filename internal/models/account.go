package models

import (
	"slices"
	"time"
)

type OrderToken struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

type Account struct {
	ID            string
	Username      string
	Email         string
	Phone         *string
	PasswordHash  []byte
	OTP           *string
	OTPExpires    *time.Time
	OTPPurpose    string
	IsVerified    bool
	LoginAttempts int
	BanExpires    *time.Time
	Tokens        []string
	OrderTokens   []OrderToken
	IsPremium     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// BanActive reports whether a ban deadline is set and still in the future.
func (a *Account) BanActive(now time.Time) bool {
	return a.BanExpires != nil && a.BanExpires.After(now)
}

func (a *Account) HasToken(digest string) bool {
	return slices.Contains(a.Tokens, digest)
}

func (a *Account) AddToken(digest string) {
	if !a.HasToken(digest) {
		a.Tokens = append(a.Tokens, digest)
	}
}

// RemoveToken drops digest from the token set and reports whether it was there.
func (a *Account) RemoveToken(digest string) bool {
	before := len(a.Tokens)
	a.Tokens = slices.DeleteFunc(a.Tokens, func(t string) bool { return t == digest })
	return len(a.Tokens) != before
}

func (a *Account) HasOrderToken(token string) bool {
	return slices.ContainsFunc(a.OrderTokens, func(o OrderToken) bool { return o.Token == token })
}

func (a *Account) AddOrderToken(token string, now time.Time) {
	a.OrderTokens = append(a.OrderTokens, OrderToken{Token: token, CreatedAt: now})
}

func (a *Account) RemoveOrderToken(token string) bool {
	before := len(a.OrderTokens)
	a.OrderTokens = slices.DeleteFunc(a.OrderTokens, func(o OrderToken) bool { return o.Token == token })
	return len(a.OrderTokens) != before
}

func (a *Account) ClearOTP() {
	a.OTP = nil
	a.OTPExpires = nil
	a.OTPPurpose = ""
}

// Clone returns a deep copy so in-memory stores never share slices with callers.
func (a Account) Clone() Account {
	out := a
	out.PasswordHash = slices.Clone(a.PasswordHash)
	out.Tokens = slices.Clone(a.Tokens)
	out.OrderTokens = slices.Clone(a.OrderTokens)
	if a.Phone != nil {
		v := *a.Phone
		out.Phone = &v
	}
	if a.OTP != nil {
		v := *a.OTP
		out.OTP = &v
	}
	if a.OTPExpires != nil {
		v := *a.OTPExpires
		out.OTPExpires = &v
	}
	if a.BanExpires != nil {
		v := *a.BanExpires
		out.BanExpires = &v
	}
	return out
}

// PendingOrder pairs a stale order token with its owner for reconciliation.
type PendingOrder struct {
	AccountID string
	OrderID   string
	CreatedAt time.Time
}
