package service

import (
	"context"
	"time"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/config"
	"github.com/SulTenZ/Food-Recipe-App/internal/mail"
	"github.com/SulTenZ/Food-Recipe-App/internal/metrics"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/security"
)

// OTPIssuer owns the single outstanding code on an account. Codes are stored
// on the record before delivery; a failed delivery leaves the code in place so
// a later resend replaces it.
type OTPIssuer struct {
	sender OTPSender
	cfg    config.OTPConfig
	now    func() time.Time
}

func NewOTPIssuer(sender OTPSender, cfg config.OTPConfig) *OTPIssuer {
	return &OTPIssuer{sender: sender, cfg: cfg, now: time.Now}
}

// Prepare generates a code for purpose and stores it on account, replacing any
// previous one.
func (o *OTPIssuer) Prepare(account *models.Account, purpose mail.Purpose) (string, error) {
	length, ttl := o.cfg.RegisterLength, o.cfg.RegisterTTL
	if purpose == mail.PurposeReset {
		length, ttl = o.cfg.ResetLength, o.cfg.ResetTTL
	}

	code, err := security.GenerateOTP(length)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "generate otp", err)
	}

	account.OTP = &code
	account.OTPPurpose = string(purpose)
	account.OTPExpires = nil
	if ttl > 0 {
		expires := o.now().Add(ttl)
		account.OTPExpires = &expires
	}
	return code, nil
}

// Deliver sends code to recipient. Any transport failure surfaces as
// DeliveryFailed.
func (o *OTPIssuer) Deliver(ctx context.Context, recipient, code string, purpose mail.Purpose) error {
	if err := o.sender.SendOTP(ctx, recipient, code, purpose); err != nil {
		metrics.OTPIssued.WithLabelValues(string(purpose), "failed").Inc()
		return apperr.Wrap(apperr.KindDeliveryFailed, "Failed to send OTP email", err)
	}
	metrics.OTPIssued.WithLabelValues(string(purpose), "sent").Inc()
	return nil
}

// Verify checks supplied against the stored code issued for purpose. The code
// is not consumed; callers clear it in the same write that applies its effect.
func (o *OTPIssuer) Verify(account *models.Account, supplied string, purpose mail.Purpose) error {
	if account.OTP == nil || supplied == "" || account.OTPPurpose != string(purpose) {
		return apperr.ErrInvalidOTP
	}
	if !security.EqualOTP(*account.OTP, supplied) {
		return apperr.ErrInvalidOTP
	}
	if account.OTPExpires != nil && !o.now().Before(*account.OTPExpires) {
		return apperr.ErrExpired
	}
	return nil
}
