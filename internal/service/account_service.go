package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/ids"
	"github.com/SulTenZ/Food-Recipe-App/internal/mail"
	"github.com/SulTenZ/Food-Recipe-App/internal/metrics"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
)

const (
	minRegisterPasswordLength = 6
	minResetPasswordLength    = 8
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
}

type LoginResult struct {
	Token     string
	AccountID string
}

type AccountService struct {
	store    AccountStore
	hasher   PasswordHasher
	otp      *OTPIssuer
	guard    *LoginGuard
	sessions *SessionManager
	log      zerolog.Logger
}

func NewAccountService(store AccountStore, hasher PasswordHasher, otp *OTPIssuer, guard *LoginGuard, sessions *SessionManager, log zerolog.Logger) *AccountService {
	return &AccountService{
		store:    store,
		hasher:   hasher,
		otp:      otp,
		guard:    guard,
		sessions: sessions,
		log:      log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and emails its registration code.
// The account persists even when delivery fails so the user can resend.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.Account, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if len(in.Password) < minRegisterPasswordLength {
		return models.Account{}, apperr.Invalid("Validation failed", "password must be at least 6 characters")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return models.Account{}, apperr.New(apperr.KindConflict, "Email already registered")
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return models.Account{}, storeError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.Account{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	account := models.Account{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		account.Phone = &phone
	}

	code, err := s.otp.Prepare(&account, mail.PurposeRegister)
	if err != nil {
		return models.Account{}, err
	}

	if err := s.store.Create(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return models.Account{}, apperr.Wrap(apperr.KindConflict, "Email or username already registered", err)
		}
		return models.Account{}, storeError(err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("account registered")

	if err := s.otp.Deliver(ctx, account.Email, code, mail.PurposeRegister); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("registration otp delivery failed")
		return account, err
	}
	return account, nil
}

// VerifyRegistration marks the account verified and consumes the code in one
// write.
func (s *AccountService) VerifyRegistration(ctx context.Context, email, code string) (models.Account, error) {
	return mutateAccount(ctx, s.store, byEmail(s.store, normalizeEmail(email)), func(account *models.Account) (bool, error) {
		if err := s.otp.Verify(account, code, mail.PurposeRegister); err != nil {
			return false, otpError(err)
		}
		account.IsVerified = true
		account.ClearOTP()
		return true, nil
	})
}

// ResendRegistrationOTP replaces the outstanding code of an unverified account.
func (s *AccountService) ResendRegistrationOTP(ctx context.Context, email string) error {
	var code string
	account, err := mutateAccount(ctx, s.store, byEmail(s.store, normalizeEmail(email)), func(account *models.Account) (bool, error) {
		if account.IsVerified {
			return false, apperr.New(apperr.KindValidationFailed, "Account already verified")
		}
		c, err := s.otp.Prepare(account, mail.PurposeRegister)
		if err != nil {
			return false, err
		}
		code = c
		return true, nil
	})
	if err != nil {
		return err
	}
	return s.otp.Deliver(ctx, account.Email, code, mail.PurposeRegister)
}

// Login runs the guard checks in order: ban, verification, password. The
// failure or success transition and the new session land in a single write.
func (s *AccountService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var token string
	account, err := mutateAccount(ctx, s.store, byEmail(s.store, normalizeEmail(email)), func(account *models.Account) (bool, error) {
		if err := s.guard.Check(account); err != nil {
			return false, err
		}
		if !account.IsVerified {
			return false, apperr.New(apperr.KindForbidden, "Account not verified. Please verify your account.")
		}

		ok, err := s.hasher.Verify(password, account.PasswordHash)
		if err != nil {
			return false, apperr.Wrap(apperr.KindInternal, "verify password", err)
		}
		if !ok {
			if s.guard.RecordFailure(account) {
				s.log.Warn().Str("account_id", account.ID).Msg("account temporarily banned")
			}
			return true, apperr.New(apperr.KindInvalidCredentials, "Invalid email or password")
		}

		s.guard.RecordSuccess(account)
		t, err := s.sessions.attach(account)
		if err != nil {
			return false, err
		}
		token = t
		return true, nil
	})
	metrics.LoginAttempts.WithLabelValues(loginOutcome(err)).Inc()
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, AccountID: account.ID}, nil
}

func loginOutcome(err error) string {
	if err == nil {
		return "success"
	}
	var ban *apperr.BanError
	if errors.As(err, &ban) {
		return "banned"
	}
	return apperr.KindOf(err).String()
}

func (s *AccountService) Logout(ctx context.Context, accountID, token string) error {
	return s.sessions.Revoke(ctx, accountID, token)
}

func (s *AccountService) Profile(ctx context.Context, accountID string) (models.Account, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return models.Account{}, storeError(err)
	}
	return account, nil
}

// ForgotPassword stores a reset code with its expiry, then emails it.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	var code string
	account, err := mutateAccount(ctx, s.store, byEmail(s.store, normalizeEmail(email)), func(account *models.Account) (bool, error) {
		c, err := s.otp.Prepare(account, mail.PurposeReset)
		if err != nil {
			return false, err
		}
		code = c
		return true, nil
	})
	if err != nil {
		return err
	}
	return s.otp.Deliver(ctx, account.Email, code, mail.PurposeReset)
}

// ResetPassword replaces the password hash and consumes the reset code in one
// write. A weak password leaves the code usable.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := mutateAccount(ctx, s.store, byEmail(s.store, normalizeEmail(email)), func(account *models.Account) (bool, error) {
		if err := s.otp.Verify(account, code, mail.PurposeReset); err != nil {
			return false, apperr.Wrap(apperr.KindOf(err), "Invalid or expired OTP. Please request a new OTP.", err)
		}
		if len(newPassword) < minResetPasswordLength {
			return false, apperr.Invalid("New password must be at least 8 characters long",
				"newPassword must be at least 8 characters")
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return false, apperr.Wrap(apperr.KindInternal, "hash password", err)
		}
		account.PasswordHash = hash
		account.ClearOTP()
		return true, nil
	})
	if apperr.KindOf(err) == apperr.KindNotFound {
		return apperr.Wrap(apperr.KindInvalidOTP, "Invalid or expired OTP. Please request a new OTP.", err)
	}
	if err == nil {
		s.log.Info().Msg("password reset completed")
	}
	return err
}

// Delete removes the account immediately. Owned recipes go with it.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	if err := s.store.Delete(ctx, accountID); err != nil {
		return storeError(err)
	}
	s.log.Info().Str("account_id", accountID).Msg("account deleted")
	return nil
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return accounts, nil
}

func otpError(err error) error {
	if errors.Is(err, apperr.ErrExpired) {
		return apperr.Wrap(apperr.KindExpired, "OTP has expired", err)
	}
	return apperr.Wrap(apperr.KindInvalidOTP, "Invalid OTP", err)
}
