package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

const accountColumns = `
	id, username, email, phone, password_hash, otp, otp_expires, otp_purpose,
	is_verified, login_attempts, ban_expires, tokens, order_tokens, is_premium,
	version, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	const query = `
		INSERT INTO accounts (
			id, username, email, phone, password_hash, otp, otp_expires, otp_purpose,
			is_verified, login_attempts, ban_expires, tokens, order_tokens, is_premium,
			version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, NOW(), NOW()
		)
		RETURNING version, created_at, updated_at
	`

	normalize(account)
	row := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.Phone,
		account.PasswordHash,
		account.OTP,
		account.OTPExpires,
		account.OTPPurpose,
		account.IsVerified,
		account.LoginAttempts,
		account.BanExpires,
		account.Tokens,
		account.OrderTokens,
		account.IsPremium,
	)
	if err := row.Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) FindByOrderToken(ctx context.Context, token string) (models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE order_tokens @> jsonb_build_array(jsonb_build_object('token', $1::text))`
	return r.scanOne(r.pool.QueryRow(ctx, query, token))
}

// Save writes the whole record if nobody else wrote it since it was loaded.
// On success account.Version is advanced to the stored value.
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	const query = `
		UPDATE accounts SET
			username = $2,
			email = $3,
			phone = $4,
			password_hash = $5,
			otp = $6,
			otp_expires = $7,
			otp_purpose = $8,
			is_verified = $9,
			login_attempts = $10,
			ban_expires = $11,
			tokens = $12,
			order_tokens = $13,
			is_premium = $14,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $15
		RETURNING version, updated_at
	`

	normalize(account)
	row := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.Phone,
		account.PasswordHash,
		account.OTP,
		account.OTPExpires,
		account.OTPPurpose,
		account.IsVerified,
		account.LoginAttempts,
		account.BanExpires,
		account.Tokens,
		account.OrderTokens,
		account.IsPremium,
		account.Version,
	)
	if err := row.Scan(&account.Version, &account.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, account.ID)
		}
		if isUniqueViolation(err) {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (r *AccountRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotFound
	}
	return ErrVersionConflict
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) ListPendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]models.PendingOrder, error) {
	const query = `
		SELECT a.id, o.token, o."createdAt"
		FROM accounts a,
		     jsonb_to_recordset(a.order_tokens) AS o(token TEXT, "createdAt" TIMESTAMPTZ)
		WHERE o."createdAt" < $1
		ORDER BY o."createdAt" ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []models.PendingOrder
	for rows.Next() {
		var p models.PendingOrder
		if err := rows.Scan(&p.AccountID, &p.OrderID, &p.CreatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *AccountRepository) scanOne(row pgx.Row) (models.Account, error) {
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	return account, nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.Phone,
		&account.PasswordHash,
		&account.OTP,
		&account.OTPExpires,
		&account.OTPPurpose,
		&account.IsVerified,
		&account.LoginAttempts,
		&account.BanExpires,
		&account.Tokens,
		&account.OrderTokens,
		&account.IsPremium,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

// normalize keeps NOT NULL array/jsonb columns from receiving SQL NULL.
func normalize(account *models.Account) {
	if account.Tokens == nil {
		account.Tokens = []string{}
	}
	if account.OrderTokens == nil {
		account.OrderTokens = []models.OrderToken{}
	}
}
