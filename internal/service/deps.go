package service

import (
	"context"
	"io"
	"time"

	"github.com/SulTenZ/Food-Recipe-App/internal/mail"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/payment"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByOrderToken(ctx context.Context, token string) (models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Account, error)
	ListPendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]models.PendingOrder, error)
}

type RecipeStore interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetForOwner(ctx context.Context, id, userID string) (models.Recipe, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id, userID string) error
}

type OTPSender interface {
	SendOTP(ctx context.Context, recipient string, code string, purpose mail.Purpose) error
}

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, encoded []byte) (bool, error)
}

type PaymentGateway interface {
	CreateCheckout(ctx context.Context, order payment.Order) (payment.Checkout, error)
	CreateQRIS(ctx context.Context, order payment.Order) (payment.QRIS, error)
	Status(ctx context.Context, orderID string) (payment.Status, error)
	VerifySignature(n payment.Notification) bool
}

// CallbackDeduper reports whether a notification key is seen for the first
// time. Release forgets a key whose processing failed so a redelivery runs.
type CallbackDeduper interface {
	FirstDelivery(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type PhotoStore interface {
	PutPhoto(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PhotoURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeletePhoto(ctx context.Context, key string) error
}
