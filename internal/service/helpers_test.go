package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/SulTenZ/Food-Recipe-App/internal/config"
	"github.com/SulTenZ/Food-Recipe-App/internal/mail"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/payment"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
	"github.com/SulTenZ/Food-Recipe-App/internal/security"
)

const testPrice = int64(100000)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentOTP struct {
	Recipient string
	Code      string
	Purpose   mail.Purpose
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentOTP
	err  error
}

func (f *fakeSender) SendOTP(_ context.Context, recipient, code string, purpose mail.Purpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentOTP{Recipient: recipient, Code: code, Purpose: purpose})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentOTP {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no otp sent")
	return f.sent[len(f.sent)-1]
}

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	statusErr map[string]error
	statuses  map[string]payment.Status
	badSig    bool
	orders    []payment.Order
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		statuses:  make(map[string]payment.Status),
		statusErr: make(map[string]error),
	}
}

func (g *fakeGateway) CreateCheckout(_ context.Context, order payment.Order) (payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return payment.Checkout{}, g.createErr
	}
	g.orders = append(g.orders, order)
	return payment.Checkout{Token: "snap-" + order.OrderID, RedirectURL: "https://pay.example/" + order.OrderID}, nil
}

func (g *fakeGateway) CreateQRIS(_ context.Context, order payment.Order) (payment.QRIS, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return payment.QRIS{}, g.createErr
	}
	g.orders = append(g.orders, order)
	return payment.QRIS{OrderID: order.OrderID, QRISURL: "https://qr.example/" + order.OrderID, QRString: "000201"}, nil
}

func (g *fakeGateway) Status(_ context.Context, orderID string) (payment.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.statusErr[orderID]; err != nil {
		return payment.Status{}, err
	}
	st, ok := g.statuses[orderID]
	if !ok {
		return payment.Status{}, errors.New("unknown order")
	}
	return st, nil
}

func (g *fakeGateway) VerifySignature(payment.Notification) bool {
	return !g.badSig
}

func (g *fakeGateway) setStatus(orderID, transaction, fraud string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[orderID] = payment.Status{
		OrderID:           orderID,
		StatusCode:        "200",
		TransactionStatus: transaction,
		FraudStatus:       fraud,
		GrossAmount:       payment.FormatAmount(amount),
	}
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *fakeDeduper) FirstDelivery(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *fakeDeduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

// hookStore wraps the memory store so tests can inject failures or
// interleaved writes just before a Save reaches it.
type hookStore struct {
	*repository.MemoryAccountStore

	mu         sync.Mutex
	beforeSave []func(account *models.Account) error
	saves      int
}

// onNextSave queues fn to run ahead of the next Save; a non-nil error from fn
// is returned in place of the write.
func (s *hookStore) onNextSave(fn func(account *models.Account) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeSave = append(s.beforeSave, fn)
}

func (s *hookStore) Save(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	s.saves++
	var hook func(*models.Account) error
	if len(s.beforeSave) > 0 {
		hook = s.beforeSave[0]
		s.beforeSave = s.beforeSave[1:]
	}
	s.mu.Unlock()

	if hook != nil {
		if err := hook(account); err != nil {
			return err
		}
	}
	return s.MemoryAccountStore.Save(ctx, account)
}

func (s *hookStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// concurrentWrite returns a hook that commits edit through the inner store
// first, so the pending Save hits a version conflict.
func (s *hookStore) concurrentWrite(t *testing.T, edit func(account *models.Account)) func(*models.Account) error {
	return func(account *models.Account) error {
		other, err := s.MemoryAccountStore.FindByID(context.Background(), account.ID)
		require.NoError(t, err)
		edit(&other)
		require.NoError(t, s.MemoryAccountStore.Save(context.Background(), &other))
		return nil
	}
}

type storedPhoto struct {
	body        []byte
	contentType string
}

type fakePhotos struct {
	mu      sync.Mutex
	objects map[string]storedPhoto
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{objects: make(map[string]storedPhoto)}
}

func (p *fakePhotos) PutPhoto(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[key] = storedPhoto{body: body, contentType: contentType}
	return nil
}

func (p *fakePhotos) PhotoURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://photos.example/" + key, nil
}

func (p *fakePhotos) DeletePhoto(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.objects, key)
	return nil
}

var testHashParams = security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type harness struct {
	clock    *testClock
	store    *hookStore
	sender   *fakeSender
	gateway  *fakeGateway
	dedupe   *fakeDeduper
	otp      *OTPIssuer
	guard    *LoginGuard
	sessions *SessionManager
	accounts *AccountService
	premium  *PremiumService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock:   &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		store:   &hookStore{MemoryAccountStore: repository.NewMemoryAccountStore()},
		sender:  &fakeSender{},
		gateway: newFakeGateway(),
		dedupe:  &fakeDeduper{},
	}
	log := zerolog.Nop()

	h.otp = NewOTPIssuer(h.sender, config.OTPConfig{
		RegisterLength: 6,
		ResetLength:    8,
		ResetTTL:       15 * time.Minute,
	})
	h.otp.now = h.clock.Now

	h.guard = NewLoginGuard(3, 10*time.Minute)
	h.guard.now = h.clock.Now

	signer := security.NewTokenSigner("test-secret", time.Hour)
	h.sessions = NewSessionManager(h.store, signer, 0, log)
	h.accounts = NewAccountService(h.store, security.NewHasher(testHashParams), h.otp, h.guard, h.sessions, log)

	h.premium = NewPremiumService(h.store, h.gateway, h.dedupe, testPrice, log)
	h.premium.now = h.clock.Now
	return h
}

// verifiedAccount registers and verifies an account, returning its ID.
func (h *harness) verifiedAccount(t *testing.T, username, email, password string) string {
	t.Helper()
	ctx := context.Background()

	account, err := h.accounts.Register(ctx, RegisterInput{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	_, err = h.accounts.VerifyRegistration(ctx, email, h.sender.last(t).Code)
	require.NoError(t, err)
	return account.ID
}
