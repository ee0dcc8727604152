package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/ids"
	"github.com/SulTenZ/Food-Recipe-App/internal/metrics"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/payment"
	"github.com/SulTenZ/Food-Recipe-App/internal/repository"
)

type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodQRIS PaymentMethod = "qris"
)

// resolution sources, used for metrics and logs
const (
	sourceCallback  = "callback"
	sourcePoll      = "poll"
	sourceReconcile = "reconcile"
)

type Initiation struct {
	OrderID  string
	Checkout *payment.Checkout
	QRIS     *payment.QRIS
}

type Resolution struct {
	AccountID         string
	OrderID           string
	Upgraded          bool
	TransactionStatus string
	FraudStatus       string
	// Pending is set when a non-final status was acknowledged without
	// consuming the order token.
	Pending bool
	// Duplicate is set when a callback was already processed.
	Duplicate bool
}

type ReconcileReport struct {
	Checked  int
	Resolved int
	Upgraded int
	Failed   int
}

type PremiumService struct {
	store   AccountStore
	gateway PaymentGateway
	dedupe  CallbackDeduper
	price   int64
	log     zerolog.Logger
	now     func() time.Time
}

func NewPremiumService(store AccountStore, gateway PaymentGateway, dedupe CallbackDeduper, price int64, log zerolog.Logger) *PremiumService {
	return &PremiumService{
		store:   store,
		gateway: gateway,
		dedupe:  dedupe,
		price:   price,
		log:     log,
		now:     time.Now,
	}
}

// Initiate opens a gateway transaction for the premium price and records its
// order ID as pending on the account. Nothing is stored when the gateway
// call fails.
func (s *PremiumService) Initiate(ctx context.Context, accountID string, method PaymentMethod) (Initiation, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return Initiation{}, storeError(err)
	}
	if account.IsPremium {
		return Initiation{}, apperr.New(apperr.KindAlreadyPremium, "User is already premium")
	}

	order := payment.Order{
		OrderID: ids.Prefixed("order"),
		Amount:  s.price,
		Customer: payment.Customer{
			Name:  account.Username,
			Email: account.Email,
		},
	}

	var out Initiation
	out.OrderID = order.OrderID
	switch method {
	case MethodCard:
		checkout, err := s.gateway.CreateCheckout(ctx, order)
		if err != nil {
			return Initiation{}, gatewayError(err)
		}
		out.Checkout = &checkout
	case MethodQRIS:
		qris, err := s.gateway.CreateQRIS(ctx, order)
		if err != nil {
			return Initiation{}, gatewayError(err)
		}
		out.QRIS = &qris
	default:
		return Initiation{}, apperr.Invalid("Unsupported payment method", "method must be card or qris")
	}

	_, err = mutateAccount(ctx, s.store, byID(s.store, accountID), func(account *models.Account) (bool, error) {
		account.AddOrderToken(order.OrderID, s.now())
		return true, nil
	})
	if err != nil {
		return Initiation{}, err
	}

	s.log.Info().
		Str("account_id", accountID).
		Str("order_id", order.OrderID).
		Str("method", string(method)).
		Msg("premium payment initiated")
	return out, nil
}

// Resolve consumes orderID against status. The token is removed whatever the
// outcome; premium is granted only for a captured or settled, fraud-accepted
// payment of exactly the premium price.
func (s *PremiumService) Resolve(ctx context.Context, orderID string, status payment.Status) (Resolution, error) {
	return s.resolve(ctx, orderID, status, "direct")
}

func (s *PremiumService) resolve(ctx context.Context, orderID string, status payment.Status, source string) (Resolution, error) {
	res := Resolution{
		OrderID:           orderID,
		TransactionStatus: status.TransactionStatus,
		FraudStatus:       status.FraudStatus,
	}

	load := func(ctx context.Context) (models.Account, error) {
		return s.store.FindByOrderToken(ctx, orderID)
	}
	account, err := mutateAccount(ctx, s.store, load, func(account *models.Account) (bool, error) {
		// load only returns accounts holding orderID, so a retry after a
		// concurrent resolution ends in NotFound.
		account.RemoveOrderToken(orderID)
		if s.valid(status) {
			account.IsPremium = true
		}
		return true, nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			metrics.PaymentResolutions.WithLabelValues(source, "not_found").Inc()
			return res, apperr.Wrap(apperr.KindNotFound, "Order not found", err)
		}
		return res, err
	}

	res.AccountID = account.ID
	res.Upgraded = s.valid(status)

	outcome := "rejected"
	if res.Upgraded {
		outcome = "upgraded"
	}
	metrics.PaymentResolutions.WithLabelValues(source, outcome).Inc()
	s.log.Info().
		Str("account_id", account.ID).
		Str("order_id", orderID).
		Str("transaction_status", status.TransactionStatus).
		Str("fraud_status", status.FraudStatus).
		Str("source", source).
		Bool("upgraded", res.Upgraded).
		Msg("order token resolved")
	return res, nil
}

func (s *PremiumService) valid(status payment.Status) bool {
	if status.TransactionStatus != payment.StatusCapture && status.TransactionStatus != payment.StatusSettlement {
		return false
	}
	if status.FraudStatus != payment.FraudAccept {
		return false
	}
	amount, err := status.Amount()
	return err == nil && amount == s.price
}

// HandleCallback authenticates a gateway push before resolving it. Pending
// notifications are acknowledged and leave the order token in place.
func (s *PremiumService) HandleCallback(ctx context.Context, n payment.Notification) (Resolution, error) {
	if !s.gateway.VerifySignature(n) {
		s.log.Warn().Str("order_id", n.OrderID).Msg("payment callback rejected: bad signature")
		metrics.PaymentResolutions.WithLabelValues(sourceCallback, "bad_signature").Inc()
		return Resolution{}, apperr.New(apperr.KindForbidden, "Invalid signature")
	}

	res := Resolution{OrderID: n.OrderID, TransactionStatus: n.TransactionStatus, FraudStatus: n.FraudStatus}
	if !n.Final() {
		res.Pending = true
		return res, nil
	}

	key := n.OrderID + ":" + n.TransactionStatus
	marked := false
	if s.dedupe != nil {
		first, err := s.dedupe.FirstDelivery(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", n.OrderID).Msg("callback dedupe unavailable")
		} else if !first {
			res.Duplicate = true
			return res, nil
		}
		marked = err == nil
	}

	res, err := s.resolve(ctx, n.OrderID, n.Status, sourceCallback)
	if err != nil && marked && apperr.KindOf(err) != apperr.KindNotFound {
		// a redelivery after a failed write has to reach resolve again
		if relErr := s.dedupe.Release(context.WithoutCancel(ctx), key); relErr != nil {
			s.log.Error().Err(relErr).Str("order_id", n.OrderID).Msg("callback dedupe release failed")
		}
	}
	return res, err
}

// Poll fetches the gateway status for orderID and resolves it. Use for QRIS,
// where the client drives confirmation.
func (s *PremiumService) Poll(ctx context.Context, orderID string) (Resolution, error) {
	if _, err := s.store.FindByOrderToken(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return Resolution{OrderID: orderID}, apperr.Wrap(apperr.KindNotFound, "Order not found", err)
		}
		return Resolution{OrderID: orderID}, storeError(err)
	}

	status, err := s.gateway.Status(ctx, orderID)
	if err != nil {
		return Resolution{OrderID: orderID}, gatewayError(err)
	}
	return s.resolve(ctx, orderID, status, sourcePoll)
}

// Reconcile checks pending orders older than olderThan against the gateway
// and resolves those that reached a final status. Errors on individual orders
// are counted and logged, never returned.
func (s *PremiumService) Reconcile(ctx context.Context, olderThan time.Duration, limit int) (ReconcileReport, error) {
	var report ReconcileReport
	pending, err := s.store.ListPendingOrders(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return report, storeError(err)
	}

	for _, order := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		status, err := s.gateway.Status(ctx, order.OrderID)
		if err != nil {
			report.Failed++
			s.log.Warn().Err(err).Str("order_id", order.OrderID).Msg("reconcile status lookup failed")
			continue
		}
		if !status.Final() {
			continue
		}

		res, err := s.resolve(ctx, order.OrderID, status, sourceReconcile)
		if err != nil {
			if apperr.KindOf(err) != apperr.KindNotFound {
				report.Failed++
				s.log.Error().Err(err).Str("order_id", order.OrderID).Msg("reconcile resolve failed")
			}
			continue
		}
		report.Resolved++
		if res.Upgraded {
			report.Upgraded++
		}
	}
	return report, nil
}

func gatewayError(err error) error {
	return apperr.Wrap(apperr.KindGatewayError, "Payment gateway error", err)
}
