package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	StatusCapture    = "capture"
	StatusSettlement = "settlement"
	StatusPending    = "pending"
	StatusDeny       = "deny"
	StatusCancel     = "cancel"
	StatusExpire     = "expire"
	StatusFailure    = "failure"
	StatusRefund     = "refund"

	FraudAccept = "accept"
)

var ErrBadAmount = errors.New("malformed gross amount")

type Customer struct {
	Name  string
	Email string
}

type Order struct {
	OrderID  string
	Amount   int64
	Customer Customer
}

// Checkout is the hosted-checkout (card) charge payload returned to the client.
type Checkout struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type QRIS struct {
	OrderID  string `json:"orderId"`
	QRISURL  string `json:"qrisUrl"`
	QRString string `json:"qrString,omitempty"`
}

// Status is the gateway's view of a transaction, from a status query or a
// push notification.
type Status struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
}

// Notification is the body of a server-pushed payment callback.
type Notification struct {
	Status
	SignatureKey string `json:"signature_key"`
}

func (s Status) Amount() (int64, error) {
	return ParseAmount(s.GrossAmount)
}

// Final reports whether the transaction reached a state the gateway will not
// move out of on its own.
func (s Status) Final() bool {
	switch s.TransactionStatus {
	case StatusCapture, StatusSettlement, StatusDeny, StatusCancel, StatusExpire, StatusFailure, StatusRefund:
		return true
	}
	return false
}

// ParseAmount parses amounts such as "100000" or "100000.00". Fractional
// rupiah are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	return n, nil
}

func FormatAmount(amount int64) string {
	return strconv.FormatInt(amount, 10) + ".00"
}
