package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/SulTenZ/Food-Recipe-App/internal/config"
)

const requestTimeout = 15 * time.Second

// GatewayError carries a failed gateway call.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("midtrans %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// MidtransClient talks to Snap for hosted card checkout and to the Core API
// for QRIS charges and status lookups.
type MidtransClient struct {
	serverKey string
	env       midtrans.EnvironmentType
	appURL    string
	transport http.RoundTripper
}

func NewMidtransClient(cfg config.PaymentConfig) *MidtransClient {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	return &MidtransClient{
		serverKey: cfg.ServerKey,
		env:       env,
		appURL:    cfg.AppURL,
		transport: http.DefaultTransport,
	}
}

// WithTransport replaces the HTTP transport under the SDK clients.
func (c *MidtransClient) WithTransport(rt http.RoundTripper) *MidtransClient {
	c.transport = rt
	return c
}

// httpClient binds ctx to every request the SDK sends for one call; the SDK
// itself takes no context.
func (c *MidtransClient) httpClient(ctx context.Context) midtrans.HttpClient {
	hc := midtrans.GetHttpClient(c.env)
	hc.HttpClient = &http.Client{
		Timeout:   requestTimeout,
		Transport: contextTransport{ctx: ctx, next: c.transport},
	}
	return hc
}

func (c *MidtransClient) snapClient(ctx context.Context) *snap.Client {
	var s snap.Client
	s.New(c.serverKey, c.env)
	s.HttpClient = c.httpClient(ctx)
	return &s
}

func (c *MidtransClient) coreClient(ctx context.Context) *coreapi.Client {
	var core coreapi.Client
	core.New(c.serverKey, c.env)
	core.HttpClient = c.httpClient(ctx)
	return &core
}

func customerDetails(customer Customer) *midtrans.CustomerDetails {
	return &midtrans.CustomerDetails{
		FName: customer.Name,
		Email: customer.Email,
	}
}

func (c *MidtransClient) CreateCheckout(ctx context.Context, order Order) (Checkout, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderID,
			GrossAmt: order.Amount,
		},
		CustomerDetail: customerDetails(order.Customer),
		CreditCard:     &snap.CreditCardDetails{Secure: true},
		Callbacks:      &snap.Callbacks{Finish: c.appURL + "/payment/finish"},
	}

	resp, merr := c.snapClient(ctx).CreateTransaction(req)
	if merr != nil {
		return Checkout{}, gatewayError("create checkout", merr)
	}
	if resp == nil || resp.Token == "" {
		return Checkout{}, &GatewayError{Op: "create checkout", StatusCode: http.StatusBadGateway, Message: "empty snap token"}
	}
	return Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (c *MidtransClient) CreateQRIS(ctx context.Context, order Order) (QRIS, error) {
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderID,
			GrossAmt: order.Amount,
		},
		CustomerDetails: customerDetails(order.Customer),
	}

	resp, merr := c.coreClient(ctx).ChargeTransaction(req)
	if merr != nil {
		return QRIS{}, gatewayError("charge qris", merr)
	}

	out := QRIS{OrderID: order.OrderID, QRString: resp.QRString}
	for _, action := range resp.Actions {
		if action.Name == "generate-qr-code" {
			out.QRISURL = action.URL
		}
	}
	if out.QRISURL == "" && out.QRString == "" {
		return QRIS{}, &GatewayError{Op: "charge qris", StatusCode: http.StatusBadGateway, Message: "no qr payload"}
	}
	return out, nil
}

func (c *MidtransClient) Status(ctx context.Context, orderID string) (Status, error) {
	resp, merr := c.coreClient(ctx).CheckTransaction(orderID)
	if merr != nil {
		return Status{}, gatewayError("check transaction", merr)
	}
	// Unknown transactions may come back as HTTP 200 with status_code "404".
	if resp == nil || resp.TransactionStatus == "" {
		code := ""
		if resp != nil {
			code = resp.StatusCode
		}
		return Status{}, &GatewayError{Op: "check transaction", StatusCode: http.StatusBadGateway, Message: "no transaction status, status_code " + code}
	}

	out := Status{
		OrderID:           resp.OrderID,
		StatusCode:        resp.StatusCode,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		GrossAmount:       resp.GrossAmount,
	}
	if out.OrderID == "" {
		out.OrderID = orderID
	}
	return out, nil
}

func (c *MidtransClient) VerifySignature(n Notification) bool {
	return VerifySignature(n, c.serverKey)
}

func gatewayError(op string, merr *midtrans.Error) error {
	ge := &GatewayError{Op: op, StatusCode: merr.StatusCode, Message: merr.Message, Err: merr.RawError}
	if ge.Err == nil {
		ge.Err = errors.New(merr.Message)
	}
	return ge
}

type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}
