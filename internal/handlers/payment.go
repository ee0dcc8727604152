package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/payment"
	"github.com/SulTenZ/Food-Recipe-App/internal/service"
)

const signatureHeader = "X-Midtrans-Signature"

type paymentRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type verifyQRISRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreatePayment opens a hosted card checkout for the premium upgrade.
func (h HandlerSet) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	init, err := h.premium.Initiate(c.Request.Context(), req.UserID, service.MethodCard)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":      init.OrderID,
		"token":        init.Checkout.Token,
		"redirect_url": init.Checkout.RedirectURL,
	})
}

// PaymentCallback receives gateway push notifications. Every accepted
// notification answers {status: ok}, including pending and replayed ones and
// those for orders that were already resolved.
func (h HandlerSet) PaymentCallback(c *gin.Context) {
	var n payment.Notification
	if err := c.ShouldBindJSON(&n); err != nil || n.OrderID == "" {
		message(c, http.StatusBadRequest, "Invalid notification")
		return
	}
	if n.SignatureKey == "" {
		n.SignatureKey = c.GetHeader(signatureHeader)
	}

	res, err := h.premium.HandleCallback(c.Request.Context(), n)
	if apperr.KindOf(err) == apperr.KindNotFound {
		h.log.Info().
			Str("order_id", n.OrderID).
			Str("transaction_status", n.TransactionStatus).
			Msg("payment callback for unknown or resolved order ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info().
		Str("order_id", res.OrderID).
		Str("transaction_status", res.TransactionStatus).
		Bool("upgraded", res.Upgraded).
		Bool("pending", res.Pending).
		Bool("duplicate", res.Duplicate).
		Msg("payment callback handled")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h HandlerSet) InitiateQRIS(c *gin.Context) {
	var req paymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	init, err := h.premium.Initiate(c.Request.Context(), req.UserID, service.MethodQRIS)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":  init.OrderID,
		"qrisUrl":  init.QRIS.QRISURL,
		"qrString": init.QRIS.QRString,
	})
}

// VerifyQRIS is the client-driven confirmation for QRIS orders. The order is
// consumed whatever the gateway reports.
func (h HandlerSet) VerifyQRIS(c *gin.Context) {
	var req verifyQRISRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.premium.Poll(c.Request.Context(), req.OrderID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if !res.Upgraded {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":       "Invalid payment",
			"paymentStatus": res.TransactionStatus,
			"isPremium":     false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Payment successful, user upgraded to premium",
		"paymentStatus": res.TransactionStatus,
		"isPremium":     true,
	})
}
