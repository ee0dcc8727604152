package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/middleware"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/service"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,max=128"`
}

type accountResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	IsVerified bool      `json:"isVerified"`
	IsPremium  bool      `json:"isPremium"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		Phone:      a.Phone,
		IsVerified: a.IsVerified,
		IsPremium:  a.IsPremium,
		CreatedAt:  a.CreatedAt,
	}
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email for the OTP.",
		"userId":  account.ID,
	})
}

func (h HandlerSet) VerifyRegister(c *gin.Context) {
	var req otpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.VerifyRegistration(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Account verified successfully",
		"isVerified": account.IsVerified,
	})
}

func (h HandlerSet) ResendOTP(c *gin.Context) {
	var req emailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ResendRegistrationOTP(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	message(c, http.StatusOK, "OTP sent to your email")
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"userId":  result.AccountID,
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		h.writeError(c, apperr.ErrUnauthenticated)
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), account.ID, middleware.AccessToken(c)); err != nil {
		h.writeError(c, err)
		return
	}
	message(c, http.StatusOK, "Logout successful")
}

func (h HandlerSet) Profile(c *gin.Context) {
	current, _ := middleware.CurrentAccount(c)

	account, err := h.accounts.Profile(c.Request.Context(), current.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   account.Username,
		"email":      account.Email,
		"isPremium":  account.IsPremium,
		"phone":      account.Phone,
		"isVerified": account.IsVerified,
		"createdAt":  account.CreatedAt,
	})
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	message(c, http.StatusOK, "OTP for password reset sent to your email")
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	message(c, http.StatusOK, "Password has been reset successfully")
}

func (h HandlerSet) DeleteAccount(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	message(c, http.StatusOK, "User deleted successfully")
}

func (h HandlerSet) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountResponse(account))
	}
	c.JSON(http.StatusOK, out)
}
