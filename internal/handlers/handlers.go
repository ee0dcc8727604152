package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/config"
	"github.com/SulTenZ/Food-Recipe-App/internal/middleware"
	"github.com/SulTenZ/Food-Recipe-App/internal/service"
)

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Services struct {
	Accounts *service.AccountService
	Sessions *service.SessionManager
	Premium  *service.PremiumService
	Recipes  *service.RecipeService
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	accounts *service.AccountService
	sessions *service.SessionManager
	premium  *service.PremiumService
	recipes  *service.RecipeService
	checks   map[string]Pinger
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, checks map[string]Pinger) HandlerSet {
	registerValidators()

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		accounts: svc.Accounts,
		sessions: svc.Sessions,
		premium:  svc.Premium,
		recipes:  svc.Recipes,
		checks:   checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireSession := middleware.RequireSession(h.sessions)
	requirePremium := middleware.RequirePremium(h.accounts)

	api := router.Group("/api")
	{
		api.POST("/register", h.RegisterAccount)
		api.POST("/verify-register", h.VerifyRegister)
		api.POST("/resend-otp", h.ResendOTP)
		api.POST("/login", h.Login)
		api.POST("/forgot-password", h.ForgotPassword)
		api.POST("/reset-password", h.ResetPassword)

		api.POST("/payment", h.CreatePayment)
		api.POST("/payment-callback", h.PaymentCallback)
		api.POST("/qris-payment/bayar", h.InitiateQRIS)
		api.POST("/qris-payment/cek-bayar", h.VerifyQRIS)
	}

	authed := api.Group("")
	authed.Use(requireSession)
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/user-profile", h.Profile)
		authed.DELETE("/delete-user/:id", h.DeleteAccount)
		authed.GET("/user-list", h.ListAccounts)

		authed.POST("/recipes", h.CreateRecipe)
		authed.GET("/recipes", h.ListRecipes)
		authed.GET("/recipes/:id", h.GetRecipe)
		authed.PUT("/recipes/:id", h.UpdateRecipe)
		authed.DELETE("/recipes/:id", h.DeleteRecipe)
	}

	premium := authed.Group("")
	premium.Use(requirePremium)
	{
		premium.PUT("/recipes/:id/photo", h.UploadRecipePhoto)
		premium.GET("/premium/recipes", h.ListPremiumRecipes)
	}
}
