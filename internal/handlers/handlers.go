package handlers

import (
	"net/http"

	_ "github.com/gmarket/backend/docs"
	adminhandlers "github.com/gmarket/backend/internal/handlers/admin"
	authhandlers "github.com/gmarket/backend/internal/handlers/auth"
	depositshandlers "github.com/gmarket/backend/internal/handlers/deposits"
	webhookhandlers "github.com/gmarket/backend/internal/handlers/webhooks"
	"github.com/gmarket/backend/internal/service"
	"github.com/gmarket/backend/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	AdminLogin(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type DepositHandler interface {
	CreateDeposit(w http.ResponseWriter, r *http.Request)
	GetDeposits(w http.ResponseWriter, r *http.Request)
	GetDeposit(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ConfirmDeposit(w http.ResponseWriter, r *http.Request)
	PendingDeposits(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Users(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	PaymentWebhook(w http.ResponseWriter, r *http.Request)
	NowPaymentsIPN(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	DepositHandler DepositHandler
	AdminHandler   AdminHandler
	WebhookHandler WebhookHandler

	jwtService auth.JWTServiceInterface
}

func New(s *service.Services, jwtService auth.JWTServiceInterface) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		DepositHandler: depositshandlers.New(s.DepositService),
		AdminHandler:   adminhandlers.New(s.AdminService, s.DepositService),
		WebhookHandler: webhookhandlers.New(s.WebhookService),
		jwtService:     jwtService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authMiddleware := auth.Middleware(h.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
			r.Post("/admin/login", h.AuthHandler.AdminLogin)
			r.Post("/forgot-password", h.AuthHandler.ForgotPassword)
			r.Post("/reset-password", h.AuthHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Post("/refresh", h.AuthHandler.Refresh)
				r.Post("/change-password", h.AuthHandler.ChangePassword)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/profile", h.AuthHandler.GetProfile)
			r.Put("/profile", h.AuthHandler.UpdateProfile)
		})

		r.Route("/deposits", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.DepositHandler.CreateDeposit)
			r.Get("/", h.DepositHandler.GetDeposits)
			r.Get("/{id}", h.DepositHandler.GetDeposit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware, auth.RequireAdmin)
			r.Post("/deposits/confirm", h.AdminHandler.ConfirmDeposit)
			r.Get("/deposits/pending", h.AdminHandler.PendingDeposits)
			r.Get("/stats", h.AdminHandler.Stats)
			r.Get("/users", h.AdminHandler.Users)
			r.Get("/settings", h.AdminHandler.GetSettings)
			r.Put("/settings", h.AdminHandler.UpdateSettings)
		})

		// Processor callbacks arrive without bearer tokens; replay
		// protection happens in storage.
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/payment", h.WebhookHandler.PaymentWebhook)
			r.Post("/nowpayments", h.WebhookHandler.NowPaymentsIPN)
		})
	})

	return r
}
