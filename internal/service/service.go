package service

import (
	"github.com/gmarket/backend/internal/pg"
	"github.com/gmarket/backend/internal/repo"
	"github.com/gmarket/backend/internal/service/adminservice"
	"github.com/gmarket/backend/internal/service/authservice"
	"github.com/gmarket/backend/internal/service/depositservice"
	"github.com/gmarket/backend/internal/service/webhookservice"
	pkgauth "github.com/gmarket/backend/pkg/auth"
)

type Services struct {
	AuthService    *authservice.Service
	DepositService *depositservice.Service
	WebhookService *webhookservice.Service
	AdminService   *adminservice.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, jwtService pkgauth.JWTServiceInterface, rates depositservice.RatesProvider, notifier depositservice.Notifier) *Services {
	authService := authservice.New(repo.User, repo.Invite, repo.ResetToken, txManager, &pkgauth.HashService{}, jwtService)
	depositService := depositservice.New(repo.Deposit, repo.User, repo.Settings, rates, txManager, notifier)
	webhookService := webhookservice.New(repo.Webhook, depositService)
	adminService := adminservice.New(repo.User, repo.Deposit, repo.Settings)

	return &Services{
		AuthService:    authService,
		DepositService: depositService,
		WebhookService: webhookService,
		AdminService:   adminService,
	}
}
