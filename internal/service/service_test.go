package service

import (
	"testing"

	"github.com/gmarket/backend/internal/pg"
	"github.com/gmarket/backend/internal/repo"
	"github.com/gmarket/backend/internal/service/depositservice"
	pkgauth "github.com/gmarket/backend/pkg/auth"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockDB.Close()

	repos := repo.New(mockDB)
	txManager := pg.NewMockTXManager(ctrl)
	jwtService := pkgauth.NewMockJWTServiceInterface(ctrl)
	rates := depositservice.NewMockRatesProvider(ctrl)
	notifier := depositservice.NewMockNotifier(ctrl)

	services := New(repos, txManager, jwtService, rates, notifier)

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.DepositService)
	assert.NotNil(t, services.WebhookService)
	assert.NotNil(t, services.AdminService)
}
