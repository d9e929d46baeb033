package repo

import (
	"github.com/gmarket/backend/internal/pg"
	depositrepo "github.com/gmarket/backend/internal/repo/deposit-repo"
	inviterepo "github.com/gmarket/backend/internal/repo/invite-repo"
	resettokenrepo "github.com/gmarket/backend/internal/repo/resettoken-repo"
	settingsrepo "github.com/gmarket/backend/internal/repo/settings-repo"
	userrepo "github.com/gmarket/backend/internal/repo/user-repo"
	webhookrepo "github.com/gmarket/backend/internal/repo/webhook-repo"
)

type Repositories struct {
	User       *userrepo.Repository
	Deposit    *depositrepo.Repository
	Invite     *inviterepo.Repository
	Webhook    *webhookrepo.Repository
	ResetToken *resettokenrepo.Repository
	Settings   *settingsrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		User:       userrepo.New(conn),
		Deposit:    depositrepo.New(conn),
		Invite:     inviterepo.New(conn),
		Webhook:    webhookrepo.New(conn),
		ResetToken: resettokenrepo.New(conn),
		Settings:   settingsrepo.New(conn),
	}
}
