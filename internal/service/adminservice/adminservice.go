package adminservice

import (
	"context"

	"github.com/gmarket/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type UserRepo interface {
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountUsers(ctx context.Context) (total int, active int, err error)
}

type DepositRepo interface {
	Stats(ctx context.Context) (*domain.Stats, error)
}

type SettingsRepo interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, settings *domain.Settings) error
}

type Service struct {
	userRepo     UserRepo
	depositRepo  DepositRepo
	settingsRepo SettingsRepo
}

func New(userRepo UserRepo, depositRepo DepositRepo, settingsRepo SettingsRepo) *Service {
	return &Service{
		userRepo:     userRepo,
		depositRepo:  depositRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.depositRepo.Stats(ctx)
	if err != nil {
		zap.L().Error("can't get deposit stats", zap.Error(err))
		return nil, err
	}
	total, active, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return nil, err
	}
	stats.TotalUsers = total
	stats.ActiveUsers = active
	return stats, nil
}

func (s *Service) Users(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

func (s *Service) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

func (s *Service) UpdateSettings(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	zap.L().Info("admin settings updated")
	return s.settingsRepo.Get(ctx)
}
