package sweeper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gmarket/backend/internal/config"
	"github.com/gmarket/backend/internal/service/depositservice"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var sweepingDeposits sync.Map

// Service periodically expires pending deposits whose deadline has passed.
// Reads already do this lazily; the background pass bounds how stale a
// pending deposit can get when nobody is looking at it.
type Service struct {
	depositRepo    depositservice.DepositRepo
	limit          uint32
	workerPool     WorkerPoolI
	updateInterval time.Duration
}

func New(cfg *config.Config, depositRepo depositservice.DepositRepo) *Service {
	return &Service{
		depositRepo:    depositRepo,
		limit:          1000,
		workerPool:     NewWorkerPool(10),
		updateInterval: cfg.SweepInterval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Deposit sweeper started")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping sweeper")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	deposits, err := s.depositRepo.FindExpiredPending(ctx, time.Now(), atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch expired deposits", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, deposit := range deposits {
		deposit := deposit

		if _, loaded := sweepingDeposits.LoadOrStore(deposit.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer sweepingDeposits.Delete(deposit.ID)
				return s.expire(ctx, deposit.ID)
			})
			if err != nil {
				sweepingDeposits.Delete(deposit.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error sweeping deposits", zap.Error(err))
	}
}

func (s *Service) expire(ctx context.Context, depositID int) error {
	won, err := s.depositRepo.MarkTimedOut(ctx, depositID)
	if err != nil {
		return err
	}
	if won {
		zap.L().Info("deposit timed out by sweeper", zap.Int("deposit_id", depositID))
	}
	return nil
}
