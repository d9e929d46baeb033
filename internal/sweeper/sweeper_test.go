package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gmarket/backend/internal/config"
	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/service/depositservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *depositservice.MockDepositRepo) {
	cfg := &config.Config{SweepInterval: time.Minute}
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	depositRepo := depositservice.NewMockDepositRepo(ctrl)
	service := New(cfg, depositRepo)
	return service, depositRepo
}

func TestService_Start(t *testing.T) {
	service, _ := NewMock(t)

	ctx, cancel := context.WithCancel(context.Background())
	service.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
}

func TestService_sweep(t *testing.T) {
	t.Run("Expired deposits queued once each", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		depositRepo := depositservice.NewMockDepositRepo(ctrl)
		workerPool := NewMockWorkerPoolI(ctrl)

		deposits := []domain.Deposit{
			{ID: 101, Status: depositservice.StatusPending},
			{ID: 102, Status: depositservice.StatusPending},
		}
		depositRepo.EXPECT().
			FindExpiredPending(gomock.Any(), gomock.Any(), uint32(1000)).
			Return(deposits, nil)

		var mu sync.Mutex
		var queued int
		workerPool.EXPECT().
			AddTask(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, task Task) error {
				mu.Lock()
				queued++
				mu.Unlock()
				return task()
			}).
			Times(2)
		depositRepo.EXPECT().MarkTimedOut(gomock.Any(), 101).Return(true, nil)
		depositRepo.EXPECT().MarkTimedOut(gomock.Any(), 102).Return(false, nil)

		service := &Service{
			depositRepo: depositRepo,
			limit:       1000,
			workerPool:  workerPool,
		}

		service.sweep(context.Background())
		assert.Equal(t, 2, queued)

		// The in-flight guard is released once the task ran, so a later
		// pass can pick the same deposit up again.
		depositRepo.EXPECT().
			FindExpiredPending(gomock.Any(), gomock.Any(), uint32(1000)).
			Return(deposits[:1], nil)
		workerPool.EXPECT().
			AddTask(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, task Task) error { return task() })
		depositRepo.EXPECT().MarkTimedOut(gomock.Any(), 101).Return(false, nil)

		service.sweep(context.Background())
	})

	t.Run("Fetch failure aborts the pass", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		depositRepo := depositservice.NewMockDepositRepo(ctrl)

		depositRepo.EXPECT().
			FindExpiredPending(gomock.Any(), gomock.Any(), uint32(1000)).
			Return(nil, errors.New("database error"))

		service := &Service{
			depositRepo: depositRepo,
			limit:       1000,
			workerPool:  NewMockWorkerPoolI(ctrl),
		}

		service.sweep(context.Background())
	})

	t.Run("Queue rejection releases the guard", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		depositRepo := depositservice.NewMockDepositRepo(ctrl)
		workerPool := NewMockWorkerPoolI(ctrl)

		deposits := []domain.Deposit{{ID: 201, Status: depositservice.StatusPending}}
		depositRepo.EXPECT().
			FindExpiredPending(gomock.Any(), gomock.Any(), uint32(1000)).
			Return(deposits, nil).
			Times(2)
		workerPool.EXPECT().
			AddTask(gomock.Any(), gomock.Any()).
			Return(errors.New("pool full"))
		workerPool.EXPECT().
			AddTask(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, task Task) error { return task() })
		depositRepo.EXPECT().MarkTimedOut(gomock.Any(), 201).Return(true, nil)

		service := &Service{
			depositRepo: depositRepo,
			limit:       1000,
			workerPool:  workerPool,
		}

		service.sweep(context.Background())
		service.sweep(context.Background())
	})
}

func TestService_expire(t *testing.T) {
	service, depositRepo := NewMock(t)
	ctx := context.Background()

	t.Run("Race won", func(t *testing.T) {
		depositRepo.EXPECT().MarkTimedOut(ctx, 301).Return(true, nil)
		assert.NoError(t, service.expire(ctx, 301))
	})

	t.Run("Already resolved elsewhere", func(t *testing.T) {
		depositRepo.EXPECT().MarkTimedOut(ctx, 302).Return(false, nil)
		assert.NoError(t, service.expire(ctx, 302))
	})

	t.Run("Repository error", func(t *testing.T) {
		depositRepo.EXPECT().MarkTimedOut(ctx, 303).Return(false, errors.New("database error"))
		assert.Error(t, service.expire(ctx, 303))
	})
}
