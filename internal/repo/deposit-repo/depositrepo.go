package depositrepo

import (
	"context"
	"errors"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const depositColumns = `id, user_id, order_id, amount_usd, currency, crypto_amount, exchange_rate,
status, is_active, pay_address, transaction_hash, timeout_at, admin_confirmed_at, admin_confirmed_by,
created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var d domain.Deposit
	err := row.Scan(&d.ID, &d.UserID, &d.OrderID, &d.AmountUSD, &d.Currency, &d.CryptoAmount, &d.ExchangeRate,
		&d.Status, &d.IsActive, &d.PayAddress, &d.TransactionHash, &d.TimeoutAt, &d.AdminConfirmedAt, &d.AdminConfirmedBy,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error) {
	query := `
		INSERT INTO deposits (user_id, order_id, amount_usd, currency, crypto_amount, exchange_rate, status, is_active, pay_address, timeout_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		deposit.UserID, deposit.OrderID, deposit.AmountUSD, deposit.Currency, deposit.CryptoAmount,
		deposit.ExchangeRate, deposit.Status, deposit.IsActive, deposit.PayAddress, deposit.TimeoutAt,
	).Scan(&deposit.ID, &deposit.CreatedAt, &deposit.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save deposit", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Deposit, error) {
	row := r.db.QueryRow(ctx, "SELECT "+depositColumns+" FROM deposits WHERE id = $1", id)
	deposit, err := scanDeposit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find deposit", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*domain.Deposit, error) {
	row := r.db.QueryRow(ctx, "SELECT "+depositColumns+" FROM deposits WHERE order_id = $1", orderID)
	deposit, err := scanDeposit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find deposit by order id", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Deposit, error) {
	query := "SELECT " + depositColumns + " FROM deposits WHERE user_id = $1 ORDER BY created_at DESC"
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get deposits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var d domain.Deposit
		err := rows.Scan(&d.ID, &d.UserID, &d.OrderID, &d.AmountUSD, &d.Currency, &d.CryptoAmount, &d.ExchangeRate,
			&d.Status, &d.IsActive, &d.PayAddress, &d.TransactionHash, &d.TimeoutAt, &d.AdminConfirmedAt, &d.AdminConfirmedBy,
			&d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan deposit row", zap.Error(err))
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

func (r *Repository) FindPendingWithUsers(ctx context.Context) ([]domain.DepositWithUser, error) {
	query := `
		SELECT d.id, d.user_id, d.order_id, d.amount_usd, d.currency, d.crypto_amount, d.exchange_rate,
		       d.status, d.is_active, d.pay_address, d.transaction_hash, d.timeout_at, d.admin_confirmed_at, d.admin_confirmed_by,
		       d.created_at, d.updated_at, u.username, u.email
		FROM deposits d
		JOIN users u ON u.id = d.user_id
		WHERE d.status = 'pending'
		ORDER BY d.timeout_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't get pending deposits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.DepositWithUser
	for rows.Next() {
		var d domain.DepositWithUser
		err := rows.Scan(&d.ID, &d.UserID, &d.OrderID, &d.AmountUSD, &d.Currency, &d.CryptoAmount, &d.ExchangeRate,
			&d.Status, &d.IsActive, &d.PayAddress, &d.TransactionHash, &d.TimeoutAt, &d.AdminConfirmedAt, &d.AdminConfirmedBy,
			&d.CreatedAt, &d.UpdatedAt, &d.Username, &d.Email)
		if err != nil {
			zap.L().Error("can't scan pending deposit row", zap.Error(err))
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

// MarkTimedOutForUser expires the user's overdue pending deposits in a single
// conditional statement, reads rely on it before returning data.
func (r *Repository) MarkTimedOutForUser(ctx context.Context, userID int, now time.Time) (int64, error) {
	query := `
		UPDATE deposits
		SET status = 'timed_out', is_active = FALSE, updated_at = $2
		WHERE user_id = $1 AND status = 'pending' AND timeout_at < $2
	`
	tag, err := r.db.Exec(ctx, query, userID, now)
	if err != nil {
		zap.L().Error("can't time out deposits for user", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) MarkAllTimedOut(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE deposits
		SET status = 'timed_out', is_active = FALSE, updated_at = $1
		WHERE status = 'pending' AND timeout_at < $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		zap.L().Error("can't time out overdue deposits", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) FindExpiredPending(ctx context.Context, now time.Time, limit uint32) ([]domain.Deposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM deposits
		WHERE status = 'pending' AND timeout_at < $1
		ORDER BY timeout_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, now, int(limit))
	if err != nil {
		zap.L().Error("can't get expired deposits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var d domain.Deposit
		err := rows.Scan(&d.ID, &d.UserID, &d.OrderID, &d.AmountUSD, &d.Currency, &d.CryptoAmount, &d.ExchangeRate,
			&d.Status, &d.IsActive, &d.PayAddress, &d.TransactionHash, &d.TimeoutAt, &d.AdminConfirmedAt, &d.AdminConfirmedBy,
			&d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan expired deposit row", zap.Error(err))
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

// MarkTimedOut transitions a single pending deposit to timed_out. The status
// guard makes concurrent sweeps and confirmations race-safe.
func (r *Repository) MarkTimedOut(ctx context.Context, depositID int) (bool, error) {
	query := `
		UPDATE deposits
		SET status = 'timed_out', is_active = FALSE, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, depositID)
	if err != nil {
		zap.L().Error("can't time out deposit", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ConfirmIfPending wins the pending-to-confirmed transition at most once.
// The caller credits the balance only when it returns true.
func (r *Repository) ConfirmIfPending(ctx context.Context, depositID int, transactionHash *string, adminID *int, at time.Time) (bool, error) {
	query := `
		UPDATE deposits
		SET status = 'confirmed', is_active = FALSE,
		    transaction_hash = COALESCE($2, transaction_hash),
		    admin_confirmed_at = $4, admin_confirmed_by = $3, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, depositID, transactionHash, adminID, at)
	if err != nil {
		zap.L().Error("can't confirm deposit", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) UpdateStatusIfPending(ctx context.Context, depositID int, status string, transactionHash *string) (bool, error) {
	query := `
		UPDATE deposits
		SET status = $2, is_active = FALSE,
		    transaction_hash = COALESCE($3, transaction_hash),
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, depositID, status, transactionHash)
	if err != nil {
		zap.L().Error("can't update deposit status", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ExtendTimeout(ctx context.Context, depositID int, by time.Duration) (*time.Time, error) {
	query := `
		UPDATE deposits
		SET timeout_at = timeout_at + make_interval(secs => $2), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING timeout_at
	`
	var timeoutAt time.Time
	err := r.db.QueryRow(ctx, query, depositID, by.Seconds()).Scan(&timeoutAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't extend deposit timeout", zap.Error(err))
		return nil, err
	}
	return &timeoutAt, nil
}

func (r *Repository) Stats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'confirmed'),
		       COALESCE(SUM(amount_usd) FILTER (WHERE status = 'confirmed'), 0),
		       COALESCE(SUM(amount_usd) FILTER (WHERE status = 'pending'), 0)
		FROM deposits
	`
	var stats domain.Stats
	err := r.db.QueryRow(ctx, query).Scan(&stats.TotalDeposits, &stats.PendingDeposits, &stats.ConfirmedDeposits,
		&stats.ConfirmedUSD, &stats.PendingUSD)
	if err != nil {
		zap.L().Error("can't get deposit stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}
