package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = "id, username, email, password_hash, role, status, balance, referral_code, referred_by, created_at, last_login_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.Status,
		&user.Balance, &user.ReferralCode, &user.ReferredBy, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by email", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by username", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by id", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE referral_code = $1", code)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by referral code", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role, status, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.Status, user.ReferralCode, user.ReferredBy,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) UpdateLastLogin(ctx context.Context, userID int, at time.Time) error {
	_, err := repo.db.Exec(ctx, "UPDATE users SET last_login_at = $2 WHERE id = $1", userID, at)
	if err != nil {
		zap.L().Error("can't update last login", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := repo.db.Exec(ctx, "UPDATE users SET password_hash = $2 WHERE id = $1", userID, passwordHash)
	if err != nil {
		zap.L().Error("can't update password", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) UpdateUsername(ctx context.Context, userID int, username string) error {
	_, err := repo.db.Exec(ctx, "UPDATE users SET username = $2 WHERE id = $1", userID, username)
	if err != nil {
		zap.L().Error("can't update username", zap.Error(err))
		return err
	}
	return nil
}

// CreditBalance applies the increment in the database so concurrent credits
// cannot lose updates.
func (repo *Repository) CreditBalance(ctx context.Context, userID int, amount float64) error {
	tag, err := repo.db.Exec(ctx, "UPDATE users SET balance = balance + $2 WHERE id = $1", userID, amount)
	if err != nil {
		zap.L().Error("can't credit balance", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

func (repo *Repository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	rows, err := repo.db.Query(ctx, query, limit, offset)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.Status,
			&user.Balance, &user.ReferralCode, &user.ReferredBy, &user.CreatedAt, &user.LastLoginAt)
		if err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (repo *Repository) CountUsers(ctx context.Context) (total int, active int, err error) {
	query := "SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active') FROM users"
	err = repo.db.QueryRow(ctx, query).Scan(&total, &active)
	if err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return 0, 0, err
	}
	return total, active, nil
}
