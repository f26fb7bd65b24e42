package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT id, full_name, email, role, alerts FROM users WHERE id = $1`

	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.ID, &u.FullName, &u.Email, &role, pq.Array(&u.Alerts))
	if err != nil {
		return nil, mapError(err, "user %s", userID)
	}
	u.Role = domain.Role(role)
	if u.Alerts == nil {
		u.Alerts = []string{}
	}
	return &u, nil
}

// Save upserts the profile columns. Alerts are only ever changed by the
// dedicated statements below and by the cancellation cascade.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (id, full_name, email, role)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET full_name = EXCLUDED.full_name,
		email = EXCLUDED.email,
		role = EXCLUDED.role
	`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.FullName, user.Email, string(user.Role))

	return mapError(err, "save user %s", user.ID)
}

// RemoveAlert drops one alert in place. Postgres arrays are 1-based, index is
// 0-based.
func (r *UserRepository) RemoveAlert(ctx context.Context, userID string, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: alert %d", domain.ErrNotFound, index)
	}

	query := `
	UPDATE users
	SET alerts = alerts[1:$2::int] || alerts[$2::int + 2:]
	WHERE id = $1 AND cardinality(alerts) > $2::int
	`
	result, err := r.db.ExecContext(ctx, query, userID, index)
	if err != nil {
		return mapError(err, "remove alert of %s", userID)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return mapError(err, "remove alert of %s", userID)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: alert %d of user %s", domain.ErrNotFound, index, userID)
	}

	return nil
}

func (r *UserRepository) ClearAlerts(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET alerts = '{}' WHERE id = $1`, userID)
	if err != nil {
		return mapError(err, "clear alerts of %s", userID)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return mapError(err, "clear alerts of %s", userID)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}

	return nil
}
