package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (r *UserStore) CreateUser(ctx context.Context, user models.User) error {
	query := `
        INSERT INTO users (uid, name, status)
        VALUES ($1, $2, $3);
    `

	_, err := r.db.Exec(ctx, query, user.UID, user.Name, user.Status)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}

	return nil
}

// ListAll returns every user, newest first.
func (r *UserStore) ListAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
        SELECT uid, name, status, created_at, updated_at
        FROM users
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.UID,
			&u.Name,
			&u.Status,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserStore) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	row := r.db.QueryRow(ctx, `
        SELECT uid, name, status, created_at, updated_at
        FROM users
        WHERE uid = $1
    `, uid)

	u := &models.User{}
	err := row.Scan(
		&u.UID,
		&u.Name,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}
