package repositories

import (
	"context"
	"errors"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetBySocialID(ctx context.Context, socialID string, provider models.ProviderType) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, social_id, provider, role, nickname, created_at, deleted_at`

func (r *userRepo) get(ctx context.Context, where string, args ...any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL AND `+where, args...).
		Scan(&u.ID, &u.SocialID, &u.Provider, &u.Role, &u.Nickname, &u.CreatedAt, &u.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *userRepo) GetBySocialID(ctx context.Context, socialID string, provider models.ProviderType) (*models.User, error) {
	return r.get(ctx, `social_id = $1 AND provider = $2`, socialID, provider)
}

// Create inserts u, or returns the existing row for the same social login.
func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.UserRoleDefault
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO users (social_id, provider, role, nickname)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (social_id, provider) DO UPDATE SET social_id = EXCLUDED.social_id
		RETURNING id, created_at`,
		u.SocialID, u.Provider, u.Role, u.Nickname,
	).Scan(&u.ID, &u.CreatedAt)
}
