package models

import "time"

type UserRole string

const (
	AdminRole       UserRole = "admin"
	UserRoleDefault UserRole = "user"
)

type User struct {
	ID        int64        `db:"id"`
	SocialID  string       `db:"social_id"`
	Provider  ProviderType `db:"provider"`
	Role      UserRole     `db:"role"`
	Nickname  *string      `db:"nickname"`
	CreatedAt time.Time    `db:"created_at"`
	DeletedAt *time.Time   `db:"deleted_at"`
}
