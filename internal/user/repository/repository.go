package repository

import (
	"context"

	"tenant-admin/backend/internal/user/domain"
)

// Repository defines persistence for users. Lookups only return non-deleted users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrPhone matches username exactly against email or phone number.
	FindByEmailOrPhone(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
