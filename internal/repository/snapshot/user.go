package snapshot

import (
	"context"

	"clientkit/internal/domain/user"
	apperrors "clientkit/pkg/errors"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save creates or replaces the user record.
func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	err := r.db.Users.Update(ctx, func(users *map[string]*user.User) error {
		if *users == nil {
			*users = make(map[string]*user.User)
		}
		stored := *u
		(*users)[u.ID] = &stored
		return nil
	})
	if err != nil {
		return storageError(msgStorageWrite, err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	users, err := r.db.Users.Get(ctx)
	if err != nil {
		return nil, storageError(msgStorageRead, err)
	}

	u, ok := users[id]
	if !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	return u, nil
}

// Delete removes the user record. Deleting an unknown user is a no-op.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Users.Update(ctx, func(users *map[string]*user.User) error {
		delete(*users, id)
		return nil
	})
	if err != nil {
		return storageError(msgStorageWrite, err)
	}
	return nil
}
