// Package snapshot implements the repositories on top of collection snapshots.
package snapshot

import (
	"context"
	"errors"

	"clientkit/internal/domain/chat"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/user"
	"clientkit/internal/repository"
	"clientkit/internal/snapshot"
	apperrors "clientkit/pkg/errors"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
	_ repository.ChatRepository    = (*ChatRepository)(nil)
)

// DB groups the typed collections. Every repository built from the same DB
// shares the collection locks.
type DB struct {
	Store    snapshot.Store
	Users    *snapshot.Collection[map[string]*user.User]
	Projects *snapshot.Collection[[]*project.Project]
	Rooms    *snapshot.Collection[[]*chat.Room]
	Messages *snapshot.Collection[map[string][]chat.Message]
}

func New(store snapshot.Store) *DB {
	return &DB{
		Store:    store,
		Users:    snapshot.NewCollection[map[string]*user.User](store, snapshot.KeyUser),
		Projects: snapshot.NewCollection[[]*project.Project](store, snapshot.KeyProjects),
		Rooms:    snapshot.NewCollection[[]*chat.Room](store, snapshot.KeyChatRooms),
		Messages: snapshot.NewCollection[map[string][]chat.Message](store, snapshot.KeyChatMessages),
	}
}

// Empty reports whether neither projects nor chat rooms were ever saved.
func (db *DB) Empty(ctx context.Context) (bool, error) {
	hasProjects, err := db.Projects.Exists(ctx)
	if err != nil {
		return false, storageError(msgStorageRead, err)
	}
	hasRooms, err := db.Rooms.Exists(ctx)
	if err != nil {
		return false, storageError(msgStorageRead, err)
	}
	return !hasProjects && !hasRooms, nil
}

func (db *DB) Close() error {
	return db.Store.Close()
}

// storageError passes domain errors through and reports anything else as an
// unavailable store.
func storageError(msg string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Unavailable(msg, err)
}
