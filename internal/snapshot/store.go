// Package snapshot persists whole collections as serialized snapshots keyed
// by a fixed collection name. Backends live under internal/infra.
package snapshot

import (
	"context"
	"errors"
)

// Collection keys. Each one is written independently of the others.
const (
	KeyUser         = "clientkit_user"
	KeyProjects     = "clientkit_projects"
	KeyChatRooms    = "clientkit_chat_rooms"
	KeyChatMessages = "clientkit_chat_messages"
)

// Keys lists every collection key in a stable order.
var Keys = []string{KeyUser, KeyProjects, KeyChatRooms, KeyChatMessages}

// ErrNotFound is returned by Load for a key that was never saved.
var ErrNotFound = errors.New("snapshot not found")

// Store is the load/save contract every backend implements.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
