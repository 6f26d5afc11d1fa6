package snapshot

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clientkit/internal/domain/chat"
	apperrors "clientkit/pkg/errors"
	"clientkit/pkg/token"
)

// ChatRepository keeps rooms and their message lists in two snapshots. Every
// mutation holds mu across both writes so a room's unread count always matches
// the message list it was computed from.
type ChatRepository struct {
	db  *DB
	mu  sync.Mutex
	now func() time.Time
}

func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// ListRooms returns the freelancer's rooms, most recently active first.
func (r *ChatRepository) ListRooms(ctx context.Context, freelancerID string) ([]*chat.Room, error) {
	rooms, err := r.db.Rooms.Get(ctx)
	if err != nil {
		return nil, storageError(msgStorageRead, err)
	}

	owned := make([]*chat.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.FreelancerID == freelancerID {
			owned = append(owned, room)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].UpdatedAt.After(owned[j].UpdatedAt)
	})
	return owned, nil
}

// ListMessages returns a room's messages in send order. A known room with no
// messages yields an empty list.
func (r *ChatRepository) ListMessages(ctx context.Context, roomID string) ([]chat.Message, error) {
	if _, err := r.room(ctx, roomID); err != nil {
		return nil, err
	}

	messages, err := r.db.Messages.Get(ctx)
	if err != nil {
		return nil, storageError(msgStorageRead, err)
	}

	list := messages[roomID]
	if list == nil {
		list = []chat.Message{}
	}
	return list, nil
}

// Send appends one message and refreshes the room's last message, activity
// time and unread count. Messages sent by the freelancer are stored read.
func (r *ChatRepository) Send(ctx context.Context, input chat.SendInput) (*chat.Message, error) {
	msgType := input.Type
	if msgType == "" {
		msgType = chat.MessageText
	}
	if err := msgType.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if msgType != chat.MessageFile && strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.Validation(errEmptyMessage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.room(ctx, input.RoomID); err != nil {
		return nil, err
	}

	msg := chat.Message{
		ID:         token.NewID(),
		RoomID:     input.RoomID,
		SenderID:   input.Sender.ID,
		SenderName: input.Sender.Name,
		SenderType: input.Sender.Type,
		Content:    input.Content,
		Type:       msgType,
		CreatedAt:  r.now(),
		Read:       input.Sender.Type == chat.SenderFreelancer,
	}
	if input.File != nil {
		msg.FileURL = input.File.URL
		msg.FileName = input.File.Name
		msg.FileSize = input.File.Size
	}

	var unread int
	err := r.db.Messages.Update(ctx, func(messages *map[string][]chat.Message) error {
		if *messages == nil {
			*messages = make(map[string][]chat.Message)
		}
		list := append((*messages)[input.RoomID], msg)
		(*messages)[input.RoomID] = list
		unread = chat.CountUnread(list)
		return nil
	})
	if err != nil {
		return nil, storageError(msgStorageWrite, err)
	}

	last := msg
	if err := r.updateRoom(ctx, input.RoomID, func(room *chat.Room) {
		room.LastMessage = &last
		room.UpdatedAt = msg.CreatedAt
		room.UnreadCount = unread
	}); err != nil {
		return nil, err
	}

	return &msg, nil
}

// MarkRead flags every message in the room as read.
func (r *ChatRepository) MarkRead(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.room(ctx, roomID); err != nil {
		return err
	}

	err := r.db.Messages.Update(ctx, func(messages *map[string][]chat.Message) error {
		list := (*messages)[roomID]
		for i := range list {
			list[i].Read = true
		}
		return nil
	})
	if err != nil {
		return storageError(msgStorageWrite, err)
	}

	return r.updateRoom(ctx, roomID, func(room *chat.Room) {
		room.UnreadCount = 0
		if room.LastMessage != nil {
			room.LastMessage.Read = true
		}
	})
}

func (r *ChatRepository) TotalUnread(ctx context.Context, freelancerID string) (int, error) {
	rooms, err := r.ListRooms(ctx, freelancerID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, room := range rooms {
		total += room.UnreadCount
	}
	return total, nil
}

func (r *ChatRepository) CreateRoom(ctx context.Context, input chat.CreateRoomInput) (*chat.Room, error) {
	now := r.now()
	room := chat.Room{
		ID:           token.NewID(),
		ProjectID:    input.ProjectID,
		ProjectName:  input.ProjectName,
		ClientName:   input.ClientName,
		ClientEmail:  input.ClientEmail,
		FreelancerID: input.FreelancerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.Rooms.Update(ctx, func(rooms *[]*chat.Room) error {
		*rooms = append(*rooms, &room)
		return nil
	})
	if err != nil {
		return nil, storageError(msgStorageWrite, err)
	}

	return &room, nil
}

func (r *ChatRepository) room(ctx context.Context, roomID string) (*chat.Room, error) {
	rooms, err := r.db.Rooms.Get(ctx)
	if err != nil {
		return nil, storageError(msgStorageRead, err)
	}
	for _, room := range rooms {
		if room.ID == roomID {
			return room, nil
		}
	}
	return nil, apperrors.NotFound(errRoomNotFound)
}

func (r *ChatRepository) updateRoom(ctx context.Context, roomID string, fn func(*chat.Room)) error {
	err := r.db.Rooms.Update(ctx, func(rooms *[]*chat.Room) error {
		for _, room := range *rooms {
			if room.ID == roomID {
				fn(room)
				return nil
			}
		}
		return apperrors.NotFound(errRoomNotFound)
	})
	if err != nil {
		return storageError(msgStorageWrite, err)
	}
	return nil
}
