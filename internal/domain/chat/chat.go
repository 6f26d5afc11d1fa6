package chat

import (
	"fmt"
	"time"
)

type Room struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	ProjectName  string    `json:"project_name"`
	ClientName   string    `json:"client_name"`
	ClientEmail  string    `json:"client_email"`
	FreelancerID string    `json:"freelancer_id"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	UnreadCount  int       `json:"unread_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Message struct {
	ID         string      `json:"id"`
	RoomID     string      `json:"room_id"`
	SenderID   string      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	SenderType SenderType  `json:"sender_type"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	FileURL    string      `json:"file_url,omitempty"`
	FileName   string      `json:"file_name,omitempty"`
	FileSize   int64       `json:"file_size,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	Read       bool        `json:"read"`
}

type SenderType string

const (
	SenderFreelancer SenderType = "freelancer"
	SenderClient     SenderType = "client"
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

func (t MessageType) Validate() error {
	switch t {
	case MessageText, MessageFile, MessageSystem:
		return nil
	default:
		return fmt.Errorf(errInvalidMessageTypeFmt, t)
	}
}

// FileAttachment carries the metadata of a file message.
type FileAttachment struct {
	URL  string
	Name string
	Size int64
}

type Sender struct {
	ID   string
	Name string
	Type SenderType
}

type SendInput struct {
	RoomID  string
	Sender  Sender
	Content string
	Type    MessageType
	File    *FileAttachment
}

type CreateRoomInput struct {
	ProjectID    string
	ProjectName  string
	ClientName   string
	ClientEmail  string
	FreelancerID string
}

// CountUnread returns the number of unread messages in the list.
func CountUnread(messages []Message) int {
	n := 0
	for _, m := range messages {
		if !m.Read {
			n++
		}
	}
	return n
}

const errInvalidMessageTypeFmt = "invalid message type: %s"
