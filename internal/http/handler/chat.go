package handler

import (
	"net/http"
	"strings"

	"clientkit/internal/auth"
	"clientkit/internal/domain/chat"
	apperrors "clientkit/pkg/errors"

	"github.com/labstack/echo/v4"
)

// ChatHandler serves the freelancer side of project chats.
type ChatHandler struct {
	chats ChatStore
}

func NewChatHandler(chats ChatStore) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type SendMessageRequest struct {
	Content  string `json:"content" validate:"max=5000"`
	Type     string `json:"type" validate:"omitempty,oneof=text file"`
	FileURL  string `json:"file_url" validate:"omitempty,url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}

type UnreadResponse struct {
	Total int `json:"total"`
}

func (h *ChatHandler) ListRooms(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	rooms, err := h.chats.ListRooms(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) TotalUnread(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	total, err := h.chats.TotalUnread(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UnreadResponse{Total: total})
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	room, err := h.room(c)
	if err != nil {
		return err
	}

	msgs, err := h.chats.ListMessages(c.Request().Context(), room.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	u, err := auth.GetUser(c)
	if err != nil {
		return err
	}
	room, err := h.room(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := chat.SendInput{
		RoomID:  room.ID,
		Sender:  chat.Sender{ID: u.ID, Name: u.Name, Type: chat.SenderFreelancer},
		Content: strings.TrimSpace(req.Content),
		Type:    chat.MessageType(req.Type),
	}
	if input.Type == chat.MessageFile {
		if req.FileURL == "" {
			return respondError(c, http.StatusBadRequest, msgFileURLRequired)
		}
		input.File = &chat.FileAttachment{URL: req.FileURL, Name: req.FileName, Size: req.FileSize}
	}

	msg, err := h.chats.Send(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	room, err := h.room(c)
	if err != nil {
		return err
	}

	if err := h.chats.MarkRead(c.Request().Context(), room.ID); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msgMarkedRead)
}

// room resolves the room in the path among the caller's rooms.
func (h *ChatHandler) room(c echo.Context) (*chat.Room, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return nil, err
	}

	rooms, err := h.chats.ListRooms(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}

	id := c.Param(paramID)
	for _, r := range rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NotFound(msgRoomNotFound)
}
