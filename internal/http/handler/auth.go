package handler

import (
	"net/http"
	"time"

	"clientkit/internal/audit"
	"clientkit/internal/auth"
	"clientkit/internal/domain/user"
	"clientkit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler accepts any credentials. Logging in creates or refreshes the
// freelancer's user record; logging out removes it.
type AuthHandler struct {
	users  UserStore
	unread UnreadCounter
	tokens TokenGenerator
	logger *zap.Logger
	audit  *audit.Logger
	now    func() time.Time
}

func NewAuthHandler(users UserStore, unread UnreadCounter, tokens TokenGenerator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		unread: unread,
		tokens: tokens,
		logger: logger,
		audit:  audit.NewLogger(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type MeResponse struct {
	User        *user.User `json:"user"`
	TotalUnread int        `json:"total_unread"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	return h.signIn(c, http.StatusCreated, req.Name, req.Email)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	return h.signIn(c, http.StatusOK, "", req.Email)
}

func (h *AuthHandler) signIn(c echo.Context, status int, name, email string) error {
	email = user.NormalizeEmail(email)
	u := &user.User{
		ID:        user.IDForEmail(email),
		Email:     email,
		Name:      user.DisplayName(name, email),
		CreatedAt: h.now(),
	}

	if err := h.users.Save(c.Request().Context(), u); err != nil {
		return err
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	h.logger.Info("freelancer signed in", logger.Email(u.Email), zap.String("user_id", u.ID))

	event := audit.FromContext(c, audit.ResourceTypeUser, u.ID, audit.ActionLogin)
	event.ActorType = audit.ActorTypeUser
	event.ActorID = u.ID
	h.audit.Log(event)

	return c.JSON(status, AuthResponse{Token: token, User: u})
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, err := auth.GetUser(c)
	if err != nil {
		return err
	}

	total, err := h.unread.TotalUnread(c.Request().Context(), u.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MeResponse{User: u, TotalUnread: total})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	h.audit.LogFromContext(c, audit.ResourceTypeUser, userID, audit.ActionLogout, nil)

	return respondMessage(c, http.StatusOK, msgLoggedOut)
}
