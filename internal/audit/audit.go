// Package audit records who did what to which resource. Events are written
// as structured log lines on a dedicated logger.
package audit

import (
	"time"

	"clientkit/internal/auth"
	"clientkit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	loggerName = "audit"
	auditMsg   = "audit event"
)

// ActorType represents the type of entity performing an action
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeClient ActorType = "client"
	ActorTypeSystem ActorType = "system"
)

// ResourceType represents the type of resource being acted upon
type ResourceType string

const (
	ResourceTypeUser       ResourceType = "user"
	ResourceTypeProject    ResourceType = "project"
	ResourceTypeSubmission ResourceType = "submission"
	ResourceTypeSession    ResourceType = "onboarding_session"
	ResourceTypeFile       ResourceType = "file"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
	ActionComplete Action = "complete"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

type Event struct {
	ActorType    ActorType
	ActorID      string
	ResourceType ResourceType
	ResourceID   string
	Action       Action
	Status       Status
	IPAddress    string
	UserAgent    string
	RequestID    string
	Metadata     map[string]any
	ErrorMessage string
	CreatedAt    time.Time
}

// EventType is the action and resource joined, e.g. "delete_project".
func (e *Event) EventType() string {
	return string(e.Action) + "_" + string(e.ResourceType)
}

type Logger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewLogger(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{logger: base.Named(loggerName), now: time.Now}
}

// Log records an audit event.
func (l *Logger) Log(event *Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.now().UTC()
	}
	if event.Status == "" {
		event.Status = StatusSuccess
	}

	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("actor_type", string(event.ActorType)),
		zap.String("actor_id", event.ActorID),
		zap.String("resource_type", string(event.ResourceType)),
		zap.String("resource_id", event.ResourceID),
		zap.String("action", string(event.Action)),
		zap.String("status", string(event.Status)),
		zap.String("ip_address", event.IPAddress),
		zap.String("user_agent", event.UserAgent),
		zap.String("request_id", event.RequestID),
		zap.Time("created_at", event.CreatedAt),
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", logger.SanitizeMap(event.Metadata)))
	}
	if event.ErrorMessage != "" {
		fields = append(fields, zap.String("error_message", event.ErrorMessage))
	}

	if event.Status == StatusFailure {
		l.logger.Warn(auditMsg, fields...)
		return
	}
	l.logger.Info(auditMsg, fields...)
}

// LogFromContext records a successful action, taking the actor and request
// details from the Echo context. Requests without an authenticated freelancer
// are attributed to the onboarding client.
func (l *Logger) LogFromContext(c echo.Context, resourceType ResourceType, resourceID string, action Action, metadata map[string]any) {
	event := FromContext(c, resourceType, resourceID, action)
	event.Metadata = metadata
	l.Log(event)
}

// LogError records a failed action with its error.
func (l *Logger) LogError(c echo.Context, resourceType ResourceType, resourceID string, action Action, err error) {
	event := FromContext(c, resourceType, resourceID, action)
	event.Status = StatusFailure
	event.ErrorMessage = err.Error()
	l.Log(event)
}

// FromContext builds an event carrying the actor and request details of c.
func FromContext(c echo.Context, resourceType ResourceType, resourceID string, action Action) *Event {
	event := &Event{
		ActorType:    ActorTypeClient,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if userID, ok := c.Get(auth.ContextKeyUserID).(string); ok && userID != "" {
		event.ActorType = ActorTypeUser
		event.ActorID = userID
	}
	return event
}
