package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"clientkit/internal/auth"
	"clientkit/internal/config"
	"clientkit/internal/http/handler"
	"clientkit/internal/http/middleware"
	"clientkit/internal/onboarding"
	"clientkit/internal/repository/snapshot"
	"clientkit/internal/upload"
	"clientkit/pkg/markdown"
	"clientkit/pkg/metrics"
	"clientkit/pkg/profiling"
	"clientkit/pkg/validator"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
	uploadRouteTail  = "/files"
)

type ServerDependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	UserRepo       *snapshot.UserRepository
	ProjectRepo    *snapshot.ProjectRepository
	ChatRepo       *snapshot.ChatRepository
	Sessions       *onboarding.Manager
	Uploads        *upload.Service
	Markdown       *markdown.Renderer
	JWTService     *auth.JWTService
	AuthMiddleware *auth.Middleware
	// Metrics is optional; request counters are off when nil.
	Metrics *metrics.Registry
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = validator.NewStruct()

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit:   requestBodyLimit,
		Skipper: isUpload,
	}))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
		deps.Metrics.Register(e)
	}
	if deps.Config.App.ProfilingEnabled {
		profiling.RegisterPprofRoutes(e)
	}

	// Strict rate limiting for auth endpoints
	strictRateLimiter := middleware.NewStrictRateLimiter()

	authHandler := handler.NewAuthHandler(deps.UserRepo, deps.ChatRepo, deps.JWTService, deps.Logger)
	projectHandler := handler.NewProjectHandler(deps.ProjectRepo, deps.Uploads, deps.Logger)
	chatHandler := handler.NewChatHandler(deps.ChatRepo)
	onboardingHandler := handler.NewOnboardingHandler(
		deps.ProjectRepo,
		deps.Sessions,
		deps.Uploads,
		deps.Markdown,
		deps.Config.App.MaxUploadSize,
		deps.Logger,
	)

	e.GET("/health", healthCheck)
	e.POST("/auth/signup", authHandler.Signup, strictRateLimiter.Middleware())
	e.POST("/auth/login", authHandler.Login, strictRateLimiter.Middleware())

	api := e.Group("/api")
	api.Use(deps.AuthMiddleware.RequireJWT())

	api.GET("/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/projects", projectHandler.ListProjects)
	api.POST("/projects", projectHandler.CreateProject)
	api.GET("/projects/:id", projectHandler.GetProject)
	api.PATCH("/projects/:id", projectHandler.UpdateProject)
	api.DELETE("/projects/:id", projectHandler.DeleteProject)
	api.GET("/projects/:id/submissions", projectHandler.ListSubmissions)
	api.PATCH("/projects/:id/submissions/:submission_id", projectHandler.UpdateSubmissionStatus)
	api.GET("/projects/:id/submissions/:submission_id/files/:file_id", projectHandler.DownloadFile)

	api.GET("/chat/rooms", chatHandler.ListRooms)
	api.GET("/chat/unread", chatHandler.TotalUnread)
	api.GET("/chat/rooms/:id/messages", chatHandler.ListMessages)
	api.POST("/chat/rooms/:id/messages", chatHandler.SendMessage)
	api.POST("/chat/rooms/:id/read", chatHandler.MarkRead)

	onboard := e.Group("/onboard")
	onboard.GET("/:public_id", onboardingHandler.GetProject)
	onboard.POST("/:public_id/sessions", onboardingHandler.StartSession)

	sessions := onboard.Group("/sessions/:session_id")
	sessions.GET("", onboardingHandler.GetSession)
	sessions.DELETE("", onboardingHandler.CloseSession)
	sessions.PUT("/answers/:question_id", onboardingHandler.SetAnswer)
	sessions.POST(uploadRouteTail, onboardingHandler.UploadFile)
	sessions.DELETE("/files/:file_id", onboardingHandler.RemoveFile)
	sessions.POST("/contract", onboardingHandler.SignContract)
	sessions.POST("/payment", onboardingHandler.StartPayment)
	sessions.POST("/next", onboardingHandler.Next)
	sessions.POST("/back", onboardingHandler.Back)
	sessions.POST("/testimonial", onboardingHandler.LeaveTestimonial)

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// isUpload skips the global body limit for multipart uploads, which the
// handler bounds by the configured upload size.
func isUpload(c echo.Context) bool {
	return c.Request().Method == stdhttp.MethodPost && strings.HasSuffix(c.Path(), uploadRouteTail)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
