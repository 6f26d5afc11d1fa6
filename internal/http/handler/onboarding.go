package handler

import (
	"net/http"

	"clientkit/internal/audit"
	"clientkit/internal/domain/file"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/onboarding"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OnboardingHandler serves the public wizard behind a project link. No
// authentication: the session id in the path is the capability.
type OnboardingHandler struct {
	projects      PublicProjectFinder
	sessions      SessionManager
	uploads       Uploader
	markdown      MarkdownRenderer
	maxUploadSize int64
	logger        *zap.Logger
	audit         *audit.Logger
}

func NewOnboardingHandler(
	projects PublicProjectFinder,
	sessions SessionManager,
	uploads Uploader,
	markdown MarkdownRenderer,
	maxUploadSize int64,
	logger *zap.Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		projects:      projects,
		sessions:      sessions,
		uploads:       uploads,
		markdown:      markdown,
		maxUploadSize: maxUploadSize,
		logger:        logger,
		audit:         audit.NewLogger(logger),
	}
}

type StartSessionRequest struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

type AnswerRequest struct {
	Answer submission.Answer `json:"answer"`
}

type SignContractRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type TestimonialRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"max=2000"`
}

type PublicProjectResponse struct {
	Project         onboarding.PublicProject `json:"project"`
	DescriptionHTML string                   `json:"description_html"`
	Steps           []onboarding.StepKind    `json:"steps"`
}

func (h *OnboardingHandler) GetProject(c echo.Context) error {
	p, err := h.projects.GetByPublicID(c.Request().Context(), c.Param(paramPublicID))
	if err != nil {
		return err
	}
	if p.Status != project.StatusPublished {
		return onboarding.ErrNotPublished
	}

	html, err := h.markdown.Render(p.Description)
	if err != nil {
		h.logger.Error("failed to render description", zap.String("project_id", p.ID), zap.Error(err))
		return respondError(c, http.StatusInternalServerError, msgRenderDescriptionFail)
	}

	return c.JSON(http.StatusOK, PublicProjectResponse{
		Project:         onboarding.NewPublicProject(p),
		DescriptionHTML: html,
		Steps:           onboarding.Steps(p),
	})
}

func (h *OnboardingHandler) StartSession(c echo.Context) error {
	var req StartSessionRequest
	if err := bindOptional(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	w, err := h.sessions.Start(c.Request().Context(), c.Param(paramPublicID), onboarding.Client{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	h.audit.LogFromContext(c, audit.ResourceTypeSession, w.ID(), audit.ActionCreate, map[string]any{"project_id": w.Project().ID})
	return c.JSON(http.StatusCreated, w.View())
}

func (h *OnboardingHandler) GetSession(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.View())
}

func (h *OnboardingHandler) CloseSession(c echo.Context) error {
	if err := h.sessions.Close(c.Param(paramSessionID)); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msgSessionClosed)
}

func (h *OnboardingHandler) SetAnswer(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	var req AnswerRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if err := w.SetAnswer(c.Param(paramQuestionID), req.Answer); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.View())
}

// UploadFile stores a multipart file field. A failed transfer stays on the
// session in the failed state so the client can see and remove it.
func (h *OnboardingHandler) UploadFile(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadSize+multipartOverhead)
	fh, err := c.FormFile(formFieldFile)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgFileRequired)
	}

	f, err := h.uploads.Begin(file.CreateFileInput{
		Prefix:    w.ID(),
		Name:      fh.Filename,
		SizeBytes: fh.Size,
		MimeType:  fh.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return err
	}

	body, err := fh.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgFileOpenFail)
	}
	defer body.Close()

	if err := w.BeginFile(*f); err != nil {
		return err
	}

	if err := h.uploads.Transfer(c.Request().Context(), f, body); err != nil {
		if ferr := w.FailFile(f.ID, err); ferr != nil {
			return ferr
		}
		return err
	}

	if err := w.CompleteFile(f.ID, f.URL); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *OnboardingHandler) RemoveFile(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	f, err := w.RemoveFile(c.Param(paramFileID))
	if err != nil {
		return err
	}

	if err := h.uploads.Discard(c.Request().Context(), &f); err != nil {
		h.logger.Warn("failed to discard removed file", zap.String("key", f.Key), zap.Error(err))
	}
	return c.JSON(http.StatusOK, w.View())
}

func (h *OnboardingHandler) SignContract(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	var req SignContractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if err := w.SignContract(req.Name, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.View())
}

// StartPayment returns immediately; poll the session for the outcome.
func (h *OnboardingHandler) StartPayment(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	if err := w.StartPayment(); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, w.View())
}

func (h *OnboardingHandler) Next(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	if err := w.Next(c.Request().Context()); err != nil {
		return err
	}

	view := w.View()
	if view.Complete {
		h.audit.LogFromContext(c, audit.ResourceTypeSubmission, view.SubmissionID, audit.ActionComplete, map[string]any{"session_id": w.ID()})
	}
	return c.JSON(http.StatusOK, view)
}

func (h *OnboardingHandler) Back(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	if err := w.Back(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.View())
}

func (h *OnboardingHandler) LeaveTestimonial(c echo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}

	var req TestimonialRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	s, err := w.LeaveTestimonial(c.Request().Context(), req.Rating, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.Testimonial)
}

func (h *OnboardingHandler) session(c echo.Context) (*onboarding.Wizard, error) {
	return h.sessions.Get(c.Param(paramSessionID))
}
