package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"clientkit/internal/audit"
	"clientkit/internal/auth"
	"clientkit/internal/domain/file"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/projectwizard"
	apperrors "clientkit/pkg/errors"
	"clientkit/pkg/token"
	"clientkit/pkg/validator"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects ProjectStore
	links    DownloadLinker
	logger   *zap.Logger
	audit    *audit.Logger
}

func NewProjectHandler(projects ProjectStore, links DownloadLinker, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, links: links, logger: logger, audit: audit.NewLogger(logger)}
}

type QuestionRequest struct {
	Question string   `json:"question" validate:"required"`
	Type     string   `json:"type" validate:"omitempty,oneof=text textarea select multiselect"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

type CreateProjectRequest struct {
	Name           string            `json:"name" validate:"required,max=100"`
	Description    string            `json:"description" validate:"required"`
	BriefQuestions []QuestionRequest `json:"brief_questions" validate:"dive"`
	ContractFile   string            `json:"contract_file"`
	PaymentEnabled bool              `json:"payment_enabled"`
	PaymentAmount  *float64          `json:"payment_amount" validate:"omitempty,gt=0"`
	PaymentTiming  string            `json:"payment_timing" validate:"omitempty,oneof=now after"`
}

type UpdateProjectRequest struct {
	Name           *string                  `json:"name"`
	Description    *string                  `json:"description"`
	BriefQuestions *[]project.BriefQuestion `json:"brief_questions"`
	ContractFile   *string                  `json:"contract_file"`
	PaymentEnabled *bool                    `json:"payment_enabled"`
	PaymentAmount  *float64                 `json:"payment_amount" validate:"omitempty,gt=0"`
	PaymentTiming  *string                  `json:"payment_timing" validate:"omitempty,oneof=now after"`
	Status         *string                  `json:"status" validate:"omitempty,oneof=draft published"`
}

type UpdateSubmissionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=brief_pending brief_completed contract_signed paid completed"`
}

// ProjectSummary is a dashboard row.
type ProjectSummary struct {
	*project.Project
	SubmissionCount int `json:"submission_count"`
}

func (h *ProjectHandler) ListProjects(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	projects, err := h.projects.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, ProjectSummary{Project: p, SubmissionCount: len(p.Submissions)})
	}
	return c.JSON(http.StatusOK, summaries)
}

// CreateProject runs the request through the creation wizard so each step's
// gate applies, then publishes it.
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	in := projectwizard.Input{
		Name:           req.Name,
		Description:    req.Description,
		ContractFile:   strings.TrimSpace(req.ContractFile),
		PaymentEnabled: req.PaymentEnabled,
		PaymentAmount:  req.PaymentAmount,
		PaymentTiming:  project.PaymentTiming(req.PaymentTiming),
	}
	for _, q := range req.BriefQuestions {
		in.Questions = append(in.Questions, projectwizard.QuestionInput{
			Question: q.Question,
			Type:     project.QuestionType(q.Type),
			Options:  q.Options,
			Required: q.Required,
		})
	}

	draft, err := projectwizard.Build(in)
	if err != nil {
		return err
	}

	p, err := draft.Publish(c.Request().Context(), h.projects, userID)
	if err != nil {
		return err
	}

	h.logger.Info("project published", zap.String("project_id", p.ID), zap.String("owner_id", userID))
	h.audit.LogFromContext(c, audit.ResourceTypeProject, p.ID, audit.ActionCreate, map[string]any{"public_link": p.PublicLink})
	return c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	p, err := h.owned(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	p, err := h.owned(c)
	if err != nil {
		return err
	}

	var req UpdateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input, err := req.toInput()
	if err != nil {
		return err
	}

	updated, err := h.projects.Update(c.Request().Context(), p.ID, input)
	if err != nil {
		return err
	}
	h.audit.LogFromContext(c, audit.ResourceTypeProject, p.ID, audit.ActionUpdate, nil)
	return c.JSON(http.StatusOK, updated)
}

func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	p, err := h.owned(c)
	if err != nil {
		return err
	}

	if err := h.projects.Delete(c.Request().Context(), p.ID); err != nil {
		return err
	}

	h.logger.Info("project deleted", zap.String("project_id", p.ID))
	h.audit.LogFromContext(c, audit.ResourceTypeProject, p.ID, audit.ActionDelete, map[string]any{"name": p.Name})
	return respondMessage(c, http.StatusOK, msgProjectDeleted)
}

func (h *ProjectHandler) ListSubmissions(c echo.Context) error {
	p, err := h.owned(c)
	if err != nil {
		return err
	}

	subs, err := h.projects.ListSubmissions(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *ProjectHandler) UpdateSubmissionStatus(c echo.Context) error {
	p, err := h.owned(c)
	if err != nil {
		return err
	}

	var req UpdateSubmissionStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	s, err := h.projects.UpdateSubmissionStatus(c.Request().Context(), p.ID, c.Param(paramSubmissionID), submission.Status(req.Status))
	if err != nil {
		return err
	}
	h.audit.LogFromContext(c, audit.ResourceTypeSubmission, s.ID, audit.ActionUpdate, map[string]any{"status": s.Status})
	return c.JSON(http.StatusOK, s)
}

// DownloadFile issues a fresh download link for a submitted file. Links stored
// on the submission expire, the object key does not.
func (h *ProjectHandler) DownloadFile(c echo.Context) error {
	p, err := h.owned(c)
	if err != nil {
		return err
	}

	s, ok := findSubmission(p, c.Param(paramSubmissionID))
	if !ok {
		return apperrors.NotFound(msgSubmissionNotFound)
	}
	f, ok := findFile(s, c.Param(paramFileID))
	if !ok {
		return apperrors.NotFound(msgFileNotFound)
	}
	if f.Key == "" {
		return apperrors.NotFound(msgFileNotStored)
	}

	url, err := h.links.DownloadURL(c.Request().Context(), f.Key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{jsonKeyURL: url})
}

func findSubmission(p *project.Project, id string) (*submission.Submission, bool) {
	for i := range p.Submissions {
		if p.Submissions[i].ID == id {
			return &p.Submissions[i], true
		}
	}
	return nil, false
}

func findFile(s *submission.Submission, id string) (*file.File, bool) {
	for i := range s.UploadedFiles {
		if s.UploadedFiles[i].ID == id {
			return &s.UploadedFiles[i], true
		}
	}
	return nil, false
}

// owned loads the project in the path. Projects of other freelancers are
// reported as missing.
func (h *ProjectHandler) owned(c echo.Context) (*project.Project, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return nil, err
	}
	return ownedProject(c.Request().Context(), h.projects, c.Param(paramID), userID)
}

func ownedProject(ctx context.Context, projects ProjectStore, id, ownerID string) (*project.Project, error) {
	p, err := projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, apperrors.NotFound(msgProjectNotFound)
	}
	return p, nil
}

func (r UpdateProjectRequest) toInput() (project.UpdateProjectInput, error) {
	in := project.UpdateProjectInput{
		Name:           trimmed(r.Name),
		Description:    trimmed(r.Description),
		ContractFile:   trimmed(r.ContractFile),
		PaymentEnabled: r.PaymentEnabled,
		PaymentAmount:  r.PaymentAmount,
	}
	if in.Name != nil {
		if err := validator.ProjectName(*in.Name); err != nil {
			return in, apperrors.Validation(err.Error())
		}
	}
	if in.Description != nil && *in.Description == "" {
		return in, apperrors.Validation(msgDescriptionRequired)
	}
	if r.PaymentTiming != nil {
		timing := project.PaymentTiming(*r.PaymentTiming)
		in.PaymentTiming = &timing
	}
	if r.Status != nil {
		status := project.Status(*r.Status)
		in.Status = &status
	}
	if r.BriefQuestions != nil {
		if len(*r.BriefQuestions) == 0 {
			return in, apperrors.Validation(msgQuestionsRequired)
		}
		questions := make([]project.BriefQuestion, len(*r.BriefQuestions))
		seen := make(map[string]bool, len(questions))
		for i, q := range *r.BriefQuestions {
			q.Question = strings.TrimSpace(q.Question)
			if q.Question == "" {
				return in, apperrors.Validation(fmt.Sprintf(msgInvalidQuestionFmt, i, "question is required"))
			}
			if q.Type == "" {
				q.Type = project.QuestionText
			}
			if err := q.Type.Validate(); err != nil {
				return in, apperrors.Validation(fmt.Sprintf(msgInvalidQuestionFmt, i, err))
			}
			if !q.Type.HasOptions() {
				q.Options = nil
			}
			if q.ID == "" {
				q.ID = token.NewID()
			}
			if seen[q.ID] {
				return in, apperrors.Validation(fmt.Sprintf(msgInvalidQuestionFmt, i, "duplicate id "+q.ID))
			}
			seen[q.ID] = true
			questions[i] = q
		}
		in.BriefQuestions = &questions
	}
	return in, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
