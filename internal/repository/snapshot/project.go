package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	apperrors "clientkit/pkg/errors"
	"clientkit/pkg/token"
)

type ProjectRepository struct {
	db            *DB
	publicBaseURL string
	now           func() time.Time
}

func NewProjectRepository(db *DB, publicBaseURL string) *ProjectRepository {
	return &ProjectRepository{
		db:            db,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (r *ProjectRepository) List(ctx context.Context) ([]*project.Project, error) {
	projects, err := r.db.Projects.Get(ctx)
	if err != nil {
		return nil, storageError(msgStorageRead, err)
	}
	if projects == nil {
		projects = []*project.Project{}
	}
	return projects, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*project.Project, error) {
	projects, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]*project.Project, 0, len(projects))
	for _, p := range projects {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

// Add appends a project. Missing id, status, public link and creation time
// are filled in; a fragment that collides with an existing link is redrawn.
func (r *ProjectRepository) Add(ctx context.Context, p *project.Project) (*project.Project, error) {
	stored := *p

	err := r.db.Projects.Update(ctx, func(projects *[]*project.Project) error {
		if stored.ID == "" {
			stored.ID = token.NewID()
		}
		if findProject(*projects, stored.ID) >= 0 {
			return apperrors.Conflict(errProjectExists)
		}
		if stored.Status == "" {
			stored.Status = project.StatusPublished
		}
		if stored.PaymentTiming == "" {
			stored.PaymentTiming = project.PaymentAfter
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = r.now()
		}
		if stored.PublicLink == "" || linkTaken(*projects, stored.PublicLink) {
			link, err := r.allocatePublicLink(*projects)
			if err != nil {
				return err
			}
			stored.PublicLink = link
		}

		*projects = append(*projects, &stored)
		return nil
	})
	if err != nil {
		return nil, storageError(msgStorageWrite, err)
	}

	return &stored, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, input project.UpdateProjectInput) (*project.Project, error) {
	var updated project.Project

	err := r.db.Projects.Update(ctx, func(projects *[]*project.Project) error {
		i := findProject(*projects, id)
		if i < 0 {
			return apperrors.NotFound(errProjectNotFound)
		}
		input.Apply((*projects)[i])
		updated = *(*projects)[i]
		return nil
	})
	if err != nil {
		return nil, storageError(msgStorageWrite, err)
	}

	return &updated, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Projects.Update(ctx, func(projects *[]*project.Project) error {
		i := findProject(*projects, id)
		if i < 0 {
			return apperrors.NotFound(errProjectNotFound)
		}
		*projects = append((*projects)[:i], (*projects)[i+1:]...)
		return nil
	})
	if err != nil {
		return storageError(msgStorageWrite, err)
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	projects, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	i := findProject(projects, id)
	if i < 0 {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	return projects[i], nil
}

// GetByPublicID returns the first project whose public link contains the
// fragment. An empty fragment matches nothing.
func (r *ProjectRepository) GetByPublicID(ctx context.Context, fragment string) (*project.Project, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, apperrors.NotFound(errProjectNotFound)
	}

	projects, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if strings.Contains(p.PublicLink, fragment) {
			return p, nil
		}
	}
	return nil, apperrors.NotFound(errProjectNotFound)
}

func (r *ProjectRepository) AddSubmission(ctx context.Context, projectID string, s *submission.Submission) (*submission.Submission, error) {
	stored := *s

	err := r.db.Projects.Update(ctx, func(projects *[]*project.Project) error {
		i := findProject(*projects, projectID)
		if i < 0 {
			return apperrors.NotFound(errProjectNotFound)
		}
		if stored.ID == "" {
			stored.ID = token.NewID()
		}
		if stored.Status == "" {
			stored.Status = submission.StatusBriefPending
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = r.now()
		}
		stored.ProjectID = projectID

		p := (*projects)[i]
		p.Submissions = append(p.Submissions, stored)
		return nil
	})
	if err != nil {
		return nil, storageError(msgStorageWrite, err)
	}

	return &stored, nil
}

// UpdateSubmissionStatus applies a status change allowed by the transition
// table and consistent with the submission's contract and payment flags.
func (r *ProjectRepository) UpdateSubmissionStatus(ctx context.Context, projectID, submissionID string, status submission.Status) (*submission.Submission, error) {
	var updated submission.Submission

	err := r.updateSubmission(ctx, projectID, submissionID, func(p *project.Project, s *submission.Submission) error {
		req := submission.Requirements{Contract: p.HasContract(), Payment: p.PaymentEnabled}
		if err := s.Advance(status, req); err != nil {
			return apperrors.InvalidState(err.Error())
		}
		updated = *s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *ProjectRepository) AttachTestimonial(ctx context.Context, projectID, submissionID string, t *submission.Testimonial) (*submission.Submission, error) {
	if t.Rating < submission.MinRating || t.Rating > submission.MaxRating {
		return nil, apperrors.Validation(fmt.Sprintf(errRatingRangeFmt, submission.MinRating, submission.MaxRating))
	}

	var updated submission.Submission

	err := r.updateSubmission(ctx, projectID, submissionID, func(_ *project.Project, s *submission.Submission) error {
		if s.Testimonial != nil {
			return apperrors.Conflict(errTestimonialExists)
		}
		stored := *t
		if stored.ID == "" {
			stored.ID = token.NewID()
		}
		if stored.ClientName == "" {
			stored.ClientName = s.ClientName
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = r.now()
		}
		s.Testimonial = &stored
		updated = *s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *ProjectRepository) ListSubmissions(ctx context.Context, projectID string) ([]submission.Submission, error) {
	p, err := r.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Submissions == nil {
		return []submission.Submission{}, nil
	}
	return p.Submissions, nil
}

func (r *ProjectRepository) updateSubmission(ctx context.Context, projectID, submissionID string, fn func(*project.Project, *submission.Submission) error) error {
	err := r.db.Projects.Update(ctx, func(projects *[]*project.Project) error {
		i := findProject(*projects, projectID)
		if i < 0 {
			return apperrors.NotFound(errProjectNotFound)
		}
		p := (*projects)[i]
		for j := range p.Submissions {
			if p.Submissions[j].ID == submissionID {
				return fn(p, &p.Submissions[j])
			}
		}
		return apperrors.NotFound(errSubmissionNotFound)
	})
	if err != nil {
		return storageError(msgStorageWrite, err)
	}
	return nil
}

func (r *ProjectRepository) allocatePublicLink(projects []*project.Project) (string, error) {
	for attempt := 0; attempt < maxPublicLinkAttempts; attempt++ {
		fragment, err := token.GeneratePublicID()
		if err != nil {
			return "", err
		}
		link := r.publicBaseURL + onboardPath + fragment
		if !fragmentTaken(projects, fragment) {
			return link, nil
		}
	}
	return "", apperrors.Conflict(errPublicLinkExhausted)
}

func findProject(projects []*project.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func linkTaken(projects []*project.Project, link string) bool {
	for _, p := range projects {
		if p.PublicLink == link {
			return true
		}
	}
	return false
}

// fragmentTaken reports whether a substring lookup for fragment would hit an
// existing project.
func fragmentTaken(projects []*project.Project, fragment string) bool {
	for _, p := range projects {
		if strings.Contains(p.PublicLink, fragment) {
			return true
		}
	}
	return false
}
