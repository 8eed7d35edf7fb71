// internal/workflow/engine.go
// Package workflow implements the collaboration workflow engine: the
// Post -> Application -> PendingProject state machine. Every compound
// operation runs in a single serializable store transaction so its
// invariants hold under concurrent callers.
package workflow

import (
	"context"
	"strings"
	"time"

	"collabflow/internal/common/errors"
	"collabflow/internal/common/logger"
	"collabflow/internal/common/metrics"
	"collabflow/internal/common/observability"
	"collabflow/internal/models"
	"collabflow/internal/notify"
	"collabflow/internal/repository"
	"collabflow/internal/store"
)

// Decision is the author's verdict on an application.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// Engine coordinates workflow operations over the document store. Now is an
// injectable clock for tests; Obs is optional.
type Engine struct {
	Store  *store.Store
	Repo   *repository.Repository
	Logger logger.Logger
	Obs    *observability.Observability
	Now    func() time.Time
}

func New(st *store.Store, log logger.Logger) *Engine {
	return &Engine{
		Store:  st,
		Repo:   repository.New(st),
		Logger: log.WithFields(map[string]interface{}{"component": "workflow"}),
		Now:    time.Now,
	}
}

func (e *Engine) timestamp() string {
	return e.Now().UTC().Format(time.RFC3339)
}

// observe records metrics and the structured outcome log for one operation.
func (e *Engine) observe(ctx context.Context, operation string, start time.Time, err error) {
	duration := time.Since(start)
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.WorkflowOperations.WithLabelValues(operation, result).Inc()
	metrics.WorkflowOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if e.Obs != nil {
		e.Obs.RecordOperation(ctx, operation, result)
		e.Obs.RecordOperationDuration(ctx, operation, duration)
	}

	fields := map[string]interface{}{
		"operation":  operation,
		"durationMs": duration.Milliseconds(),
	}
	if err != nil {
		fields["errorCode"] = string(errors.CodeOf(err))
		e.Logger.WithError(err).Warn("Workflow operation failed", fields)
		return
	}
	e.Logger.Info("Workflow operation completed", fields)
}

// ApplyInput carries a developer's application against a post.
type ApplyInput struct {
	PostID        string
	DeveloperID   string
	DeveloperName string
	Proposal      string
}

// Apply files an application against a post. At most one application per
// (post, developer) pair ever exists; the post's applications counter and
// the author's notification record move in the same transaction as the
// application itself.
func (e *Engine) Apply(ctx context.Context, in ApplyInput) (*models.Application, error) {
	start := time.Now()
	app, err := e.apply(ctx, in)
	e.observe(ctx, "apply", start, err)
	return app, err
}

func (e *Engine) apply(ctx context.Context, in ApplyInput) (*models.Application, error) {
	post, err := e.Repo.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == in.DeveloperID {
		return nil, errors.NewSelfApplicationError(in.PostID)
	}
	if !post.AcceptsApplications() {
		return nil, errors.NewPostNotApplicableError(in.PostID, post.Type)
	}
	if strings.TrimSpace(in.Proposal) == "" {
		return nil, errors.NewValidationFailedError("proposal must not be empty")
	}

	app := &models.Application{
		PostID:        in.PostID,
		PostTitle:     post.Title,
		DeveloperID:   in.DeveloperID,
		DeveloperName: in.DeveloperName,
		Proposal:      in.Proposal,
		Status:        string(models.ApplicationPending),
		AppliedAt:     e.timestamp(),
	}

	err = e.Store.RunTx(ctx, func(tx *store.Tx) error {
		repo := repository.New(tx)

		// Re-read under lock; the unique index is the backstop if two
		// transactions slip past this check.
		locked, err := repo.GetPost(ctx, in.PostID)
		if err != nil {
			return err
		}
		existing, err := repo.FindApplication(ctx, in.PostID, in.DeveloperID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.NewDuplicateApplicationError(in.PostID, in.DeveloperID)
		}

		if err := repo.CreateApplication(ctx, app); err != nil {
			return err
		}
		if err := repo.IncrementApplicationsCount(ctx, locked.ID, 1); err != nil {
			return err
		}
		return repo.CreateNotification(ctx, notify.NewApplicationNotice(locked, app, e.timestamp()))
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// DecideInput carries an author's decision on an application.
type DecideInput struct {
	ApplicationID string
	Decision      Decision
	CallerID      string
}

// Decide accepts or rejects a pending application. Only the post author may
// decide, and only the first decision wins; a losing concurrent decision
// fails with CONFLICT_ALREADY_DECIDED and leaves no trace. Acceptance
// creates the pending project in the same transaction.
func (e *Engine) Decide(ctx context.Context, in DecideInput) error {
	start := time.Now()
	err := e.decide(ctx, in)
	e.observe(ctx, "decide", start, err)
	return err
}

func (e *Engine) decide(ctx context.Context, in DecideInput) error {
	var target models.ApplicationStatus
	switch in.Decision {
	case DecisionAccept:
		target = models.ApplicationAccepted
	case DecisionReject:
		target = models.ApplicationRejected
	default:
		return errors.NewValidationFailedError("decision must be ACCEPT or REJECT")
	}

	app, err := e.Repo.GetApplication(ctx, in.ApplicationID)
	if err != nil {
		return err
	}
	post, err := e.Repo.GetPost(ctx, app.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != in.CallerID {
		return errors.NewUnauthorizedError("only the post author may decide an application")
	}

	return e.Store.RunTx(ctx, func(tx *store.Tx) error {
		repo := repository.New(tx)

		won, err := repo.SetApplicationStatus(ctx, app.ID, models.ApplicationPending, target)
		if err != nil {
			return err
		}
		if !won {
			current, err := repo.GetApplication(ctx, app.ID)
			if err != nil {
				return err
			}
			return errors.NewConflictAlreadyDecidedError(app.ID, current.Status)
		}

		now := e.timestamp()
		var notice *models.Notification
		if target == models.ApplicationAccepted {
			notice = notify.NewAcceptedNotice(app, now)
			project := &models.PendingProject{
				PostID:          post.ID,
				PostTitle:       post.Title,
				PostDescription: post.Description,
				AuthorID:        post.AuthorID,
				AuthorName:      post.AuthorName,
				DeveloperID:     app.DeveloperID,
				DeveloperName:   app.DeveloperName,
				ApplicationID:   app.ID,
				Status:          string(models.ProjectPending),
				AcceptedAt:      now,
			}
			if err := repo.CreateProject(ctx, project); err != nil {
				return err
			}
		} else {
			notice = notify.NewRejectedNotice(app, now)
		}
		return repo.CreateNotification(ctx, notice)
	})
}

// AdvanceInput carries a requested project status change.
type AdvanceInput struct {
	ProjectID string
	NewStatus models.ProjectStatus
	CallerID  string
}

// AdvanceProject moves a pending project along its lifecycle. Either
// participant may advance it; COMPLETED and CANCELLED are terminal.
func (e *Engine) AdvanceProject(ctx context.Context, in AdvanceInput) error {
	start := time.Now()
	err := e.advanceProject(ctx, in)
	e.observe(ctx, "advance_project", start, err)
	return err
}

func (e *Engine) advanceProject(ctx context.Context, in AdvanceInput) error {
	switch in.NewStatus {
	case models.ProjectInProgress, models.ProjectCompleted, models.ProjectCancelled:
	default:
		return errors.NewValidationFailedError("newStatus must be IN_PROGRESS, COMPLETED or CANCELLED")
	}

	project, err := e.Repo.GetProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}
	if in.CallerID != project.AuthorID && in.CallerID != project.DeveloperID {
		return errors.NewUnauthorizedError("only project participants may advance the project")
	}

	from := project.StatusEnum()
	if !models.ValidProjectTransition(from, in.NewStatus) {
		return errors.NewInvalidStatusTransitionError("project", project.Status, string(in.NewStatus))
	}

	var extra map[string]interface{}
	if in.NewStatus == models.ProjectCompleted {
		extra = map[string]interface{}{"completedAt": e.timestamp()}
	}

	won, err := e.Repo.SetProjectStatus(ctx, project.ID, from, in.NewStatus, extra)
	if err != nil {
		return err
	}
	if !won {
		// A concurrent caller advanced the project between the read and the
		// guarded update.
		current, err := e.Repo.GetProject(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		return errors.NewInvalidStatusTransitionError("project", current.Status, string(in.NewStatus))
	}
	return nil
}
