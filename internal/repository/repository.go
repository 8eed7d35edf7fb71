// internal/repository/repository.go
// Package repository maps workflow entities onto document store collections.
// It owns collection names and document field names; callers above it work
// only in terms of models.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"collabflow/internal/common/errors"
	"collabflow/internal/models"
	"collabflow/internal/store"
)

// Collection names in the document store.
const (
	CollectionPosts         = "posts"
	CollectionApplications  = "applications"
	CollectionProjects      = "pending_projects"
	CollectionNotifications = "notifications"
)

// Repository provides typed access to workflow documents. It is written
// against store.Ops so the same accessors work on the bare store and inside
// a transaction.
type Repository struct {
	ops store.Ops
}

func New(ops store.Ops) *Repository {
	return &Repository{ops: ops}
}

// toDocument round-trips a model through JSON into the generic document
// shape the store expects. The model's json tags define the stored field
// names.
func toDocument(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("encode document: %v", err))
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("encode document: %v", err))
	}
	return doc, nil
}

func decodeAll[T any](docs []store.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			return nil, errors.NewValidationFailedError(fmt.Sprintf("decode document %s: %v", doc.ID, err))
		}
		out = append(out, v)
	}
	return out, nil
}

// --- Posts ---

func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	doc, err := toDocument(post)
	if err != nil {
		return err
	}
	id, err := r.ops.Create(ctx, CollectionPosts, doc)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	doc, err := r.ops.Get(ctx, CollectionPosts, id)
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := doc.Decode(&post); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("decode post %s: %v", id, err))
	}
	return &post, nil
}

func (r *Repository) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	docs, err := r.ops.Query(ctx, CollectionPosts, map[string]string{"authorId": authorID})
	if err != nil {
		return nil, err
	}
	posts, err := decodeAll[models.Post](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt > posts[j].CreatedAt })
	return posts, nil
}

// UpdatePostContent edits the author-editable fields of a post. Workflow
// fields (type, counters) are deliberately not touchable through this path.
func (r *Repository) UpdatePostContent(ctx context.Context, id, title, description string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	return r.ops.Update(ctx, CollectionPosts, id, map[string]interface{}{
		"title":       title,
		"description": description,
		"tags":        tags,
	})
}

// IncrementApplicationsCount bumps the post's applications counter
// atomically at the store.
func (r *Repository) IncrementApplicationsCount(ctx context.Context, postID string, delta int) error {
	return r.ops.IncrementField(ctx, CollectionPosts, postID, "applicationsCount", delta)
}

// --- Applications ---

func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) error {
	doc, err := toDocument(app)
	if err != nil {
		return err
	}
	id, err := r.ops.Create(ctx, CollectionApplications, doc)
	if err != nil {
		return err
	}
	app.ID = id
	return nil
}

func (r *Repository) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	doc, err := r.ops.Get(ctx, CollectionApplications, id)
	if err != nil {
		return nil, err
	}
	var app models.Application
	if err := doc.Decode(&app); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("decode application %s: %v", id, err))
	}
	return &app, nil
}

// FindApplication looks up the application a developer filed against a post,
// or nil when none exists.
func (r *Repository) FindApplication(ctx context.Context, postID, developerID string) (*models.Application, error) {
	docs, err := r.ops.Query(ctx, CollectionApplications, map[string]string{
		"postId":      postID,
		"developerId": developerID,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var app models.Application
	if err := docs[0].Decode(&app); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("decode application %s: %v", docs[0].ID, err))
	}
	return &app, nil
}

func (r *Repository) ListApplicationsByPost(ctx context.Context, postID string) ([]models.Application, error) {
	docs, err := r.ops.Query(ctx, CollectionApplications, map[string]string{"postId": postID})
	if err != nil {
		return nil, err
	}
	apps, err := decodeAll[models.Application](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt > apps[j].AppliedAt })
	return apps, nil
}

func (r *Repository) ListApplicationsByDeveloper(ctx context.Context, developerID string) ([]models.Application, error) {
	docs, err := r.ops.Query(ctx, CollectionApplications, map[string]string{"developerId": developerID})
	if err != nil {
		return nil, err
	}
	apps, err := decodeAll[models.Application](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt > apps[j].AppliedAt })
	return apps, nil
}

// SetApplicationStatus flips an application's status only while the guard
// status still holds. Returns false when a concurrent decision won.
func (r *Repository) SetApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (bool, error) {
	return r.ops.UpdateWhere(ctx, CollectionApplications, id,
		map[string]interface{}{"status": string(to)},
		map[string]string{"status": string(from)},
	)
}

// --- Pending projects ---

func (r *Repository) CreateProject(ctx context.Context, project *models.PendingProject) error {
	doc, err := toDocument(project)
	if err != nil {
		return err
	}
	id, err := r.ops.Create(ctx, CollectionProjects, doc)
	if err != nil {
		return err
	}
	project.ID = id
	return nil
}

func (r *Repository) GetProject(ctx context.Context, id string) (*models.PendingProject, error) {
	doc, err := r.ops.Get(ctx, CollectionProjects, id)
	if err != nil {
		return nil, err
	}
	var project models.PendingProject
	if err := doc.Decode(&project); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("decode project %s: %v", id, err))
	}
	return &project, nil
}

// ListProjectsByUser returns projects where the user participates on either
// side of the engagement.
func (r *Repository) ListProjectsByUser(ctx context.Context, userID string) ([]models.PendingProject, error) {
	asAuthor, err := r.ops.Query(ctx, CollectionProjects, map[string]string{"authorId": userID})
	if err != nil {
		return nil, err
	}
	asDeveloper, err := r.ops.Query(ctx, CollectionProjects, map[string]string{"developerId": userID})
	if err != nil {
		return nil, err
	}
	projects, err := decodeAll[models.PendingProject](append(asAuthor, asDeveloper...))
	if err != nil {
		return nil, err
	}
	// A self-engagement cannot exist, so the two queries never overlap.
	sort.Slice(projects, func(i, j int) bool { return projects[i].AcceptedAt > projects[j].AcceptedAt })
	return projects, nil
}

// SetProjectStatus moves a project to a new status only while the guard
// status still holds. extra carries fields stamped alongside the transition,
// such as the completion timestamp.
func (r *Repository) SetProjectStatus(ctx context.Context, id string, from, to models.ProjectStatus, extra map[string]interface{}) (bool, error) {
	changes := map[string]interface{}{"status": string(to)}
	for k, v := range extra {
		changes[k] = v
	}
	return r.ops.UpdateWhere(ctx, CollectionProjects, id, changes,
		map[string]string{"status": string(from)},
	)
}

// --- Notifications ---

func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	doc, err := toDocument(n)
	if err != nil {
		return err
	}
	id, err := r.ops.Create(ctx, CollectionNotifications, doc)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *Repository) ListNotificationsByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	docs, err := r.ops.Query(ctx, CollectionNotifications, map[string]string{"userId": userID})
	if err != nil {
		return nil, err
	}
	notifs, err := decodeAll[models.Notification](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt > notifs[j].CreatedAt })
	return notifs, nil
}

// MarkNotificationRead marks a notification read on behalf of callerID.
// Only the recipient may read their own notifications.
func (r *Repository) MarkNotificationRead(ctx context.Context, id, callerID string) error {
	doc, err := r.ops.Get(ctx, CollectionNotifications, id)
	if err != nil {
		return err
	}
	var n models.Notification
	if err := doc.Decode(&n); err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("decode notification %s: %v", id, err))
	}
	if n.UserID != callerID {
		return errors.NewUnauthorizedError(fmt.Sprintf("notificationId: %s, callerId: %s", id, callerID))
	}
	return r.ops.Update(ctx, CollectionNotifications, id, map[string]interface{}{"read": true})
}

// ListUndispatchedNotifications returns the outbox backlog, oldest first,
// capped at limit.
func (r *Repository) ListUndispatchedNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	docs, err := r.ops.Query(ctx, CollectionNotifications, map[string]string{"dispatched": "false"})
	if err != nil {
		return nil, err
	}
	notifs, err := decodeAll[models.Notification](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt < notifs[j].CreatedAt })
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

// MarkNotificationDispatched flips a notification from pending to dispatched.
// The guard makes concurrent drainers idempotent: only one marks a given
// record.
func (r *Repository) MarkNotificationDispatched(ctx context.Context, id, dispatchedAt string) (bool, error) {
	return r.ops.UpdateWhere(ctx, CollectionNotifications, id,
		map[string]interface{}{"dispatched": true, "dispatchedAt": dispatchedAt},
		map[string]string{"dispatched": "false"},
	)
}
