package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// resourceStore is the slice of the resource store the service needs.
type resourceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Resource, error)
	ListBySubject(ctx context.Context, subjectID int) ([]model.Resource, error)
	ListAll(ctx context.Context) ([]model.Resource, error)
	Create(ctx context.Context, r *model.Resource) error
	Update(ctx context.Context, r *model.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// notificationStore is the slice of the notification store the service needs.
type notificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// ResourceService manages study resources and the notification side effects
// of publishing them.
type ResourceService struct {
	resources     resourceStore
	subjects      subjectStore
	notifications notificationStore
	feed          changeNotifier
	audit         auditRecorder
	log           zerolog.Logger
}

// NewResourceService creates a new ResourceService.
func NewResourceService(
	resources resourceStore,
	subjects subjectStore,
	notifications notificationStore,
	feed changeNotifier,
	audit auditRecorder,
	log zerolog.Logger,
) *ResourceService {
	return &ResourceService{
		resources:     resources,
		subjects:      subjects,
		notifications: notifications,
		feed:          feed,
		audit:         audit,
		log:           log.With().Str("component", "resource_service").Logger(),
	}
}

// ListBySubject returns one subject's resources, newest first. The subject
// itself is not checked: resources orphaned by a subject deletion stay
// reachable under their stale subject id.
func (s *ResourceService) ListBySubject(ctx context.Context, subjectID int) ([]model.Resource, error) {
	return s.resources.ListBySubject(ctx, subjectID)
}

// ListAll returns every resource, newest first.
func (s *ResourceService) ListAll(ctx context.Context) ([]model.Resource, error) {
	return s.resources.ListAll(ctx)
}

// Create publishes a resource and drops a best-effort entry into the
// notification feed. A failed notification write never rolls back the
// resource itself.
func (s *ResourceService) Create(ctx context.Context, actor *Claims, req *model.CreateResourceRequest) (*model.Resource, error) {
	resource := &model.Resource{
		ID:          uuid.New(),
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        model.ResourceType(req.Type),
		URL:         req.URL,
		OrderIndex:  time.Now().UnixMilli(),
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		s.log.Error().Err(err).Str("title", req.Title).Msg("failed to create resource")
		return nil, err
	}

	s.notifyNewResource(ctx, resource)
	s.audit.Record(ctx, actor.UserID, actor.Email, "resource.create", fmt.Sprintf("published %q (%s)", resource.Title, resource.Type))
	s.feed.Publish(ctx, "resources")
	return resource, nil
}

// Update edits a resource's title, description, and URL.
func (s *ResourceService) Update(ctx context.Context, actor *Claims, id uuid.UUID, req *model.UpdateResourceRequest) (*model.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	resource.Title = req.Title
	resource.Description = req.Description
	resource.URL = req.URL
	if err := s.resources.Update(ctx, resource); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to update resource")
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "resource.update", fmt.Sprintf("updated %q", resource.Title))
	s.feed.Publish(ctx, "resources")
	return resource, nil
}

// Delete removes a resource. Orphaned resources (whose subject was deleted)
// are deletable like any other; no subject lookup happens on this path.
func (s *ResourceService) Delete(ctx context.Context, actor *Claims, id uuid.UUID) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to delete resource")
		return err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "resource.delete", fmt.Sprintf("deleted resource %s", id))
	s.feed.Publish(ctx, "resources")
	return nil
}

func (s *ResourceService) notifyNewResource(ctx context.Context, resource *model.Resource) {
	title := "New study resource"
	if subject, err := s.subjects.GetByID(ctx, resource.SubjectID); err == nil {
		title = fmt.Sprintf("New resource in %s", subject.Name)
	}

	n := &model.Notification{
		ID:    uuid.New(),
		Title: title,
		Body:  resource.Title,
		Link:  fmt.Sprintf("/subjects/%d", resource.SubjectID),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("resource_id", resource.ID.String()).Msg("failed to write notification feed entry")
		return
	}
	s.feed.Publish(ctx, "notifications")
}
