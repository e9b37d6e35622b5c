package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// subjectStore is the slice of the subject store the catalog needs.
type subjectStore interface {
	GetByID(ctx context.Context, id int) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
	Create(ctx context.Context, s *model.Subject) error
	Update(ctx context.Context, s *model.Subject) error
	SwapOrder(ctx context.Context, idA, idB int) error
	Delete(ctx context.Context, id int) error
}

// CatalogService manages the subject catalog and its display order.
type CatalogService struct {
	subjects subjectStore
	feed     changeNotifier
	audit    auditRecorder
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(subjects subjectStore, feed changeNotifier, audit auditRecorder, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		subjects: subjects,
		feed:     feed,
		audit:    audit,
		log:      log.With().Str("component", "catalog_service").Logger(),
	}
}

// List returns the catalog in display order.
func (s *CatalogService) List(ctx context.Context) ([]model.Subject, error) {
	return s.subjects.List(ctx)
}

// GetByID returns one subject.
func (s *CatalogService) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return subject, err
}

// Create appends a subject at the end of the display order.
func (s *CatalogService) Create(ctx context.Context, actor *Claims, req *model.CreateSubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{
		Name:       req.Name,
		Instructor: req.Instructor,
		Icon:       req.Icon,
		Color:      req.Color,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		s.log.Error().Err(err).Str("name", req.Name).Msg("failed to create subject")
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "subject.create", fmt.Sprintf("created subject %q (id %d)", subject.Name, subject.ID))
	s.feed.Publish(ctx, "subjects")
	return subject, nil
}

// Update edits a subject's fields. The display position is untouched.
func (s *CatalogService) Update(ctx context.Context, actor *Claims, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	subject, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subject.Name = req.Name
	subject.Instructor = req.Instructor
	subject.Icon = req.Icon
	subject.Color = req.Color
	if err := s.subjects.Update(ctx, subject); err != nil {
		s.log.Error().Err(err).Int("id", id).Msg("failed to update subject")
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "subject.update", fmt.Sprintf("updated subject %q (id %d)", subject.Name, id))
	s.feed.Publish(ctx, "subjects")
	return subject, nil
}

// Swap exchanges the display positions of two subjects. It is the only
// reorder primitive; applying the same swap twice restores the original
// order.
func (s *CatalogService) Swap(ctx context.Context, actor *Claims, idA, idB int) error {
	if idA == idB {
		return nil
	}
	if err := s.subjects.SwapOrder(ctx, idA, idB); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		s.log.Error().Err(err).Int("a", idA).Int("b", idB).Msg("failed to swap subjects")
		return err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "subject.swap", fmt.Sprintf("swapped subjects %d and %d", idA, idB))
	s.feed.Publish(ctx, "subjects")
	return nil
}

// Delete removes a subject. Its resources are deliberately left behind as
// orphans; the resource module keeps serving them under the stale id.
func (s *CatalogService) Delete(ctx context.Context, actor *Claims, id int) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		s.log.Error().Err(err).Int("id", id).Msg("failed to delete subject")
		return err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "subject.delete", fmt.Sprintf("deleted subject id %d", id))
	s.feed.Publish(ctx, "subjects")
	return nil
}
