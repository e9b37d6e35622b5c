package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// In-memory stores mirroring the SQL semantics of the real repositories.

type fakeFeed struct {
	published []string
}

func (f *fakeFeed) Publish(_ context.Context, collection string) {
	f.published = append(f.published, collection)
}

func (f *fakeFeed) PublishConversation(ctx context.Context, userID int) {
	f.Publish(ctx, "conversations")
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, _ int, _, action, _ string) {
	f.actions = append(f.actions, action)
}

type fakeSubjectStore struct {
	nextID   int
	subjects map[int]*model.Subject
}

func newFakeSubjectStore() *fakeSubjectStore {
	return &fakeSubjectStore{nextID: 1, subjects: make(map[int]*model.Subject)}
}

func (f *fakeSubjectStore) GetByID(_ context.Context, id int) (*model.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubjectStore) List(_ context.Context) ([]model.Subject, error) {
	out := make([]model.Subject, 0, len(f.subjects))
	for _, s := range f.subjects {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeSubjectStore) Create(_ context.Context, s *model.Subject) error {
	maxOrder := 0
	for _, existing := range f.subjects {
		if existing.OrderIndex > maxOrder {
			maxOrder = existing.OrderIndex
		}
	}
	s.ID = f.nextID
	f.nextID++
	s.OrderIndex = maxOrder + 1
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.subjects[s.ID] = &cp
	return nil
}

func (f *fakeSubjectStore) Update(_ context.Context, s *model.Subject) error {
	existing, ok := f.subjects[s.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Name = s.Name
	existing.Instructor = s.Instructor
	existing.Icon = s.Icon
	existing.Color = s.Color
	return nil
}

func (f *fakeSubjectStore) SwapOrder(_ context.Context, idA, idB int) error {
	a, okA := f.subjects[idA]
	b, okB := f.subjects[idB]
	if !okA || !okB {
		return pgx.ErrNoRows
	}
	a.OrderIndex, b.OrderIndex = b.OrderIndex, a.OrderIndex
	return nil
}

func (f *fakeSubjectStore) Delete(_ context.Context, id int) error {
	if _, ok := f.subjects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.subjects, id)
	return nil
}

type fakeResourceStore struct {
	resources map[uuid.UUID]*model.Resource
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{resources: make(map[uuid.UUID]*model.Resource)}
}

func (f *fakeResourceStore) GetByID(_ context.Context, id uuid.UUID) (*model.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResourceStore) ListBySubject(ctx context.Context, subjectID int) ([]model.Resource, error) {
	all, _ := f.ListAll(ctx)
	var out []model.Resource
	for _, r := range all {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResourceStore) ListAll(_ context.Context) ([]model.Resource, error) {
	out := make([]model.Resource, 0, len(f.resources))
	for _, r := range f.resources {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex > out[j].OrderIndex })
	return out, nil
}

func (f *fakeResourceStore) Create(_ context.Context, r *model.Resource) error {
	r.CreatedAt = time.Now()
	cp := *r
	f.resources[r.ID] = &cp
	return nil
}

func (f *fakeResourceStore) Update(_ context.Context, r *model.Resource) error {
	existing, ok := f.resources[r.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Title = r.Title
	existing.Description = r.Description
	existing.URL = r.URL
	return nil
}

func (f *fakeResourceStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.resources[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.resources, id)
	return nil
}

type fakeNotificationStore struct {
	entries []model.Notification
	err     error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *n)
	return nil
}

func testActor() *Claims {
	return &Claims{TokenType: TokenTypeAdmin, UserID: 1, Email: "admin@example.com", Role: model.RoleAdmin}
}
