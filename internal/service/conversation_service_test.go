package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
)

type fakeConversationStore struct {
	conversations map[int]*model.Conversation
	messages      map[uuid.UUID]*model.Message
	order         []uuid.UUID
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		conversations: make(map[int]*model.Conversation),
		messages:      make(map[uuid.UUID]*model.Message),
	}
}

func (f *fakeConversationStore) ListConversations(_ context.Context) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range f.conversations {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeConversationStore) ListMessages(_ context.Context, userID int) ([]model.Message, error) {
	var out []model.Message
	for _, id := range f.order {
		if m := f.messages[id]; m.ConversationUserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeConversationStore) GetMessage(_ context.Context, id uuid.UUID) (*model.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeConversationStore) AppendMessage(_ context.Context, m *model.Message, userName, userAvatar, previewBody string, unreadForAdmin bool) error {
	m.CreatedAt = time.Now()
	cp := *m
	f.messages[m.ID] = &cp
	f.order = append(f.order, m.ID)

	c, ok := f.conversations[m.ConversationUserID]
	if !ok {
		c = &model.Conversation{UserID: m.ConversationUserID}
		f.conversations[m.ConversationUserID] = c
	}
	c.UserName = userName
	c.UserAvatar = userAvatar
	c.LastMessage = previewBody
	c.LastMessageAt = m.CreatedAt
	if unreadForAdmin {
		c.AdminUnread++
	} else {
		c.UserUnread++
	}
	return nil
}

func (f *fakeConversationStore) MarkThreadDelivered(_ context.Context, userID int, fromAdmin bool) error {
	for _, m := range f.messages {
		if m.ConversationUserID != userID || m.Status != model.MessageStatusSent {
			continue
		}
		if fromAdmin == (m.Sender != model.SenderAdmin) {
			m.Status = model.MessageStatusDelivered
		}
	}
	return nil
}

func (f *fakeConversationStore) MarkThreadSeen(_ context.Context, userID int, readerIsAdmin bool) error {
	for _, m := range f.messages {
		if m.ConversationUserID != userID {
			continue
		}
		if readerIsAdmin == (m.Sender != model.SenderAdmin) {
			m.Status = model.MessageStatusSeen
		}
	}
	if c, ok := f.conversations[userID]; ok {
		if readerIsAdmin {
			c.AdminUnread = 0
		} else {
			c.UserUnread = 0
		}
	}
	return nil
}

func (f *fakeConversationStore) AdvanceStatus(_ context.Context, id uuid.UUID, to model.MessageStatus) error {
	m, ok := f.messages[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if !model.CanAdvanceStatus(m.Status, to) {
		return repository.ErrStatusNotAdvanced
	}
	m.Status = to
	return nil
}

func (f *fakeConversationStore) UpdateReactions(_ context.Context, id uuid.UUID, reactions map[string]string) error {
	m, ok := f.messages[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.Reactions = reactions
	return nil
}

func (f *fakeConversationStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	m, ok := f.messages[id]
	if !ok || m.Deleted {
		return pgx.ErrNoRows
	}
	m.Body = model.DeletedMessagePlaceholder
	m.Deleted = true
	m.Reactions = map[string]string{}
	m.AttachmentURL = nil
	return nil
}

type fakePrincipalLookup struct {
	principals map[int]*model.Principal
}

func (f *fakePrincipalLookup) GetByID(_ context.Context, id int) (*model.Principal, error) {
	p, ok := f.principals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func newConversationHarness(policy ContentPolicy) (*ConversationService, *fakeConversationStore) {
	store := newFakeConversationStore()
	principals := &fakePrincipalLookup{principals: map[int]*model.Principal{
		7: {ID: 7, Email: "user@example.com", Name: "Asha", AvatarURL: "https://img.example.com/a.png"},
	}}
	svc := NewConversationService(store, principals, policy, &fakeFeed{}, zerolog.Nop())
	return svc, store
}

func userActor() *Claims {
	return &Claims{TokenType: TokenTypeUser, UserID: 7, Email: "user@example.com", Name: "Asha", Role: model.RoleViewer}
}

func TestSendUpdatesPreviewAndUnread(t *testing.T) {
	svc, store := newConversationHarness(nil)
	ctx := context.Background()

	if _, err := svc.SendAsUser(ctx, userActor(), &model.SendMessageRequest{Body: "hello, I need the physics notes"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	c := store.conversations[7]
	if c == nil {
		t.Fatal("conversation row not created on first contact")
	}
	if c.AdminUnread != 1 || c.UserUnread != 0 {
		t.Fatalf("unread = admin %d / user %d, want 1 / 0", c.AdminUnread, c.UserUnread)
	}
	if !strings.HasPrefix(c.LastMessage, "hello") {
		t.Errorf("preview = %q", c.LastMessage)
	}

	if _, err := svc.SendAsAdmin(ctx, 7, &model.SendMessageRequest{Body: "sure, uploading now"}); err != nil {
		t.Fatalf("admin send: %v", err)
	}
	if c.UserUnread != 1 {
		t.Fatalf("user unread = %d after admin reply, want 1", c.UserUnread)
	}
}

func TestPreviewTruncatesOnRuneBoundary(t *testing.T) {
	svc, store := newConversationHarness(nil)
	ctx := context.Background()

	// Every rune is 3 bytes, so the 120-byte cap lands mid-rune unless the
	// truncation backs up to a boundary.
	body := strings.Repeat("안", 50)
	if _, err := svc.SendAsUser(ctx, userActor(), &model.SendMessageRequest{Body: body}); err != nil {
		t.Fatalf("send: %v", err)
	}

	preview := store.conversations[7].LastMessage
	if !utf8.ValidString(preview) {
		t.Fatalf("preview is not valid UTF-8: %q", preview)
	}
	if len(preview) > 120 {
		t.Fatalf("preview is %d bytes, want at most 120", len(preview))
	}
	if !strings.HasPrefix(body, preview) {
		t.Fatalf("preview %q is not a prefix of the body", preview)
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	svc, store := newConversationHarness(nil)
	ctx := context.Background()

	m, err := svc.SendAsUser(ctx, userActor(), &model.SendMessageRequest{Body: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	admin := testActor()
	if err := svc.AdvanceStatus(ctx, admin, m.ID, model.MessageStatusSeen); err != nil {
		t.Fatalf("advance to seen: %v", err)
	}
	if store.messages[m.ID].Status != model.MessageStatusSeen {
		t.Fatalf("status = %q", store.messages[m.ID].Status)
	}

	// A late "delivered" report is idempotent noise, not an error.
	if err := svc.AdvanceStatus(ctx, admin, m.ID, model.MessageStatusDelivered); err != nil {
		t.Fatalf("late delivered report errored: %v", err)
	}
	if store.messages[m.ID].Status != model.MessageStatusSeen {
		t.Fatalf("status regressed to %q", store.messages[m.ID].Status)
	}
}

func TestReactionTogglePerPrincipal(t *testing.T) {
	svc, store := newConversationHarness(nil)
	ctx := context.Background()
	user := userActor()

	m, _ := svc.SendAsUser(ctx, user, &model.SendMessageRequest{Body: "done!"})

	if _, err := svc.React(ctx, testActor(), m.ID, "👍"); err != nil {
		t.Fatalf("admin react: %v", err)
	}
	if _, err := svc.React(ctx, user, m.ID, "🎉"); err != nil {
		t.Fatalf("user react: %v", err)
	}
	if len(store.messages[m.ID].Reactions) != 2 {
		t.Fatalf("reactions = %v", store.messages[m.ID].Reactions)
	}

	// Switching emoji replaces, repeating removes.
	if _, err := svc.React(ctx, user, m.ID, "❤️"); err != nil {
		t.Fatalf("react switch: %v", err)
	}
	if got := store.messages[m.ID].Reactions["7"]; got != "❤️" {
		t.Fatalf("user reaction = %q, want replacement", got)
	}
	if _, err := svc.React(ctx, user, m.ID, "❤️"); err != nil {
		t.Fatalf("react toggle off: %v", err)
	}
	if _, ok := store.messages[m.ID].Reactions["7"]; ok {
		t.Error("repeated emoji should remove the reaction")
	}
}

func TestSoftDeletePreservesShape(t *testing.T) {
	svc, store := newConversationHarness(nil)
	ctx := context.Background()
	user := userActor()

	m, _ := svc.SendAsUser(ctx, user, &model.SendMessageRequest{Body: "typo mesage"})
	createdAt := store.messages[m.ID].CreatedAt

	if err := svc.Delete(ctx, user, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got := store.messages[m.ID]
	if !got.Deleted || got.Body != model.DeletedMessagePlaceholder {
		t.Fatalf("body = %q deleted = %v", got.Body, got.Deleted)
	}
	if got.ID != m.ID || got.Sender != "7" || !got.CreatedAt.Equal(createdAt) {
		t.Error("soft delete must keep id, sender, and timestamp")
	}

	// Reacting to a deleted message is rejected.
	if _, err := svc.React(ctx, testActor(), m.ID, "👍"); err != ErrMessageDeleted {
		t.Fatalf("react on deleted = %v, want ErrMessageDeleted", err)
	}
}

func TestDeleteRequiresAuthor(t *testing.T) {
	svc, _ := newConversationHarness(nil)
	ctx := context.Background()

	m, _ := svc.SendAsUser(ctx, userActor(), &model.SendMessageRequest{Body: "mine"})
	if err := svc.Delete(ctx, testActor(), m.ID); err != ErrNotMessageAuthor {
		t.Fatalf("admin deleting user message = %v, want ErrNotMessageAuthor", err)
	}
}

func TestThreadMembership(t *testing.T) {
	svc, _ := newConversationHarness(nil)
	ctx := context.Background()

	m, _ := svc.SendAsUser(ctx, userActor(), &model.SendMessageRequest{Body: "private"})

	stranger := &Claims{TokenType: TokenTypeUser, UserID: 99, Email: "other@example.com"}
	if _, err := svc.Thread(ctx, stranger, 7); err != ErrNotThreadMember {
		t.Fatalf("stranger thread read = %v, want ErrNotThreadMember", err)
	}
	if _, err := svc.React(ctx, stranger, m.ID, "👀"); err != ErrNotThreadMember {
		t.Fatalf("stranger react = %v, want ErrNotThreadMember", err)
	}
}

func TestContentPolicyApplied(t *testing.T) {
	svc, store := newConversationHarness(strings.ToUpper)
	ctx := context.Background()

	m, err := svc.SendAsUser(ctx, userActor(), &model.SendMessageRequest{Body: "quiet please"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if store.messages[m.ID].Body != "QUIET PLEASE" {
		t.Fatalf("body = %q, policy not applied before storage", store.messages[m.ID].Body)
	}
	if store.conversations[7].LastMessage != "QUIET PLEASE" {
		t.Error("preview must reflect the transformed body")
	}
}
