package service

import (
	"context"
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
)

// Conversation errors surfaced to handlers.
var (
	ErrNotThreadMember  = errors.New("not a participant in this conversation")
	ErrMessageDeleted   = errors.New("message has been deleted")
	ErrNotMessageAuthor = errors.New("only the author may delete a message")
)

// previewLimit caps how much of a message body lands in the inbox preview.
const previewLimit = 120

// conversationStore is the slice of the conversation store the service needs.
type conversationStore interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	ListMessages(ctx context.Context, userID int) ([]model.Message, error)
	GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error)
	AppendMessage(ctx context.Context, m *model.Message, userName, userAvatar, previewBody string, unreadForAdmin bool) error
	MarkThreadDelivered(ctx context.Context, userID int, fromAdmin bool) error
	MarkThreadSeen(ctx context.Context, userID int, readerIsAdmin bool) error
	AdvanceStatus(ctx context.Context, id uuid.UUID, to model.MessageStatus) error
	UpdateReactions(ctx context.Context, id uuid.UUID, reactions map[string]string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// principalLookup is the slice of the principal store the service needs.
type principalLookup interface {
	GetByID(ctx context.Context, id int) (*model.Principal, error)
}

// ContentPolicy transforms a message body before it is stored. The default
// policy is the identity function; deployments can plug in profanity
// filtering or trimming without touching the engine.
type ContentPolicy func(string) string

// ConversationService runs the two-party message threads between portal
// users and the admin side.
type ConversationService struct {
	store      conversationStore
	principals principalLookup
	policy     ContentPolicy
	feed       changeNotifier
	log        zerolog.Logger
}

// NewConversationService creates a new ConversationService. A nil policy
// stores bodies verbatim.
func NewConversationService(store conversationStore, principals principalLookup, policy ContentPolicy, feed changeNotifier, log zerolog.Logger) *ConversationService {
	if policy == nil {
		policy = func(body string) string { return body }
	}
	return &ConversationService{
		store:      store,
		principals: principals,
		policy:     policy,
		feed:       feed,
		log:        log.With().Str("component", "conversation_service").Logger(),
	}
}

// ListInbox returns every thread, most recently active first. Admin only.
func (s *ConversationService) ListInbox(ctx context.Context) ([]model.Conversation, error) {
	return s.store.ListConversations(ctx)
}

// Thread returns a thread's messages in chronological order after checking
// the caller belongs to it.
func (s *ConversationService) Thread(ctx context.Context, actor *Claims, userID int) ([]model.Message, error) {
	if actor.TokenType != TokenTypeAdmin && actor.UserID != userID {
		return nil, ErrNotThreadMember
	}
	return s.store.ListMessages(ctx, userID)
}

// SendAsUser appends a message to the caller's own thread.
func (s *ConversationService) SendAsUser(ctx context.Context, actor *Claims, req *model.SendMessageRequest) (*model.Message, error) {
	avatar := ""
	if p, err := s.principals.GetByID(ctx, actor.UserID); err == nil {
		avatar = p.AvatarURL
	}
	return s.append(ctx, actor.UserID, strconv.Itoa(actor.UserID), actor.Name, avatar, req, true)
}

// SendAsAdmin appends an admin reply to a user's thread.
func (s *ConversationService) SendAsAdmin(ctx context.Context, userID int, req *model.SendMessageRequest) (*model.Message, error) {
	p, err := s.principals.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.append(ctx, userID, model.SenderAdmin, p.Name, p.AvatarURL, req, false)
}

func (s *ConversationService) append(ctx context.Context, userID int, sender, userName, userAvatar string, req *model.SendMessageRequest, unreadForAdmin bool) (*model.Message, error) {
	body := s.policy(req.Body)

	m := &model.Message{
		ID:                 uuid.New(),
		ConversationUserID: userID,
		Sender:             sender,
		Body:               body,
		Status:             model.MessageStatusSent,
		Reactions:          map[string]string{},
		AttachmentURL:      req.AttachmentURL,
	}
	if req.ReplyTo != nil {
		replyTo, err := uuid.Parse(*req.ReplyTo)
		if err != nil {
			return nil, err
		}
		m.ReplyTo = &replyTo
	}

	preview := body
	if len(preview) > previewLimit {
		// Back up to a rune boundary so the preview stays valid UTF-8.
		cut := previewLimit
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	if err := s.store.AppendMessage(ctx, m, userName, userAvatar, preview, unreadForAdmin); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("failed to append message")
		return nil, err
	}

	s.feed.PublishConversation(ctx, userID)
	return m, nil
}

// MarkDelivered advances the other side's sent messages to delivered. Called
// when a participant's inbox comes online.
func (s *ConversationService) MarkDelivered(ctx context.Context, actor *Claims, userID int) error {
	readerIsAdmin := actor.TokenType == TokenTypeAdmin
	if !readerIsAdmin && actor.UserID != userID {
		return ErrNotThreadMember
	}
	if err := s.store.MarkThreadDelivered(ctx, userID, readerIsAdmin); err != nil {
		return err
	}
	s.feed.PublishConversation(ctx, userID)
	return nil
}

// MarkSeen advances the other side's messages to seen and clears the
// reader's unread counter.
func (s *ConversationService) MarkSeen(ctx context.Context, actor *Claims, userID int) error {
	readerIsAdmin := actor.TokenType == TokenTypeAdmin
	if !readerIsAdmin && actor.UserID != userID {
		return ErrNotThreadMember
	}
	if err := s.store.MarkThreadSeen(ctx, userID, readerIsAdmin); err != nil {
		return err
	}
	s.feed.PublishConversation(ctx, userID)
	return nil
}

// React toggles the caller's reaction on a message. Each participant holds at
// most one emoji per message; repeating it removes it.
func (s *ConversationService) React(ctx context.Context, actor *Claims, messageID uuid.UUID, emoji string) (*model.Message, error) {
	m, err := s.memberMessage(ctx, actor, messageID)
	if err != nil {
		return nil, err
	}
	if m.Deleted {
		return nil, ErrMessageDeleted
	}

	m.Reactions = model.ToggleReaction(m.Reactions, senderTag(actor), emoji)
	if err := s.store.UpdateReactions(ctx, messageID, m.Reactions); err != nil {
		s.log.Error().Err(err).Str("message_id", messageID.String()).Msg("failed to update reactions")
		return nil, err
	}

	s.feed.PublishConversation(ctx, m.ConversationUserID)
	return m, nil
}

// Delete soft-deletes a message. Only its author may do so; the row keeps
// its id, sender, and timestamp behind the placeholder body.
func (s *ConversationService) Delete(ctx context.Context, actor *Claims, messageID uuid.UUID) error {
	m, err := s.memberMessage(ctx, actor, messageID)
	if err != nil {
		return err
	}
	if m.Sender != senderTag(actor) {
		return ErrNotMessageAuthor
	}
	if err := s.store.SoftDelete(ctx, messageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMessageDeleted
		}
		return err
	}

	s.feed.PublishConversation(ctx, m.ConversationUserID)
	return nil
}

// AdvanceStatus moves a message forward in the sent → delivered → seen
// progression. Regressions and repeats are silently ignored so clients can
// report statuses without coordinating.
func (s *ConversationService) AdvanceStatus(ctx context.Context, actor *Claims, messageID uuid.UUID, to model.MessageStatus) error {
	m, err := s.memberMessage(ctx, actor, messageID)
	if err != nil {
		return err
	}
	if !model.CanAdvanceStatus(m.Status, to) {
		return nil
	}
	if err := s.store.AdvanceStatus(ctx, messageID, to); err != nil && !errors.Is(err, repository.ErrStatusNotAdvanced) {
		return err
	}

	s.feed.PublishConversation(ctx, m.ConversationUserID)
	return nil
}

func (s *ConversationService) memberMessage(ctx context.Context, actor *Claims, messageID uuid.UUID) (*model.Message, error) {
	m, err := s.store.GetMessage(ctx, messageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if actor.TokenType != TokenTypeAdmin && actor.UserID != m.ConversationUserID {
		return nil, ErrNotThreadMember
	}
	return m, nil
}

func senderTag(actor *Claims) string {
	if actor.TokenType == TokenTypeAdmin {
		return model.SenderAdmin
	}
	return strconv.Itoa(actor.UserID)
}
