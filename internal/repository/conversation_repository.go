package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// ErrStatusNotAdvanced is returned when a status update would move a message
// backwards in the sent → delivered → seen progression.
var ErrStatusNotAdvanced = errors.New("message status can only advance")

const messageColumns = `id, conversation_user_id, sender, body, status, reply_to, reactions, deleted, attachment_url, created_at`

// ConversationRepository handles conversation and message data access.
type ConversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

// GetConversation retrieves one thread by its user id.
func (r *ConversationRepository) GetConversation(ctx context.Context, userID int) (*model.Conversation, error) {
	c := &model.Conversation{}
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, user_name, user_avatar, last_message, last_message_at, admin_unread, user_unread
		 FROM conversations WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &c.UserName, &c.UserAvatar, &c.LastMessage, &c.LastMessageAt, &c.AdminUnread, &c.UserUnread)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListConversations retrieves all threads, most recently active first.
func (r *ConversationRepository) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, user_name, user_avatar, last_message, last_message_at, admin_unread, user_unread
		 FROM conversations ORDER BY last_message_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.UserID, &c.UserName, &c.UserAvatar, &c.LastMessage, &c.LastMessageAt, &c.AdminUnread, &c.UserUnread); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// ListMessages retrieves a thread's messages in chronological order.
func (r *ConversationRepository) ListMessages(ctx context.Context, userID int) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE conversation_user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetMessage retrieves one message by its ID.
func (r *ConversationRepository) GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	m := &model.Message{}
	err := scanMessage(r.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id), m)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AppendMessage inserts a message and updates the thread's preview and unread
// counter in one transaction. previewBody is what the inbox should display;
// unreadForAdmin selects which side's counter is bumped. The conversation row
// is created on first contact.
func (r *ConversationRepository) AppendMessage(ctx context.Context, m *model.Message, userName, userAvatar, previewBody string, unreadForAdmin bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO messages (id, conversation_user_id, sender, body, status, reply_to, reactions, attachment_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		m.ID, m.ConversationUserID, m.Sender, m.Body, m.Status, m.ReplyTo, m.Reactions, m.AttachmentURL,
	).Scan(&m.CreatedAt); err != nil {
		return err
	}

	adminBump, userBump := 0, 1
	if unreadForAdmin {
		adminBump, userBump = 1, 0
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO conversations (user_id, user_name, user_avatar, last_message, last_message_at, admin_unread, user_unread)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   user_name = EXCLUDED.user_name,
		   user_avatar = EXCLUDED.user_avatar,
		   last_message = EXCLUDED.last_message,
		   last_message_at = EXCLUDED.last_message_at,
		   admin_unread = conversations.admin_unread + $6,
		   user_unread = conversations.user_unread + $7`,
		m.ConversationUserID, userName, userAvatar, previewBody, m.CreatedAt, adminBump, userBump,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AdvanceStatus moves a message to a later delivery status. The WHERE guard
// makes regressions a no-op at the SQL level; the repository reports them as
// ErrStatusNotAdvanced so callers can treat the request as idempotent noise.
func (r *ConversationRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, to model.MessageStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE messages SET status = $1
		 WHERE id = $2
		   AND array_position(ARRAY['sent','delivered','seen'], status) <
		       array_position(ARRAY['sent','delivered','seen'], $1::text)`,
		to, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrStatusNotAdvanced
	}
	return nil
}

// MarkThreadDelivered advances every sent message from the other side of a
// thread to delivered. Used when a participant opens their inbox.
func (r *ConversationRepository) MarkThreadDelivered(ctx context.Context, userID int, fromAdmin bool) error {
	senderFilter := `sender = 'admin'`
	if fromAdmin {
		senderFilter = `sender <> 'admin'`
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET status = 'delivered'
		 WHERE conversation_user_id = $1 AND status = 'sent' AND `+senderFilter,
		userID,
	)
	return err
}

// MarkThreadSeen advances the other side's messages to seen and clears the
// reader's unread counter in one transaction.
func (r *ConversationRepository) MarkThreadSeen(ctx context.Context, userID int, readerIsAdmin bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	senderFilter := `sender = 'admin'`
	counter := `user_unread`
	if readerIsAdmin {
		senderFilter = `sender <> 'admin'`
		counter = `admin_unread`
	}

	if _, err := tx.Exec(ctx,
		`UPDATE messages SET status = 'seen'
		 WHERE conversation_user_id = $1 AND status <> 'seen' AND `+senderFilter,
		userID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET `+counter+` = 0 WHERE user_id = $1`, userID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateReactions replaces a message's reaction map.
func (r *ConversationRepository) UpdateReactions(ctx context.Context, id uuid.UUID, reactions map[string]string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE messages SET reactions = $1 WHERE id = $2`, reactions, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SoftDelete blanks a message's body behind the deletion placeholder. The row
// keeps its id, sender, and timestamp so the thread's shape is preserved.
func (r *ConversationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE messages SET body = $1, deleted = TRUE, reactions = '{}'::jsonb, attachment_url = NULL
		 WHERE id = $2 AND deleted = FALSE`,
		model.DeletedMessagePlaceholder, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountUnreadForAdmin sums the admin-side unread counters across all threads.
func (r *ConversationRepository) CountUnreadForAdmin(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(admin_unread), 0) FROM conversations`).Scan(&n)
	return n, err
}

func scanMessage(row pgx.Row, m *model.Message) error {
	return row.Scan(
		&m.ID, &m.ConversationUserID, &m.Sender, &m.Body, &m.Status,
		&m.ReplyTo, &m.Reactions, &m.Deleted, &m.AttachmentURL, &m.CreatedAt,
	)
}
