package model

import (
	"time"

	"github.com/google/uuid"
)

// SenderAdmin is the sender tag for messages written by the admin side of a
// thread. User messages carry the principal id in decimal form.
const SenderAdmin = "admin"

// DeletedMessagePlaceholder replaces the body of a soft-deleted message.
// The row itself, its timestamp, and its position are preserved.
const DeletedMessagePlaceholder = "This message was deleted"

// MessageStatus is the delivery state of a message. Transitions only ever
// advance: sent → delivered → seen.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusSeen      MessageStatus = "seen"
)

func (s MessageStatus) rank() int {
	switch s {
	case MessageStatusSent:
		return 0
	case MessageStatusDelivered:
		return 1
	case MessageStatusSeen:
		return 2
	default:
		return -1
	}
}

// CanAdvanceStatus reports whether moving a message from one status to
// another respects the forward-only state machine.
func CanAdvanceStatus(from, to MessageStatus) bool {
	return from.rank() >= 0 && to.rank() > from.rank()
}

// Conversation is the two-party thread between one user and the admin side,
// keyed by user id. The preview fields and unread counters are updated in the
// same transaction as every message append, so listeners never observe them
// out of sync.
type Conversation struct {
	UserID        int       `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserAvatar    string    `json:"user_avatar"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	AdminUnread   int       `json:"admin_unread"`
	UserUnread    int       `json:"user_unread"`
}

// Message is one entry in a conversation. Reactions map a reacting principal
// id to a single emoji.
type Message struct {
	ID                 uuid.UUID         `json:"id"`
	ConversationUserID int               `json:"conversation_user_id"`
	Sender             string            `json:"sender"`
	Body               string            `json:"body"`
	Status             MessageStatus     `json:"status"`
	ReplyTo            *uuid.UUID        `json:"reply_to,omitempty"`
	Reactions          map[string]string `json:"reactions"`
	Deleted            bool              `json:"deleted"`
	AttachmentURL      *string           `json:"attachment_url,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// ToggleReaction applies one principal's reaction to a reaction map and
// returns the result. Re-applying the same emoji removes it; a different
// emoji replaces it. At most one reaction per principal. The input map is
// not mutated.
func ToggleReaction(reactions map[string]string, principalID, emoji string) map[string]string {
	out := make(map[string]string, len(reactions)+1)
	for k, v := range reactions {
		out[k] = v
	}
	if out[principalID] == emoji {
		delete(out, principalID)
	} else {
		out[principalID] = emoji
	}
	return out
}

// SendMessageRequest is the payload for appending a message to a thread.
type SendMessageRequest struct {
	Body          string  `json:"body" binding:"required,min=1,max=4000"`
	ReplyTo       *string `json:"reply_to" binding:"omitempty,uuid"`
	AttachmentURL *string `json:"attachment_url" binding:"omitempty,url,max=2048"`
}

// ReactRequest is the payload for toggling a reaction on a message.
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required,min=1,max=16"`
}
