package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSubscribe   Action = "subscribe"
	ActionUnsubscribe Action = "unsubscribe"
	ActionPing        Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SubscribeRequest attaches the connection to a live target. Target is a
// collection name ("subjects", "resources", "notifications", "settings",
// "presence", "conversations") or "conversation:<user_id>" for one
// message thread.
type SubscribeRequest struct {
	Action Action `json:"action"`
	Target string `json:"target"`
}

// UnsubscribeRequest detaches the connection from a live target.
type UnsubscribeRequest struct {
	Action Action `json:"action"`
	Target string `json:"target"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot   Event = "snapshot"
	EventSubscribed Event = "subscribed"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// SnapshotResponse carries the full current state of a target. Every change
// is delivered as a fresh snapshot; the client replaces its local copy
// wholesale rather than patching it.
type SnapshotResponse struct {
	Event  Event       `json:"event"`
	Target string      `json:"target"`
	Data   interface{} `json:"data"`
}

// SubscribedResponse confirms a subscription was accepted.
type SubscribedResponse struct {
	Event  Event  `json:"event"`
	Target string `json:"target"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a ping; it doubles as the presence heartbeat ack.
type PongResponse struct {
	Event  Event `json:"event"`
	Online int   `json:"online"`
}
