package model

import "time"

// PushToken is a browser delivery token registered by a principal after
// granting notification permission. The token is the addressable target;
// delivery itself happens through an external gateway.
type PushToken struct {
	Token       string    `json:"token"`
	PrincipalID int       `json:"principal_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterPushTokenRequest is the payload for registering a delivery token.
type RegisterPushTokenRequest struct {
	Token string `json:"token" binding:"required,min=8,max=4096"`
}

// SendPushRequest is the payload for dispatching a push to all registered
// tokens.
type SendPushRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
	Body  string `json:"body" binding:"required,min=1,max=1000"`
	Link  string `json:"link" binding:"omitempty,url,max=2048"`
}
