package model

import "time"

// Principal represents an authenticated portal user. Rows are upserted on
// first sign-in and never deleted by this system.
type Principal struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionRequest is the payload posted after the external identity provider
// sign-in completes. The provider is trusted to have verified the email.
type SessionRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Name      string `json:"name" binding:"required,min=1,max=255"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url,max=1024"`
}
