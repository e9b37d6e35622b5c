package model

// BroadcastEmailRequest is the payload for emailing every registered user.
type BroadcastEmailRequest struct {
	Subject string `json:"subject" binding:"required,min=1,max=200"`
	Body    string `json:"body" binding:"required,min=1,max=50000"`
}
