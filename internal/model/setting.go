package model

import "time"

// ChatbotMode selects between the remote assistant bridge and the offline
// rule-based responder. Switching is manual, never an automatic fallback.
type ChatbotMode string

const (
	ChatbotModeOnline  ChatbotMode = "online"
	ChatbotModeOffline ChatbotMode = "offline"
)

// PortalSettings is the singleton configuration document read by every
// client. There is exactly one row (id = 1, enforced by a CHECK constraint).
type PortalSettings struct {
	AnnouncementText    string      `json:"announcement_text"`
	AnnouncementVisible bool        `json:"announcement_visible"`
	BannerStyle         string      `json:"banner_style"`
	ChatbotMode         ChatbotMode `json:"chatbot_mode"`
	APIBaseURL          string      `json:"api_base_url"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// DefaultPortalSettings is what readers get when the row has never been
// written (and what a transient read failure degrades to).
func DefaultPortalSettings() PortalSettings {
	return PortalSettings{
		BannerStyle: "info",
		ChatbotMode: ChatbotModeOffline,
	}
}

// UpdateSettingsRequest is the payload for rewriting the settings document.
type UpdateSettingsRequest struct {
	AnnouncementText    string `json:"announcement_text" binding:"max=2000"`
	AnnouncementVisible bool   `json:"announcement_visible"`
	BannerStyle         string `json:"banner_style" binding:"omitempty,oneof=info warning success urgent"`
	ChatbotMode         string `json:"chatbot_mode" binding:"required,oneof=online offline"`
	APIBaseURL          string `json:"api_base_url" binding:"omitempty,url,max=1024"`
}
