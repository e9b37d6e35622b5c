package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// SettingRepository handles the portal settings singleton row.
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

// Get reads the settings row. A missing row is not an error; it yields the
// zero-value defaults so the portal works before the first save.
func (r *SettingRepository) Get(ctx context.Context) (*model.PortalSettings, error) {
	s := &model.PortalSettings{}
	err := r.pool.QueryRow(ctx,
		`SELECT announcement_text, announcement_visible, banner_style, chatbot_mode, api_base_url, updated_at
		 FROM portal_settings WHERE id = 1`,
	).Scan(&s.AnnouncementText, &s.AnnouncementVisible, &s.BannerStyle, &s.ChatbotMode, &s.APIBaseURL, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := model.DefaultPortalSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save rewrites the settings document in full. The id = 1 upsert keeps the
// table a singleton regardless of how many writers race.
func (r *SettingRepository) Save(ctx context.Context, s *model.PortalSettings) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO portal_settings (id, announcement_text, announcement_visible, banner_style, chatbot_mode, api_base_url, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		   announcement_text = EXCLUDED.announcement_text,
		   announcement_visible = EXCLUDED.announcement_visible,
		   banner_style = EXCLUDED.banner_style,
		   chatbot_mode = EXCLUDED.chatbot_mode,
		   api_base_url = EXCLUDED.api_base_url,
		   updated_at = CURRENT_TIMESTAMP
		 RETURNING updated_at`,
		s.AnnouncementText, s.AnnouncementVisible, s.BannerStyle, s.ChatbotMode, s.APIBaseURL,
	).Scan(&s.UpdatedAt)
}
