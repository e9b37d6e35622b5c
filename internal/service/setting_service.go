package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// settingsCacheTTL bounds staleness when an invalidation is lost.
const settingsCacheTTL = 60 * time.Second

// settingStore is the slice of the settings store the service needs.
type settingStore interface {
	Get(ctx context.Context) (*model.PortalSettings, error)
	Save(ctx context.Context, s *model.PortalSettings) error
}

// SettingService manages the portal settings singleton with a Redis
// read-through cache.
type SettingService struct {
	store settingStore
	rdb   *redis.Client
	feed  changeNotifier
	audit auditRecorder
	log   zerolog.Logger
}

// NewSettingService creates a new SettingService.
func NewSettingService(store settingStore, rdb *redis.Client, feed changeNotifier, audit auditRecorder, log zerolog.Logger) *SettingService {
	return &SettingService{
		store: store,
		rdb:   rdb,
		feed:  feed,
		audit: audit,
		log:   log.With().Str("component", "setting_service").Logger(),
	}
}

// Get returns the settings document. Reads degrade to defaults when the
// store is unreachable; the public portal keeps rendering either way.
func (s *SettingService) Get(ctx context.Context) *model.PortalSettings {
	cacheKey := config.CacheKey.SettingsCache()

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		settings := &model.PortalSettings{}
		if err := json.Unmarshal([]byte(cached), settings); err == nil {
			return settings
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("settings cache read failed")
	}

	settings, err := s.store.Get(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("settings store read failed, serving defaults")
		defaults := model.DefaultPortalSettings()
		return &defaults
	}

	if payload, err := json.Marshal(settings); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, settingsCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("settings cache write failed")
		}
	}
	return settings
}

// Update rewrites the settings document in full, drops the cache entry, and
// wakes live subscribers.
func (s *SettingService) Update(ctx context.Context, actor *Claims, req *model.UpdateSettingsRequest) (*model.PortalSettings, error) {
	settings := &model.PortalSettings{
		AnnouncementText:    req.AnnouncementText,
		AnnouncementVisible: req.AnnouncementVisible,
		BannerStyle:         req.BannerStyle,
		ChatbotMode:         model.ChatbotMode(req.ChatbotMode),
		APIBaseURL:          req.APIBaseURL,
	}
	if settings.BannerStyle == "" {
		settings.BannerStyle = model.DefaultPortalSettings().BannerStyle
	}

	if err := s.store.Save(ctx, settings); err != nil {
		s.log.Error().Err(err).Msg("failed to save settings")
		return nil, err
	}

	if err := s.rdb.Del(ctx, config.CacheKey.SettingsCache()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("settings cache invalidation failed")
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "settings.update", "rewrote portal settings")
	s.feed.Publish(ctx, "settings")
	return settings, nil
}
