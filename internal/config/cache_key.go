package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LiveChannel returns the Redis Pub/Sub channel carrying change events for a
// subscribable collection ("subjects", "resources", "notifications", ...).
func (r *CacheKeyStruct) LiveChannel(collection string) string {
	return fmt.Sprintf("live:%s", collection)
}

// ConversationChannel returns the live channel for one user's message thread.
func (r *CacheKeyStruct) ConversationChannel(userID int) string {
	return fmt.Sprintf("live:conversation:%d", userID)
}

// PresenceSessions returns the sorted-set key holding presence leases
// (member = session id, score = lease expiry unix seconds).
func (r *CacheKeyStruct) PresenceSessions() string {
	return "presence:sessions"
}

// SettingsCache returns the key caching the portal settings document.
func (r *CacheKeyStruct) SettingsCache() string {
	return "cache:settings"
}

var CacheKey = NewCacheKeyStruct()
