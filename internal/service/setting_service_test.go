package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
)

type fakeSettingStore struct {
	settings *model.PortalSettings
	reads    int
}

func (f *fakeSettingStore) Get(_ context.Context) (*model.PortalSettings, error) {
	f.reads++
	if f.settings == nil {
		defaults := model.DefaultPortalSettings()
		return &defaults, nil
	}
	cp := *f.settings
	return &cp, nil
}

func (f *fakeSettingStore) Save(_ context.Context, s *model.PortalSettings) error {
	cp := *s
	f.settings = &cp
	return nil
}

func newSettingHarness(t *testing.T) (*SettingService, *fakeSettingStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &fakeSettingStore{}
	svc := NewSettingService(store, rdb, &fakeFeed{}, &fakeAudit{}, zerolog.Nop())
	return svc, store
}

func TestSettingsReadThroughCache(t *testing.T) {
	svc, store := newSettingHarness(t)
	ctx := context.Background()

	first := svc.Get(ctx)
	second := svc.Get(ctx)
	if store.reads != 1 {
		t.Fatalf("store reads = %d after two gets, want 1 (cache hit)", store.reads)
	}
	if first.ChatbotMode != second.ChatbotMode {
		t.Error("cached read diverged from store read")
	}
}

func TestSettingsUpdateInvalidatesCache(t *testing.T) {
	svc, store := newSettingHarness(t)
	ctx := context.Background()

	svc.Get(ctx) // warm the cache

	updated, err := svc.Update(ctx, testActor(), &model.UpdateSettingsRequest{
		AnnouncementText:    "Exam week starts Monday",
		AnnouncementVisible: true,
		BannerStyle:         "urgent",
		ChatbotMode:         "online",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ChatbotMode != model.ChatbotModeOnline {
		t.Fatalf("chatbot mode = %q", updated.ChatbotMode)
	}

	got := svc.Get(ctx)
	if got.AnnouncementText != "Exam week starts Monday" || !got.AnnouncementVisible {
		t.Fatalf("stale read after update: %+v", got)
	}
	if store.reads != 2 {
		t.Errorf("store reads = %d, want 2 (cache dropped exactly once)", store.reads)
	}
}

func TestSettingsDefaultBeforeFirstSave(t *testing.T) {
	svc, _ := newSettingHarness(t)

	got := svc.Get(context.Background())
	if got.ChatbotMode != model.ChatbotModeOffline {
		t.Errorf("default chatbot mode = %q, want offline", got.ChatbotMode)
	}
	if got.AnnouncementVisible {
		t.Error("announcement should default to hidden")
	}
}
