package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
)

// SubjectUsage pairs a subject with its resource count.
type SubjectUsage struct {
	Subject       model.Subject `json:"subject"`
	ResourceCount int           `json:"resource_count"`
}

// DashboardSummary is the admin dashboard's analytics snapshot.
type DashboardSummary struct {
	TotalUsers     int                 `json:"total_users"`
	OnlineNow      int                 `json:"online_now"`
	TotalSubjects  int                 `json:"total_subjects"`
	TotalResources int                 `json:"total_resources"`
	AdminUnread    int                 `json:"admin_unread"`
	SubjectUsage   []SubjectUsage      `json:"subject_usage"`
	RecentActivity []model.ActivityLog `json:"recent_activity"`
}

// AnalyticsService aggregates cross-module counters for the dashboard.
type AnalyticsService struct {
	principals    *repository.PrincipalRepository
	subjects      *repository.SubjectRepository
	resources     *repository.ResourceRepository
	conversations *repository.ConversationRepository
	presence      *PresenceService
	activity      *ActivityService
	log           zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	principals *repository.PrincipalRepository,
	subjects *repository.SubjectRepository,
	resources *repository.ResourceRepository,
	conversations *repository.ConversationRepository,
	presence *PresenceService,
	activity *ActivityService,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		principals:    principals,
		subjects:      subjects,
		resources:     resources,
		conversations: conversations,
		presence:      presence,
		activity:      activity,
		log:           log.With().Str("component", "analytics_service").Logger(),
	}
}

// Dashboard builds the analytics snapshot. Each section degrades
// independently; a failed counter logs and reports zero rather than sinking
// the whole dashboard.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	var err error
	if summary.TotalUsers, err = s.principals.Count(ctx); err != nil {
		s.log.Warn().Err(err).Msg("user count failed")
	}
	if summary.OnlineNow, err = s.presence.Count(ctx); err != nil {
		s.log.Warn().Err(err).Msg("presence count failed")
	}
	if summary.AdminUnread, err = s.conversations.CountUnreadForAdmin(ctx); err != nil {
		s.log.Warn().Err(err).Msg("unread count failed")
	}

	subjects, err := s.subjects.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("subject list failed")
		return nil, err
	}
	counts, err := s.resources.CountBySubject(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("resource counts failed")
		counts = map[int]int{}
	}

	summary.TotalSubjects = len(subjects)
	summary.SubjectUsage = make([]SubjectUsage, 0, len(subjects))
	for _, subject := range subjects {
		n := counts[subject.ID]
		summary.TotalResources += n
		summary.SubjectUsage = append(summary.SubjectUsage, SubjectUsage{Subject: subject, ResourceCount: n})
	}

	if summary.RecentActivity, err = s.activity.List(ctx, 20); err != nil {
		s.log.Warn().Err(err).Msg("recent activity failed")
		summary.RecentActivity = nil
	}

	return summary, nil
}
