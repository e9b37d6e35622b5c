package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// broadcastChunkSize keeps each SendGrid request under the 1000
// personalization cap.
const broadcastChunkSize = 500

// ErrBroadcastNotConfigured is returned when no SendGrid key is set.
var ErrBroadcastNotConfigured = errors.New("email broadcast is not configured")

// principalLister is the slice of the principal store the broadcast needs.
type principalLister interface {
	List(ctx context.Context) ([]model.Principal, error)
}

// BroadcastService fans an announcement email out to every registered user
// through SendGrid.
type BroadcastService struct {
	cfg        *config.Config
	principals principalLister
	audit      auditRecorder
	log        zerolog.Logger
}

// NewBroadcastService creates a new BroadcastService.
func NewBroadcastService(cfg *config.Config, principals principalLister, audit auditRecorder, log zerolog.Logger) *BroadcastService {
	return &BroadcastService{
		cfg:        cfg,
		principals: principals,
		audit:      audit,
		log:        log.With().Str("component", "broadcast_service").Logger(),
	}
}

// SendEmail delivers the broadcast and returns how many recipients it was
// addressed to. Chunks are sent sequentially; a mid-run failure reports the
// recipients already handed to SendGrid.
func (s *BroadcastService) SendEmail(ctx context.Context, actor *Claims, req *model.BroadcastEmailRequest) (int, error) {
	if s.cfg.SendgridAPIKey == "" {
		return 0, ErrBroadcastNotConfigured
	}

	recipients, err := s.principals.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list broadcast recipients")
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	client := sendgrid.NewSendClient(s.cfg.SendgridAPIKey)
	from := mail.NewEmail(s.cfg.EmailFromName, s.cfg.EmailFromAddr)

	sent := 0
	for start := 0; start < len(recipients); start += broadcastChunkSize {
		end := start + broadcastChunkSize
		if end > len(recipients) {
			end = len(recipients)
		}

		m := mail.NewV3Mail()
		m.SetFrom(from)
		m.Subject = req.Subject
		m.AddContent(mail.NewContent("text/html", req.Body))
		for _, p := range recipients[start:end] {
			personalization := mail.NewPersonalization()
			personalization.AddTos(mail.NewEmail(p.Name, p.Email))
			m.AddPersonalizations(personalization)
		}

		resp, err := client.SendWithContext(ctx, m)
		if err != nil {
			s.log.Error().Err(err).Int("sent", sent).Msg("broadcast chunk failed")
			return sent, err
		}
		if resp.StatusCode >= 400 {
			s.log.Error().Int("status", resp.StatusCode).Str("body", resp.Body).Msg("sendgrid rejected broadcast chunk")
			return sent, fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		}
		sent += end - start
	}

	s.log.Info().Int("recipients", sent).Str("subject", req.Subject).Msg("broadcast email sent")
	s.audit.Record(ctx, actor.UserID, actor.Email, "email.broadcast", fmt.Sprintf("emailed %d users: %q", sent, req.Subject))
	return sent, nil
}
