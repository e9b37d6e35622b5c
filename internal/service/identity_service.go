package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// adminDirectory is the slice of the admin store the resolver needs.
type adminDirectory interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
}

// IdentityService resolves an authenticated email to an effective role and
// permission set. Resolution is fail-closed: any lookup failure, including
// transient ones, yields viewer with no permissions rather than a guess.
type IdentityService struct {
	cfg    *config.Config
	admins adminDirectory
	log    zerolog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(cfg *config.Config, admins adminDirectory, log zerolog.Logger) *IdentityService {
	return &IdentityService{
		cfg:    cfg,
		admins: admins,
		log:    log.With().Str("component", "identity_service").Logger(),
	}
}

// Resolve maps an email to its role and permissions. The compiled-in super
// admin allowlist wins over any directory record; absence from the directory
// means viewer.
func (s *IdentityService) Resolve(ctx context.Context, email string) (model.Role, model.PermissionSet) {
	if s.cfg.IsSuperAdmin(email) {
		return model.RoleSuperAdmin, model.AllPermissions()
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RoleViewer, model.NoPermissions()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("admin lookup failed, resolving as viewer")
		return model.RoleViewer, model.NoPermissions()
	}

	role := model.NormalizeRole(admin.Role)
	if role == model.RoleViewer {
		s.log.Warn().Str("email", email).Str("role", admin.Role).Msg("admin record carries unknown role")
		return model.RoleViewer, model.NoPermissions()
	}
	return role, admin.Permissions()
}
