package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
)

// Admin management errors.
var (
	ErrSelfDemotion = errors.New("cannot edit or remove your own admin record")
	ErrEmailTaken   = errors.New("an admin with this email already exists")
)

// AdminService manages the admin directory behind the RBAC resolver.
type AdminService struct {
	admins *repository.AdminRepository
	auth   *AuthService
	audit  auditRecorder
	log    zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(admins *repository.AdminRepository, auth *AuthService, audit auditRecorder, log zerolog.Logger) *AdminService {
	return &AdminService{
		admins: admins,
		auth:   auth,
		audit:  audit,
		log:    log.With().Str("component", "admin_service").Logger(),
	}
}

// List returns every admin record.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	return s.admins.List(ctx)
}

// GetByEmail returns one admin record.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return admin, err
}

// Create grants admin access to an email. The permission flags are written
// explicitly, so new records never fall into the legacy all-NULL bucket.
func (s *AdminService) Create(ctx context.Context, actor *Claims, req *model.CreateAdminRequest) (*model.Admin, error) {
	if _, err := s.admins.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	admin := &model.Admin{
		Email: strings.ToLower(req.Email),
		Name:  req.Name,
		Role:  req.Role,
	}
	applyFlags(admin, req.Permissions)

	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		s.log.Error().Err(err).Str("email", admin.Email).Msg("failed to create admin")
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "admin.create", fmt.Sprintf("granted %s to %s", admin.Role, admin.Email))
	return admin, nil
}

// Update edits an admin's role and flags. Editing your own record is
// rejected so a super admin cannot lock themselves out mid-session.
func (s *AdminService) Update(ctx context.Context, actor *Claims, id int, req *model.UpdateAdminRequest) (*model.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(admin.Email, actor.Email) {
		return nil, ErrSelfDemotion
	}

	admin.Name = req.Name
	admin.Role = req.Role
	applyFlags(admin, req.Permissions)

	if err := s.admins.Update(ctx, admin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.log.Error().Err(err).Int("id", id).Msg("failed to update admin")
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "admin.update", fmt.Sprintf("updated admin %s", admin.Email))
	return admin, nil
}

// Delete revokes an admin record.
func (s *AdminService) Delete(ctx context.Context, actor *Claims, id int) error {
	admin, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if strings.EqualFold(admin.Email, actor.Email) {
		return ErrSelfDemotion
	}

	if err := s.admins.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.audit.Record(ctx, actor.UserID, actor.Email, "admin.delete", fmt.Sprintf("revoked admin %s", admin.Email))
	return nil
}

// Login verifies dashboard password credentials and returns the record.
func (s *AdminService) Login(ctx context.Context, req *model.AdminLoginRequest) (*model.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

func applyFlags(admin *model.Admin, perms model.PermissionSet) {
	admin.CanManageAnnouncements = ptr(perms.ManageAnnouncements)
	admin.CanBroadcastEmail = ptr(perms.BroadcastEmail)
	admin.CanSendPush = ptr(perms.SendPush)
	admin.CanUploadResources = ptr(perms.UploadResources)
	admin.CanEditSubjects = ptr(perms.EditSubjects)
}

func ptr(b bool) *bool { return &b }
