package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/model"
)

type fakeAdminDirectory struct {
	admins map[string]*model.Admin
	err    error
}

func (f *fakeAdminDirectory) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.admins[email]; ok {
		return a, nil
	}
	return nil, pgx.ErrNoRows
}

func boolPtr(b bool) *bool { return &b }

func newIdentity(dir *fakeAdminDirectory) *IdentityService {
	cfg := &config.Config{SuperAdminEmails: []string{"principal@studyhub.app"}}
	return NewIdentityService(cfg, dir, zerolog.Nop())
}

func TestResolveSuperAdminAllowlist(t *testing.T) {
	svc := newIdentity(&fakeAdminDirectory{})

	role, perms := svc.Resolve(context.Background(), "principal@studyhub.app")
	if role != model.RoleSuperAdmin {
		t.Fatalf("role = %q, want super_admin", role)
	}
	for _, code := range model.AllPermissionCodes {
		if !perms.Has(code) {
			t.Errorf("super admin missing permission %q", code)
		}
	}

	// Allowlist matching is case-insensitive.
	role, _ = svc.Resolve(context.Background(), "PRINCIPAL@studyhub.app")
	if role != model.RoleSuperAdmin {
		t.Errorf("uppercase email resolved to %q, want super_admin", role)
	}
}

func TestResolveUnknownEmailIsViewer(t *testing.T) {
	svc := newIdentity(&fakeAdminDirectory{})

	role, perms := svc.Resolve(context.Background(), "student@example.com")
	if role != model.RoleViewer {
		t.Fatalf("role = %q, want viewer", role)
	}
	for _, code := range model.AllPermissionCodes {
		if perms.Has(code) {
			t.Errorf("viewer unexpectedly holds %q", code)
		}
	}
}

func TestResolveFailsClosedOnLookupError(t *testing.T) {
	dir := &fakeAdminDirectory{err: errors.New("connection refused")}
	svc := newIdentity(dir)

	role, perms := svc.Resolve(context.Background(), "admin@example.com")
	if role != model.RoleViewer {
		t.Fatalf("role = %q on lookup error, want viewer", role)
	}
	if perms != model.NoPermissions() {
		t.Fatalf("perms = %+v on lookup error, want none", perms)
	}
}

func TestResolveAdminFlags(t *testing.T) {
	dir := &fakeAdminDirectory{admins: map[string]*model.Admin{
		"editor@example.com": {
			Email:              "editor@example.com",
			Role:               "admin",
			CanEditSubjects:    boolPtr(true),
			CanUploadResources: boolPtr(false),
			CanSendPush:        boolPtr(false),
		},
	}}
	svc := newIdentity(dir)

	role, perms := svc.Resolve(context.Background(), "editor@example.com")
	if role != model.RoleAdmin {
		t.Fatalf("role = %q, want admin", role)
	}
	if !perms.Has(model.PermissionSubjectsWrite) {
		t.Error("expected subjects:write")
	}
	if perms.Has(model.PermissionResourcesUpload) || perms.Has(model.PermissionPushSend) {
		t.Error("explicit false flags must not grant permissions")
	}
}

func TestResolveLegacyRecords(t *testing.T) {
	dir := &fakeAdminDirectory{admins: map[string]*model.Admin{
		// Legacy role alias normalizes to admin.
		"old-editor@example.com": {Email: "old-editor@example.com", Role: "editor"},
		// All-NULL flags resolve through the legacy default grant.
		"pre-flags@example.com": {Email: "pre-flags@example.com", Role: "admin"},
	}}
	svc := newIdentity(dir)

	role, perms := svc.Resolve(context.Background(), "old-editor@example.com")
	if role != model.RoleAdmin {
		t.Fatalf("legacy editor role = %q, want admin", role)
	}
	if !perms.Has(model.PermissionSubjectsWrite) || !perms.Has(model.PermissionResourcesUpload) {
		t.Error("legacy record should receive the default content grants")
	}
	if perms.Has(model.PermissionEmailBroadcast) || perms.Has(model.PermissionPushSend) || perms.Has(model.PermissionAnnouncementsManage) {
		t.Error("legacy record must not receive broadcast grants")
	}

	role2, perms2 := svc.Resolve(context.Background(), "pre-flags@example.com")
	if role2 != model.RoleAdmin || perms != perms2 {
		t.Errorf("all-NULL flags: role = %q perms = %+v, want legacy defaults", role2, perms2)
	}
}

// Granting a role never lowers the effective permission set below what the
// same record held as a plain viewer.
func TestResolveRoleMonotonicity(t *testing.T) {
	dir := &fakeAdminDirectory{admins: map[string]*model.Admin{}}
	svc := newIdentity(dir)

	_, viewerPerms := svc.Resolve(context.Background(), "x@example.com")

	dir.admins["x@example.com"] = &model.Admin{Email: "x@example.com", Role: "admin"}
	_, adminPerms := svc.Resolve(context.Background(), "x@example.com")

	for _, code := range model.AllPermissionCodes {
		if viewerPerms.Has(code) && !adminPerms.Has(code) {
			t.Errorf("promotion to admin lost permission %q", code)
		}
	}
}
