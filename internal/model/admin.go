package model

import "time"

// Admin is a directory record granting elevated access, keyed by email.
// The flag columns are nullable on disk: a row where all five are NULL
// predates the flag system and resolves through LegacyDefaultPermissions.
type Admin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // stored tag; may be a legacy alias
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	CanManageAnnouncements *bool `json:"can_manage_announcements"`
	CanBroadcastEmail      *bool `json:"can_broadcast_email"`
	CanSendPush            *bool `json:"can_send_push"`
	CanUploadResources     *bool `json:"can_upload_resources"`
	CanEditSubjects        *bool `json:"can_edit_subjects"`
}

// Permissions resolves the record to its effective permission set, applying
// role normalization and the legacy-row migration shim.
func (a *Admin) Permissions() PermissionSet {
	switch NormalizeRole(a.Role) {
	case RoleSuperAdmin:
		return AllPermissions()
	case RoleAdmin:
		if a.flagsUnset() {
			return LegacyDefaultPermissions()
		}
		return PermissionSet{
			ManageAnnouncements: deref(a.CanManageAnnouncements),
			BroadcastEmail:      deref(a.CanBroadcastEmail),
			SendPush:            deref(a.CanSendPush),
			UploadResources:     deref(a.CanUploadResources),
			EditSubjects:        deref(a.CanEditSubjects),
		}
	default:
		return NoPermissions()
	}
}

func (a *Admin) flagsUnset() bool {
	return a.CanManageAnnouncements == nil &&
		a.CanBroadcastEmail == nil &&
		a.CanSendPush == nil &&
		a.CanUploadResources == nil &&
		a.CanEditSubjects == nil
}

func deref(b *bool) bool {
	return b != nil && *b
}

// CreateAdminRequest is the payload for granting admin access. Only a
// super_admin principal may call the endpoint that binds this.
type CreateAdminRequest struct {
	Email       string        `json:"email" binding:"required,email,max=255"`
	Name        string        `json:"name" binding:"required,min=1,max=255"`
	Role        string        `json:"role" binding:"required,oneof=super_admin admin"`
	Permissions PermissionSet `json:"permissions"`
	Password    string        `json:"password" binding:"omitempty,min=6,max=128"`
}

// UpdateAdminRequest is the payload for editing an admin record.
type UpdateAdminRequest struct {
	Name        string        `json:"name" binding:"required,min=1,max=255"`
	Role        string        `json:"role" binding:"required,oneof=super_admin admin"`
	Permissions PermissionSet `json:"permissions"`
}

// AdminLoginRequest is the payload for dashboard password authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}
