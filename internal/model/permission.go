package model

// Role is the coarse permission tier of a signed-in principal.
type Role string

const (
	// RoleSuperAdmin always carries every permission. Assigned either by the
	// compiled-in allow-list or by a directory record.
	RoleSuperAdmin Role = "super_admin"

	// RoleAdmin carries the subset of permissions stored on its record.
	RoleAdmin Role = "admin"

	// RoleViewer is the default tier with no elevated permissions.
	RoleViewer Role = "viewer"
)

// legacyRoleEditor is the pre-rename tag some old directory rows still carry.
// Normalized to RoleAdmin at read time.
const legacyRoleEditor = "editor"

// NormalizeRole maps a stored role tag to the current role set. Unknown tags
// resolve to RoleViewer so a malformed record can never grant access.
func NormalizeRole(raw string) Role {
	switch raw {
	case string(RoleSuperAdmin):
		return RoleSuperAdmin
	case string(RoleAdmin), legacyRoleEditor:
		return RoleAdmin
	default:
		return RoleViewer
	}
}

// Permission is a string code for a specific gated action.
type Permission string

const (
	// PermissionAnnouncementsManage allows editing the portal announcement banner.
	PermissionAnnouncementsManage Permission = "announcements:manage"

	// PermissionEmailBroadcast allows sending an email blast to all principals.
	PermissionEmailBroadcast Permission = "email:broadcast"

	// PermissionPushSend allows dispatching push notifications.
	PermissionPushSend Permission = "push:send"

	// PermissionResourcesUpload allows uploading files and creating resources.
	PermissionResourcesUpload Permission = "resources:upload"

	// PermissionSubjectsWrite allows creating, editing, reordering, and
	// deleting subjects in the catalog.
	PermissionSubjectsWrite Permission = "subjects:write"
)

// AllPermissionCodes lists every gated capability.
var AllPermissionCodes = []Permission{
	PermissionAnnouncementsManage,
	PermissionEmailBroadcast,
	PermissionPushSend,
	PermissionResourcesUpload,
	PermissionSubjectsWrite,
}

// PermissionSet is the five independent capability flags layered under the
// admin role.
type PermissionSet struct {
	ManageAnnouncements bool `json:"manage_announcements"`
	BroadcastEmail      bool `json:"broadcast_email"`
	SendPush            bool `json:"send_push"`
	UploadResources     bool `json:"upload_resources"`
	EditSubjects        bool `json:"edit_subjects"`
}

// AllPermissions returns a set with every flag enabled.
func AllPermissions() PermissionSet {
	return PermissionSet{
		ManageAnnouncements: true,
		BroadcastEmail:      true,
		SendPush:            true,
		UploadResources:     true,
		EditSubjects:        true,
	}
}

// NoPermissions returns the empty set (the viewer tier).
func NoPermissions() PermissionSet {
	return PermissionSet{}
}

// LegacyDefaultPermissions is the one-time migration shim for admin rows that
// predate the flag columns: such admins keep catalog editing and uploads but
// gain nothing else until a super admin saves explicit flags.
func LegacyDefaultPermissions() PermissionSet {
	return PermissionSet{
		UploadResources: true,
		EditSubjects:    true,
	}
}

// Has reports whether the set contains the given permission code.
func (p PermissionSet) Has(code Permission) bool {
	switch code {
	case PermissionAnnouncementsManage:
		return p.ManageAnnouncements
	case PermissionEmailBroadcast:
		return p.BroadcastEmail
	case PermissionPushSend:
		return p.SendPush
	case PermissionResourcesUpload:
		return p.UploadResources
	case PermissionSubjectsWrite:
		return p.EditSubjects
	default:
		return false
	}
}

// Codes returns the enabled permissions as string codes, in the stable order
// of AllPermissionCodes. Used to embed permissions into JWT claims.
func (p PermissionSet) Codes() []string {
	codes := make([]string, 0, len(AllPermissionCodes))
	for _, c := range AllPermissionCodes {
		if p.Has(c) {
			codes = append(codes, string(c))
		}
	}
	return codes
}

// PermissionSetFromCodes rebuilds a set from string codes (JWT claims).
// Unknown codes are ignored.
func PermissionSetFromCodes(codes []string) PermissionSet {
	var p PermissionSet
	for _, c := range codes {
		switch Permission(c) {
		case PermissionAnnouncementsManage:
			p.ManageAnnouncements = true
		case PermissionEmailBroadcast:
			p.BroadcastEmail = true
		case PermissionPushSend:
			p.SendPush = true
		case PermissionResourcesUpload:
			p.UploadResources = true
		case PermissionSubjectsWrite:
			p.EditSubjects = true
		}
	}
	return p
}
