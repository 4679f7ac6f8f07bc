package models

import "time"

// Grant lifecycle
const (
	GrantActive  = "active"
	GrantRevoked = "revoked"
	GrantExpired = "expired"
)

// Co-parent permission levels, weakest first.
const (
	CoParentReadOnly       = "read_only"
	CoParentTaskCompletion = "task_completion"
	CoParentFullEdit       = "full_edit"
)

// Co-teacher permission levels, weakest first.
const (
	CoTeacherView      = "view"
	CoTeacherEditTasks = "edit_tasks"
	CoTeacherFullEdit  = "full_edit"
)

// Person-sharing permission levels, weakest first.
const (
	ShareView   = "view"
	ShareEdit   = "edit"
	ShareManage = "manage"
)

// Invite lifecycle
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRevoked  = "revoked"
)

// CoParent delegates a parent role's people to another role. PersonIDs is
// an explicit allow-list; a person outside it is off-limits regardless of
// the permission level.
type CoParent struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PrimaryRoleID  uint `gorm:"index"`
	DelegateRoleID uint `gorm:"index"`

	Permission string // read_only | task_completion | full_edit
	PersonIDs  string // comma-separated person ids the delegate may act on
	Status     string `gorm:"default:active"` // active | revoked
}

// CoTeacher delegates a classroom group to another role.
type CoTeacher struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TeacherRoleID  uint `gorm:"index"`
	DelegateRoleID uint `gorm:"index"`
	GroupID        uint `gorm:"index"`

	Permission string // view | edit_tasks | full_edit
	Status     string `gorm:"default:active"` // active | revoked
}

// PersonSharingConnection grants a role access to a single person,
// independent of co-parent/co-teacher delegation.
type PersonSharingConnection struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PersonID uint `gorm:"index"` // the shared person
	RoleID   uint `gorm:"index"` // the grantee role

	ShareType  string `gorm:"default:person"`
	Permission string // view | edit | manage
	SharerName string
	Status     string `gorm:"default:active"` // active | revoked | expired
}

// ShareInvite is the pending half of the invitation flow; accepting one
// creates a PersonSharingConnection.
type ShareInvite struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Code       string `gorm:"uniqueIndex"` // uuid
	PersonID   uint   `gorm:"index"`
	Permission string
	ExpiresAt  time.Time `gorm:"index"`
	Status     string    `gorm:"default:pending"` // pending | accepted | revoked
}

// VisibilityOverride forces a routine visible until ExpiresAt. Expiry is
// checked on every read; the background sweeper only prunes rows.
type VisibilityOverride struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoutineID       uint      `gorm:"index"`
	DurationMinutes int
	ExpiresAt       time.Time `gorm:"index"`
}
