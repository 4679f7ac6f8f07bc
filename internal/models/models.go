package models

import "time"

// Role types
const (
	RoleParent  = "parent"
	RoleTeacher = "teacher"
)

// Person / routine lifecycle; conditions use inactive instead of archived.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusInactive = "inactive"
)

// Routine visibility modes
const (
	VisibilityAlways      = "always"
	VisibilityDaysOfWeek  = "days_of_week"
	VisibilityDateRange   = "date_range"
	VisibilityConditional = "conditional"
)

// Routine types
const (
	RoutineRegular = "regular"
	RoutineSmart   = "smart"
)

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Email        string `gorm:"uniqueIndex;not null"` // unique account identity
	PasswordHash string
	Name         string

	Roles []Role
}

// A user acts through one or more roles; ownership and delegation attach
// to the role, not the user.
type Role struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID uint `gorm:"index"`
	Type   string // parent | teacher
	Name   string
}

// Group is a teacher's classroom; co-teacher grants are scoped to it.
type Group struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoleID uint `gorm:"index"`
	Name   string
}

type Person struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoleID  uint  `gorm:"index"`
	GroupID *uint `gorm:"index"`

	Name        string
	Status      string `gorm:"default:active"` // active | archived
	CheckinCode string `gorm:"uniqueIndex"`    // e.g. CHK-1A2B3C4D
	Points      int
}

// Routine date bounds are year-agnostic month/day pairs; zero means unset.
type Routine struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoleID  uint  `gorm:"index"`
	GroupID *uint `gorm:"index"`

	Name        string
	Visibility  string `gorm:"default:always"` // always | days_of_week | date_range | conditional
	VisibleDays string // comma-separated weekday numbers, 0=Sunday..6=Saturday
	StartMonth  int
	StartDay    int
	EndMonth    int
	EndDay      int

	IsTeacherOnly bool
	IsProtected   bool
	Status        string `gorm:"default:active"`  // active | archived
	Type          string `gorm:"default:regular"` // regular | smart

	Tasks []Task
}

type Task struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoutineID uint `gorm:"index"`
	Name      string
	Points    int
	Position  int
}

// RoutineAssignment links a routine to a person it applies to.
type RoutineAssignment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	RoutineID uint `gorm:"index"`
	PersonID  uint `gorm:"index"`
}

type TaskCompletion struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	TaskID      uint `gorm:"index"`
	PersonID    uint `gorm:"index"`
	RoleID      uint // role that recorded it; 0 when recorded at the kiosk
	Points      int
	CompletedAt time.Time
}

// Condition is a directed dependency edge from a smart routine to a
// target task or target routine. At least one target must be set.
type Condition struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoutineID       uint   `gorm:"index"`
	TargetTaskID    *uint  `gorm:"index"`
	TargetRoutineID *uint  `gorm:"index"`
	Status          string `gorm:"default:active"` // active | inactive
}
