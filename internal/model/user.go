package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may triage reports.
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// User represents a registered citizen or staff member.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	Points       int       `json:"points" gorm:"not null;default:0;index"`
	Level        int       `json:"level" gorm:"not null;default:1"`
	DarkMode     bool      `json:"darkMode" gorm:"not null;default:false"`
	Street       string    `json:"street,omitempty" gorm:"size:255"`
	City         string    `json:"city,omitempty" gorm:"size:120"`
	State        string    `json:"state,omitempty" gorm:"size:120"`
	Pincode      string    `json:"pincode,omitempty" gorm:"size:12"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID and role defaults before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Level < 1 {
		u.Level = 1
	}
	return nil
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// IsStaff reports whether the actor may triage reports.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// LeaderboardEntry is the public projection of a user on the leaderboard.
type LeaderboardEntry struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
	Level  int       `json:"level"`
}
