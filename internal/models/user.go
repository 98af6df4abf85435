package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin       Role = "admin"        // top-level administrator
	RoleEditorAdmin Role = "editor_admin" // editor-administrator
	RoleAssistant   Role = "assistant"
	RoleUser        Role = "user"
	RoleInvestor    Role = "investor"
	RoleClient      Role = "client"
)

type User struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"` // bcrypt hash
	FullName      string         `gorm:"not null" json:"fullName"`
	Avatar        *string        `json:"avatar"`
	Role          Role           `gorm:"size:20;default:'user';not null" json:"role"`
	EmailVerified bool           `gorm:"default:false" json:"emailVerified"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// EmailVerificationToken is one row per outstanding verification mail.
type EmailVerificationToken struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *EmailVerificationToken) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Expired reports whether the token is no longer usable at now.
func (t *EmailVerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
