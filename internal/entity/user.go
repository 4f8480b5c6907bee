package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	// IANA zone name, e.g. "Asia/Jakarta". Day boundaries for streaks are
	// computed in this zone, never in server time.
	Timezone string `gorm:"size:64;default:UTC" json:"timezone"`
	// Cached point balance. The reward ledger is the source of truth; this
	// column is only ever written in the same transaction as a ledger row.
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserCounters holds the authoritative activity counters achievement
// progress is computed from. One row per user, upserted on every event.
type UserCounters struct {
	UserID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User                   User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TotalPosts             int       `gorm:"not null;default:0" json:"total_posts"`
	TotalReactionsGiven    int       `gorm:"not null;default:0" json:"total_reactions_given"`
	TotalReactionsReceived int       `gorm:"not null;default:0" json:"total_reactions_received"`
	TotalCommentsMade      int       `gorm:"not null;default:0" json:"total_comments_made"`
	TotalAchievements      int       `gorm:"not null;default:0" json:"total_achievements"`
	LastUpdatedAt          time.Time `gorm:"autoUpdateTime;index" json:"last_updated_at"`
}
