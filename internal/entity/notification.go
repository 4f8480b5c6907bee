package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotifAchievementUnlocked NotificationKind = "achievement_unlocked"
	NotifBadgeReceived       NotificationKind = "badge_received"
	NotifStreakMilestone     NotificationKind = "streak_milestone"
	NotifGoalProgress        NotificationKind = "goal_progress"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

type Notification struct {
	ID       uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_notif_user,priority:1" json:"user_id"`
	Kind     NotificationKind `gorm:"size:32;not null" json:"kind"`
	Title    string           `gorm:"size:100" json:"title"`
	Message  string           `gorm:"type:text" json:"message"`
	Data     json.RawMessage  `gorm:"type:jsonb" json:"data,omitempty"`
	Priority NotificationPriority `gorm:"size:16;default:normal" json:"priority"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notif_user,priority:2" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
