package entity

import (
	"time"

	"github.com/google/uuid"
)

// BadgeGift records one badge sent from one user to another. The points
// cost is deducted from the sender through the reward ledger before the
// gift row exists; an insufficient balance means no gift at all.
type BadgeGift struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FromUserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"from_user_id"`
	FromUser      User      `gorm:"foreignKey:FromUserID" json:"-"`
	ToUserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"to_user_id"`
	ToUser        User      `gorm:"foreignKey:ToUserID" json:"-"`
	BadgeID       uuid.UUID `gorm:"type:uuid;not null" json:"badge_id"`
	Badge         Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	Message       string    `gorm:"size:200" json:"message"`
	PointsCost    int       `gorm:"not null" json:"points_cost"`
	Occasion      string    `gorm:"size:32;default:other" json:"occasion"`
	IsAnonymous   bool      `gorm:"not null;default:false" json:"is_anonymous"`
	TransactionID *uint     `json:"transaction_id,omitempty"`
	SentAt        time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}
