package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxAward            TransactionType = "award"
	TxDeduct           TransactionType = "deduct"
	TxGiftSent         TransactionType = "gift_sent"
	TxGiftReceived     TransactionType = "gift_received"
	TxAchievementBonus TransactionType = "achievement_bonus"
	TxRedeem           TransactionType = "redeem"
)

// RewardTransaction is one append-only ledger row. Amount is signed;
// summing a user's rows always equals the cached User.Points.
type RewardTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_user_date,priority:1" json:"user_id"`
	Type          TransactionType `gorm:"size:32;not null" json:"type"`
	Amount        int             `gorm:"not null" json:"amount"`
	Reason        string          `gorm:"size:255" json:"reason"`
	AchievementID *string         `gorm:"size:64" json:"achievement_id,omitempty"`
	BadgeID       *uuid.UUID      `gorm:"type:uuid" json:"badge_id,omitempty"`
	RelatedUserID *uuid.UUID      `gorm:"type:uuid" json:"related_user_id,omitempty"`
	GiftID        *uint           `json:"gift_id,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index:idx_ledger_user_date,priority:2" json:"created_at"`
}

type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
	Cost        int       `gorm:"not null;default:0" json:"cost"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type UserBadge struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BadgeID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"badge_id"`
	Badge     Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
