package entity

import (
	"time"

	"github.com/google/uuid"
)

type AchievementCategory string

const (
	CategoryDailyStreak         AchievementCategory = "daily_streak"
	CategoryGoalProgress        AchievementCategory = "goal_progress"
	CategoryCommunityEngagement AchievementCategory = "community_engagement"
	CategorySpecial             AchievementCategory = "special"
)

type RequirementType string

const (
	RequirementStreakDays        RequirementType = "streak_days"
	RequirementGoalCompletionPct RequirementType = "goal_completion_percentage"
	RequirementPostsCount        RequirementType = "posts_count"
	RequirementReactionsReceived RequirementType = "reactions_received"
	RequirementReactionsGiven    RequirementType = "reactions_given"
	RequirementCommentsMade      RequirementType = "comments_made"
	RequirementManual            RequirementType = "manual"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Achievement is a catalog definition. Definitions are seeded/upserted by
// their stable string ID and deactivated rather than deleted.
type Achievement struct {
	ID                string              `gorm:"primaryKey;size:64" json:"id"`
	Name              string              `gorm:"size:100;not null" json:"name"`
	Description       string              `gorm:"type:text" json:"description"`
	Icon              string              `gorm:"size:16" json:"icon"`
	Category          AchievementCategory `gorm:"size:32;not null;index" json:"category"`
	RequirementType   RequirementType     `gorm:"size:32;not null;index" json:"requirement_type"`
	RequirementTarget int                 `gorm:"not null;default:1" json:"requirement_target"`
	RewardPoints      int                 `gorm:"not null" json:"reward_points"`
	RewardBadges      []AchievementBadge  `gorm:"foreignKey:AchievementID;constraint:OnDelete:CASCADE" json:"reward_badges,omitempty"`
	Tier              Tier                `gorm:"size:16;not null" json:"tier"`
	IsRepeatable      bool                `gorm:"not null;default:false" json:"is_repeatable"`
	MaxCompletions    int                 `gorm:"not null;default:1" json:"max_completions"`
	IsActive          bool                `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder         int                 `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type AchievementBadge struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	AchievementID string    `gorm:"size:64;not null;index" json:"-"`
	BadgeID       uuid.UUID `gorm:"type:uuid;not null" json:"badge_id"`
	Count         int       `gorm:"not null;default:1" json:"count"`
}

// UserAchievement tracks one user's progress toward one definition.
// Created lazily on the first relevant event.
type UserAchievement struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID   string      `gorm:"size:64;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Achievement     Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	ProgressCurrent int         `gorm:"not null;default:0" json:"progress_current"`
	ProgressTarget  int         `gorm:"not null;default:1" json:"progress_target"`
	IsCompleted     bool        `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CompletionCount int         `gorm:"not null;default:0" json:"completion_count"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProgressPercentage is derived, capped at 100.
func (ua *UserAchievement) ProgressPercentage() int {
	if ua.ProgressTarget <= 0 {
		return 0
	}
	pct := ua.ProgressCurrent * 100 / ua.ProgressTarget
	if pct > 100 {
		pct = 100
	}
	return pct
}
