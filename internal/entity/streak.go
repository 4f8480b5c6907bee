package entity

import (
	"time"

	"github.com/google/uuid"
)

// StreakRecord is the per-user continuous-activity state. All calendar-day
// comparisons happen in the user's stored timezone.
type StreakRecord struct {
	UserID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	User             User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CurrentStreak    int        `gorm:"not null;default:0;index" json:"current_streak"`
	LongestStreak    int        `gorm:"not null;default:0;index" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	StreakStartDate  *time.Time `json:"streak_start_date,omitempty"`
	Timezone         string     `gorm:"size:64;default:UTC" json:"timezone"`
	// Milestone flags prevent a second notification for the same milestone
	// when streaks are re-evaluated by backfill jobs.
	Milestone7   bool      `gorm:"not null;default:false" json:"milestone_7"`
	Milestone30  bool      `gorm:"not null;default:false" json:"milestone_30"`
	Milestone100 bool      `gorm:"not null;default:false" json:"milestone_100"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MilestoneAwarded reports whether the given milestone was already granted.
func (r *StreakRecord) MilestoneAwarded(milestone int) bool {
	switch milestone {
	case 7:
		return r.Milestone7
	case 30:
		return r.Milestone30
	case 100:
		return r.Milestone100
	}
	return false
}

// SetMilestoneAwarded records a granted milestone.
func (r *StreakRecord) SetMilestoneAwarded(milestone int) {
	switch milestone {
	case 7:
		r.Milestone7 = true
	case 30:
		r.Milestone30 = true
	case 100:
		r.Milestone100 = true
	}
}

// StreakDay is one entry of the daily history: a user-local calendar day
// with at least one qualifying activity. Date is stored at midnight UTC of
// the user-local day.
type StreakDay struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_streak_day,priority:1" json:"user_id"`
	Date           time.Time `gorm:"not null;uniqueIndex:idx_streak_day,priority:2" json:"date"`
	ActivityCount  int       `gorm:"not null;default:1" json:"activity_count"`
	StreakDayIndex int       `gorm:"not null" json:"streak_day_index"`
}
