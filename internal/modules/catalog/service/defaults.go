package service

import "anoa.com/momentum/internal/entity"

// DefaultAchievements is the built-in catalog. Definitions are upserted by
// ID on startup, so edits here roll out on the next deploy without
// duplicating rows.
func DefaultAchievements() []entity.Achievement {
	return []entity.Achievement{
		// Daily streak
		{
			ID: "streak_7_days", Name: "Weekly Warrior",
			Description: "Maintain a 7-day posting streak", Icon: "🔥",
			Category: entity.CategoryDailyStreak, RequirementType: entity.RequirementStreakDays,
			RequirementTarget: 7, RewardPoints: 100, Tier: entity.TierBronze,
			MaxCompletions: 1, IsActive: true, SortOrder: 1,
		},
		{
			ID: "streak_30_days", Name: "Monthly Master",
			Description: "Maintain a 30-day posting streak", Icon: "🚀",
			Category: entity.CategoryDailyStreak, RequirementType: entity.RequirementStreakDays,
			RequirementTarget: 30, RewardPoints: 500, Tier: entity.TierSilver,
			MaxCompletions: 1, IsActive: true, SortOrder: 2,
		},
		{
			ID: "streak_100_days", Name: "Consistency Master",
			Description: "Maintain a 100-day posting streak", Icon: "👑",
			Category: entity.CategoryDailyStreak, RequirementType: entity.RequirementStreakDays,
			RequirementTarget: 100, RewardPoints: 2000, Tier: entity.TierPlatinum,
			MaxCompletions: 1, IsActive: true, SortOrder: 3,
		},

		// Goal progress (repeatable tiers)
		{
			ID: "goal_bronze", Name: "Getting Started",
			Description: "Reach 25% progress on your goals", Icon: "🥉",
			Category: entity.CategoryGoalProgress, RequirementType: entity.RequirementGoalCompletionPct,
			RequirementTarget: 25, RewardPoints: 50, Tier: entity.TierBronze,
			IsRepeatable: true, MaxCompletions: 10, IsActive: true, SortOrder: 1,
		},
		{
			ID: "goal_silver", Name: "Halfway Hero",
			Description: "Reach 50% progress on your goals", Icon: "🥈",
			Category: entity.CategoryGoalProgress, RequirementType: entity.RequirementGoalCompletionPct,
			RequirementTarget: 50, RewardPoints: 100, Tier: entity.TierSilver,
			IsRepeatable: true, MaxCompletions: 10, IsActive: true, SortOrder: 2,
		},
		{
			ID: "goal_gold", Name: "Almost There",
			Description: "Reach 75% progress on your goals", Icon: "🥇",
			Category: entity.CategoryGoalProgress, RequirementType: entity.RequirementGoalCompletionPct,
			RequirementTarget: 75, RewardPoints: 200, Tier: entity.TierGold,
			IsRepeatable: true, MaxCompletions: 10, IsActive: true, SortOrder: 3,
		},
		{
			ID: "goal_platinum", Name: "Goal Crusher",
			Description: "Complete your goals (100% progress)", Icon: "💎",
			Category: entity.CategoryGoalProgress, RequirementType: entity.RequirementGoalCompletionPct,
			RequirementTarget: 100, RewardPoints: 500, Tier: entity.TierPlatinum,
			IsRepeatable: true, MaxCompletions: 50, IsActive: true, SortOrder: 4,
		},

		// Community engagement
		{
			ID: "helper_reactions", Name: "Supportive Soul",
			Description: "Give 50 positive reactions to others", Icon: "❤️",
			Category: entity.CategoryCommunityEngagement, RequirementType: entity.RequirementReactionsGiven,
			RequirementTarget: 50, RewardPoints: 150, Tier: entity.TierBronze,
			MaxCompletions: 1, IsActive: true, SortOrder: 1,
		},
		{
			ID: "helper_reactions_pro", Name: "Encouragement Expert",
			Description: "Give 200 positive reactions to others", Icon: "💖",
			Category: entity.CategoryCommunityEngagement, RequirementType: entity.RequirementReactionsGiven,
			RequirementTarget: 200, RewardPoints: 300, Tier: entity.TierSilver,
			MaxCompletions: 1, IsActive: true, SortOrder: 2,
		},
		{
			ID: "popular_posts", Name: "Crowd Favorite",
			Description: "Receive 100 positive reactions on your posts", Icon: "⭐",
			Category: entity.CategoryCommunityEngagement, RequirementType: entity.RequirementReactionsReceived,
			RequirementTarget: 100, RewardPoints: 250, Tier: entity.TierGold,
			MaxCompletions: 1, IsActive: true, SortOrder: 3,
		},

		// Special
		{
			ID: "first_post", Name: "First Steps",
			Description: "Create your first post", Icon: "🌱",
			Category: entity.CategorySpecial, RequirementType: entity.RequirementPostsCount,
			RequirementTarget: 1, RewardPoints: 25, Tier: entity.TierBronze,
			MaxCompletions: 1, IsActive: true, SortOrder: 1,
		},
		{
			ID: "prolific_poster", Name: "Content Creator",
			Description: "Create 100 posts", Icon: "📝",
			Category: entity.CategorySpecial, RequirementType: entity.RequirementPostsCount,
			RequirementTarget: 100, RewardPoints: 300, Tier: entity.TierSilver,
			MaxCompletions: 1, IsActive: true, SortOrder: 2,
		},
		{
			ID: "super_poster", Name: "Post Master",
			Description: "Create 500 posts", Icon: "📚",
			Category: entity.CategorySpecial, RequirementType: entity.RequirementPostsCount,
			RequirementTarget: 500, RewardPoints: 1000, Tier: entity.TierGold,
			MaxCompletions: 1, IsActive: true, SortOrder: 3,
		},
	}
}
