package dto

type ReactionEventRequest struct {
	ToUserID string `json:"to_user_id" binding:"required,uuid"`
	PostID   string `json:"post_id" binding:"omitempty,uuid"`
	Polarity int    `json:"polarity" binding:"oneof=-1 1"`
}

type ManualAwardRequest struct {
	UserID        string `json:"user_id" binding:"required,uuid"`
	AchievementID string `json:"achievement_id" binding:"required"`
}
