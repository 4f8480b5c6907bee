package dto

type SendGiftRequest struct {
	ToUserID    string `json:"to_user_id" binding:"required,uuid"`
	BadgeID     string `json:"badge_id" binding:"required,uuid"`
	Message     string `json:"message" binding:"max=200"`
	Occasion    string `json:"occasion" binding:"omitempty,oneof=birthday congratulation encouragement thanks other"`
	IsAnonymous bool   `json:"is_anonymous"`
}
