package dto

type CreateGoalRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

type UpdateProgressRequest struct {
	Progress int `json:"progress" binding:"min=0,max=100"`
}
