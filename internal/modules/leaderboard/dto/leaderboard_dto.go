package dto

// Entry is one leaderboard row. Position is 1-based.
type Entry struct {
	Position  int     `json:"position"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Score     int     `json:"score"`
}

// Standing is one user's place on a leaderboard.
type Standing struct {
	Type       string  `json:"type"`
	Rank       int     `json:"rank"`
	Score      int     `json:"score"`
	Percentile float64 `json:"percentile"`
}
