package entity

// EventType identifies the inbound activity events the achievement engine
// evaluates. The set is closed: catalog relevance is an exhaustive switch
// over these values.
type EventType string

const (
	EventPostCreated         EventType = "post_created"
	EventReactionGiven       EventType = "reaction_given"
	EventReactionReceived    EventType = "reaction_received"
	EventCommentMade         EventType = "comment_made"
	EventGoalProgressUpdated EventType = "goal_progress_updated"
	EventStreakUpdated       EventType = "streak_updated"
	EventManualAward         EventType = "manual_award"
)

// AllEventTypes lists every evaluable event type; recalculation walks this.
var AllEventTypes = []EventType{
	EventPostCreated,
	EventReactionGiven,
	EventReactionReceived,
	EventCommentMade,
	EventGoalProgressUpdated,
	EventStreakUpdated,
}
