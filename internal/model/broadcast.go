package model

// Broadcast topics delivered to clients attached to a session.
// Delivery is fire-and-forget, at most once.
const (
	TopicUsers         = "users"
	TopicSessionStatus = "session_status"
	TopicMatches       = "matches"
	TopicRoulette      = "roulette"
	TopicSessionResult = "session_result"
)
