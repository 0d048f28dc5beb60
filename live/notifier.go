package live

import "strconv"

type EventKind string

const (
	EventMatchesUpdated     EventKind = "matches.updated"
	EventLeaderboardUpdated EventKind = "leaderboard.updated"
	EventStageUpdated       EventKind = "stage.updated"
)

// Event is one stage-scoped notification. Payload is arbitrary structured
// data for the consumer; the core never reads it back.
type Event struct {
	Kind    EventKind `json:"type"`
	StageID int       `json:"stage_id"`
	Payload any       `json:"payload,omitempty"`
}

// Notifier fans stage events out to live listeners. Delivery is
// fire-and-forget: implementations log failures and never surface them to
// the operation that triggered the event.
type Notifier interface {
	Publish(event Event)
}

// Publish implements Notifier on the websocket hub: every event is broadcast
// to the room of the stage it concerns.
func (h *Hub) Publish(event Event) {
	h.BroadcastToRoom(strconv.Itoa(event.StageID), event)
}
