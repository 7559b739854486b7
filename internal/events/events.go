package events

// Broadcast event names, mirrored on the wire.
const (
	RoomUpdated    = "roomUpdated"
	GameStarted    = "gameStarted"
	PlayerProgress = "playerProgress"
	AllDecided     = "allDecided"
	NextScenario   = "nextScenario"
	GameFinished   = "gameFinished"
)

type Event struct {
	Type    string
	Payload any
}

// Bus carries one room's broadcasts from the session to the transport
// layer. The session never talks to sockets directly.
type Bus struct {
	Events chan Event
}

func NewBus() *Bus {
	return &Bus{
		Events: make(chan Event, 32),
	}
}

// Publish drops the event if the channel is full rather than stalling a
// room's state transition on a slow consumer.
func (b *Bus) Publish(eventType string, payload any) {
	select {
	case b.Events <- Event{Type: eventType, Payload: payload}:
	default:
	}
}
