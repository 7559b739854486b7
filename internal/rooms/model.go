package rooms

import (
	"time"

	"apexarena/internal/events"
	"apexarena/internal/game"
	"apexarena/internal/wshub"
)

type Room struct {
	Code      string
	Session   *game.Session
	Bus       *events.Bus
	Hub       *wshub.Hub
	CreatedAt time.Time

	done chan struct{}
}

// forward pumps session broadcasts into the room's WebSocket hub until
// the room is destroyed.
func (r *Room) forward() {
	for {
		select {
		case <-r.done:
			return
		case ev := <-r.Bus.Events:
			r.Hub.Broadcast(ev.Type, ev.Payload)
		}
	}
}
