package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"apexarena/internal/db"
	"apexarena/internal/game"
	"apexarena/internal/rooms"
	"apexarena/internal/settings"
	"apexarena/internal/wshub"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Server struct {
	Rooms          *rooms.Store
	DB             *db.DB               // nil if no database configured
	DecisionBuffer chan db.DecisionEvent // nil if no database configured

	mu       sync.Mutex
	matchIDs map[string]string // room code -> active match id
}

// ClientMessage is the JSON envelope received from clients. Fields
// beyond Event are set depending on the event type.
type ClientMessage struct {
	Event    string             `json:"event"`
	Name     string             `json:"name,omitempty"`
	RoomCode string             `json:"roomCode,omitempty"`
	Settings *settings.Settings `json:"settings,omitempty"`
	Decision string             `json:"decision,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinedPayload struct {
	PlayerID string `json:"playerId"`
	RoomCode string `json:"roomCode"`
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomFull):
		return "room_full"
	case errors.Is(err, game.ErrGameInProgress):
		return "game_in_progress"
	case errors.Is(err, game.ErrNotHost):
		return "not_host"
	case errors.Is(err, game.ErrNotPlaying):
		return "not_playing"
	case errors.Is(err, game.ErrNotFinished):
		return "not_finished"
	case errors.Is(err, game.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, game.ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, game.ErrInvalidDecision):
		return "invalid_decision"
	case errors.Is(err, game.ErrNoScenarios):
		return "no_scenarios"
	default:
		return "internal"
	}
}

func sendError(c *wshub.Client, err error) {
	c.Enqueue("error", ErrorPayload{Code: errorCode(err), Message: err.Error()})
}

// handleWS owns one player connection for its whole lifetime: upgrade,
// event dispatch, and cleanup on disconnect.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // any origin; same policy for every client
	})
	if err != nil {
		zap.S().Warnw("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	playerID := uuid.New().String()
	client := &wshub.Client{
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, 32),
	}
	go client.WritePump(ctx)

	var room *rooms.Room
	defer func() {
		if room == nil {
			return
		}
		room.Hub.Unregister(playerID)
		if room.Session.Leave(playerID) {
			s.Rooms.Destroy(room.Code)
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.Enqueue("error", ErrorPayload{Code: "bad_message", Message: "malformed message"})
			continue
		}

		switch msg.Event {
		case "joinRoom":
			if room != nil {
				client.Enqueue("error", ErrorPayload{Code: "already_joined", Message: "already in a room"})
				continue
			}
			rm, err := s.Rooms.GetOrCreate(msg.RoomCode)
			if err != nil {
				sendError(client, err)
				continue
			}
			// Register before Join so the first roomUpdated reaches this
			// client; the joined ack is queued ahead of it.
			client.Name = msg.Name
			rm.Hub.Register(client)
			client.Enqueue("joined", JoinedPayload{PlayerID: playerID, RoomCode: rm.Code})
			p, err := rm.Session.Join(playerID, msg.Name)
			if err != nil {
				rm.Hub.Unregister(playerID)
				sendError(client, err)
				continue
			}
			room = rm
			if s.DB != nil {
				if err := s.DB.UpsertPlayer(playerID, p.Name, p.Color); err != nil {
					zap.S().Errorw("upserting player", "err", err)
				}
			}

		case "updateSettings":
			if room == nil {
				client.Enqueue("error", ErrorPayload{Code: "unknown_room", Message: "not in a room"})
				continue
			}
			if msg.Settings == nil {
				client.Enqueue("error", ErrorPayload{Code: "bad_message", Message: "missing settings"})
				continue
			}
			if err := room.Session.Vote(playerID, *msg.Settings); err != nil {
				sendError(client, err)
			}

		case "startGame":
			if room == nil {
				client.Enqueue("error", ErrorPayload{Code: "unknown_room", Message: "not in a room"})
				continue
			}
			if err := room.Session.Start(playerID); err != nil {
				sendError(client, err)
				continue
			}
			s.beginMatch(room)

		case "submitDecision":
			if room == nil {
				client.Enqueue("error", ErrorPayload{Code: "unknown_room", Message: "not in a room"})
				continue
			}
			res, err := room.Session.SubmitDecision(playerID, msg.Decision)
			if err != nil {
				sendError(client, err)
				continue
			}
			if res.Rescored {
				s.recordDecision(room.Code, playerID, res)
			}

		case "playAgain":
			if room == nil {
				client.Enqueue("error", ErrorPayload{Code: "unknown_room", Message: "not in a room"})
				continue
			}
			if err := room.Session.PlayAgain(playerID); err != nil {
				sendError(client, err)
			}

		default:
			client.Enqueue("error", ErrorPayload{Code: "bad_message", Message: "unknown event: " + msg.Event})
		}
	}
}
