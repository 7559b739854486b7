package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apexarena/internal/game"
	"apexarena/internal/rooms"
	"apexarena/internal/scenarios"
	"apexarena/internal/settings"

	"github.com/coder/websocket"
)

func newTestServer(t *testing.T, cfg game.Config) (*Server, *httptest.Server) {
	t.Helper()

	catalog, err := scenarios.Load()
	if err != nil {
		t.Fatal(err)
	}
	store := rooms.NewStore(catalog, cfg)

	srv := &Server{
		Rooms:    store,
		matchIDs: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", srv.handleWS)
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("GET /api/rooms", srv.handleRooms)
	mux.HandleFunc("GET /api/leaderboard", srv.handleLeaderboard)
	mux.HandleFunc("GET /api/players/{id}/stats", srv.handlePlayerStats)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return srv, ts
}

func defaultTestConfig() game.Config {
	return game.Config{MaxPlayers: 4, RevealDelay: 30 * time.Millisecond}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

type wsMsg struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// waitFor reads until a message with the wanted event arrives, skipping
// unrelated broadcasts along the way.
func waitFor(t *testing.T, conn *websocket.Conn, event string) wsMsg {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		var msg wsMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Event == event {
			return msg
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, code, name string) JoinedPayload {
	t.Helper()
	send(t, conn, ClientMessage{Event: "joinRoom", RoomCode: code, Name: name})
	msg := waitFor(t, conn, "joined")
	var joined JoinedPayload
	if err := json.Unmarshal(msg.Payload, &joined); err != nil {
		t.Fatal(err)
	}
	return joined
}

func TestWS_JoinRoom(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	conn := dial(t, ts)
	joined := join(t, conn, "TESTR1", "Alice")

	if joined.PlayerID == "" {
		t.Error("joined ack should carry the assigned player ID")
	}
	if joined.RoomCode != "TESTR1" {
		t.Errorf("roomCode = %q, want TESTR1", joined.RoomCode)
	}

	msg := waitFor(t, conn, "roomUpdated")
	var snap game.Snapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(snap.Players))
	}
	if snap.Players[0].Name != "Alice" || !snap.Players[0].IsHost {
		t.Errorf("first joiner should be host Alice, got %+v", snap.Players[0])
	}
	if snap.GameState != game.PhaseLobby {
		t.Errorf("gameState = %q, want lobby", snap.GameState)
	}
}

func TestWS_JoinRoom_GeneratedCode(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	conn := dial(t, ts)
	joined := join(t, conn, "", "Alice")

	if len(joined.RoomCode) != 6 {
		t.Errorf("generated code = %q, want 6 characters", joined.RoomCode)
	}
}

func TestWS_JoinRoom_Full(t *testing.T) {
	_, ts := newTestServer(t, game.Config{MaxPlayers: 1, RevealDelay: 30 * time.Millisecond})

	c1 := dial(t, ts)
	join(t, c1, "FULL01", "Alice")

	c2 := dial(t, ts)
	send(t, c2, ClientMessage{Event: "joinRoom", RoomCode: "FULL01", Name: "Bob"})
	msg := waitFor(t, c2, "error")
	var errPayload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &errPayload); err != nil {
		t.Fatal(err)
	}
	if errPayload.Code != "room_full" {
		t.Errorf("error code = %q, want room_full", errPayload.Code)
	}
}

func TestWS_UpdateSettings(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	conn := dial(t, ts)
	join(t, conn, "VOTES1", "Alice")
	waitFor(t, conn, "roomUpdated")

	send(t, conn, ClientMessage{Event: "updateSettings", Settings: &settings.Settings{
		ScenariosCount: 10,
		Difficulty:     scenarios.DifficultyExpert,
		ContentType:    scenarios.ContentQuiz,
	}})

	msg := waitFor(t, conn, "roomUpdated")
	var snap game.Snapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Settings.ScenariosCount != 10 {
		t.Errorf("scenariosCount = %d, want 10 (solo vote is a majority)", snap.Settings.ScenariosCount)
	}
	if snap.Settings.Difficulty != scenarios.DifficultyExpert {
		t.Errorf("difficulty = %q, want expert", snap.Settings.Difficulty)
	}
}

func TestWS_UpdateSettings_Invalid(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	conn := dial(t, ts)
	join(t, conn, "VOTES2", "Alice")

	send(t, conn, ClientMessage{Event: "updateSettings", Settings: &settings.Settings{
		ScenariosCount: 7,
		Difficulty:     scenarios.DifficultyBeginner,
		ContentType:    scenarios.ContentCharts,
	}})

	msg := waitFor(t, conn, "error")
	var errPayload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &errPayload); err != nil {
		t.Fatal(err)
	}
	if errPayload.Code != "invalid_settings" {
		t.Errorf("error code = %q, want invalid_settings", errPayload.Code)
	}
}

func TestWS_StartGame_NotHost(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	c1 := dial(t, ts)
	join(t, c1, "START1", "Alice")

	c2 := dial(t, ts)
	join(t, c2, "START1", "Bob")

	send(t, c2, ClientMessage{Event: "startGame"})
	msg := waitFor(t, c2, "error")
	var errPayload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &errPayload); err != nil {
		t.Fatal(err)
	}
	if errPayload.Code != "not_host" {
		t.Errorf("error code = %q, want not_host", errPayload.Code)
	}
}

func TestWS_SubmitDecision_BeforeStart(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	conn := dial(t, ts)
	join(t, conn, "EARLY1", "Alice")

	send(t, conn, ClientMessage{Event: "submitDecision", Decision: "buy"})
	msg := waitFor(t, conn, "error")
	var errPayload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &errPayload); err != nil {
		t.Fatal(err)
	}
	if errPayload.Code != "not_playing" {
		t.Errorf("error code = %q, want not_playing", errPayload.Code)
	}
}

func TestWS_FullRound(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	c1 := dial(t, ts)
	join(t, c1, "ROUND1", "Alice")
	c2 := dial(t, ts)
	join(t, c2, "ROUND1", "Bob")

	send(t, c1, ClientMessage{Event: "startGame"})

	msg := waitFor(t, c1, "gameStarted")
	var snap game.Snapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.GameState != game.PhasePlaying {
		t.Fatalf("gameState = %q, want playing", snap.GameState)
	}
	if len(snap.Scenarios) != 5 {
		t.Fatalf("scenarios = %d, want 5 (default settings)", len(snap.Scenarios))
	}
	waitFor(t, c2, "gameStarted")

	// First decision: partial progress broadcast, no reveal yet.
	send(t, c1, ClientMessage{Event: "submitDecision", Decision: "buy"})
	waitFor(t, c2, "playerProgress")

	// Second decision closes the barrier.
	send(t, c2, ClientMessage{Event: "submitDecision", Decision: "sell"})
	waitFor(t, c1, "allDecided")
	waitFor(t, c2, "allDecided")

	// After the reveal delay the room advances in lockstep.
	next := waitFor(t, c1, "nextScenario")
	var payload game.NextScenarioPayload
	if err := json.Unmarshal(next.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.CurrentScenarioIndex != 1 {
		t.Errorf("currentScenarioIndex = %d, want 1", payload.CurrentScenarioIndex)
	}
	waitFor(t, c2, "nextScenario")
}

// waitForPlayers reads roomUpdated broadcasts until one shows exactly n
// players.
func waitForPlayers(t *testing.T, conn *websocket.Conn, n int) game.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg := waitFor(t, conn, "roomUpdated")
		var snap game.Snapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			t.Fatal(err)
		}
		if len(snap.Players) == n {
			return snap
		}
	}
	t.Fatalf("never saw a snapshot with %d players", n)
	return game.Snapshot{}
}

func TestWS_DisconnectRemovesPlayer(t *testing.T) {
	srv, ts := newTestServer(t, defaultTestConfig())

	c1 := dial(t, ts)
	join(t, c1, "LEAVE1", "Alice")
	c2 := dial(t, ts)
	join(t, c2, "LEAVE1", "Bob")
	waitForPlayers(t, c1, 2)

	c2.Close(websocket.StatusNormalClosure, "")

	snap := waitForPlayers(t, c1, 1)
	if snap.Players[0].Name != "Alice" {
		t.Errorf("remaining player = %q, want Alice", snap.Players[0].Name)
	}

	// Last member leaving tears the room down.
	c1.Close(websocket.StatusNormalClosure, "")
	deadline := time.Now().Add(2 * time.Second)
	for srv.Rooms.Get("LEAVE1") != nil {
		if time.Now().After(deadline) {
			t.Fatal("room should be destroyed once empty")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWS_UnknownEvent(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	conn := dial(t, ts)
	send(t, conn, ClientMessage{Event: "teleport"})
	msg := waitFor(t, conn, "error")
	var errPayload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &errPayload); err != nil {
		t.Fatal(err)
	}
	if errPayload.Code != "bad_message" {
		t.Errorf("error code = %q, want bad_message", errPayload.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("body = %s, want ok status", body)
	}
}

func TestHandleRooms(t *testing.T) {
	srv, ts := newTestServer(t, defaultTestConfig())

	room, _ := srv.Rooms.GetOrCreate("LIST01")
	room.Session.Join("p1", "Alice")

	resp, err := http.Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var list []roomSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("rooms = %d, want 1", len(list))
	}
	if list[0].Code != "LIST01" || list[0].PlayerCount != 1 || list[0].GameState != "lobby" {
		t.Errorf("unexpected summary: %+v", list[0])
	}
}

func TestHandleLeaderboard_NoDatabase(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	resp, err := http.Get(ts.URL + "/api/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestHandlePlayerStats_NoDatabase(t *testing.T) {
	_, ts := newTestServer(t, defaultTestConfig())

	resp, err := http.Get(ts.URL + "/api/players/some-id/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}
