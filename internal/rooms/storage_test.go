package rooms

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"apexarena/internal/game"
	"apexarena/internal/scenarios"
	"apexarena/internal/wshub"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	catalog, err := scenarios.Load()
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(catalog, game.Config{MaxPlayers: 4, RevealDelay: 20 * time.Millisecond})
}

func TestGetOrCreate(t *testing.T) {
	s := testStore(t)

	room, err := s.GetOrCreate("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if room.Code != "ABC123" {
		t.Errorf("Code = %q, want normalized ABC123", room.Code)
	}
	if room.Session == nil || room.Hub == nil || room.Bus == nil {
		t.Fatal("room should be fully wired")
	}

	// Same code (any casing) yields the same room.
	again, err := s.GetOrCreate("ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if again != room {
		t.Error("GetOrCreate should return the existing room")
	}
}

func TestGetOrCreate_GeneratesCode(t *testing.T) {
	s := testStore(t)

	room, err := s.GetOrCreate("")
	if err != nil {
		t.Fatal(err)
	}
	if len(room.Code) != 6 {
		t.Errorf("generated code = %q, want 6 characters", room.Code)
	}
	if s.Get(room.Code) != room {
		t.Error("generated room should be registered under its code")
	}
}

func TestGet_Nonexistent(t *testing.T) {
	s := testStore(t)
	if s.Get("ZZZZZZ") != nil {
		t.Error("Get should return nil for nonexistent room")
	}
}

func TestDestroy_FreesCodeForFreshRoom(t *testing.T) {
	s := testStore(t)

	room, _ := s.GetOrCreate("ABC123")
	room.Session.Join("p1", "Alice")

	s.Destroy("ABC123")
	if s.Get("ABC123") != nil {
		t.Fatal("room should be gone after Destroy")
	}

	// A rejoin under the same code gets a brand-new room, not a revival.
	fresh, _ := s.GetOrCreate("ABC123")
	if fresh == room {
		t.Error("recreated room must be a fresh instance")
	}
	if fresh.Session.PlayerCount() != 0 {
		t.Error("recreated room must start with no players")
	}
}

func TestDestroy_Nonexistent(t *testing.T) {
	s := testStore(t)
	// Should not panic
	s.Destroy("ZZZZZZ")
}

func TestForward_BusReachesHub(t *testing.T) {
	s := testStore(t)
	room, _ := s.GetOrCreate("ABC123")

	c := &wshub.Client{PlayerID: "p1", Send: make(chan []byte, 16)}
	room.Hub.Register(c)

	room.Session.Join("p1", "Alice")

	select {
	case data := <-c.Send:
		var msg wshub.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Event != "roomUpdated" {
			t.Errorf("event = %q, want roomUpdated", msg.Event)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("session broadcast never reached the hub")
	}
}

func TestSweepStale(t *testing.T) {
	s := testStore(t)
	old, _ := s.GetOrCreate("OLDONE")
	old.CreatedAt = time.Now().Add(-3 * time.Hour)
	s.GetOrCreate("FRESH1")

	swept := s.SweepStale(2 * time.Hour)

	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}
	if s.Get("OLDONE") != nil {
		t.Error("stale room should be destroyed")
	}
	if s.Get("FRESH1") == nil {
		t.Error("fresh room should survive the sweep")
	}
}

func TestSetSeeder_DeterministicDraws(t *testing.T) {
	var sequences [2][]string
	for i := range sequences {
		s := testStore(t)
		s.SetSeeder(func() *rand.Rand { return rand.New(rand.NewSource(7)) })
		room, _ := s.GetOrCreate("SEEDED")
		room.Session.Join("p1", "Alice")
		if err := room.Session.Start("p1"); err != nil {
			t.Fatal(err)
		}
		for _, sc := range room.Session.Snapshot().Scenarios {
			sequences[i] = append(sequences[i], sc.ID)
		}
	}

	if fmt.Sprint(sequences[0]) != fmt.Sprint(sequences[1]) {
		t.Errorf("seeded stores drew different sequences: %v vs %v", sequences[0], sequences[1])
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := testStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.GetOrCreate(fmt.Sprintf("ROOM%02d", n))
		}(i)
	}
	wg.Wait()

	if got := len(s.List()); got != 50 {
		t.Errorf("concurrent creates: got %d rooms, want 50", got)
	}
}

func TestRoomIsolation(t *testing.T) {
	s := testStore(t)
	r1, _ := s.GetOrCreate("ROOMA1")
	r2, _ := s.GetOrCreate("ROOMB2")

	r1.Session.Join("p1", "Alice")
	r2.Session.Join("p2", "Bob")

	if r1.Session.PlayerCount() != 1 || r2.Session.PlayerCount() != 1 {
		t.Error("rooms should not share membership")
	}
	if r1.Session.Snapshot().Players[0].Name != "Alice" {
		t.Error("room A should only have Alice")
	}
	if r2.Session.Snapshot().Players[0].Name != "Bob" {
		t.Error("room B should only have Bob")
	}
}
