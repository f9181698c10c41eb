package services

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/models"
)

// fakeHub записывает каждое разосланное событие в порядке отправки.
type fakeHub struct {
	mu     sync.Mutex
	events []recordedEvent
	online map[string]bool
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

func newFakeHub() *fakeHub {
	return &fakeHub{online: make(map[string]bool)}
}

func (h *fakeHub) BroadcastEvent(eventType string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{Type: eventType, Payload: payload})
}

func (h *fakeHub) Online(username string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online[username]
}

func (h *fakeHub) eventTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.events))
	for i, event := range h.events {
		types[i] = event.Type
	}
	return types
}

func (h *fakeHub) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}

func testSeed() []brackets.GroupSeed {
	return []brackets.GroupSeed{
		{Name: "A", Players: [3]string{"a1", "a2", "a3"}},
		{Name: "B", Players: [3]string{"b1", "b2", "b3"}},
		{Name: "C", Players: [3]string{"c1", "c2", "c3"}},
		{Name: "D", Players: [3]string{"d1", "d2", "d3"}},
	}
}

const (
	testStartingBalance = 20
	testMaxWager        = 10
	testAdmin           = "admin"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testSeed(), testMaxWager, testStartingBalance, testAdmin)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func registerViewer(store *Store, username string) {
	store.Lock()
	store.Users[username] = &models.User{Username: username, Balance: testStartingBalance}
	store.Unlock()
}

// lockAllGroups переводит сетку из групповой стадии в четвертьфиналы.
func lockAllGroups(t *testing.T, store *Store) {
	t.Helper()
	store.Lock()
	defer store.Unlock()
	for _, result := range [][3]string{
		{"A", "a1", "a2"},
		{"B", "b1", "b2"},
		{"C", "c1", "c2"},
		{"D", "d1", "d2"},
	} {
		if _, err := store.Machine.DeclareGroupResult(result[0], result[1], result[2]); err != nil {
			t.Fatalf("DeclareGroupResult(%s): %v", result[0], err)
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
