package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/models"
)

func TestChatSendAppendsAndBroadcasts(t *testing.T) {
	store := newTestStore(t)
	hub := newFakeHub()
	chat := NewChatService(store, nil, nil, hub, discardLogger())
	registerViewer(store, "alice")

	message, err := chat.Send(context.Background(), "alice", "  glhf  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if message.Message != "glhf" {
		t.Errorf("message text = %q, want trimmed %q", message.Message, "glhf")
	}
	if message.ID == "" {
		t.Error("message must carry a generated id")
	}

	history := chat.History(context.Background())
	if len(history) != 1 || history[0].ID != message.ID {
		t.Errorf("history = %v, want the single sent message", history)
	}
	if got := hub.eventTypes(); len(got) != 1 || got[0] != brackets.EventChatMessage {
		t.Errorf("broadcast events = %v, want [%s]", got, brackets.EventChatMessage)
	}
}

func TestChatSendTruncatesLongMessages(t *testing.T) {
	store := newTestStore(t)
	chat := NewChatService(store, nil, nil, newFakeHub(), discardLogger())
	registerViewer(store, "alice")

	long := strings.Repeat("щ", models.MaxChatMessageLength+50)
	message, err := chat.Send(context.Background(), "alice", long)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := len([]rune(message.Message)); got != models.MaxChatMessageLength {
		t.Errorf("message length = %d runes, want %d", got, models.MaxChatMessageLength)
	}
}

func TestChatSendRejections(t *testing.T) {
	store := newTestStore(t)
	chat := NewChatService(store, nil, nil, newFakeHub(), discardLogger())
	registerViewer(store, "alice")
	ctx := context.Background()

	if _, err := chat.Send(ctx, "alice", "   "); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("blank message: err = %v, want ErrValidationFailed", err)
	}
	// Администратор не зарегистрирован как зритель и в чат не пишет.
	if _, err := chat.Send(ctx, testAdmin, "hi"); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("admin message: err = %v, want ErrForbiddenOperation", err)
	}
	if _, err := chat.Send(ctx, "stranger", "hi"); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("unregistered message: err = %v, want ErrForbiddenOperation", err)
	}
}

func TestChatTranscriptKeepsLastHundred(t *testing.T) {
	store := newTestStore(t)
	chat := NewChatService(store, nil, nil, newFakeHub(), discardLogger())
	registerViewer(store, "alice")
	ctx := context.Background()

	for i := 0; i < models.ChatTranscriptLimit+5; i++ {
		if _, err := chat.Send(ctx, "alice", "msg"); err != nil {
			t.Fatalf("Send #%d: %v", i, err)
		}
	}
	if got := len(chat.History(ctx)); got != models.ChatTranscriptLimit {
		t.Errorf("history length = %d, want %d", got, models.ChatTranscriptLimit)
	}
}

func TestMuteBlocksSendUntilUnmute(t *testing.T) {
	store := newTestStore(t)
	hub := newFakeHub()
	chat := NewChatService(store, nil, nil, hub, discardLogger())
	registerViewer(store, "alice")
	ctx := context.Background()

	if err := chat.Mute(ctx, "alice", 5); err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if _, err := chat.Send(ctx, "alice", "hi"); !errors.Is(err, ErrMuted) {
		t.Fatalf("muted send: err = %v, want ErrMuted", err)
	}

	if err := chat.Unmute(ctx, "alice"); err != nil {
		t.Fatalf("Unmute: %v", err)
	}
	if _, err := chat.Send(ctx, "alice", "hi"); err != nil {
		t.Errorf("send after unmute: %v", err)
	}
	if len(chat.MuteTable(ctx)) != 0 {
		t.Error("mute table must be empty after unmute")
	}
}

func TestMuteValidation(t *testing.T) {
	store := newTestStore(t)
	chat := NewChatService(store, nil, nil, newFakeHub(), discardLogger())
	ctx := context.Background()

	if err := chat.Mute(ctx, "alice", 0); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("zero minutes: err = %v, want ErrValidationFailed", err)
	}
	if err := chat.Mute(ctx, testAdmin, 5); err == nil {
		t.Error("muting the admin must fail")
	}
}
