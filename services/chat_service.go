package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/models"
	"github.com/Dosada05/knockout-arena/repositories"
	"github.com/Dosada05/knockout-arena/storage"
	"github.com/google/uuid"
)

// ChatService принимает сообщения в общий чат и управляет мьютами.
// Перед каждым принятием сообщения синхронно опрашивается ModerationGate.
type ChatService interface {
	Send(ctx context.Context, username, text string) (*models.ChatMessage, error)
	History(ctx context.Context) []models.ChatMessage
	Mute(ctx context.Context, target string, minutes int) error
	Unmute(ctx context.Context, target string) error
	MuteTable(ctx context.Context) map[string]time.Time
}

type chatService struct {
	store     *Store
	snapshots repositories.SnapshotRepository
	archive   storage.FileUploader
	hub       Hub
	logger    *slog.Logger
}

func NewChatService(
	store *Store,
	snapshots repositories.SnapshotRepository,
	archive storage.FileUploader,
	hub Hub,
	logger *slog.Logger,
) ChatService {
	return &chatService{
		store:     store,
		snapshots: snapshots,
		archive:   archive,
		hub:       hub,
		logger:    logger,
	}
}

func (s *chatService) Send(ctx context.Context, username, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message must not be empty", ErrValidationFailed)
	}
	if runes := []rune(text); len(runes) > models.MaxChatMessageLength {
		text = string(runes[:models.MaxChatMessageLength])
	}

	s.store.Lock()
	if _, ok := s.store.Users[username]; !ok {
		// Администратор и незарегистрированные наблюдатели в чат не пишут.
		s.store.Unlock()
		return nil, fmt.Errorf("%w: %s cannot post to chat", ErrForbiddenOperation, username)
	}
	if s.store.Gate.IsMuted(username) {
		s.store.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrMuted, username)
	}

	message := models.ChatMessage{
		ID:        uuid.NewString(),
		Username:  username,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}
	s.store.Chat = append(s.store.Chat, message)
	if overflow := len(s.store.Chat) - models.ChatTranscriptLimit; overflow > 0 {
		s.store.Chat = s.store.Chat[overflow:]
	}
	snap := s.store.Snapshot()
	s.store.Unlock()

	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventChatMessage, message)
	return &message, nil
}

func (s *chatService) History(ctx context.Context) []models.ChatMessage {
	s.store.Lock()
	defer s.store.Unlock()
	return append([]models.ChatMessage(nil), s.store.Chat...)
}

func (s *chatService) Mute(ctx context.Context, target string, minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("%w: mute duration must be at least one minute", ErrValidationFailed)
	}

	s.store.Lock()
	if err := s.store.Gate.Mute(target, time.Duration(minutes)*time.Minute); err != nil {
		s.store.Unlock()
		return err
	}
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Warn("user muted",
		slog.String("target", target),
		slog.Int("minutes", minutes),
	)
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventMuteTable, snap.Mutes)
	return nil
}

func (s *chatService) Unmute(ctx context.Context, target string) error {
	s.store.Lock()
	s.store.Gate.Unmute(target)
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Info("user unmuted", slog.String("target", target))
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventMuteTable, snap.Mutes)
	return nil
}

func (s *chatService) MuteTable(ctx context.Context) map[string]time.Time {
	s.store.Lock()
	defer s.store.Unlock()
	return s.store.Gate.Table()
}
