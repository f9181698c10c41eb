package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/knockout-arena/betting"
	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/models"
	"github.com/Dosada05/knockout-arena/repositories"
	"github.com/Dosada05/knockout-arena/storage"
)

// TournamentService применяет административные решения к сетке и синхронно
// прогоняет расчёт ставок по исходу каждого решённого матча. Привилегии
// проверяет транспортный слой: сюда команды приходят уже авторизованными.
type TournamentService interface {
	State(ctx context.Context) *models.Bracket
	Users(ctx context.Context) []models.UserSummary
	DeclareGroupResult(ctx context.Context, group, first, second string) error
	DeclareMatchWinner(ctx context.Context, stage models.Stage, matchID int, winner string) error
	DeclareFinalWinner(ctx context.Context, winner string) error
	ResetGroup(ctx context.Context, group string) error
	ResetMatch(ctx context.Context, stage models.Stage, matchID int) error
	FullReset(ctx context.Context) error
	ReplaceParticipant(ctx context.Context, oldName, newName string) error
}

type tournamentService struct {
	store     *Store
	snapshots repositories.SnapshotRepository
	archive   storage.FileUploader
	hub       Hub
	logger    *slog.Logger
}

func NewTournamentService(
	store *Store,
	snapshots repositories.SnapshotRepository,
	archive storage.FileUploader,
	hub Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		store:     store,
		snapshots: snapshots,
		archive:   archive,
		hub:       hub,
		logger:    logger,
	}
}

func (s *tournamentService) State(ctx context.Context) *models.Bracket {
	s.store.Lock()
	defer s.store.Unlock()
	return s.store.Machine.Snapshot()
}

func (s *tournamentService) Users(ctx context.Context) []models.UserSummary {
	s.store.Lock()
	defer s.store.Unlock()
	return s.store.UserList(s.hub.Online)
}

func (s *tournamentService) DeclareGroupResult(ctx context.Context, group, first, second string) error {
	s.store.Lock()
	advanced, err := s.store.Machine.DeclareGroupResult(group, first, second)
	if err != nil {
		s.store.Unlock()
		return err
	}
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Info("group result declared",
		slog.String("group", group),
		slog.String("first", first),
		slog.String("second", second),
		slog.Bool("stage_advanced", advanced),
	)
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventTournamentState, snap.Bracket)
	s.hub.BroadcastEvent(brackets.EventUsersList, userSummaries(snap.Users, s.hub))
	return nil
}

func (s *tournamentService) DeclareMatchWinner(ctx context.Context, stage models.Stage, matchID int, winner string) error {
	s.store.Lock()
	outcome, err := s.store.Machine.DeclareMatchWinner(stage, matchID, winner)
	if err != nil {
		s.store.Unlock()
		return err
	}
	// Расчёт идёт строго один раз на решённый матч, до того как любая
	// следующая команда сможет снова сослаться на этих участников.
	betting.Settle(s.store.Ledger, s.store, outcome.Winner, outcome.Loser)
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Info("match winner declared",
		slog.String("stage", string(outcome.Stage)),
		slog.Int("match_id", outcome.MatchID),
		slog.String("winner", outcome.Winner),
		slog.String("loser", outcome.Loser),
		slog.Bool("stage_advanced", outcome.StageAdvanced),
	)
	if outcome.Champion != nil {
		s.logger.Info("tournament finished", slog.String("champion", *outcome.Champion))
	}

	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventTournamentState, snap.Bracket)
	s.hub.BroadcastEvent(brackets.EventUsersList, userSummaries(snap.Users, s.hub))
	s.hub.BroadcastEvent(brackets.EventActiveBets, snap.Wagers)
	return nil
}

// DeclareFinalWinner — команда финала без matchId: финальный матч один.
func (s *tournamentService) DeclareFinalWinner(ctx context.Context, winner string) error {
	return s.DeclareMatchWinner(ctx, models.StageFinal, 1, winner)
}

func (s *tournamentService) ResetGroup(ctx context.Context, group string) error {
	s.store.Lock()
	if err := s.store.Machine.ResetGroup(group); err != nil {
		s.store.Unlock()
		return err
	}
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Warn("group decision reset", slog.String("group", group))
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventTournamentState, snap.Bracket)
	return nil
}

func (s *tournamentService) ResetMatch(ctx context.Context, stage models.Stage, matchID int) error {
	s.store.Lock()
	if err := s.store.Machine.ResetMatch(stage, matchID); err != nil {
		s.store.Unlock()
		return err
	}
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Warn("match decision reset",
		slog.String("stage", string(stage)),
		slog.Int("match_id", matchID),
	)
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventTournamentState, snap.Bracket)
	return nil
}

// FullReset возвращает арену к стартовой конфигурации: сетка заново,
// балансы к стартовому значению, книга ставок и переписка очищаются.
func (s *tournamentService) FullReset(ctx context.Context) error {
	s.store.Lock()
	s.store.Machine.FullReset()
	s.store.ResetBalances()
	s.store.Ledger.Clear()
	s.store.Chat = nil
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Warn("full tournament reset")
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventTournamentState, snap.Bracket)
	s.hub.BroadcastEvent(brackets.EventUsersList, userSummaries(snap.Users, s.hub))
	s.hub.BroadcastEvent(brackets.EventActiveBets, snap.Wagers)
	s.hub.BroadcastEvent(brackets.EventChatHistory, []models.ChatMessage{})
	return nil
}

// ReplaceParticipant переименовывает участника во всей сетке и перекладывает
// открытые ставки на новое имя, не обнуляя их.
func (s *tournamentService) ReplaceParticipant(ctx context.Context, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return fmt.Errorf("%w: participant names must not be empty", ErrValidationFailed)
	}
	if oldName == newName {
		return fmt.Errorf("%w: old and new names are identical", ErrValidationFailed)
	}

	s.store.Lock()
	if !s.store.Machine.Rename(oldName, newName) {
		s.store.Unlock()
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, oldName)
	}
	s.store.Ledger.RenameTarget(oldName, newName)
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Info("participant replaced",
		slog.String("old", oldName),
		slog.String("new", newName),
	)
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventTournamentState, snap.Bracket)
	s.hub.BroadcastEvent(brackets.EventActiveBets, snap.Wagers)
	return nil
}
