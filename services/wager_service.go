package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/models"
	"github.com/Dosada05/knockout-arena/repositories"
	"github.com/Dosada05/knockout-arena/storage"
)

// WagerService — размещение и административная отмена ставок. Победные
// выплаты делает TournamentService через расчётный движок.
type WagerService interface {
	// Place ставит или заменяет ставку и возвращает новый баланс беттора.
	Place(ctx context.Context, bettor, target string, amount int) (int, error)
	AdminCancel(ctx context.Context, target, bettor string) error
	Book(ctx context.Context) models.WagerBook
}

type wagerService struct {
	store     *Store
	snapshots repositories.SnapshotRepository
	archive   storage.FileUploader
	hub       Hub
	logger    *slog.Logger
}

func NewWagerService(
	store *Store,
	snapshots repositories.SnapshotRepository,
	archive storage.FileUploader,
	hub Hub,
	logger *slog.Logger,
) WagerService {
	return &wagerService{
		store:     store,
		snapshots: snapshots,
		archive:   archive,
		hub:       hub,
		logger:    logger,
	}
}

func (s *wagerService) Place(ctx context.Context, bettor, target string, amount int) (int, error) {
	if target == "" {
		return 0, fmt.Errorf("%w: wager target must not be empty", ErrValidationFailed)
	}

	s.store.Lock()
	user, ok := s.store.Users[bettor]
	if !ok {
		s.store.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrUserNotFound, bettor)
	}
	if err := s.store.Ledger.Place(s.store, bettor, target, amount); err != nil {
		s.store.Unlock()
		return 0, err
	}
	balance := user.Balance
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Info("wager placed",
		slog.String("bettor", bettor),
		slog.String("target", target),
		slog.Int("amount", amount),
		slog.Int("balance", balance),
	)
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventActiveBets, snap.Wagers)
	s.hub.BroadcastEvent(brackets.EventUsersList, userSummaries(snap.Users, s.hub))
	return balance, nil
}

func (s *wagerService) AdminCancel(ctx context.Context, target, bettor string) error {
	s.store.Lock()
	if err := s.store.Ledger.Cancel(s.store, target, bettor); err != nil {
		s.store.Unlock()
		return err
	}
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Warn("wager cancelled by admin",
		slog.String("bettor", bettor),
		slog.String("target", target),
	)
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventActiveBets, snap.Wagers)
	s.hub.BroadcastEvent(brackets.EventUsersList, userSummaries(snap.Users, s.hub))
	return nil
}

func (s *wagerService) Book(ctx context.Context) models.WagerBook {
	s.store.Lock()
	defer s.store.Unlock()
	return s.store.Ledger.Book()
}
