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
	"github.com/Dosada05/knockout-arena/utils"
)

const minPasswordLength = 4

// AuthResult — то, что нужно транспортному слою, чтобы выписать токен
// и показать пользователю его баланс.
type AuthResult struct {
	Username string
	Role     models.UserRole
	Balance  int
}

// AuthService — регистрация зрителей и вход. Административная учётка
// задана конфигурацией и в таблице пользователей не живёт.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}

type authService struct {
	store     *Store
	snapshots repositories.SnapshotRepository
	archive   storage.FileUploader
	hub       Hub
	logger    *slog.Logger

	adminUsername string
	adminPassword string
}

func NewAuthService(
	store *Store,
	snapshots repositories.SnapshotRepository,
	archive storage.FileUploader,
	hub Hub,
	logger *slog.Logger,
	adminUsername, adminPassword string,
) AuthService {
	return &authService{
		store:         store,
		snapshots:     snapshots,
		archive:       archive,
		hub:           hub,
		logger:        logger,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidationFailed)
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if username == s.adminUsername {
		return nil, fmt.Errorf("%w: %s", ErrUsernameReserved, username)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.store.Lock()
	if _, exists := s.store.Users[username]; exists {
		s.store.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Balance:      s.store.StartingBalance(),
		CreatedAt:    time.Now().UTC(),
	}
	s.store.Users[username] = user
	balance := user.Balance
	snap := s.store.Snapshot()
	s.store.Unlock()

	s.logger.Info("user registered", slog.String("username", username))
	persistState(ctx, s.snapshots, s.archive, snap, s.logger)
	s.hub.BroadcastEvent(brackets.EventUsersList, userSummaries(snap.Users, s.hub))

	return &AuthResult{Username: username, Role: models.RolePlayer, Balance: balance}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == s.adminUsername {
		if password != s.adminPassword {
			return nil, ErrAuthInvalidCredentials
		}
		return &AuthResult{Username: username, Role: models.RoleAdmin}, nil
	}

	s.store.Lock()
	user, ok := s.store.Users[username]
	var hash string
	var balance int
	if ok {
		hash = user.PasswordHash
		balance = user.Balance
	}
	s.store.Unlock()

	if !ok || !utils.CheckPasswordHash(password, hash) {
		return nil, ErrAuthInvalidCredentials
	}
	return &AuthResult{Username: username, Role: models.RolePlayer, Balance: balance}, nil
}
