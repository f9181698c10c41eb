package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/knockout-arena/betting"
	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/models"
	"github.com/Dosada05/knockout-arena/moderation"
)

// Store — единственный владелец всего изменяемого состояния арены: сетка,
// балансы, открытые ставки, мьюты и переписка. Никаких глобальных
// переменных; сервисы получают стор по ссылке. Каждая команда выполняется
// целиком под mu, поэтому наблюдатели никогда не видят частично
// применённую мутацию.
type Store struct {
	mu sync.Mutex

	Machine *brackets.StateMachine
	Ledger  *betting.Ledger
	Gate    *moderation.Gate
	Users   map[string]*models.User
	Chat    []models.ChatMessage

	startingBalance int
	now             func() time.Time
}

func NewStore(seed []brackets.GroupSeed, maxWager, startingBalance int, adminUsername string) (*Store, error) {
	machine, err := brackets.NewStateMachine(seed)
	if err != nil {
		return nil, err
	}
	return &Store{
		Machine:         machine,
		Ledger:          betting.NewLedger(maxWager),
		Gate:            moderation.NewGate(adminUsername),
		Users:           make(map[string]*models.User),
		startingBalance: startingBalance,
		now:             time.Now,
	}, nil
}

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// Available реализует betting.Accounts. Вызывается только под Lock.
func (s *Store) Available(bettor string) int {
	if user, ok := s.Users[bettor]; ok {
		return user.Balance
	}
	return 0
}

// Deposit зачисляет средства. Незарегистрированный беттор — no-op:
// исчезнувший между ставкой и расчётом пользователь выплату не получает.
func (s *Store) Deposit(bettor string, amount int) {
	if user, ok := s.Users[bettor]; ok {
		user.Balance += amount
	}
}

func (s *Store) Withdraw(bettor string, amount int) {
	if user, ok := s.Users[bettor]; ok {
		user.Balance -= amount
		if user.Balance < 0 {
			user.Balance = 0
		}
	}
}

// StartingBalance возвращает стартовый баланс нового пользователя.
func (s *Store) StartingBalance() int {
	return s.startingBalance
}

// ResetBalances возвращает всем пользователям стартовый баланс.
func (s *Store) ResetBalances() {
	for _, user := range s.Users {
		user.Balance = s.startingBalance
	}
}

// UserList строит публичный список пользователей для рассылки. online
// позволяет отметить подключённых; nil — все офлайн.
func (s *Store) UserList(online func(username string) bool) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(s.Users))
	for username, user := range s.Users {
		summary := models.UserSummary{
			Username: username,
			Balance:  user.Balance,
		}
		if online != nil {
			summary.IsOnline = online(username)
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Snapshot собирает персистентную копию всего состояния. Вызывать под Lock.
func (s *Store) Snapshot() *models.Snapshot {
	users := make(map[string]*models.User, len(s.Users))
	for username, user := range s.Users {
		copied := *user
		users[username] = &copied
	}
	return &models.Snapshot{
		Bracket: s.Machine.Snapshot(),
		Users:   users,
		Wagers:  s.Ledger.Book(),
		Mutes:   s.Gate.Table(),
		Chat:    append([]models.ChatMessage(nil), s.Chat...),
		SavedAt: s.now(),
	}
}

// RestoreSnapshot восстанавливает состояние из загруженного снапшота.
func (s *Store) RestoreSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if err := s.Machine.Restore(snap.Bracket); err != nil {
		return err
	}
	s.Users = make(map[string]*models.User, len(snap.Users))
	for username, user := range snap.Users {
		copied := *user
		s.Users[username] = &copied
	}
	s.Ledger.Restore(snap.Wagers)
	s.Gate.Restore(snap.Mutes)
	s.Chat = append([]models.ChatMessage(nil), snap.Chat...)
	return nil
}
