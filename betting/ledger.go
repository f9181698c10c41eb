// knockout-arena/betting/ledger.go
package betting

import (
	"errors"
	"fmt"

	"github.com/Dosada05/knockout-arena/models"
)

var (
	ErrInvalidAmount     = errors.New("wager amount must be a positive integer")
	ErrOverLimit         = errors.New("wager amount exceeds the per-wager ceiling")
	ErrInsufficientFunds = errors.New("insufficient balance for this wager")
	ErrWagerNotFound     = errors.New("no open wager for this bettor and target")
)

// Accounts — балансы бетторов, против которых работает леджер. Реализацию
// держит стор; здесь только то, что нужно для резервирования и выплат.
type Accounts interface {
	// Available возвращает текущий свободный баланс беттора.
	Available(bettor string) int
	// Deposit зачисляет сумму. Неизвестный беттор — no-op.
	Deposit(bettor string, amount int)
	// Withdraw списывает сумму. Вызывается только после проверки Available.
	Withdraw(bettor string, amount int)
}

// Ledger хранит открытые ставки текущего окна, по одной на пару
// (беттор, участник). Повторная ставка на того же участника заменяет
// прежнюю: сначала возврат, затем резерв новой суммы.
type Ledger struct {
	maxWager int
	book     models.WagerBook
}

func NewLedger(maxWager int) *Ledger {
	return &Ledger{
		maxWager: maxWager,
		book:     make(models.WagerBook),
	}
}

// Place validates and records a wager, debiting the bettor by the net delta.
func (l *Ledger) Place(acc Accounts, bettor, target string, amount int) error {
	if amount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if amount > l.maxWager {
		return fmt.Errorf("%w: %d > %d", ErrOverLimit, amount, l.maxWager)
	}

	prior := l.book[target][bettor]
	if amount > acc.Available(bettor)+prior {
		return fmt.Errorf("%w: %d available, %d requested", ErrInsufficientFunds, acc.Available(bettor)+prior, amount)
	}

	// Возврат прежней ставки, затем резерв новой: никакого двойного списания.
	if prior > 0 {
		acc.Deposit(bettor, prior)
	}
	acc.Withdraw(bettor, amount)

	if l.book[target] == nil {
		l.book[target] = make(map[string]int)
	}
	l.book[target][bettor] = amount
	return nil
}

// Cancel refunds and removes one bettor's wager on a target.
func (l *Ledger) Cancel(acc Accounts, target, bettor string) error {
	amount, ok := l.book[target][bettor]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrWagerNotFound, bettor, target)
	}
	acc.Deposit(bettor, amount)
	delete(l.book[target], bettor)
	if len(l.book[target]) == 0 {
		delete(l.book, target)
	}
	return nil
}

// RenameTarget перекладывает ставки со старого имени участника на новое,
// чтобы административная замена не обнуляла чужие ставки.
func (l *Ledger) RenameTarget(oldName, newName string) {
	entries, ok := l.book[oldName]
	if !ok || oldName == newName {
		return
	}
	delete(l.book, oldName)
	if existing, ok := l.book[newName]; ok {
		// Слияние на случай, если на новое имя уже успели поставить.
		for bettor, amount := range entries {
			existing[bettor] += amount
		}
		return
	}
	l.book[newName] = entries
}

// WagersOn returns a copy of the bettor → amount mapping for one target.
func (l *Ledger) WagersOn(target string) map[string]int {
	entries := l.book[target]
	out := make(map[string]int, len(entries))
	for bettor, amount := range entries {
		out[bettor] = amount
	}
	return out
}

// Book returns a deep copy of the whole open-wager book.
func (l *Ledger) Book() models.WagerBook {
	return l.book.Clone()
}

// TotalStaked возвращает сумму всех открытых ставок одного беттора.
func (l *Ledger) TotalStaked(bettor string) int {
	total := 0
	for _, entries := range l.book {
		total += entries[bettor]
	}
	return total
}

// Clear drops every open wager without refunds. Used by the full reset,
// which restores balances to the starting value anyway.
func (l *Ledger) Clear() {
	l.book = make(models.WagerBook)
}

// Restore replaces the book with one loaded from a persisted snapshot.
func (l *Ledger) Restore(book models.WagerBook) {
	if book == nil {
		l.book = make(models.WagerBook)
		return
	}
	l.book = book.Clone()
}

func (l *Ledger) close(target string) {
	delete(l.book, target)
}
