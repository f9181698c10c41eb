package betting

import "testing"

func placeAll(t *testing.T, ledger *Ledger, acc fakeAccounts, target string, bets map[string]int) {
	t.Helper()
	for bettor, amount := range bets {
		if err := ledger.Place(acc, bettor, target, amount); err != nil {
			t.Fatalf("place %d on %s for %s: %v", amount, target, bettor, err)
		}
	}
}

func TestSettleExampleFromPolicy(t *testing.T) {
	// W = {10, 5}, L = {20}: выплаты 10+floor(20*10/15)=23 и 5+floor(20*5/15)=11.
	acc := fakeAccounts{"big": 20, "small": 20, "loser": 20}
	ledger := NewLedger(20)
	placeAll(t, ledger, acc, "winner", map[string]int{"big": 10, "small": 5})
	placeAll(t, ledger, acc, "loser", map[string]int{"loser": 20})

	Settle(ledger, acc, "winner", "loser")

	if got := acc["big"]; got != 10+23 {
		t.Fatalf("big bettor balance %d, want 33", got)
	}
	if got := acc["small"]; got != 15+11 {
		t.Fatalf("small bettor balance %d, want 26", got)
	}
	if got := acc["loser"]; got != 0 {
		t.Fatalf("losing bettor balance %d, want 0", got)
	}
	if len(ledger.WagersOn("winner")) != 0 || len(ledger.WagersOn("loser")) != 0 {
		t.Fatal("settlement must close both sides of the betting window")
	}
}

func TestSettleConservesPoolMinusRounding(t *testing.T) {
	acc := fakeAccounts{"w1": 10, "w2": 10, "w3": 10, "l1": 10, "l2": 10}
	ledger := NewLedger(10)
	winnerBets := map[string]int{"w1": 7, "w2": 3, "w3": 1}
	loserBets := map[string]int{"l1": 9, "l2": 4}
	placeAll(t, ledger, acc, "winner", winnerBets)
	placeAll(t, ledger, acc, "loser", loserBets)

	totalBefore := 0
	for _, balance := range acc {
		totalBefore += balance
	}

	Settle(ledger, acc, "winner", "loser")

	w, l := 11, 13
	paidOut := 0
	for _, balance := range acc {
		paidOut += balance
	}
	paidOut -= totalBefore

	// sum(payouts) ≤ W + L, и потеря от округления не больше числа
	// выигравших бетторов.
	if paidOut > w+l {
		t.Fatalf("settlement created value: paid %d from pool %d", paidOut, w+l)
	}
	if paidOut < w+l-len(winnerBets) {
		t.Fatalf("rounding loss too large: paid %d, pool %d, winners %d", paidOut, w+l, len(winnerBets))
	}
}

func TestSettleNobodyBackedWinner(t *testing.T) {
	acc := fakeAccounts{"l1": 10, "l2": 10}
	ledger := NewLedger(10)
	placeAll(t, ledger, acc, "loser", map[string]int{"l1": 5, "l2": 2})

	Settle(ledger, acc, "winner", "loser")

	// Пул проигравших конфискуется, балансы не меняются.
	if acc["l1"] != 5 || acc["l2"] != 8 {
		t.Fatalf("balances changed in a W==0 settlement: %v", acc)
	}
	if len(ledger.WagersOn("loser")) != 0 {
		t.Fatal("loser-side wagers must still be removed")
	}
}

func TestSettleEmptyPoolIsNoop(t *testing.T) {
	acc := fakeAccounts{"idle": 20}
	ledger := NewLedger(10)

	Settle(ledger, acc, "winner", "loser")

	if acc["idle"] != 20 {
		t.Fatal("no-op settlement changed a balance")
	}
}

func TestSettleIgnoresUnregisteredBettors(t *testing.T) {
	// Беттор, исчезнувший между размещением и расчётом, просто не получает
	// выплату: Deposit на неизвестное имя — no-op.
	acc := fakeAccounts{"alive": 20, "gone": 20}
	ledger := NewLedger(10)
	placeAll(t, ledger, acc, "winner", map[string]int{"alive": 5, "gone": 5})
	placeAll(t, ledger, acc, "loser", map[string]int{"alive": 2})
	delete(acc, "gone")

	Settle(ledger, acc, "winner", "loser")

	if got := acc["alive"]; got != 13+5+1 {
		t.Fatalf("alive bettor balance %d, want 19", got)
	}
	if _, ok := acc["gone"]; ok {
		t.Fatal("settlement resurrected a deleted account")
	}
}
