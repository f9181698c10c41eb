// knockout-arena/betting/settlement.go
package betting

// Settle перераспределяет пул решённого матча по паримутуэльной схеме:
// каждый поставивший на победителя получает назад свою ставку плюс долю
// проигравшего пула, пропорциональную своей ставке и округлённую вниз.
// Остаток от округления никому не возвращается — это зафиксированная
// политика выплат, а не баг. Если на победителя не ставил никто, пул
// проигравших конфискуется: их ставки списаны ещё при размещении.
//
// Вызывается ровно один раз на решённый матч, синхронно после перехода
// в машине состояний. Обе стороны окна после расчёта закрываются.
func Settle(ledger *Ledger, acc Accounts, winner, loser string) {
	winnerBets := ledger.WagersOn(winner)
	loserBets := ledger.WagersOn(loser)

	totalOnWinner := 0
	for _, amount := range winnerBets {
		totalOnWinner += amount
	}
	totalOnLoser := 0
	for _, amount := range loserBets {
		totalOnLoser += amount
	}

	if totalOnWinner+totalOnLoser == 0 {
		return
	}

	if totalOnWinner > 0 {
		for bettor, amount := range winnerBets {
			share := totalOnLoser * amount / totalOnWinner // floor по целочисленному делению
			acc.Deposit(bettor, amount+share)
		}
	}

	ledger.close(winner)
	ledger.close(loser)
}
