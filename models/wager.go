package models

// WagerBook — открытые ставки текущего окна: участник → (беттор → сумма).
// На пару (беттор, участник) всегда не больше одной ставки.
type WagerBook map[string]map[string]int

// Clone returns a deep copy of the book.
func (b WagerBook) Clone() WagerBook {
	out := make(WagerBook, len(b))
	for target, bettors := range b {
		entry := make(map[string]int, len(bettors))
		for bettor, amount := range bettors {
			entry[bettor] = amount
		}
		out[target] = entry
	}
	return out
}
