// knockout-arena/brackets/progression.go
package brackets

import (
	"fmt"

	"github.com/Dosada05/knockout-arena/models"
)

// buildBracket собирает стартовую сетку: группы в заданном порядке, пустые
// четвертьфиналы, полуфиналы и финал.
func buildBracket(seed []GroupSeed) *models.Bracket {
	b := &models.Bracket{
		Groups: make(map[string]*models.Group, len(seed)),
		Stage:  models.StageGroups,
	}
	for _, gs := range seed {
		b.GroupOrder = append(b.GroupOrder, gs.Name)
		b.Groups[gs.Name] = &models.Group{
			Name:    gs.Name,
			Players: append([]string(nil), gs.Players[:]...),
		}
	}
	for i := 0; i < 4; i++ {
		b.QuarterFinals = append(b.QuarterFinals, &models.Match{
			ID:   i + 1,
			Name: fmt.Sprintf("Quarterfinal %d", i+1),
		})
	}
	for i := 0; i < 2; i++ {
		b.SemiFinals = append(b.SemiFinals, &models.Match{
			ID:   i + 1,
			Name: fmt.Sprintf("Semifinal %d", i+1),
		})
	}
	b.Final = &models.Match{ID: 1, Name: "Final"}
	return b
}

// seedQuarterFinals заполняет четвертьфиналы по фиксированному кросс-посеву:
// первая пара групп даёт A1–B2 и B1–A2, вторая — C1–D2 и D1–C2.
func (sm *StateMachine) seedQuarterFinals() {
	b := sm.bracket
	for pair := 0; pair < 2; pair++ {
		left := b.Groups[b.GroupOrder[pair*2]]
		right := b.Groups[b.GroupOrder[pair*2+1]]

		qf1 := b.QuarterFinals[pair*2]
		qf2 := b.QuarterFinals[pair*2+1]
		qf1.Slot1 = cloneOf(left.First)
		qf1.Slot2 = cloneOf(right.Second)
		qf2.Slot1 = cloneOf(right.First)
		qf2.Slot2 = cloneOf(left.Second)
	}
}

// advanceFrom двигает стадию вперёд, когда все решения текущей приняты.
// Посев фиксирован: победители QF1+QF2 образуют SF1, QF3+QF4 — SF2,
// победители полуфиналов встречаются в финале.
func (sm *StateMachine) advanceFrom(stage models.Stage) {
	b := sm.bracket
	switch stage {
	case models.StageQuarterFinals:
		b.SemiFinals[0].Slot1 = cloneOf(b.QuarterFinals[0].Winner)
		b.SemiFinals[0].Slot2 = cloneOf(b.QuarterFinals[1].Winner)
		b.SemiFinals[1].Slot1 = cloneOf(b.QuarterFinals[2].Winner)
		b.SemiFinals[1].Slot2 = cloneOf(b.QuarterFinals[3].Winner)
		b.Stage = models.StageSemiFinals
	case models.StageSemiFinals:
		b.Final.Slot1 = cloneOf(b.SemiFinals[0].Winner)
		b.Final.Slot2 = cloneOf(b.SemiFinals[1].Winner)
		b.Stage = models.StageFinal
	case models.StageFinal:
		b.Champion = cloneOf(b.Final.Winner)
		b.Stage = models.StageFinished
	}
}

func cloneOf(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
