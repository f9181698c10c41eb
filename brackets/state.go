// knockout-arena/brackets/state.go
package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/knockout-arena/models"
)

var (
	ErrUnknownGroup       = errors.New("unknown group")
	ErrUnknownMatch       = errors.New("unknown match")
	ErrAlreadyDecided     = errors.New("result already decided")
	ErrInvalidParticipant = errors.New("participant does not belong to this entity")
	ErrMatchNotReady      = errors.New("match slots are not populated yet")
	ErrWrongStage         = errors.New("operation is not valid for the current stage")
)

// GroupSeed описывает одну группу стартовой конфигурации.
type GroupSeed struct {
	Name    string
	Players [3]string
}

// DefaultSeed — состав арены по умолчанию: четыре группы по три участника.
func DefaultSeed() []GroupSeed {
	return []GroupSeed{
		{Name: "A", Players: [3]string{"Yurii", "Artem", "Oleksandr"}},
		{Name: "B", Players: [3]string{"Ivan", "Vika", "Dima"}},
		{Name: "C", Players: [3]string{"Bohdan", "Vitia", "Taras"}},
		{Name: "D", Players: [3]string{"Drakon", "Mykola", "Lina"}},
	}
}

// Outcome — результат решённого матча, который потребляет расчёт ставок.
type Outcome struct {
	Stage         models.Stage
	MatchID       int
	Winner        string
	Loser         string
	StageAdvanced bool
	Champion      *string
}

// StateMachine владеет сеткой и применяет переходы между стадиями.
// Внутри никакой синхронизации нет: все операции — чистые мутации,
// сериализацию обеспечивает вызывающая сторона.
type StateMachine struct {
	seed    []GroupSeed
	bracket *models.Bracket
}

func NewStateMachine(seed []GroupSeed) (*StateMachine, error) {
	if len(seed) != 4 {
		return nil, fmt.Errorf("bracket requires exactly 4 groups, got %d", len(seed))
	}
	seen := make(map[string]bool, 12)
	for _, gs := range seed {
		if gs.Name == "" {
			return nil, errors.New("group name must not be empty")
		}
		for _, p := range gs.Players {
			if p == "" {
				return nil, fmt.Errorf("group %s has an empty participant name", gs.Name)
			}
			if seen[p] {
				return nil, fmt.Errorf("participant %q appears in more than one group slot", p)
			}
			seen[p] = true
		}
	}
	sm := &StateMachine{seed: append([]GroupSeed(nil), seed...)}
	sm.bracket = buildBracket(sm.seed)
	return sm, nil
}

// Bracket возвращает живую сетку. Вызывающий обязан держать блокировку стора.
func (sm *StateMachine) Bracket() *models.Bracket {
	return sm.bracket
}

// Snapshot returns a deep copy safe to hand to observers.
func (sm *StateMachine) Snapshot() *models.Bracket {
	return sm.bracket.Clone()
}

// Restore replaces the live bracket with one loaded from a persisted snapshot.
func (sm *StateMachine) Restore(b *models.Bracket) error {
	if b == nil {
		return errors.New("nil bracket")
	}
	if !b.Stage.Valid() {
		return fmt.Errorf("snapshot carries unknown stage %q", b.Stage)
	}
	if len(b.GroupOrder) != 4 || b.Final == nil {
		return errors.New("snapshot bracket has unexpected shape")
	}
	sm.bracket = b.Clone()
	return nil
}

// DeclareGroupResult фиксирует первое и второе места группы. Когда закрыты
// все группы, заполняет четвертьфиналы и двигает стадию вперёд.
func (sm *StateMachine) DeclareGroupResult(groupName, first, second string) (stageAdvanced bool, err error) {
	group, ok := sm.bracket.Groups[groupName]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownGroup, groupName)
	}
	if group.Locked() {
		return false, fmt.Errorf("%w: group %s", ErrAlreadyDecided, groupName)
	}
	if first == second {
		return false, fmt.Errorf("%w: first and second place must differ", ErrInvalidParticipant)
	}
	if !group.Has(first) {
		return false, fmt.Errorf("%w: %s is not in group %s", ErrInvalidParticipant, first, groupName)
	}
	if !group.Has(second) {
		return false, fmt.Errorf("%w: %s is not in group %s", ErrInvalidParticipant, second, groupName)
	}

	group.First = &first
	group.Second = &second

	if sm.allGroupsLocked() {
		sm.seedQuarterFinals()
		sm.bracket.Stage = models.StageQuarterFinals
		return true, nil
	}
	return false, nil
}

// DeclareMatchWinner фиксирует победителя матча текущей стадии и возвращает
// исход (победитель и проигравший) для расчёта ставок. Когда решены все матчи
// стадии, заполняет следующую и двигает стадию; финал определяет чемпиона.
func (sm *StateMachine) DeclareMatchWinner(stage models.Stage, matchID int, winner string) (*Outcome, error) {
	if !stage.Knockout() {
		return nil, fmt.Errorf("%w: %s has no matches", ErrWrongStage, stage)
	}
	if stage != sm.bracket.Stage {
		return nil, fmt.Errorf("%w: tournament is at %s, not %s", ErrWrongStage, sm.bracket.Stage, stage)
	}
	match := sm.findMatch(stage, matchID)
	if match == nil {
		return nil, fmt.Errorf("%w: %s #%d", ErrUnknownMatch, stage, matchID)
	}
	if match.Decided() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDecided, match.Name)
	}
	if !match.Ready() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, match.Name)
	}
	if !match.HasSlot(winner) {
		return nil, fmt.Errorf("%w: %s is not playing in %s", ErrInvalidParticipant, winner, match.Name)
	}

	loser := *match.Opponent(winner)
	match.Winner = &winner

	outcome := &Outcome{
		Stage:   stage,
		MatchID: match.ID,
		Winner:  winner,
		Loser:   loser,
	}
	if sm.stageDecided(stage) {
		outcome.StageAdvanced = true
		sm.advanceFrom(stage)
		outcome.Champion = sm.bracket.Champion
	}
	return outcome, nil
}

// ResetGroup снимает решение одной группы. Стадия и уже заполненные из неё
// слоты не трогаются: это инструмент ручного ремонта для администратора.
func (sm *StateMachine) ResetGroup(groupName string) error {
	group, ok := sm.bracket.Groups[groupName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, groupName)
	}
	group.First = nil
	group.Second = nil
	return nil
}

// ResetMatch снимает решение одного матча, не двигая стадию назад.
func (sm *StateMachine) ResetMatch(stage models.Stage, matchID int) error {
	if !stage.Knockout() {
		return fmt.Errorf("%w: %s has no matches", ErrWrongStage, stage)
	}
	match := sm.findMatch(stage, matchID)
	if match == nil {
		return fmt.Errorf("%w: %s #%d", ErrUnknownMatch, stage, matchID)
	}
	match.Winner = nil
	if stage == models.StageFinal {
		sm.bracket.Champion = nil
	}
	return nil
}

// FullReset возвращает сетку к стартовой конфигурации с тем же составом.
func (sm *StateMachine) FullReset() {
	sm.bracket = buildBracket(sm.seed)
}

// Rename заменяет участника во всех местах, где он встречается: составы
// групп, занятые места, слоты и победители матчей, чемпион. Уже принятые
// решения остаются действительными. Возвращает true, если замена нашлась.
func (sm *StateMachine) Rename(oldName, newName string) bool {
	if oldName == newName || newName == "" {
		return false
	}
	replaced := false
	for _, group := range sm.bracket.Groups {
		for i, p := range group.Players {
			if p == oldName {
				group.Players[i] = newName
				replaced = true
			}
		}
		if renameRef(&group.First, oldName, newName) {
			replaced = true
		}
		if renameRef(&group.Second, oldName, newName) {
			replaced = true
		}
	}
	for _, stage := range []models.Stage{models.StageQuarterFinals, models.StageSemiFinals, models.StageFinal} {
		for _, match := range sm.bracket.MatchesOf(stage) {
			if renameRef(&match.Slot1, oldName, newName) {
				replaced = true
			}
			if renameRef(&match.Slot2, oldName, newName) {
				replaced = true
			}
			if renameRef(&match.Winner, oldName, newName) {
				replaced = true
			}
		}
	}
	if renameRef(&sm.bracket.Champion, oldName, newName) {
		replaced = true
	}
	return replaced
}

func renameRef(ref **string, oldName, newName string) bool {
	if *ref != nil && **ref == oldName {
		v := newName
		*ref = &v
		return true
	}
	return false
}

func (sm *StateMachine) findMatch(stage models.Stage, matchID int) *models.Match {
	for _, m := range sm.bracket.MatchesOf(stage) {
		if m.ID == matchID {
			return m
		}
	}
	return nil
}

func (sm *StateMachine) allGroupsLocked() bool {
	for _, g := range sm.bracket.Groups {
		if !g.Locked() {
			return false
		}
	}
	return true
}

func (sm *StateMachine) stageDecided(stage models.Stage) bool {
	for _, m := range sm.bracket.MatchesOf(stage) {
		if !m.Decided() {
			return false
		}
	}
	return true
}
