package models

// Group — группа из трёх участников. Оба места заполняются одной командой
// администратора, после чего группа считается закрытой.
type Group struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
	First   *string  `json:"first,omitempty"`
	Second  *string  `json:"second,omitempty"`
}

// Locked reports whether both places are set and the group can no longer change.
func (g *Group) Locked() bool {
	return g.First != nil && g.Second != nil
}

func (g *Group) Has(player string) bool {
	for _, p := range g.Players {
		if p == player {
			return true
		}
	}
	return false
}

// Match — матч плей-офф. Слоты заполняются только после того, как решён
// питающий их группа или матч.
type Match struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Slot1  *string `json:"slot1"`
	Slot2  *string `json:"slot2"`
	Winner *string `json:"winner,omitempty"`
}

// Ready reports whether both slots are populated.
func (m *Match) Ready() bool {
	return m.Slot1 != nil && m.Slot2 != nil
}

// Decided reports whether the winner has been set.
func (m *Match) Decided() bool {
	return m.Winner != nil
}

func (m *Match) HasSlot(player string) bool {
	return (m.Slot1 != nil && *m.Slot1 == player) || (m.Slot2 != nil && *m.Slot2 == player)
}

// Opponent returns the slot value opposite to the given player.
func (m *Match) Opponent(player string) *string {
	if m.Slot1 != nil && *m.Slot1 == player {
		return m.Slot2
	}
	if m.Slot2 != nil && *m.Slot2 == player {
		return m.Slot1
	}
	return nil
}

// Bracket — полное состояние турнирной сетки. GroupOrder хранит порядок групп,
// потому что от него зависит кросс-посев четвертьфиналов.
type Bracket struct {
	GroupOrder    []string          `json:"group_order"`
	Groups        map[string]*Group `json:"groups"`
	QuarterFinals []*Match          `json:"quarter_finals"`
	SemiFinals    []*Match          `json:"semi_finals"`
	Final         *Match            `json:"final"`
	Stage         Stage             `json:"stage"`
	Champion      *string           `json:"champion,omitempty"`
}

// MatchesOf returns the matches belonging to a knockout stage, or nil.
func (b *Bracket) MatchesOf(stage Stage) []*Match {
	switch stage {
	case StageQuarterFinals:
		return b.QuarterFinals
	case StageSemiFinals:
		return b.SemiFinals
	case StageFinal:
		return []*Match{b.Final}
	default:
		return nil
	}
}

// Clone делает глубокую копию сетки для снапшотов и рассылок.
func (b *Bracket) Clone() *Bracket {
	if b == nil {
		return nil
	}
	out := &Bracket{
		GroupOrder: append([]string(nil), b.GroupOrder...),
		Groups:     make(map[string]*Group, len(b.Groups)),
		Stage:      b.Stage,
		Champion:   cloneStr(b.Champion),
	}
	for name, g := range b.Groups {
		out.Groups[name] = &Group{
			Name:    g.Name,
			Players: append([]string(nil), g.Players...),
			First:   cloneStr(g.First),
			Second:  cloneStr(g.Second),
		}
	}
	out.QuarterFinals = cloneMatches(b.QuarterFinals)
	out.SemiFinals = cloneMatches(b.SemiFinals)
	if b.Final != nil {
		out.Final = cloneMatch(b.Final)
	}
	return out
}

func cloneMatches(in []*Match) []*Match {
	if in == nil {
		return nil
	}
	out := make([]*Match, len(in))
	for i, m := range in {
		out[i] = cloneMatch(m)
	}
	return out
}

func cloneMatch(m *Match) *Match {
	return &Match{
		ID:     m.ID,
		Name:   m.Name,
		Slot1:  cloneStr(m.Slot1),
		Slot2:  cloneStr(m.Slot2),
		Winner: cloneStr(m.Winner),
	}
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
