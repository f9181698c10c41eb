package models

// Stage представляет текущую фазу турнира. Порядок фиксирован,
// назад стадия никогда не двигается.
type Stage string

const (
	StageGroups        Stage = "groups"
	StageQuarterFinals Stage = "quarterFinals"
	StageSemiFinals    Stage = "semiFinals"
	StageFinal         Stage = "final"
	StageFinished      Stage = "finished"
)

var stageOrder = []Stage{
	StageGroups,
	StageQuarterFinals,
	StageSemiFinals,
	StageFinal,
	StageFinished,
}

func (s Stage) Valid() bool {
	for _, known := range stageOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Next возвращает следующую стадию и false, если текущая — последняя.
func (s Stage) Next() (Stage, bool) {
	for i, known := range stageOrder {
		if s == known && i+1 < len(stageOrder) {
			return stageOrder[i+1], true
		}
	}
	return s, false
}

// Knockout сообщает, разыгрываются ли на стадии матчи один на один.
func (s Stage) Knockout() bool {
	switch s {
	case StageQuarterFinals, StageSemiFinals, StageFinal:
		return true
	default:
		return false
	}
}
