package brackets

import (
	"errors"
	"testing"

	"github.com/Dosada05/knockout-arena/models"
)

func testSeed() []GroupSeed {
	return []GroupSeed{
		{Name: "A", Players: [3]string{"a1", "a2", "a3"}},
		{Name: "B", Players: [3]string{"b1", "b2", "b3"}},
		{Name: "C", Players: [3]string{"c1", "c2", "c3"}},
		{Name: "D", Players: [3]string{"d1", "d2", "d3"}},
	}
}

func newTestMachine(t *testing.T) *StateMachine {
	t.Helper()
	sm, err := NewStateMachine(testSeed())
	if err != nil {
		t.Fatalf("new state machine: %v", err)
	}
	return sm
}

func mustDeclareGroup(t *testing.T, sm *StateMachine, group, first, second string) {
	t.Helper()
	if _, err := sm.DeclareGroupResult(group, first, second); err != nil {
		t.Fatalf("declare group %s: %v", group, err)
	}
}

func mustDeclareWinner(t *testing.T, sm *StateMachine, stage models.Stage, matchID int, winner string) *Outcome {
	t.Helper()
	outcome, err := sm.DeclareMatchWinner(stage, matchID, winner)
	if err != nil {
		t.Fatalf("declare winner %s for %s #%d: %v", winner, stage, matchID, err)
	}
	return outcome
}

func lockAllGroups(t *testing.T, sm *StateMachine) {
	t.Helper()
	mustDeclareGroup(t, sm, "A", "a1", "a2")
	mustDeclareGroup(t, sm, "B", "b1", "b2")
	mustDeclareGroup(t, sm, "C", "c1", "c2")
	mustDeclareGroup(t, sm, "D", "d1", "d2")
}

func TestNewStateMachineRejectsBadSeeds(t *testing.T) {
	if _, err := NewStateMachine(testSeed()[:3]); err == nil {
		t.Fatal("expected error for 3 groups")
	}
	seed := testSeed()
	seed[1].Players[0] = "a1" // duplicate slot
	if _, err := NewStateMachine(seed); err == nil {
		t.Fatal("expected error for duplicated participant")
	}
}

func TestDeclareGroupResultIsIdempotentRejecting(t *testing.T) {
	sm := newTestMachine(t)
	mustDeclareGroup(t, sm, "A", "a1", "a2")

	_, err := sm.DeclareGroupResult("A", "a2", "a3")
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}

	group := sm.Bracket().Groups["A"]
	if *group.First != "a1" || *group.Second != "a2" {
		t.Fatalf("rejected call mutated state: %v / %v", *group.First, *group.Second)
	}
}

func TestDeclareGroupResultValidation(t *testing.T) {
	sm := newTestMachine(t)

	if _, err := sm.DeclareGroupResult("X", "a1", "a2"); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
	if _, err := sm.DeclareGroupResult("A", "a1", "a1"); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant for first==second, got %v", err)
	}
	if _, err := sm.DeclareGroupResult("A", "b1", "a2"); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant for outsider, got %v", err)
	}
	if sm.Bracket().Groups["A"].Locked() {
		t.Fatal("failed declarations must not lock the group")
	}
}

func TestStageAdvancesOnlyWhenAllGroupsLocked(t *testing.T) {
	sm := newTestMachine(t)
	mustDeclareGroup(t, sm, "A", "a1", "a2")
	mustDeclareGroup(t, sm, "B", "b1", "b2")
	mustDeclareGroup(t, sm, "C", "c1", "c2")

	if got := sm.Bracket().Stage; got != models.StageGroups {
		t.Fatalf("stage advanced with 3 of 4 groups locked: %s", got)
	}
	for _, qf := range sm.Bracket().QuarterFinals {
		if qf.Ready() {
			t.Fatalf("%s populated before all groups locked", qf.Name)
		}
	}

	advanced, err := sm.DeclareGroupResult("D", "d1", "d2")
	if err != nil {
		t.Fatalf("declare group D: %v", err)
	}
	if !advanced {
		t.Fatal("expected stage advance on the last group")
	}
	if got := sm.Bracket().Stage; got != models.StageQuarterFinals {
		t.Fatalf("expected quarterFinals, got %s", got)
	}
}

func TestCrossBracketQuarterfinalPairing(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)

	want := [][2]string{
		{"a1", "b2"}, // A1 vs B2
		{"b1", "a2"}, // B1 vs A2
		{"c1", "d2"}, // C1 vs D2
		{"d1", "c2"}, // D1 vs C2
	}
	for i, qf := range sm.Bracket().QuarterFinals {
		if !qf.Ready() {
			t.Fatalf("%s not ready", qf.Name)
		}
		if *qf.Slot1 != want[i][0] || *qf.Slot2 != want[i][1] {
			t.Fatalf("%s pairing %s vs %s, want %s vs %s",
				qf.Name, *qf.Slot1, *qf.Slot2, want[i][0], want[i][1])
		}
	}
}

func TestFullProgressionToChampion(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)

	// Quarterfinals: group winners advance.
	for id, winner := range map[int]string{1: "a1", 2: "b1", 3: "c1"} {
		outcome := mustDeclareWinner(t, sm, models.StageQuarterFinals, id, winner)
		if outcome.StageAdvanced {
			t.Fatalf("stage advanced before all quarterfinals decided (match %d)", id)
		}
	}
	outcome := mustDeclareWinner(t, sm, models.StageQuarterFinals, 4, "d1")
	if !outcome.StageAdvanced {
		t.Fatal("expected stage advance after the last quarterfinal")
	}

	b := sm.Bracket()
	if b.Stage != models.StageSemiFinals {
		t.Fatalf("expected semiFinals, got %s", b.Stage)
	}
	if *b.SemiFinals[0].Slot1 != "a1" || *b.SemiFinals[0].Slot2 != "b1" {
		t.Fatalf("SF1 seeding wrong: %v vs %v", *b.SemiFinals[0].Slot1, *b.SemiFinals[0].Slot2)
	}
	if *b.SemiFinals[1].Slot1 != "c1" || *b.SemiFinals[1].Slot2 != "d1" {
		t.Fatalf("SF2 seeding wrong: %v vs %v", *b.SemiFinals[1].Slot1, *b.SemiFinals[1].Slot2)
	}

	mustDeclareWinner(t, sm, models.StageSemiFinals, 1, "a1")
	mustDeclareWinner(t, sm, models.StageSemiFinals, 2, "d1")
	if b.Stage != models.StageFinal {
		t.Fatalf("expected final, got %s", b.Stage)
	}
	if *b.Final.Slot1 != "a1" || *b.Final.Slot2 != "d1" {
		t.Fatalf("final seeding wrong: %v vs %v", *b.Final.Slot1, *b.Final.Slot2)
	}

	outcome = mustDeclareWinner(t, sm, models.StageFinal, 1, "d1")
	if outcome.Loser != "a1" {
		t.Fatalf("expected loser a1, got %s", outcome.Loser)
	}
	if b.Stage != models.StageFinished {
		t.Fatalf("expected finished, got %s", b.Stage)
	}
	if b.Champion == nil || *b.Champion != "d1" {
		t.Fatalf("expected champion d1, got %v", b.Champion)
	}
}

func TestDeclareMatchWinnerPreconditions(t *testing.T) {
	sm := newTestMachine(t)

	if _, err := sm.DeclareMatchWinner(models.StageGroups, 1, "a1"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("expected ErrWrongStage for groups, got %v", err)
	}
	if _, err := sm.DeclareMatchWinner(models.StageQuarterFinals, 1, "a1"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("expected ErrWrongStage while in groups, got %v", err)
	}

	// Force the stage forward without seeding slots to hit the readiness check.
	sm.bracket.Stage = models.StageQuarterFinals
	if _, err := sm.DeclareMatchWinner(models.StageQuarterFinals, 1, "a1"); !errors.Is(err, ErrMatchNotReady) {
		t.Fatalf("expected ErrMatchNotReady, got %v", err)
	}
	if _, err := sm.DeclareMatchWinner(models.StageQuarterFinals, 9, "a1"); !errors.Is(err, ErrUnknownMatch) {
		t.Fatalf("expected ErrUnknownMatch, got %v", err)
	}

	sm = newTestMachine(t)
	lockAllGroups(t, sm)
	if _, err := sm.DeclareMatchWinner(models.StageQuarterFinals, 1, "c1"); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant, got %v", err)
	}

	mustDeclareWinner(t, sm, models.StageQuarterFinals, 1, "a1")
	if _, err := sm.DeclareMatchWinner(models.StageQuarterFinals, 1, "b2"); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if got := *sm.Bracket().QuarterFinals[0].Winner; got != "a1" {
		t.Fatalf("rejected call changed the winner to %s", got)
	}
}

func TestResetDecisionIsShallow(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)
	for id, winner := range map[int]string{1: "a1", 2: "b1", 3: "c1", 4: "d1"} {
		mustDeclareWinner(t, sm, models.StageQuarterFinals, id, winner)
	}

	// Semifinals are already populated from QF1. Resetting QF1 clears only
	// its own decision: the stage and the derived semifinal slot stay put.
	if err := sm.ResetMatch(models.StageQuarterFinals, 1); err != nil {
		t.Fatalf("reset match: %v", err)
	}

	b := sm.Bracket()
	if b.QuarterFinals[0].Winner != nil {
		t.Fatal("reset did not clear the winner")
	}
	if b.Stage != models.StageSemiFinals {
		t.Fatalf("reset moved the stage to %s", b.Stage)
	}
	if b.SemiFinals[0].Slot1 == nil || *b.SemiFinals[0].Slot1 != "a1" {
		t.Fatal("reset must not retract downstream slots")
	}
}

func TestResetGroupUnlocks(t *testing.T) {
	sm := newTestMachine(t)
	mustDeclareGroup(t, sm, "A", "a1", "a2")

	if err := sm.ResetGroup("A"); err != nil {
		t.Fatalf("reset group: %v", err)
	}
	if sm.Bracket().Groups["A"].Locked() {
		t.Fatal("group still locked after reset")
	}
	if err := sm.ResetGroup("X"); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}

	// The decision can be retaken after the reset.
	mustDeclareGroup(t, sm, "A", "a3", "a1")
}

func TestResetFinalClearsChampion(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)
	for id, winner := range map[int]string{1: "a1", 2: "b1", 3: "c1", 4: "d1"} {
		mustDeclareWinner(t, sm, models.StageQuarterFinals, id, winner)
	}
	mustDeclareWinner(t, sm, models.StageSemiFinals, 1, "a1")
	mustDeclareWinner(t, sm, models.StageSemiFinals, 2, "c1")
	mustDeclareWinner(t, sm, models.StageFinal, 1, "a1")

	if err := sm.ResetMatch(models.StageFinal, 1); err != nil {
		t.Fatalf("reset final: %v", err)
	}
	if sm.Bracket().Champion != nil {
		t.Fatal("champion must be cleared with the final decision")
	}
}

func TestFullResetRestoresStartingConfiguration(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)
	mustDeclareWinner(t, sm, models.StageQuarterFinals, 1, "a1")

	sm.FullReset()

	b := sm.Bracket()
	if b.Stage != models.StageGroups {
		t.Fatalf("expected groups after full reset, got %s", b.Stage)
	}
	for _, g := range b.Groups {
		if g.Locked() {
			t.Fatalf("group %s still locked after full reset", g.Name)
		}
	}
	for _, qf := range b.QuarterFinals {
		if qf.Ready() || qf.Decided() {
			t.Fatalf("%s not cleared by full reset", qf.Name)
		}
	}
	if !b.Groups["A"].Has("a1") {
		t.Fatal("full reset must keep the same participant assignments")
	}
}

func TestRenameReplacesEverywhere(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)
	mustDeclareWinner(t, sm, models.StageQuarterFinals, 1, "a1")

	if !sm.Rename("a1", "z9") {
		t.Fatal("expected rename to report a replacement")
	}

	b := sm.Bracket()
	if !b.Groups["A"].Has("z9") || b.Groups["A"].Has("a1") {
		t.Fatal("group roster not renamed")
	}
	if *b.Groups["A"].First != "z9" {
		t.Fatal("group first place not renamed")
	}
	if *b.QuarterFinals[0].Slot1 != "z9" || *b.QuarterFinals[0].Winner != "z9" {
		t.Fatal("match slot or winner not renamed")
	}

	if sm.Rename("ghost", "anything") {
		t.Fatal("rename of an unknown participant must report false")
	}
	if sm.Rename("z9", "z9") {
		t.Fatal("rename to the same name must be a no-op")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	sm := newTestMachine(t)
	lockAllGroups(t, sm)
	mustDeclareWinner(t, sm, models.StageQuarterFinals, 1, "a1")

	snap := sm.Snapshot()

	other := newTestMachine(t)
	if err := other.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if other.Bracket().Stage != models.StageQuarterFinals {
		t.Fatalf("restored stage %s", other.Bracket().Stage)
	}
	if *other.Bracket().QuarterFinals[0].Winner != "a1" {
		t.Fatal("restored bracket lost the decided winner")
	}

	// The snapshot handed out must be a copy, not the live bracket.
	snap.Stage = models.StageFinished
	if sm.Bracket().Stage == models.StageFinished {
		t.Fatal("Snapshot returned the live bracket")
	}
}
