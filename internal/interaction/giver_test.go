package interaction

import (
	"testing"

	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

func hermitQuest() *quest.Quest {
	return &quest.Quest{
		ID:       "find_hermit",
		Title:    "Find the Hermit",
		GiverNPC: "Grandpa",
		Objectives: []quest.QuestObjective{
			{Type: quest.ObjectiveFind, Target: "Hermit", Required: 1},
			{Type: quest.ObjectiveTalk, Target: "Grandpa", Required: 1},
		},
	}
}

func TestQuestGiverHandInFlow(t *testing.T) {
	m := quest.NewManager()
	q := hermitQuest()
	giver := NewQuestGiver(m, "Grandpa", q)

	if got := giver.Interact(); got != OutcomeOutOfRange {
		t.Errorf("Interact out of range = %s, want %s", got, OutcomeOutOfRange)
	}

	giver.Enter(PlayerTag)
	steps := []struct {
		before func()
		want   Outcome
	}{
		{nil, OutcomeStarted},
		{nil, OutcomeNotFoundYet},
		{func() { m.ReportFind("Hermit") }, OutcomeHandedIn},
		{nil, OutcomeAlreadyCompleted},
	}

	for i, step := range steps {
		if step.before != nil {
			step.before()
		}
		if got := giver.Interact(); got != step.want {
			t.Fatalf("step %d: Interact = %s, want %s", i, got, step.want)
		}
	}

	if !m.IsCompleted(q.ID) {
		t.Error("Quest should be completed after hand-in")
	}

	giver.Exit(PlayerTag)
	if giver.InRange() {
		t.Error("Giver should be out of range after Exit")
	}
}

func TestQuestGiverIgnoresNonPlayers(t *testing.T) {
	giver := NewQuestGiver(quest.NewManager(), "Grandpa", hermitQuest())
	giver.Enter("Deer")
	if giver.InRange() {
		t.Error("Non-player entering should not put giver in range")
	}
}

func TestQuestGiverInProgressWhenTalkDoneButOtherObjectivesOpen(t *testing.T) {
	m := quest.NewManager()
	q := &quest.Quest{
		ID: "rats_and_talk",
		Objectives: []quest.QuestObjective{
			{Type: quest.ObjectiveTalk, Target: "Guard", Required: 1},
			{Type: quest.ObjectiveKill, Target: "rat", Required: 3},
		},
	}
	giver := NewQuestGiver(m, "Guard", q)

	if got := giver.Talk(); got != OutcomeStarted {
		t.Fatalf("Talk = %s, want started", got)
	}
	if got := giver.Talk(); got != OutcomeHandedIn {
		t.Fatalf("Talk = %s, want handed_in (no find step)", got)
	}
	if got := giver.Talk(); got != OutcomeInProgress {
		t.Errorf("Talk = %s, want in_progress", got)
	}
	if !m.IsActive(q.ID) {
		t.Error("Quest should remain active while kill objective is open")
	}
}

func TestQuestGiverWithoutTalkObjective(t *testing.T) {
	m := quest.NewManager()
	q := &quest.Quest{
		ID:         "collect_only",
		Objectives: []quest.QuestObjective{{Type: quest.ObjectiveCollect, Target: "flower", Required: 2}},
	}
	giver := NewQuestGiver(m, "Gardener", q)

	giver.Talk()
	if got := giver.Talk(); got != OutcomeInProgress {
		t.Errorf("Talk = %s, want in_progress", got)
	}
}

func TestQuestGiverRepeatableRestart(t *testing.T) {
	m := quest.NewManager()
	q := &quest.Quest{
		ID:         "flower_run",
		Repeatable: true,
		Objectives: []quest.QuestObjective{
			{Type: quest.ObjectiveCollect, Target: "flower", Required: 2},
			{Type: quest.ObjectiveTalk, Target: "Gardener", Required: 1},
		},
	}
	giver := NewQuestGiver(m, "Gardener", q)
	harvester := NewHarvester(m)

	giver.Talk()
	harvester.PickUp("flower", 2)
	if got := giver.Talk(); got != OutcomeHandedIn {
		t.Fatalf("Talk = %s, want handed_in", got)
	}
	if !m.IsCompleted(q.ID) {
		t.Fatal("Quest should be completed")
	}

	if got := giver.Talk(); got != OutcomeRestarted {
		t.Errorf("Talk after completion = %s, want restarted", got)
	}
	if !m.IsActive(q.ID) || m.IsCompleted(q.ID) {
		t.Error("Repeatable quest should be active again and not completed")
	}
	if got := m.GetProgress(q.ID, 0); got != 0 {
		t.Errorf("Restarted progress = %d, want 0", got)
	}
}

func TestQuestGiverRejectsEmptyQuest(t *testing.T) {
	giver := NewQuestGiver(quest.NewManager(), "Nobody", &quest.Quest{ID: "empty"})
	if got := giver.Talk(); got != OutcomeRejected {
		t.Errorf("Talk = %s, want rejected", got)
	}
}

func TestOutcomeMessage(t *testing.T) {
	if OutcomeNotFoundYet.Message() == "" {
		t.Error("NotFoundYet should have a message")
	}
	if OutcomeOutOfRange.Message() != "" {
		t.Error("OutOfRange should have no message")
	}
}
