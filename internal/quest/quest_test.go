package quest

import "testing"

func TestObjectiveTypeIsValid(t *testing.T) {
	tests := []struct {
		input ObjectiveType
		valid bool
	}{
		{ObjectiveTalk, true},
		{ObjectiveCollect, true},
		{ObjectiveKill, true},
		{ObjectiveFind, true},
		{ObjectiveType("deliver"), false},
		{ObjectiveType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := tt.input.IsValid(); got != tt.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestQuestObjectiveLookups(t *testing.T) {
	q := &Quest{
		ID: "find_hermit",
		Objectives: []QuestObjective{
			{Type: ObjectiveFind, Target: "Hermit", Required: 1},
			{Type: ObjectiveFind, Target: "Well", Required: 1},
			{Type: ObjectiveTalk, Target: "Grandpa", Required: 1},
		},
	}

	if idx := q.ObjectiveIndex(ObjectiveTalk); idx != 2 {
		t.Errorf("ObjectiveIndex(talk) = %d, want 2", idx)
	}
	if idx := q.ObjectiveIndex(ObjectiveKill); idx != -1 {
		t.Errorf("ObjectiveIndex(kill) = %d, want -1", idx)
	}
	if idx := q.FindObjectiveIndex("Well"); idx != 1 {
		t.Errorf("FindObjectiveIndex(Well) = %d, want 1", idx)
	}
	if idx := q.FindObjectiveIndex("Grandpa"); idx != -1 {
		t.Errorf("FindObjectiveIndex(Grandpa) = %d, want -1 (talk objective)", idx)
	}
}

func TestQuestHasObjective(t *testing.T) {
	q := &Quest{ID: "one", Objectives: []QuestObjective{{Type: ObjectiveKill, Target: "rat", Required: 1}}}

	for _, idx := range []int{-1, 1, 100} {
		if q.HasObjective(idx) {
			t.Errorf("HasObjective(%d) = true, want false", idx)
		}
	}
	if !q.HasObjective(0) {
		t.Error("HasObjective(0) = false, want true")
	}
}
