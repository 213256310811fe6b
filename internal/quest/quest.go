package quest

// ObjectiveType defines what kind of world event advances an objective
type ObjectiveType string

const (
	ObjectiveTalk    ObjectiveType = "talk"    // Speak to an NPC (usually the hand-in)
	ObjectiveCollect ObjectiveType = "collect" // Pick up items
	ObjectiveKill    ObjectiveType = "kill"    // Defeat creatures
	ObjectiveFind    ObjectiveType = "find"    // Reach a person or place
)

// IsValid reports whether t is one of the known objective types
func (t ObjectiveType) IsValid() bool {
	switch t {
	case ObjectiveTalk, ObjectiveCollect, ObjectiveKill, ObjectiveFind:
		return true
	}
	return false
}

// QuestObjective is one measurable sub-goal of a quest
type QuestObjective struct {
	Description string        // Shown in the quest journal
	Type        ObjectiveType // Which reporter advances it
	Target      string        // NPC name, item ID, mob ID or place, matched verbatim
	Required    int           // Threshold at which the objective is satisfied
}

// Quest is an immutable quest definition.
// Quests are shared by pointer between the registry, the manager and
// observers; nothing may modify a Quest once it has been loaded.
type Quest struct {
	ID          string           // Unique identifier (e.g., "find_hermit")
	Title       string           // Display name
	Description string           // Full description
	GiverNPC    string           // NPC who offers and accepts the quest (empty = none)
	Objectives  []QuestObjective // Ordered; progress slots are index-aligned

	// Repeatable quests may be reset after completion by their giver
	Repeatable bool
}

// ObjectiveIndex returns the index of the first objective of the given type,
// or -1 when the quest has none
func (q *Quest) ObjectiveIndex(t ObjectiveType) int {
	for i, obj := range q.Objectives {
		if obj.Type == t {
			return i
		}
	}
	return -1
}

// FindObjectiveIndex returns the index of the first Find objective for target, or -1
func (q *Quest) FindObjectiveIndex(target string) int {
	for i, obj := range q.Objectives {
		if obj.Type == ObjectiveFind && obj.Target == target {
			return i
		}
	}
	return -1
}

// HasObjective checks whether idx addresses one of the quest's objectives
func (q *Quest) HasObjective(idx int) bool {
	return idx >= 0 && idx < len(q.Objectives)
}
