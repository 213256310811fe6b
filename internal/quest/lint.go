package quest

import "fmt"

// LintIssue describes a content problem in a quest definition.
// Objective is -1 when the issue concerns the quest as a whole.
type LintIssue struct {
	QuestID   string
	Objective int
	Message   string
}

func (i LintIssue) String() string {
	if i.Objective < 0 {
		return fmt.Sprintf("%s: %s", i.QuestID, i.Message)
	}
	return fmt.Sprintf("%s[%d]: %s", i.QuestID, i.Objective, i.Message)
}

// LintQuest reports authoring mistakes that the manager would otherwise
// only surface at runtime. It never modifies the quest.
func LintQuest(q *Quest) []LintIssue {
	if q == nil {
		return nil
	}

	var issues []LintIssue
	if len(q.Objectives) == 0 {
		issues = append(issues, LintIssue{QuestID: q.ID, Objective: -1, Message: "quest has no objectives"})
	}

	findTargets := make(map[string]int)
	for i, obj := range q.Objectives {
		if !obj.Type.IsValid() {
			issues = append(issues, LintIssue{QuestID: q.ID, Objective: i,
				Message: fmt.Sprintf("unknown objective type %q", obj.Type)})
		}
		if obj.Required < 1 {
			issues = append(issues, LintIssue{QuestID: q.ID, Objective: i,
				Message: fmt.Sprintf("required amount %d must be at least 1", obj.Required)})
		}
		if obj.Target == "" && obj.Type != ObjectiveTalk {
			issues = append(issues, LintIssue{QuestID: q.ID, Objective: i, Message: "objective has no target"})
		}
		if obj.Type == ObjectiveFind {
			if first, dup := findTargets[obj.Target]; dup {
				issues = append(issues, LintIssue{QuestID: q.ID, Objective: i,
					Message: fmt.Sprintf("find target %q already used by objective %d", obj.Target, first)})
			} else {
				findTargets[obj.Target] = i
			}
		}
	}
	return issues
}
