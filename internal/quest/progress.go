package quest

// questInstance is the runtime record of an active quest: a shared
// definition plus one counter per objective, index-aligned.
// Only the Manager touches it, always under the manager lock.
type questInstance struct {
	quest    *Quest
	progress []int
}

func newQuestInstance(q *Quest) *questInstance {
	return &questInstance{
		quest:    q,
		progress: make([]int, len(q.Objectives)),
	}
}

// add advances slot idx by amount, saturating at the objective's requirement.
// Written to avoid overflow when amount is huge.
func (qi *questInstance) add(idx, amount int) int {
	limit := max(qi.quest.Objectives[idx].Required, 0)
	current := qi.progress[idx]
	if amount >= limit-current {
		current = limit
	} else {
		current += amount
	}
	qi.progress[idx] = current
	return current
}

// satisfied reports whether every objective has reached its requirement
func (qi *questInstance) satisfied() bool {
	for i, obj := range qi.quest.Objectives {
		if qi.progress[i] < obj.Required {
			return false
		}
	}
	return true
}

func (qi *questInstance) snapshot() []int {
	out := make([]int, len(qi.progress))
	copy(out, qi.progress)
	return out
}
