package tracker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

// Journal keeps a rendered quest log of every active quest, refreshed on
// each quest update
type Journal struct {
	source Source
	sub    *quest.Subscription

	mu   sync.RWMutex
	text string
}

// NewJournal renders the current state and subscribes to updates
func NewJournal(source Source) *Journal {
	j := &Journal{source: source}
	j.Refresh()
	j.sub = source.OnQuestsUpdated(j.Refresh)
	return j
}

// Refresh re-renders the journal from the manager
func (j *Journal) Refresh() {
	text := RenderJournal(j.source)

	j.mu.Lock()
	j.text = text
	j.mu.Unlock()
}

// Text returns the most recently rendered journal
func (j *Journal) Text() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.text
}

// Close stops listening for updates
func (j *Journal) Close() {
	j.sub.Unsubscribe()
}

// RenderJournal formats all active quests with per-objective progress:
//
//	Find the Hermit
//	  • Find the hermit: 0/1
func RenderJournal(state QuestState) string {
	var sb strings.Builder
	for _, q := range state.ActiveQuests() {
		sb.WriteString(q.Title)
		sb.WriteString("\n")
		for i, obj := range q.Objectives {
			sb.WriteString(fmt.Sprintf("  • %s: %d/%d\n",
				objectiveLabel(obj), state.GetProgress(q.ID, i), obj.Required))
		}
	}
	return sb.String()
}

// RenderQuestDetails formats one quest with status tag and checkboxes
func RenderQuestDetails(state QuestState, q *quest.Quest) string {
	var sb strings.Builder

	statusTag := "[AVAILABLE]"
	switch {
	case state.IsCompleted(q.ID):
		statusTag = "[COMPLETE]"
	case state.IsActive(q.ID):
		statusTag = "[IN PROGRESS]"
	}

	sb.WriteString(fmt.Sprintf("=== %s %s ===\n", statusTag, q.Title))
	if q.Description != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", q.Description))
	}

	sb.WriteString("\nObjectives:\n")
	for i, obj := range q.Objectives {
		current := state.GetProgress(q.ID, i)
		checkmark := " "
		if current >= obj.Required || state.IsCompleted(q.ID) {
			checkmark = "x"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s: %d/%d\n", checkmark, objectiveLabel(obj), current, obj.Required))
	}

	if q.GiverNPC != "" {
		sb.WriteString(fmt.Sprintf("\nTurn in to: %s\n", q.GiverNPC))
	}
	return sb.String()
}

func objectiveLabel(obj quest.QuestObjective) string {
	if obj.Description != "" {
		return obj.Description
	}
	return fmt.Sprintf("%s %s", objectiveVerb(obj.Type), obj.Target)
}

func objectiveVerb(t quest.ObjectiveType) string {
	switch t {
	case quest.ObjectiveTalk:
		return "Talk to"
	case quest.ObjectiveCollect:
		return "Collect"
	case quest.ObjectiveKill:
		return "Defeat"
	case quest.ObjectiveFind:
		return "Find"
	default:
		return "Complete"
	}
}
