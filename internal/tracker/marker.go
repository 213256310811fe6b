package tracker

import (
	"sync/atomic"

	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

// FindMarker tracks whether the world marker over a find target should be
// shown: only while some active quest still needs that target found.
type FindMarker struct {
	target  string
	state   QuestState
	visible atomic.Bool
	sub     *quest.Subscription
}

// NewFindMarker evaluates visibility immediately and on every update
func NewFindMarker(source Source, target string) *FindMarker {
	m := &FindMarker{target: target, state: source}
	m.Refresh()
	m.sub = source.OnQuestsUpdated(m.Refresh)
	return m
}

// Refresh recomputes visibility
func (m *FindMarker) Refresh() {
	m.visible.Store(FindPending(m.state, m.target))
}

// Visible reports whether the marker should be drawn
func (m *FindMarker) Visible() bool { return m.visible.Load() }

// Target returns the find target the marker hangs over
func (m *FindMarker) Target() string { return m.target }

// Close stops listening for updates
func (m *FindMarker) Close() { m.sub.Unsubscribe() }

// FindPending reports whether any active quest has an unsatisfied Find
// objective for target
func FindPending(state QuestState, target string) bool {
	for _, q := range state.ActiveQuests() {
		idx := q.FindObjectiveIndex(target)
		if idx < 0 {
			continue
		}
		if state.GetProgress(q.ID, idx) < q.Objectives[idx].Required {
			return true
		}
	}
	return false
}

// GiverMarker tracks the marker over a quest giver: shown while the quest
// can be picked up, hidden while the player is out searching, shown again
// once the find step is done and the quest can be handed in, and hidden for
// good after completion.
type GiverMarker struct {
	quest   *quest.Quest
	state   QuestState
	visible atomic.Bool
	sub     *quest.Subscription
}

// NewGiverMarker evaluates visibility immediately and on every update
func NewGiverMarker(source Source, q *quest.Quest) *GiverMarker {
	m := &GiverMarker{quest: q, state: source}
	m.Refresh()
	m.sub = source.OnQuestsUpdated(m.Refresh)
	return m
}

// Refresh recomputes visibility
func (m *GiverMarker) Refresh() {
	m.visible.Store(GiverMarkerVisible(m.state, m.quest))
}

// Visible reports whether the marker should be drawn
func (m *GiverMarker) Visible() bool { return m.visible.Load() }

// Close stops listening for updates
func (m *GiverMarker) Close() { m.sub.Unsubscribe() }

// GiverMarkerVisible decides giver marker visibility for q
func GiverMarkerVisible(state QuestState, q *quest.Quest) bool {
	switch {
	case state.IsCompleted(q.ID):
		return false
	case !state.IsActive(q.ID):
		return true
	}

	findIdx := q.ObjectiveIndex(quest.ObjectiveFind)
	if findIdx < 0 {
		return true
	}
	return state.GetProgress(q.ID, findIdx) >= q.Objectives[findIdx].Required
}
