package quest

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
)

// Manager owns one player's quest state: the active quests with their
// progress counters and the set of quests completed this session. It is the
// only writer of that state. Reporters push progress in through
// StartQuest/ReportProgress/ReportFind/ReportEvent, observers subscribe with
// OnQuestsUpdated and OnQuestCompleted and read back through the query methods.
//
// Notifications are delivered synchronously, in subscription order, before
// the mutating call returns. The lock is never held while observers run, so
// an observer may query or even mutate the manager from its callback.
type Manager struct {
	mu             sync.RWMutex
	active         map[string]*questInstance
	activeOrder    []string // active quest IDs in start order
	completed      map[string]bool
	completedOrder []string

	updated      observerList[struct{}]
	completedObs observerList[*Quest]
}

// NewManager creates a manager with no active or completed quests
func NewManager() *Manager {
	return &Manager{
		active:    make(map[string]*questInstance),
		completed: make(map[string]bool),
	}
}

// OnQuestsUpdated registers fn to run after every state change
// (start, progress, completion, reset, abandon)
func (m *Manager) OnQuestsUpdated(fn func()) *Subscription {
	return m.updated.subscribe(func(struct{}) { fn() })
}

// OnQuestCompleted registers fn to run once per completed quest, after the
// matching quests-updated notification
func (m *Manager) OnQuestCompleted(fn func(*Quest)) *Subscription {
	return m.completedObs.subscribe(fn)
}

// ObserverCount returns the number of registered observers of each kind
func (m *Manager) ObserverCount() (updated, completed int) {
	return m.updated.count(), m.completedObs.count()
}

// StartQuest begins tracking a quest. Starting a quest that is already
// active or already completed is a silent no-op.
func (m *Manager) StartQuest(q *Quest) error {
	if q == nil {
		logger.Warning("StartQuest called with nil quest")
		return ErrNilQuest
	}
	if len(q.Objectives) == 0 {
		logger.Warning("Refusing to start quest without objectives", "quest_id", q.ID)
		return fmt.Errorf("start %s: %w", q.ID, ErrNoObjectives)
	}

	m.mu.Lock()
	if m.completed[q.ID] {
		m.mu.Unlock()
		logger.Debug("Quest already completed, not restarting", "quest_id", q.ID)
		return nil
	}
	if _, exists := m.active[q.ID]; exists {
		m.mu.Unlock()
		return nil
	}
	m.active[q.ID] = newQuestInstance(q)
	m.activeOrder = append(m.activeOrder, q.ID)
	m.mu.Unlock()

	logger.Info("Quest started", "quest_id", q.ID, "title", q.Title)
	m.notifyUpdated()
	return nil
}

// ReportProgress advances one objective of an active quest by amount,
// clamped to the objective's requirement. Reports for quests that are not
// active are ignored. When every objective is satisfied the quest completes.
//
// An out-of-range objective index or a non-positive amount is a reporter
// bug: nothing changes and a wrapped sentinel error is returned.
func (m *Manager) ReportProgress(questID string, objectiveIndex, amount int) error {
	if amount < 1 {
		logger.Warning("Rejected non-positive quest progress",
			"quest_id", questID, "objective", objectiveIndex, "amount", amount)
		return fmt.Errorf("report %s[%d] amount %d: %w", questID, objectiveIndex, amount, ErrInvalidAmount)
	}

	m.mu.Lock()
	inst, ok := m.active[questID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if !inst.quest.HasObjective(objectiveIndex) {
		count := len(inst.quest.Objectives)
		m.mu.Unlock()
		logger.Warning("Quest progress reported for unknown objective",
			"quest_id", questID, "objective", objectiveIndex, "objectives", count)
		return fmt.Errorf("report %s[%d] of %d: %w", questID, objectiveIndex, count, ErrObjectiveIndex)
	}
	current := inst.add(objectiveIndex, amount)
	done := inst.satisfied()
	m.mu.Unlock()

	logger.Debug("Quest progress",
		"quest_id", questID, "objective", objectiveIndex, "current", current,
		"required", inst.quest.Objectives[objectiveIndex].Required)
	m.notifyUpdated()

	if done {
		m.completeQuest(inst)
	}
	return nil
}

// ReportFind advances every Find objective targeting targetID across all
// active quests by one. It returns how many objectives matched.
func (m *Manager) ReportFind(targetID string) int {
	n, _ := m.ReportEvent(ObjectiveFind, targetID, 1)
	return n
}

// ReportEvent fans a world event out to every active quest objective of the
// given type whose target matches. The active set is snapshotted first
// because a report may complete, and so remove, a quest mid-scan.
func (m *Manager) ReportEvent(objType ObjectiveType, targetID string, amount int) (int, error) {
	if amount < 1 {
		return 0, fmt.Errorf("%s event for %s amount %d: %w", objType, targetID, amount, ErrInvalidAmount)
	}

	matched := 0
	for _, inst := range m.activeSnapshot() {
		for i, obj := range inst.quest.Objectives {
			if obj.Type != objType || obj.Target != targetID {
				continue
			}
			matched++
			if err := m.ReportProgress(inst.quest.ID, i, amount); err != nil {
				return matched, err
			}
		}
	}

	if matched == 0 {
		logger.Debug("Quest event matched no objectives", "type", string(objType), "target", targetID)
	}
	return matched, nil
}

// completeQuest moves a satisfied quest from active to completed. It
// re-checks under the lock so a quest completes exactly once even when an
// observer finished it from inside the preceding notification.
func (m *Manager) completeQuest(inst *questInstance) {
	id := inst.quest.ID

	m.mu.Lock()
	if current, ok := m.active[id]; !ok || current != inst || !inst.satisfied() {
		m.mu.Unlock()
		return
	}
	delete(m.active, id)
	m.activeOrder = slices.DeleteFunc(m.activeOrder, func(s string) bool { return s == id })
	m.completed[id] = true
	m.completedOrder = append(m.completedOrder, id)
	m.mu.Unlock()

	logger.Info("Quest complete", "quest_id", id, "title", inst.quest.Title)
	m.notifyUpdated()
	m.completedObs.dispatch(inst.quest)
}

// Reset forgets that a quest was completed so it can be started again.
// It returns false when the quest was not completed.
func (m *Manager) Reset(questID string) bool {
	m.mu.Lock()
	if !m.completed[questID] {
		m.mu.Unlock()
		return false
	}
	delete(m.completed, questID)
	m.completedOrder = slices.DeleteFunc(m.completedOrder, func(s string) bool { return s == questID })
	m.mu.Unlock()

	logger.Info("Quest reset", "quest_id", questID)
	m.notifyUpdated()
	return true
}

// Abandon drops an active quest and its progress without completing it.
// It returns false when the quest was not active.
func (m *Manager) Abandon(questID string) bool {
	m.mu.Lock()
	if _, ok := m.active[questID]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.active, questID)
	m.activeOrder = slices.DeleteFunc(m.activeOrder, func(s string) bool { return s == questID })
	m.mu.Unlock()

	logger.Info("Quest abandoned", "quest_id", questID)
	m.notifyUpdated()
	return true
}

// GetProgress returns the counter for one objective of an active quest.
// Inactive quests and unknown objectives read as 0.
func (m *Manager) GetProgress(questID string, objectiveIndex int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.active[questID]
	if !ok || !inst.quest.HasObjective(objectiveIndex) {
		return 0
	}
	return inst.progress[objectiveIndex]
}

// Progress returns a copy of all counters for an active quest, or nil
func (m *Manager) Progress(questID string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.active[questID]
	if !ok {
		return nil
	}
	return inst.snapshot()
}

// IsActive checks if a quest is currently active
func (m *Manager) IsActive(questID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.active[questID]
	return ok
}

// IsCompleted checks if a quest was completed this session
func (m *Manager) IsCompleted(questID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.completed[questID]
}

// ActiveQuests returns the active quest definitions in start order
func (m *Manager) ActiveQuests() []*Quest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quests := make([]*Quest, 0, len(m.activeOrder))
	for _, id := range m.activeOrder {
		quests = append(quests, m.active[id].quest)
	}
	return quests
}

// CompletedQuests returns completed quest IDs in completion order
func (m *Manager) CompletedQuests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.completedOrder)
}

func (m *Manager) activeSnapshot() []*questInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*questInstance, 0, len(m.activeOrder))
	for _, id := range m.activeOrder {
		out = append(out, m.active[id])
	}
	return out
}

func (m *Manager) notifyUpdated() {
	m.updated.dispatch(struct{}{})
}
