// Package tracker holds the read-only observers of a quest.Manager: the
// quest journal, world markers and reward popups. None of them mutate quest
// state; they subscribe to notifications and re-read the manager.
package tracker

import "github.com/lawnchairsociety/questkeeper/internal/quest"

// QuestState is the read side of the quest manager that observers use
type QuestState interface {
	ActiveQuests() []*quest.Quest
	GetProgress(questID string, objectiveIndex int) int
	IsActive(questID string) bool
	IsCompleted(questID string) bool
}

// Notifier is the subscription side of the quest manager
type Notifier interface {
	OnQuestsUpdated(fn func()) *quest.Subscription
	OnQuestCompleted(fn func(*quest.Quest)) *quest.Subscription
}

// Source is everything an observer needs from the manager
type Source interface {
	QuestState
	Notifier
}
