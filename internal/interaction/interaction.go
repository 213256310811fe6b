// Package interaction contains the world-side reporters that push progress
// into a quest.Manager: find triggers, quest givers, item pickups and kills.
package interaction

import "github.com/lawnchairsociety/questkeeper/internal/quest"

// PlayerTag identifies the player when something enters a trigger volume
const PlayerTag = "Player"

// Reporter is the write side of the quest manager
type Reporter interface {
	StartQuest(q *quest.Quest) error
	ReportProgress(questID string, objectiveIndex, amount int) error
	ReportFind(targetID string) int
	ReportEvent(objType quest.ObjectiveType, targetID string, amount int) (int, error)
	Reset(questID string) bool
}

// Tracker is the combined read/write view a quest giver needs
type Tracker interface {
	Reporter
	GetProgress(questID string, objectiveIndex int) int
	IsActive(questID string) bool
	IsCompleted(questID string) bool
}
