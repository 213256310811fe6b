package interaction

import (
	"sync/atomic"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

// Outcome is the result of interacting with a quest giver
type Outcome string

const (
	OutcomeOutOfRange       Outcome = "out_of_range"      // Player is not near the giver
	OutcomeAlreadyCompleted Outcome = "already_completed" // One-shot quest already done
	OutcomeStarted          Outcome = "started"           // Quest picked up
	OutcomeRestarted        Outcome = "restarted"         // Repeatable quest reset and picked up again
	OutcomeNotFoundYet      Outcome = "not_found_yet"     // Find step still open
	OutcomeHandedIn         Outcome = "handed_in"         // Talk step reported
	OutcomeInProgress       Outcome = "in_progress"       // Nothing left for the giver to do
	OutcomeRejected         Outcome = "rejected"          // Quest definition could not be started
)

// Message returns the player-facing line for an outcome
func (o Outcome) Message() string {
	switch o {
	case OutcomeAlreadyCompleted:
		return "You have already completed this quest."
	case OutcomeStarted, OutcomeRestarted:
		return "Quest started."
	case OutcomeNotFoundYet:
		return "You haven't found them yet!"
	case OutcomeHandedIn:
		return "You talked to the quest giver to complete the quest."
	case OutcomeInProgress:
		return "Quest is already in progress."
	case OutcomeRejected:
		return "This quest cannot be started."
	default:
		return ""
	}
}

// QuestGiver is an NPC that hands out one quest and accepts the hand-in.
// Talking to the giver starts the quest; once the quest's find step is done,
// talking again reports its talk objective.
type QuestGiver struct {
	npc     string
	quest   *quest.Quest
	tracker Tracker
	inRange atomic.Bool
}

// NewQuestGiver binds q to the NPC named npc
func NewQuestGiver(tracker Tracker, npc string, q *quest.Quest) *QuestGiver {
	return &QuestGiver{npc: npc, quest: q, tracker: tracker}
}

// NPC returns the giver's name
func (g *QuestGiver) NPC() string { return g.npc }

// Quest returns the quest this giver offers
func (g *QuestGiver) Quest() *quest.Quest { return g.quest }

// Enter marks the player as in range
func (g *QuestGiver) Enter(tag string) {
	if tag == PlayerTag {
		g.inRange.Store(true)
	}
}

// Exit marks the player as out of range
func (g *QuestGiver) Exit(tag string) {
	if tag == PlayerTag {
		g.inRange.Store(false)
	}
}

// InRange reports whether the player can interact
func (g *QuestGiver) InRange() bool { return g.inRange.Load() }

// Interact handles the player pressing the interact key near the giver
func (g *QuestGiver) Interact() Outcome {
	if !g.InRange() {
		return OutcomeOutOfRange
	}
	return g.Talk()
}

// Talk runs the giver's dialogue regardless of range
func (g *QuestGiver) Talk() Outcome {
	q := g.quest

	if g.tracker.IsCompleted(q.ID) {
		if !q.Repeatable {
			return OutcomeAlreadyCompleted
		}
		g.tracker.Reset(q.ID)
		if outcome := g.start(); outcome != OutcomeStarted {
			return outcome
		}
		return OutcomeRestarted
	}

	if !g.tracker.IsActive(q.ID) {
		return g.start()
	}

	if findIdx := q.ObjectiveIndex(quest.ObjectiveFind); findIdx >= 0 {
		if g.tracker.GetProgress(q.ID, findIdx) < q.Objectives[findIdx].Required {
			return OutcomeNotFoundYet
		}
	}

	talkIdx := g.talkObjective()
	if talkIdx < 0 {
		return OutcomeInProgress
	}
	if g.tracker.GetProgress(q.ID, talkIdx) >= q.Objectives[talkIdx].Required {
		return OutcomeInProgress
	}
	if err := g.tracker.ReportProgress(q.ID, talkIdx, 1); err != nil {
		logger.Warning("Quest hand-in failed", "npc", g.npc, "quest_id", q.ID, "error", err)
		return OutcomeRejected
	}
	logger.Info("Quest handed in", "npc", g.npc, "quest_id", q.ID)
	return OutcomeHandedIn
}

func (g *QuestGiver) start() Outcome {
	if err := g.tracker.StartQuest(g.quest); err != nil {
		logger.Warning("Quest giver could not start quest", "npc", g.npc, "quest_id", g.quest.ID, "error", err)
		return OutcomeRejected
	}
	logger.Info("Started quest", "npc", g.npc, "quest_id", g.quest.ID, "title", g.quest.Title)
	return OutcomeStarted
}

// talkObjective prefers a talk objective aimed at this NPC and falls back to
// the quest's first talk objective
func (g *QuestGiver) talkObjective() int {
	for i, obj := range g.quest.Objectives {
		if obj.Type == quest.ObjectiveTalk && obj.Target == g.npc {
			return i
		}
	}
	return g.quest.ObjectiveIndex(quest.ObjectiveTalk)
}
