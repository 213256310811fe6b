package server

import (
	"slices"

	"github.com/lawnchairsociety/questkeeper/internal/quest"
	"github.com/lawnchairsociety/questkeeper/internal/tracker"
)

// Inbound actions
const (
	ActionStart    = "start"
	ActionProgress = "progress"
	ActionFind     = "find"
	ActionEnter    = "enter"
	ActionEvent    = "event"
	ActionPickUp   = "pickup"
	ActionDefeat   = "defeat"
	ActionTalk     = "talk"
	ActionReset    = "reset"
	ActionAbandon  = "abandon"
)

// Outbound message types
const (
	TypeQuestsUpdated  = "quests_updated"
	TypeQuestCompleted = "quest_completed"
	TypeDialogue       = "dialogue"
	TypeError          = "error"
)

// Command is a report sent by a HUD or game client.
type Command struct {
	Action    string `json:"action"`
	QuestID   string `json:"quest_id,omitempty"`
	Objective int    `json:"objective,omitempty"`
	Amount    int    `json:"amount,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Target    string `json:"target,omitempty"`
	NPC       string `json:"npc,omitempty"`
}

// amount treats an omitted amount as one; explicit negatives pass through
// so the manager can reject them.
func (c Command) amount() int {
	if c.Amount == 0 {
		return 1
	}
	return c.Amount
}

// ObjectiveView is one objective row of the HUD
type ObjectiveView struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Target      string `json:"target"`
	Progress    int    `json:"progress"`
	Required    int    `json:"required"`
	Done        bool   `json:"done"`
}

// QuestView is an active quest as the HUD shows it
type QuestView struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	GiverNPC      string          `json:"giver_npc,omitempty"`
	GiverMarker   bool            `json:"giver_marker"`
	Objectives    []ObjectiveView `json:"objectives"`
}

// UpdateMessage is broadcast after every quest state change
type UpdateMessage struct {
	Type      string      `json:"type"`
	Active    []QuestView `json:"active"`
	Completed []string    `json:"completed"`
	Journal   string      `json:"journal"`

	// FindTargets lists targets whose world marker should be shown
	FindTargets []string `json:"find_targets"`
}

// CompletedMessage is broadcast once per completed quest
type CompletedMessage struct {
	Type    string `json:"type"`
	QuestID string `json:"quest_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// DialogueLine is one quest giver's answer
type DialogueLine struct {
	QuestID string `json:"quest_id"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

// DialogueMessage answers a talk action
type DialogueMessage struct {
	Type  string         `json:"type"`
	NPC   string         `json:"npc"`
	Lines []DialogueLine `json:"lines"`
}

// ErrorMessage reports a rejected command to the sender only
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newErrorMessage(err error) ErrorMessage {
	return ErrorMessage{Type: TypeError, Error: err.Error()}
}

// buildUpdate renders the manager's current state
func buildUpdate(m *quest.Manager) UpdateMessage {
	msg := UpdateMessage{
		Type:        TypeQuestsUpdated,
		Active:      []QuestView{},
		Completed:   m.CompletedQuests(),
		Journal:     tracker.RenderJournal(m),
		FindTargets: []string{},
	}
	if msg.Completed == nil {
		msg.Completed = []string{}
	}

	for _, q := range m.ActiveQuests() {
		view := QuestView{
			ID:            q.ID,
			Title:         q.Title,
			GiverNPC:      q.GiverNPC,
			GiverMarker:   tracker.GiverMarkerVisible(m, q),
			Objectives:    make([]ObjectiveView, 0, len(q.Objectives)),
		}
		for i, obj := range q.Objectives {
			if obj.Type == quest.ObjectiveFind && tracker.FindPending(m, obj.Target) &&
				!slices.Contains(msg.FindTargets, obj.Target) {
				msg.FindTargets = append(msg.FindTargets, obj.Target)
			}
			progress := m.GetProgress(q.ID, i)
			view.Objectives = append(view.Objectives, ObjectiveView{
				Description: obj.Description,
				Type:        string(obj.Type),
				Target:      obj.Target,
				Progress:    progress,
				Required:    obj.Required,
				Done:        progress >= obj.Required,
			})
		}
		msg.Active = append(msg.Active, view)
	}
	return msg
}
