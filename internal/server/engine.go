package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/lawnchairsociety/questkeeper/internal/interaction"
	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownQuest  = errors.New("unknown quest")
	ErrMissingTarget = errors.New("target is required")
	ErrUnknownKind   = errors.New("unknown objective type")
	ErrEngineStopped = errors.New("quest engine stopped")
)

// Engine serializes every interaction with one player's quest manager onto
// a single goroutine. Observers subscribed to the manager therefore run on
// that goroutine too, in the order the commands arrived.
type Engine struct {
	registry  *quest.QuestRegistry
	manager   *quest.Manager
	harvester *interaction.Harvester
	hunter    *interaction.Hunter
	givers    map[string]*interaction.QuestGiver // by NPC + quest ID
	triggers  map[string]*interaction.FindTrigger // by find target

	jobs chan func()
	done chan struct{}
}

// NewEngine creates an engine for manager that resolves quest IDs against
// registry. Call Run to start processing.
func NewEngine(registry *quest.QuestRegistry, manager *quest.Manager) *Engine {
	return &Engine{
		registry:  registry,
		manager:   manager,
		harvester: interaction.NewHarvester(manager),
		hunter:    interaction.NewHunter(manager),
		givers:    make(map[string]*interaction.QuestGiver),
		triggers:  make(map[string]*interaction.FindTrigger),
		jobs:      make(chan func()),
		done:      make(chan struct{}),
	}
}

// Manager returns the quest manager the engine drives
func (e *Engine) Manager() *quest.Manager { return e.manager }

// Run processes jobs until ctx is cancelled
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-e.jobs:
			job()
		}
	}
}

// Do runs fn on the engine goroutine and waits for it to finish
func (e *Engine) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}

	select {
	case e.jobs <- job:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

// Snapshot returns the current HUD state
func (e *Engine) Snapshot(ctx context.Context) (UpdateMessage, error) {
	var msg UpdateMessage
	err := e.Do(ctx, func() { msg = buildUpdate(e.manager) })
	return msg, err
}

// Execute applies cmd on the engine goroutine. The reply, if any, is meant
// for the sender only; state changes reach everyone through the manager's
// observers.
func (e *Engine) Execute(ctx context.Context, cmd Command) (any, error) {
	var (
		reply any
		err   error
	)
	if doErr := e.Do(ctx, func() { reply, err = e.apply(cmd) }); doErr != nil {
		return nil, doErr
	}
	return reply, err
}

func (e *Engine) apply(cmd Command) (any, error) {
	switch cmd.Action {
	case ActionStart:
		q, ok := e.registry.GetQuest(cmd.QuestID)
		if !ok {
			return nil, fmt.Errorf("start %q: %w", cmd.QuestID, ErrUnknownQuest)
		}
		return nil, e.manager.StartQuest(q)

	case ActionProgress:
		return nil, e.manager.ReportProgress(cmd.QuestID, cmd.Objective, cmd.amount())

	case ActionFind:
		if cmd.Target == "" {
			return nil, fmt.Errorf("find: %w", ErrMissingTarget)
		}
		e.manager.ReportFind(cmd.Target)
		return nil, nil

	case ActionEnter:
		if cmd.Target == "" {
			return nil, fmt.Errorf("enter: %w", ErrMissingTarget)
		}
		if len(e.registry.QuestsTargeting(quest.ObjectiveFind, cmd.Target)) == 0 {
			logger.Debug("Entered area no quest looks for", "target", cmd.Target)
			return nil, nil
		}
		e.trigger(cmd.Target).Enter(interaction.PlayerTag)
		return nil, nil

	case ActionEvent:
		kind := quest.ParseObjectiveType(cmd.Kind)
		if !kind.IsValid() {
			return nil, fmt.Errorf("event %q: %w", cmd.Kind, ErrUnknownKind)
		}
		if cmd.Target == "" {
			return nil, fmt.Errorf("%s event: %w", kind, ErrMissingTarget)
		}
		_, err := e.manager.ReportEvent(kind, cmd.Target, cmd.amount())
		return nil, err

	case ActionPickUp:
		if cmd.Target == "" {
			return nil, fmt.Errorf("pickup: %w", ErrMissingTarget)
		}
		_, err := e.harvester.PickUp(cmd.Target, cmd.amount())
		return nil, err

	case ActionDefeat:
		if cmd.Target == "" {
			return nil, fmt.Errorf("defeat: %w", ErrMissingTarget)
		}
		e.hunter.Defeated(cmd.Target)
		return nil, nil

	case ActionTalk:
		if cmd.NPC == "" {
			return nil, fmt.Errorf("talk: %w", ErrMissingTarget)
		}
		return e.talk(cmd.NPC), nil

	case ActionReset:
		if e.manager.Reset(cmd.QuestID) {
			e.rearmTriggers(cmd.QuestID)
		}
		return nil, nil

	case ActionAbandon:
		e.manager.Abandon(cmd.QuestID)
		return nil, nil

	default:
		return nil, fmt.Errorf("%q: %w", cmd.Action, ErrUnknownAction)
	}
}

// talk runs the dialogue of every quest the NPC gives out
func (e *Engine) talk(npc string) DialogueMessage {
	msg := DialogueMessage{Type: TypeDialogue, NPC: npc, Lines: []DialogueLine{}}
	for _, q := range e.registry.GetQuestsForNPC(npc) {
		outcome := e.giver(npc, q).Talk()
		msg.Lines = append(msg.Lines, DialogueLine{
			QuestID: q.ID,
			Outcome: string(outcome),
			Message: outcome.Message(),
		})
	}
	return msg
}

// trigger returns the one-shot find trigger for target, creating it on
// first use
func (e *Engine) trigger(target string) *interaction.FindTrigger {
	t, ok := e.triggers[target]
	if !ok {
		t = interaction.NewFindTrigger(e.manager, target)
		e.triggers[target] = t
	}
	return t
}

// rearmTriggers re-enables the find triggers a reset quest depends on
func (e *Engine) rearmTriggers(questID string) {
	q, ok := e.registry.GetQuest(questID)
	if !ok {
		return
	}
	for _, obj := range q.Objectives {
		if obj.Type != quest.ObjectiveFind {
			continue
		}
		if t, ok := e.triggers[obj.Target]; ok {
			t.Rearm()
		}
	}
}

func (e *Engine) giver(npc string, q *quest.Quest) *interaction.QuestGiver {
	key := npc + "/" + q.ID
	g, ok := e.givers[key]
	if !ok {
		g = interaction.NewQuestGiver(e.manager, npc, q)
		e.givers[key] = g
	}
	return g
}
