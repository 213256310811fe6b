package quest

import (
	"sync/atomic"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
)

// QuestRegistry is the quest catalog. Each load builds a fresh, immutable
// index and swaps it in whole, so readers never see half a catalog and never
// take a lock.
type QuestRegistry struct {
	index atomic.Pointer[catalogIndex]
}

// objectiveKey addresses the objectives a world event can advance
type objectiveKey struct {
	kind   ObjectiveType
	target string
}

type catalogIndex struct {
	ordered  []*Quest // by ID
	byID     map[string]*Quest
	byGiver  map[string][]*Quest
	byTarget map[objectiveKey][]*Quest
}

func newCatalogIndex(quests []*Quest) *catalogIndex {
	idx := &catalogIndex{
		ordered:  quests,
		byID:     make(map[string]*Quest, len(quests)),
		byGiver:  make(map[string][]*Quest),
		byTarget: make(map[objectiveKey][]*Quest),
	}
	for _, q := range quests {
		idx.byID[q.ID] = q
		if q.GiverNPC != "" {
			idx.byGiver[q.GiverNPC] = append(idx.byGiver[q.GiverNPC], q)
		}
		seen := make(map[objectiveKey]bool, len(q.Objectives))
		for _, obj := range q.Objectives {
			key := objectiveKey{obj.Type, obj.Target}
			if !seen[key] {
				seen[key] = true
				idx.byTarget[key] = append(idx.byTarget[key], q)
			}
		}
	}
	return idx
}

// NewQuestRegistry creates an empty registry
func NewQuestRegistry() *QuestRegistry {
	r := &QuestRegistry{}
	r.index.Store(newCatalogIndex(nil))
	return r
}

// LoadFromConfig replaces the catalog with the quests in config
func (r *QuestRegistry) LoadFromConfig(config *QuestsConfig) {
	r.index.Store(newCatalogIndex(config.GetAllQuests()))
	logger.Debug("Quest catalog indexed", "quests", len(config.Quests))
}

// GetQuest returns a quest by ID
func (r *QuestRegistry) GetQuest(id string) (*Quest, bool) {
	q, ok := r.index.Load().byID[id]
	return q, ok
}

// GetQuestsForNPC returns the quests npc gives out, ordered by ID. The
// slice is the caller's own.
func (r *QuestRegistry) GetQuestsForNPC(npc string) []*Quest {
	return append([]*Quest{}, r.index.Load().byGiver[npc]...)
}

// QuestsTargeting returns the quests with an objective of kind aimed at
// target, ordered by ID
func (r *QuestRegistry) QuestsTargeting(kind ObjectiveType, target string) []*Quest {
	return append([]*Quest{}, r.index.Load().byTarget[objectiveKey{kind, target}]...)
}

// GetAllQuests returns all registered quests ordered by ID
func (r *QuestRegistry) GetAllQuests() []*Quest {
	return append([]*Quest{}, r.index.Load().ordered...)
}

// Count returns the number of registered quests
func (r *QuestRegistry) Count() int {
	return len(r.index.Load().ordered)
}

// LoadFromPath replaces the catalog with a YAML file or every YAML file
// in a directory
func (r *QuestRegistry) LoadFromPath(path string) error {
	config, err := LoadQuestsFromPath(path)
	if err != nil {
		return err
	}
	r.LoadFromConfig(config)
	return nil
}

// Lint checks every registered quest for content problems
func (r *QuestRegistry) Lint() []LintIssue {
	var issues []LintIssue
	for _, q := range r.index.Load().ordered {
		issues = append(issues, LintQuest(q)...)
	}
	return issues
}
