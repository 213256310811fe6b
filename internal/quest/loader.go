package quest

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"gopkg.in/yaml.v3"
)

// QuestObjectiveYAML is one objective as authored in a catalog file
type QuestObjectiveYAML struct {
	Description string `yaml:"description"`
	Type        string `yaml:"type"`     // talk, collect, kill, find
	Target      string `yaml:"target"`   // NPC name, item ID, mob ID or place
	Required    int    `yaml:"required"` // Amount needed
}

// QuestDefinition is a quest as authored, keyed by its ID in QuestsConfig
type QuestDefinition struct {
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	GiverNPC    string               `yaml:"giver_npc"`
	Objectives  []QuestObjectiveYAML `yaml:"objectives"`
	Repeatable  bool                 `yaml:"repeatable"`
}

// QuestsConfig is the top level of a catalog file, and the shape the
// catalog database loads into
type QuestsConfig struct {
	Quests map[string]QuestDefinition `yaml:"quests"`
}

// NewQuestsConfig returns an empty config ready for merging
func NewQuestsConfig() *QuestsConfig {
	return &QuestsConfig{Quests: make(map[string]QuestDefinition)}
}

// LoadQuestsFromYAML reads one catalog file
func LoadQuestsFromYAML(path string) (*QuestsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quest catalog: %w", err)
	}
	return ParseQuestsYAML(data)
}

// ParseQuestsYAML parses quest definitions from raw YAML
func ParseQuestsYAML(data []byte) (*QuestsConfig, error) {
	config := NewQuestsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse quest catalog: %w", err)
	}
	if config.Quests == nil {
		config.Quests = make(map[string]QuestDefinition)
	}
	return config, nil
}

// GetAllQuests converts every definition, ordered by ID
func (config *QuestsConfig) GetAllQuests() []*Quest {
	quests := make([]*Quest, 0, len(config.Quests))
	for _, id := range config.QuestIDs() {
		quests = append(quests, config.Quests[id].toQuest(id))
	}
	return quests
}

// QuestIDs returns the sorted quest IDs in the config
func (config *QuestsConfig) QuestIDs() []string {
	return slices.Sorted(maps.Keys(config.Quests))
}

// toQuest freezes a definition into its runtime form. An untitled quest
// shows its ID.
func (def QuestDefinition) toQuest(id string) *Quest {
	q := &Quest{
		ID:          id,
		Title:       cmp.Or(def.Title, id),
		Description: def.Description,
		GiverNPC:    def.GiverNPC,
		Repeatable:  def.Repeatable,
		Objectives:  make([]QuestObjective, len(def.Objectives)),
	}
	for i, obj := range def.Objectives {
		q.Objectives[i] = QuestObjective{
			Description: obj.Description,
			Type:        ParseObjectiveType(obj.Type),
			Target:      obj.Target,
			Required:    obj.Required,
		}
	}
	return q
}

// ParseObjectiveType converts string to ObjectiveType.
// Unknown strings are kept as-is so Lint can report them.
func ParseObjectiveType(s string) ObjectiveType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "talk":
		return ObjectiveTalk
	case "collect":
		return ObjectiveCollect
	case "kill":
		return ObjectiveKill
	case "find":
		return ObjectiveFind
	default:
		return ObjectiveType(s)
	}
}

// Merge copies other's quests into config, overwriting same-ID entries,
// and returns the IDs it overwrote
func (config *QuestsConfig) Merge(other *QuestsConfig) []string {
	if other == nil {
		return nil
	}
	var replaced []string
	for _, id := range other.QuestIDs() {
		if _, ok := config.Quests[id]; ok {
			replaced = append(replaced, id)
		}
		config.Quests[id] = other.Quests[id]
	}
	return replaced
}

var catalogExts = map[string]bool{".yaml": true, ".yml": true}

// LoadQuestsFromDirectory merges the YAML files directly inside dir in file
// name order. Subdirectories are not searched. When two files define the
// same quest ID the later file wins.
func LoadQuestsFromDirectory(dir string) (*QuestsConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("quest directory %s: %w", dir, err)
	}

	merged := NewQuestsConfig()
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !catalogExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		part, err := LoadQuestsFromYAML(path)
		if err != nil {
			return nil, fmt.Errorf("quest file %s: %w", path, err)
		}
		for _, id := range merged.Merge(part) {
			logger.Warning("Duplicate quest ID, later file wins", "quest_id", id, "path", path)
		}
		files++
	}

	logger.Info("Quest catalog directory loaded", "dir", dir, "files", files, "quests", len(merged.Quests))
	return merged, nil
}

// LoadQuestsFromPath loads a single YAML file or every YAML file in a directory
func LoadQuestsFromPath(path string) (*QuestsConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat quest catalog %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadQuestsFromDirectory(path)
	}
	return LoadQuestsFromYAML(path)
}
