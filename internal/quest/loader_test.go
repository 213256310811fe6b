package quest

import (
	"os"
	"path/filepath"
	"testing"
)

const hermitYAML = `quests:
  find_hermit:
    title: "Find the Hermit"
    description: "Grandpa wants to know where the hermit went."
    giver_npc: "Grandpa"
    objectives:
      - description: "Find the hermit"
        type: "find"
        target: "Hermit"
        required: 1
      - description: "Tell Grandpa"
        type: "talk"
        target: "Grandpa"
        required: 1
`

func TestLoadQuestsFromYAML_ValidFile(t *testing.T) {
	questFile := filepath.Join(t.TempDir(), "quests.yaml")
	if err := os.WriteFile(questFile, []byte(hermitYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	config, err := LoadQuestsFromYAML(questFile)
	if err != nil {
		t.Fatalf("LoadQuestsFromYAML returned error: %v", err)
	}

	if len(config.Quests) != 1 {
		t.Fatalf("Should have 1 quest, got %d", len(config.Quests))
	}

	def, exists := config.Quests["find_hermit"]
	if !exists {
		t.Fatal("find_hermit should exist in config")
	}
	if def.Title != "Find the Hermit" {
		t.Errorf("Quest title mismatch: got %s, want Find the Hermit", def.Title)
	}
	if len(def.Objectives) != 2 {
		t.Errorf("Should have 2 objectives, got %d", len(def.Objectives))
	}
}

func TestLoadQuestsFromYAML_MissingFile(t *testing.T) {
	_, err := LoadQuestsFromYAML("/nonexistent/path/quests.yaml")
	if err == nil {
		t.Error("Should return error for missing file")
	}
}

func TestLoadQuestsFromYAML_MalformedYAML(t *testing.T) {
	questFile := filepath.Join(t.TempDir(), "quests.yaml")
	yamlContent := `quests:
  test_quest:
    title: "Test Quest"
    objectives: [invalid yaml structure
`
	if err := os.WriteFile(questFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadQuestsFromYAML(questFile); err == nil {
		t.Error("Should return error for malformed YAML")
	}
}

func TestParseQuestsYAML_Empty(t *testing.T) {
	config, err := ParseQuestsYAML([]byte(""))
	if err != nil {
		t.Fatalf("ParseQuestsYAML returned error: %v", err)
	}
	if config.Quests == nil {
		t.Error("Quests map should be initialized for empty input")
	}
}

func TestGetAllQuestsConvertsDefinitions(t *testing.T) {
	config, err := ParseQuestsYAML([]byte(hermitYAML))
	if err != nil {
		t.Fatalf("ParseQuestsYAML returned error: %v", err)
	}

	var quest *Quest
	for _, q := range config.GetAllQuests() {
		if q.ID == "find_hermit" {
			quest = q
		}
	}
	if quest == nil {
		t.Fatal("Quest should exist")
	}
	if quest.ID != "find_hermit" {
		t.Errorf("Quest ID mismatch: got %s, want find_hermit", quest.ID)
	}
	if quest.GiverNPC != "Grandpa" {
		t.Errorf("GiverNPC = %s, want Grandpa", quest.GiverNPC)
	}
	if quest.Objectives[0].Type != ObjectiveFind || quest.Objectives[1].Type != ObjectiveTalk {
		t.Errorf("Objective types = %s, %s; want find, talk", quest.Objectives[0].Type, quest.Objectives[1].Type)
	}
	if quest.Objectives[0].Target != "Hermit" {
		t.Errorf("Target = %s, want Hermit", quest.Objectives[0].Target)
	}
}

func TestToQuestDefaultsTitleToID(t *testing.T) {
	quest := QuestDefinition{}.toQuest("untitled")
	if quest.Title != "untitled" {
		t.Errorf("Title = %q, want untitled", quest.Title)
	}
	if quest.Objectives == nil {
		t.Error("Objectives should be a non-nil empty slice")
	}
}

func TestParseObjectiveType(t *testing.T) {
	tests := []struct {
		input    string
		expected ObjectiveType
	}{
		{"talk", ObjectiveTalk},
		{"Collect", ObjectiveCollect},
		{" kill ", ObjectiveKill},
		{"FIND", ObjectiveFind},
		{"deliver", ObjectiveType("deliver")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseObjectiveType(tt.input); got != tt.expected {
				t.Errorf("ParseObjectiveType(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetAllQuestsSorted(t *testing.T) {
	config := &QuestsConfig{
		Quests: map[string]QuestDefinition{
			"zeta":  {Title: "Z"},
			"alpha": {Title: "A"},
			"mid":   {Title: "M"},
		},
	}

	quests := config.GetAllQuests()
	if len(quests) != 3 {
		t.Fatalf("Should have 3 quests, got %d", len(quests))
	}
	if quests[0].ID != "alpha" || quests[1].ID != "mid" || quests[2].ID != "zeta" {
		t.Errorf("Quests not sorted: %s, %s, %s", quests[0].ID, quests[1].ID, quests[2].ID)
	}
}

func TestMerge(t *testing.T) {
	base := &QuestsConfig{Quests: map[string]QuestDefinition{
		"a": {Title: "A"},
		"b": {Title: "B"},
	}}
	other := &QuestsConfig{Quests: map[string]QuestDefinition{
		"b": {Title: "B2"},
		"c": {Title: "C"},
	}}

	replaced := base.Merge(other)
	if len(replaced) != 1 || replaced[0] != "b" {
		t.Errorf("Merge replaced %v, want [b]", replaced)
	}
	if got := base.Merge(nil); got != nil {
		t.Errorf("Merge(nil) = %v, want nil", got)
	}

	if len(base.Quests) != 3 {
		t.Errorf("Merged config should have 3 quests, got %d", len(base.Quests))
	}
	if base.Quests["b"].Title != "B2" {
		t.Errorf("Later definition should win, got %s", base.Quests["b"].Title)
	}
}

func TestLoadQuestsFromDirectory(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"hermit.yaml": hermitYAML,
		"flowers.yml": `quests:
  flower_run:
    title: "Flower Run"
    repeatable: true
    objectives:
      - description: "Collect flowers"
        type: "collect"
        target: "flower"
        required: 10
`,
		"notes.txt": "not a quest file",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	config, err := LoadQuestsFromDirectory(dir)
	if err != nil {
		t.Fatalf("LoadQuestsFromDirectory returned error: %v", err)
	}
	if len(config.Quests) != 2 {
		t.Errorf("Should have 2 quests, got %d", len(config.Quests))
	}
	if !config.Quests["flower_run"].Repeatable {
		t.Error("flower_run should be repeatable")
	}
}

func TestLoadQuestsFromDirectory_BadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("quests: [oops"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := LoadQuestsFromDirectory(dir); err == nil {
		t.Error("Should return error when a file fails to parse")
	}
}

func TestLoadQuestsFromDirectory_Missing(t *testing.T) {
	if _, err := LoadQuestsFromDirectory("/nonexistent/quests"); err == nil {
		t.Error("Should return error for missing directory")
	}
}
