package catalogdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

// LoadCatalog reads every stored quest into a QuestsConfig, the same shape
// the YAML loader produces.
func (d *Database) LoadCatalog(ctx context.Context) (*quest.QuestsConfig, error) {
	config := quest.NewQuestsConfig()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, description, giver_npc, repeatable FROM quests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quests: %w", err)
	}
	for rows.Next() {
		var id string
		var def quest.QuestDefinition
		if err := rows.Scan(&id, &def.Title, &def.Description, &def.GiverNPC, &def.Repeatable); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		config.Quests[id] = def
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read quests: %w", err)
	}
	rows.Close()

	rows, err = d.db.QueryContext(ctx,
		`SELECT quest_id, description, type, target_id, required
		FROM quest_objectives ORDER BY quest_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query objectives: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var questID string
		var obj quest.QuestObjectiveYAML
		if err := rows.Scan(&questID, &obj.Description, &obj.Type, &obj.Target, &obj.Required); err != nil {
			return nil, fmt.Errorf("failed to scan objective: %w", err)
		}
		def, ok := config.Quests[questID]
		if !ok {
			continue
		}
		def.Objectives = append(def.Objectives, obj)
		config.Quests[questID] = def
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read objectives: %w", err)
	}

	logger.Info("Loaded quest catalog from database", "quests", len(config.Quests))
	return config, nil
}

// ImportConfig upserts every quest in config. A quest's objectives are
// replaced wholesale so reordered or removed objectives don't linger.
// Returns the number of quests written.
func (d *Database) ImportConfig(ctx context.Context, config *quest.QuestsConfig) (int, error) {
	if config == nil {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsertQuest := d.bind(`INSERT INTO quests (id, title, description, giver_npc, repeatable)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			giver_npc = excluded.giver_npc,
			repeatable = excluded.repeatable`)
	deleteObjectives := d.bind(`DELETE FROM quest_objectives WHERE quest_id = ?`)
	insertObjective := d.bind(`INSERT INTO quest_objectives
		(quest_id, position, description, type, target_id, required)
		VALUES (?, ?, ?, ?, ?, ?)`)

	count := 0
	for _, id := range config.QuestIDs() {
		def := config.Quests[id]
		if err := importQuest(ctx, tx, id, def, upsertQuest, deleteObjectives, insertObjective); err != nil {
			return 0, err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catalog import: %w", err)
	}

	logger.Info("Imported quest catalog into database", "quests", count)
	return count, nil
}

func importQuest(ctx context.Context, tx *sql.Tx, id string, def quest.QuestDefinition, upsertQuest, deleteObjectives, insertObjective string) error {
	if _, err := tx.ExecContext(ctx, upsertQuest,
		id, def.Title, def.Description, def.GiverNPC, def.Repeatable); err != nil {
		return fmt.Errorf("failed to save quest %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, deleteObjectives, id); err != nil {
		return fmt.Errorf("failed to clear objectives of %s: %w", id, err)
	}
	for i, obj := range def.Objectives {
		if _, err := tx.ExecContext(ctx, insertObjective,
			id, i, obj.Description, obj.Type, obj.Target, obj.Required); err != nil {
			return fmt.Errorf("failed to save objective %s[%d]: %w", id, i, err)
		}
	}
	return nil
}

// DeleteQuest removes a quest and its objectives. Returns false if it did not exist.
func (d *Database) DeleteQuest(ctx context.Context, id string) (bool, error) {
	res, err := d.db.ExecContext(ctx, d.bind(`DELETE FROM quests WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete quest %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete quest %s: %w", id, err)
	}
	return n > 0, nil
}

// CountQuests returns the number of stored quests.
func (d *Database) CountQuests(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count quests: %w", err)
	}
	return count, nil
}

// PruneMissing deletes stored quests that keep does not define and returns
// their IDs in order. It mirrors a YAML catalog after ImportConfig.
func (d *Database) PruneMissing(ctx context.Context, keep *quest.QuestsConfig) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM quests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan quest id: %w", err)
		}
		if _, ok := keep.Quests[id]; !ok {
			stale = append(stale, id)
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	for _, id := range stale {
		if _, err := d.DeleteQuest(ctx, id); err != nil {
			return nil, err
		}
		logger.Info("Removed quest missing from catalog", "quest_id", id)
	}
	return stale, nil
}
