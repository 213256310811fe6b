package interaction

import (
	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

// Harvester reports item pickups as Collect progress
type Harvester struct {
	reporter Reporter
}

// NewHarvester creates a pickup reporter
func NewHarvester(reporter Reporter) *Harvester {
	return &Harvester{reporter: reporter}
}

// PickUp reports count items of itemID collected. It returns how many quest
// objectives advanced.
func (h *Harvester) PickUp(itemID string, count int) (int, error) {
	matched, err := h.reporter.ReportEvent(quest.ObjectiveCollect, itemID, count)
	if err != nil {
		logger.Warning("Collect report rejected", "item", itemID, "count", count, "error", err)
		return matched, err
	}
	return matched, nil
}

// Hunter reports defeated creatures as Kill progress
type Hunter struct {
	reporter Reporter
}

// NewHunter creates a kill reporter
func NewHunter(reporter Reporter) *Hunter {
	return &Hunter{reporter: reporter}
}

// Defeated reports one kill of mobID
func (h *Hunter) Defeated(mobID string) int {
	matched, err := h.reporter.ReportEvent(quest.ObjectiveKill, mobID, 1)
	if err != nil {
		logger.Warning("Kill report rejected", "mob", mobID, "error", err)
	}
	return matched
}
