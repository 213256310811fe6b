package interaction

import (
	"sync"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
)

// FindTrigger reports a Find target the first time the player walks into it
// and then disables itself, like a collider switched off after use
type FindTrigger struct {
	target   string
	reporter Reporter

	mu      sync.Mutex
	enabled bool
}

// NewFindTrigger creates an enabled trigger for target
func NewFindTrigger(reporter Reporter, target string) *FindTrigger {
	return &FindTrigger{target: target, reporter: reporter, enabled: true}
}

// Enter handles something entering the trigger. It returns true when the
// find was reported.
func (f *FindTrigger) Enter(tag string) bool {
	if tag != PlayerTag {
		return false
	}

	f.mu.Lock()
	if !f.enabled {
		f.mu.Unlock()
		return false
	}
	f.enabled = false
	f.mu.Unlock()

	matched := f.reporter.ReportFind(f.target)
	logger.Info("Found target", "target", f.target, "objectives", matched)
	return true
}

// Enabled reports whether the trigger can still fire
func (f *FindTrigger) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Rearm re-enables the trigger, e.g. after a repeatable quest is reset
func (f *FindTrigger) Rearm() {
	f.mu.Lock()
	f.enabled = true
	f.mu.Unlock()
}

// Target returns the find target this trigger reports
func (f *FindTrigger) Target() string {
	return f.target
}
