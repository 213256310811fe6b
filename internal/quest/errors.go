package quest

import "errors"

// Content and caller errors. Expected misuse (reporting for a quest that is
// not active, starting a quest twice) is never an error; these mark content
// bugs or misconfigured reporters.
var (
	ErrNilQuest       = errors.New("quest definition is nil")
	ErrNoObjectives   = errors.New("quest has no objectives")
	ErrObjectiveIndex = errors.New("objective index out of range")
	ErrInvalidAmount  = errors.New("progress amount must be positive")
)
