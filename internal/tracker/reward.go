package tracker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
)

// DefaultRewardTemplate is used when no template is configured; %s is the quest title
const DefaultRewardTemplate = "Quest “%s” complete!"

// Popup is one reward message on screen
type Popup struct {
	QuestID   string
	Message   string
	ExpiresAt time.Time
}

// RewardPopups turns quest completions into short-lived reward messages
type RewardPopups struct {
	template string
	duration time.Duration
	now      func() time.Time
	sub      *quest.Subscription

	mu     sync.Mutex
	popups []Popup
}

// RewardOption configures RewardPopups
type RewardOption func(*RewardPopups)

// WithClock replaces time.Now
func WithClock(now func() time.Time) RewardOption {
	return func(r *RewardPopups) { r.now = now }
}

// NewRewardPopups subscribes to quest completions. An empty template falls
// back to DefaultRewardTemplate; a non-positive duration to two seconds.
func NewRewardPopups(source Notifier, template string, duration time.Duration, opts ...RewardOption) *RewardPopups {
	if template == "" {
		template = DefaultRewardTemplate
	}
	if duration <= 0 {
		duration = 2 * time.Second
	}

	r := &RewardPopups{template: template, duration: duration, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.sub = source.OnQuestCompleted(r.show)
	return r
}

func (r *RewardPopups) show(q *quest.Quest) {
	popup := Popup{
		QuestID:   q.ID,
		Message:   FormatReward(r.template, q),
		ExpiresAt: r.now().Add(r.duration),
	}

	r.mu.Lock()
	r.popups = append(r.popups, popup)
	r.mu.Unlock()

	logger.Info("Reward popup shown", "quest_id", q.ID, "message", popup.Message)
}

// Visible returns the popups that have not expired at now
func (r *RewardPopups) Visible(now time.Time) []Popup {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Popup
	for _, p := range r.popups {
		if now.Before(p.ExpiresAt) {
			out = append(out, p)
		}
	}
	return out
}

// Prune drops expired popups and returns how many were removed
func (r *RewardPopups) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.popups[:0]
	for _, p := range r.popups {
		if now.Before(p.ExpiresAt) {
			kept = append(kept, p)
		}
	}
	removed := len(r.popups) - len(kept)
	r.popups = kept
	return removed
}

// Close stops listening for completions
func (r *RewardPopups) Close() { r.sub.Unsubscribe() }

// ErrRewardTemplate rejects templates that fmt would render with
// %!verb(MISSING) markers
var ErrRewardTemplate = errors.New("reward template may only contain one %s verb and %% escapes")

// ValidateRewardTemplate checks that template has at most one %s and no
// other verbs
func ValidateRewardTemplate(template string) error {
	_, err := parseRewardTemplate(template)
	return err
}

// parseRewardTemplate counts the %s verbs in template
func parseRewardTemplate(template string) (int, error) {
	titles := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		i++
		if i == len(template) {
			return 0, fmt.Errorf("trailing %%: %w", ErrRewardTemplate)
		}
		switch template[i] {
		case '%':
		case 's':
			titles++
		default:
			return 0, fmt.Errorf("verb %%%c: %w", template[i], ErrRewardTemplate)
		}
	}
	if titles > 1 {
		return 0, fmt.Errorf("%d %%s verbs: %w", titles, ErrRewardTemplate)
	}
	return titles, nil
}

// FormatReward renders a reward template for q. A template without %s is
// shown as written; an invalid one is replaced by DefaultRewardTemplate.
func FormatReward(template string, q *quest.Quest) string {
	titles, err := parseRewardTemplate(template)
	if err != nil {
		logger.Warning("Invalid reward template, using default", "template", template, "error", err)
		template, titles = DefaultRewardTemplate, 1
	}
	if titles == 0 {
		return strings.ReplaceAll(template, "%%", "%")
	}
	return fmt.Sprintf(template, q.Title)
}
