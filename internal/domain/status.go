package domain

import "time"

// Tier is the presentation tier a status is rendered with.
type Tier string

const (
	TierDefault     Tier = "default"
	TierSecondary   Tier = "secondary"
	TierOutline     Tier = "outline"
	TierDestructive Tier = "destructive"
)

// StatusTierOf maps a raw status string to its presentation tier. Unknown
// values get the outline tier.
func StatusTierOf(status string) Tier {
	switch Status(status) {
	case StatusCompleted:
		return TierDefault
	case StatusInProgress:
		return TierSecondary
	case StatusPending:
		return TierOutline
	case StatusOverdue:
		return TierDestructive
	default:
		return TierOutline
	}
}

// EffectiveStatus is the status an assignment should read as at now: a
// non-completed assignment past its due date is overdue even if the server
// has not caught up yet.
func EffectiveStatus(a *Assignment, now time.Time) Status {
	if a.Status == StatusCompleted || a.CompletedAt != nil {
		return StatusCompleted
	}
	if a.DueDate != nil && a.DueDate.Before(now) {
		return StatusOverdue
	}
	return a.Status
}
