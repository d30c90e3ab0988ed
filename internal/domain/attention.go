package domain

import "time"

// FlagState is the orthogonal "needs attention" sub-state of a reviewable
// item. Once an item has been flagged, the historical fact is permanent:
// resolving a flag never clears Flagged, and unflagging keeps the original
// timestamps.
type FlagState struct {
	Flagged   bool
	FlagNote  *string
	FlaggedAt *time.Time
	FlaggedBy *string

	FlagResolved       bool
	FlagResolvedAt     *time.Time
	FlagResolvedBy     *string
	FlagResolutionNote *string
}

// QueueState is the orthogonal queueing sub-state of a reviewable item.
// Unlike flags, queue state has no historical-preservation requirement:
// dequeueing clears every field.
type QueueState struct {
	Queued       bool
	QueuedAt     *time.Time
	QueuedBy     *string
	QueuedNote   *string
	ReviewerID   *string
	ReviewerName *string
}

// Attention composes the two orthogonal sub-states carried by every
// reviewable item, independent of its primary status.
type Attention struct {
	Flag  FlagState
	Queue QueueState
}

// WithFlag returns the attention state after a setFlag operation.
// Flagging stamps flaggedAt/By and reopens any prior resolution.
// Unflagging clears only the note; the historical timestamps stay.
func (a Attention) WithFlag(flagged bool, note *string, actor string, now time.Time) Attention {
	if flagged {
		a.Flag.Flagged = true
		a.Flag.FlagNote = note
		a.Flag.FlaggedAt = &now
		a.Flag.FlaggedBy = &actor
		a.Flag.FlagResolved = false
		a.Flag.FlagResolvedAt = nil
		a.Flag.FlagResolvedBy = nil
		a.Flag.FlagResolutionNote = nil
		return a
	}
	a.Flag.FlagNote = nil
	return a
}

// WithResolution returns the attention state after a resolveFlag operation.
// Resolving stamps the resolution fields and leaves Flagged untouched.
// Reopening (resolved=false) clears all resolution fields.
func (a Attention) WithResolution(resolved bool, note *string, actor string, now time.Time) Attention {
	if resolved {
		a.Flag.FlagResolved = true
		a.Flag.FlagResolvedAt = &now
		a.Flag.FlagResolvedBy = &actor
		a.Flag.FlagResolutionNote = note
		return a
	}
	a.Flag.FlagResolved = false
	a.Flag.FlagResolvedAt = nil
	a.Flag.FlagResolvedBy = nil
	a.Flag.FlagResolutionNote = nil
	return a
}

// WithQueue returns the attention state after a setQueue operation.
// Dequeueing clears every queue field.
func (a Attention) WithQueue(queued bool, note *string, reviewerID, reviewerName *string, actor string, now time.Time) Attention {
	if queued {
		a.Queue.Queued = true
		a.Queue.QueuedAt = &now
		a.Queue.QueuedBy = &actor
		a.Queue.QueuedNote = note
		a.Queue.ReviewerID = reviewerID
		a.Queue.ReviewerName = reviewerName
		return a
	}
	a.Queue = QueueState{}
	return a
}

// ClearQueue returns the attention state with all queue fields cleared.
// Submitting a review request always dequeues the item.
func (a Attention) ClearQueue() Attention {
	a.Queue = QueueState{}
	return a
}
