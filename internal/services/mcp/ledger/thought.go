package ledger

// Thought is one recorded reasoning step.
type Thought struct {
	// Content is the free-text step.
	Content string
	// Number is the 1-based sequence number within its timeline.
	Number int
	// Total is the caller's current estimate of steps needed; advisory.
	Total int
	// NextNeeded reports whether the caller intends to continue.
	NextNeeded bool

	IsRevision        *bool
	RevisesThought    *int
	BranchFromThought *int
	BranchID          *string
	NeedsMoreThoughts *bool
}

// Timeline is an ordered sequence of thoughts.
type Timeline []Thought

// clone returns an independent copy so callers never alias ledger storage.
func (t Timeline) clone() Timeline {
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

// prefixThrough returns the leading steps numbered at or below seq.
func (t Timeline) prefixThrough(seq int) Timeline {
	out := Timeline{}
	for _, thought := range t {
		if thought.Number > seq {
			break
		}
		out = append(out, thought)
	}
	return out
}
