package ledger

// Kind selects which mutator handles a submission.
type Kind int

const (
	// KindPlain appends to the active timeline.
	KindPlain Kind = iota
	// KindRevision upserts into the active timeline by thought number.
	KindRevision
	// KindBranch creates or continues a named branch and activates it.
	KindBranch
)

// String returns the metric/log label for the kind.
func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "branch"
	case KindRevision:
		return "revision"
	default:
		return "plain"
	}
}

// Classify derives the submission kind from the optional fields present.
// Branch fields take precedence over a revision target: a thought carrying
// both is a branch operation.
func Classify(t Thought) Kind {
	if t.BranchFromThought != nil && t.BranchID != nil {
		return KindBranch
	}
	if t.RevisesThought != nil {
		return KindRevision
	}
	return KindPlain
}
