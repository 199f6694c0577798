package ledger

import (
	"maps"
	"slices"
	"sync"
)

// Projection is the read side of one submission, taken under the same lock
// as its mutation.
type Projection struct {
	Kind          Kind
	Branches      []string
	HistoryLength int
}

// Snapshot is a consistent copy of the ledger for read-only rendering.
type Snapshot struct {
	// ActiveBranch is nil when the main timeline is active.
	ActiveBranch *string
	Branches     []string
	Timeline     Timeline
}

// Ledger owns the main timeline, the named branches and the active-branch
// pointer for one server process.
type Ledger struct {
	mu       sync.Mutex
	main     Timeline
	branches map[string]Timeline
	// active names the active branch; nil means main.
	active *string
	// observe runs under mu after every accepted submission.
	observe func(Projection)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithProjectionObserver registers fn to receive every accepted
// submission's projection while the ledger lock is still held, so observers
// see projections in mutation order. fn must not call back into the ledger.
func WithProjectionObserver(fn func(Projection)) Option {
	return func(l *Ledger) {
		l.observe = fn
	}
}

// New returns an empty ledger with the main timeline active.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		main:     Timeline{},
		branches: make(map[string]Timeline),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit validates, classifies and applies one thought, then projects the
// response fields, all inside one critical section. The only error comes
// from Validate, in which case the ledger is untouched.
func (l *Ledger) Submit(t Thought) (Projection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := Validate(t); err != nil {
		return Projection{}, err
	}

	kind := Classify(t)
	switch kind {
	case KindBranch:
		l.submitBranch(*t.BranchFromThought, *t.BranchID, t)
	case KindRevision:
		l.submitRevision(*t.RevisesThought, t)
	default:
		l.submitPlain(t)
	}

	projection := Projection{
		Kind:          kind,
		Branches:      l.branchNames(),
		HistoryLength: len(l.currentTimeline()),
	}
	if l.observe != nil {
		l.observe(projection)
	}
	return projection, nil
}

// SubmitPlain appends t to the active timeline.
func (l *Ledger) SubmitPlain(t Thought) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitPlain(t)
}

// SubmitRevision replaces the step numbered target in the active timeline,
// or appends t when there is none.
func (l *Ledger) SubmitRevision(target int, t Thought) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitRevision(target, t)
}

// SubmitBranch appends t to the named branch, creating it from the main
// timeline prefix through from when new, and activates it.
func (l *Ledger) SubmitBranch(from int, name string, t Thought) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitBranch(from, name, t)
}

// CurrentTimeline returns a copy of the active timeline.
func (l *Ledger) CurrentTimeline() Timeline {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentTimeline().clone()
}

// HistoryLength returns the length of the active timeline.
func (l *Ledger) HistoryLength() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.currentTimeline())
}

// BranchNames returns every known branch name, sorted.
func (l *Ledger) BranchNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.branchNames()
}

// Snapshot returns a consistent copy of the active pointer, branch names
// and active timeline.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := Snapshot{
		Branches: l.branchNames(),
		Timeline: l.currentTimeline().clone(),
	}
	if name, ok := l.activeBranch(); ok {
		snapshot.ActiveBranch = &name
	}
	return snapshot
}

func (l *Ledger) submitPlain(t Thought) {
	if name, ok := l.activeBranch(); ok {
		l.branches[name] = append(l.branches[name], t)
		return
	}
	l.main = append(l.main, t)
}

func (l *Ledger) submitRevision(target int, t Thought) {
	if name, ok := l.activeBranch(); ok {
		l.branches[name] = reviseOrAppend(l.branches[name], target, t)
		return
	}
	l.main = reviseOrAppend(l.main, target, t)
}

func (l *Ledger) submitBranch(from int, name string, t Thought) {
	branch, ok := l.branches[name]
	if !ok {
		branch = l.main.prefixThrough(from)
	}
	l.branches[name] = append(branch, t)
	l.active = &name
}

// activeBranch reports the active branch name when it names a known branch.
// A dangling pointer is treated as main.
func (l *Ledger) activeBranch() (string, bool) {
	if l.active == nil {
		return "", false
	}
	if _, ok := l.branches[*l.active]; !ok {
		return "", false
	}
	return *l.active, true
}

func (l *Ledger) currentTimeline() Timeline {
	if name, ok := l.activeBranch(); ok {
		return l.branches[name]
	}
	return l.main
}

func (l *Ledger) branchNames() []string {
	names := slices.Sorted(maps.Keys(l.branches))
	if names == nil {
		return []string{}
	}
	return names
}

func reviseOrAppend(timeline Timeline, target int, t Thought) Timeline {
	for i := range timeline {
		if timeline[i].Number == target {
			timeline[i] = t
			return timeline
		}
	}
	return append(timeline, t)
}
