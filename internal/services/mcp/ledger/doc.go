// Package ledger records an evolving chain of reasoning steps.
//
// A Ledger owns one main timeline, any number of named branch timelines and
// an active-branch pointer. Every submission is one of three kinds:
//
//   - Plain: append to the active timeline.
//   - Revision: replace the step with the same thought number in the active
//     timeline, or append when no such step exists.
//   - Branch: create the named branch from a prefix of the main timeline when
//     it does not exist yet, append to it and make it the active timeline.
//
// Branching is sticky: once a branch is active there is no way back to the
// main timeline, only to another branch. Nothing is ever deleted.
//
// # Concurrency
//
// A single mutex guards the whole ledger. Submit holds it across validation,
// classification, mutation and the read projections of one request so the
// returned Projection always reflects exactly that request's own mutation.
package ledger
