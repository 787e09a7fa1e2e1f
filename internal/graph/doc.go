// Package graph models the build as a validated DAG of target nodes and
// schedules their actions.
//
// A Target couples a producing action with the source paths whose content
// decides its freshness, the artifacts it emits, and the names of targets
// that must complete first. Construction rejects duplicate names, unknown
// dependency references, self-loops, and cycles, so a graph that builds is
// known to be acyclic.
//
// The Runner executes ready targets on a bounded worker pool. A target whose
// stored fingerprint still matches its sources is skipped; a failure marks
// every transitive dependent as aborted without stopping unrelated subtrees
// already in flight.
package graph
