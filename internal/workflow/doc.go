// Package workflow runs a small DAG of nodes over a shared State.
//
// A Workflow is built from nodes (each owning a disjoint set of State
// fields) and ordering edges, validated once by Compile, and then run any
// number of times. Runs are request-scoped: nothing is kept between them.
//
// Independent branches may run concurrently with WithParallelism; because
// every node writes only the fields it owns, a concurrent run yields the
// same final State as a sequential one.
package workflow
