// Package graph defines the design graph produced by script evaluation.
// The graph holds wall nodes (the base faces doors are built into) and door
// nodes (the construction parameters and the walls they apply to). A graph
// is never mutated after evaluation; each evaluation produces a new one.
package graph
