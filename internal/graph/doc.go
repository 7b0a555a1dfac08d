// Package graph holds the editable dataflow model: typed nodes and pins,
// connections, nested groups with computed interface pins, and the
// validation that keeps the committed state acyclic and well-typed.
//
// Every mutating operation validates first and commits second, so a
// rejected call leaves the model exactly as it was. The model does no
// internal locking; a single owner goroutine must serialize access.
package graph
