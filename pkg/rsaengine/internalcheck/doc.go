// Package internalcheck holds static policy tests over the engine's
// packages: no == on byte slices or arrays, no hex formatting verbs that
// could print secrets, and no variable-time searches or comparisons in the
// padding decoders.
//
// It exports nothing and is not meant to be imported.
package internalcheck
