// Package idgen holds the vocabulary shared by the identifier generators in
// this module: bit layouts and the error kinds callers match on.
//
// The generators themselves live in sibling packages:
//
//	flake   64-bit time|datacenter|worker|sequence integers
//	ulid    128-bit time|random values with a monotonic mode
//	textid  datetime + sequence + suffix strings
//
// They mint identifiers locally, without coordination, and keep them roughly
// ordered by creation time.
package idgen
