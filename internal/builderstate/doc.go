// Package builderstate executes the builder model of a datatype without
// generating code: builders hold one category slot per property plus the
// unset set, and build immutable values and partials.
//
// It mirrors the generated code closely enough to check its behavior
// (round trips, idempotent merges, lazily failing partials) against any
// classified schema, and backs the describe command.
package builderstate
