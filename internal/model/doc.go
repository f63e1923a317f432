// Package model is the structural description of generated code.
//
// A Triad holds three descriptors sharing one field layout (Builder, Value
// and Partial) plus the always-partial builder of extensible datatypes.
// Descriptors list fields and methods whose bodies are Go statements; the
// gen package renders them and builderstate executes them by Op.
package model
