// Package plan runs the per-type pipeline that produces the assembled
// triads consumed by code generation.
//
// Pipeline:
//  1. Extract every requested datatype → schema (type-level errors drop the type)
//  2. Describe the builders pending in the batch, so datatypes may nest each other
//  3. For each datatype:
//     - Classify every property into one category strategy
//     - Assemble the builder, value and partial descriptors
//  4. Report diagnostics; panics and internal errors are isolated to their type
package plan
