// Package schema extracts the property schema of a datatype.
//
// The Extractor validates the user type (visibility, generics, kind,
// constructor), accepts abstract getters as properties, detects standard
// method overrides and the user-declared builder with its construction
// convention, and upgrades properties assigned by the builder factory to
// HAS_DEFAULT.
//
// Type-level errors abort extraction with diagnostic.ErrCannotGenerate;
// property-level errors drop only the offending property.
package schema
