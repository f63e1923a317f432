// Package diagnostic provides the structured diagnostic sink used by every
// stage of the builder generator.
//
// Key capabilities:
//   - Errors, warnings and informational notes anchored to a type and property
//   - Stable codes per failure class (type-level, property-level, override, builder)
//   - ErrCannotGenerate, the signal that aborts generation of one type
//   - Internal-error reporting isolated to the type being processed
package diagnostic
