// Package category implements the eleven property categories.
//
// A Strategy is bound to one property after classification. It declares the
// builder and value storage of the property, its mutation API, its merge,
// clear and build-time assignment code, and the fragments it contributes to
// Equal, Hash and String. Generated code is returned as Go statements that
// reference the receiver names exported by this package.
//
// NewSlot returns the runtime counterpart of a strategy: the same semantics
// executed over dynamically typed values, used by builderstate.
package category
