// Package buildkit is the runtime support library of generated builders.
//
// Generated code imports it for:
//   - immutable category containers (Set, SortedSet, Multiset, ListMultimap, SetMultimap, Optional)
//   - mutable builder fields accumulating those containers (ListField, SetField, ...)
//   - unset-property tracking (UnsetSet) and the errors reported by Build and Partial getters
//   - structural equality and hashing helpers shared by Value and Partial types
//
// Builders are not safe for concurrent use. Containers are immutable once
// frozen and may be shared freely.
package buildkit
