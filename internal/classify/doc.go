// Package classify binds every property of a datatype to one category.
//
// Classification runs an ordered chain of matchers and the first match wins:
// collections, optional wrappers, nested buildables, null-marked properties,
// then the total Default fallback. A null-marked property never matches a
// collection, optional or buildable shape.
package classify
