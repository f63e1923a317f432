// Package analyze provides package loading and type model extraction.
//
// It uses golang.org/x/tools/go/packages with AST and go/types
// to build a typemodel.Universe of the declared types, their method sets
// and the package-level functions.
//
// Type errors are tolerated: user builders embed a supertype that only
// exists after the first generation run. Such references are recovered from
// the syntax tree and marked unresolved.
//
// The go/ast effect analysis records, for every function returning a
// builder, the builder methods guaranteed to run before each return.
package analyze
