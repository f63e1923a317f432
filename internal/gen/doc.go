// Package gen renders planned datatypes as Go source.
//
// Each datatype gets one file holding its property index constants, the
// generated builder, value and partial types and the package-level
// functions. Helpers needed by several datatypes of a package are written
// once, to a shared helpers file.
//
// Files are produced with text/template, then formatted and pruned of
// unused imports with golang.org/x/tools/imports.
package gen
