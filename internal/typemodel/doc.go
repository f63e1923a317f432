// Package typemodel is the neutral type model the generator reasons about.
//
// Every type source (Go packages, YAML descriptors, OpenAPI documents) is
// lowered into a Universe of TypeDecl values. The schema extractor and the
// shape classifier only ever see the Provider and EffectAnalyzer interfaces.
//
// Key types:
//   - TypeID: package path + type name
//   - TypeRef: a type expression (named, basic, pointer, slice, map, func, ...)
//   - TypeDecl: a declared type with its method set, embeddings and constructors
//   - Universe: in-memory Provider and EffectAnalyzer
package typemodel
