// Package openapi turns OpenAPI 3 component schemas into type descriptors.
//
// Every object schema under components.schemas becomes an interface
// datatype with one getter per property, sorted by property name:
//
//   - required properties keep their plain type
//   - optional scalars become buildkit.Optional[T]
//   - nullable properties become pointers
//   - arrays become []T, or buildkit.Set[T] with uniqueItems
//   - additionalProperties become map[string]V
//   - $ref to another object schema becomes a nested buildable
//
// Properties with a default value are recorded as defaults of a builder
// factory New<Type>Builder, which the package must then provide.
package openapi
