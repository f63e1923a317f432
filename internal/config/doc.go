// Package config loads the builder-generator run configuration.
//
// A configuration names the sources to read (Go package patterns, a YAML
// descriptor or an OpenAPI document), the types to generate and where the
// generated files go. Command line flags override the loaded values.
//
// Example builder-generator.yaml:
//
//	packages: [./model/...]
//	types: [Person, Address]
//	file_suffix: _builder.go
//	strict: true
package config
