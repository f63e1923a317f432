// Package descriptor reads type descriptions from YAML, for schemas that do
// not exist as Go source yet.
//
// # Schema Overview
//
//	version: "1"
//	package: example.com/people
//	imports:
//	  uuid: github.com/google/uuid
//	types:
//	  - name: Person
//	    doc: Person is a person.
//	    embeds: Named
//	    # Abstract getters, in order: getter name to type expression.
//	    properties:
//	      GetAge: int
//	      IsActive: bool
//	      GetNickname: "*string"
//	      GetTags: "buildkit.Set[string]"
//	    # Implemented methods.
//	    methods:
//	      - name: String
//	        results: string
//	        final: true
//	    # A user builder embedding the generated PersonBuilderBase.
//	    builder:
//	      factory: NewPersonBuilder
//	      defaults: [age]
//	  - name: Named
//	    generate: false
//	    properties:
//	      GetName: string
//	functions:
//	  - name: NewRecord
//	    results: "*Record"
//
// Types default to interfaces. Types declaring properties are generated
// unless "generate: false" is set.
//
// Type expressions use Go syntax. The package names buildkit, sql, time,
// iter and json resolve without an import entry.
package descriptor
