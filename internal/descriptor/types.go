package descriptor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type kinds.
const (
	KindInterface = "interface"
	KindStruct    = "struct"
	KindScalar    = "scalar"
)

// File is the root of a descriptor document.
type File struct {
	Version string            `yaml:"version"`
	Package string            `yaml:"package"`
	Imports map[string]string `yaml:"imports,omitempty"`
	Types   []TypeDesc        `yaml:"types"`
	Funcs   []FuncDesc        `yaml:"functions,omitempty"`

	// Source names the document in positions.
	Source string `yaml:"-"`
}

// TypeDesc describes one declared type.
type TypeDesc struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind,omitempty"`
	Doc        string        `yaml:"doc,omitempty"`
	Generate   *bool         `yaml:"generate,omitempty"`
	TypeParams StringOrArray `yaml:"type_params,omitempty"`
	Embeds     StringOrArray `yaml:"embeds,omitempty"`
	Properties Properties    `yaml:"properties,omitempty"`
	Methods    []MethodDesc  `yaml:"methods,omitempty"`
	// Underlying is the type expression of scalar kinds.
	Underlying string       `yaml:"underlying,omitempty"`
	Builder    *BuilderDesc `yaml:"builder,omitempty"`

	Line int `yaml:"-"`
}

// Generated reports whether a builder is requested for the type.
func (t *TypeDesc) Generated() bool {
	if t.Generate != nil {
		return *t.Generate
	}

	return len(t.Properties) > 0
}

// PropertyDesc is one abstract getter.
type PropertyDesc struct {
	Getter string `yaml:"getter"`
	Type   string `yaml:"type"`
	Line   int    `yaml:"-"`
}

// Properties keeps getters in document order.
type Properties []PropertyDesc

// MethodDesc describes a method.
type MethodDesc struct {
	Name            string        `yaml:"name"`
	Params          StringOrArray `yaml:"params,omitempty"`
	Results         StringOrArray `yaml:"results,omitempty"`
	Variadic        bool          `yaml:"variadic,omitempty"`
	Abstract        bool          `yaml:"abstract,omitempty"`
	Final           bool          `yaml:"final,omitempty"`
	PointerReceiver bool          `yaml:"pointer_receiver,omitempty"`
}

// BuilderDesc declares the user builder <Type>Builder.
type BuilderDesc struct {
	// Factory is the builder factory; empty means the zero value is used.
	Factory string `yaml:"factory,omitempty"`
	// Defaults lists the properties the factory always sets.
	Defaults []string     `yaml:"defaults,omitempty"`
	Methods  []MethodDesc `yaml:"methods,omitempty"`
}

// FuncDesc describes a package-level function.
type FuncDesc struct {
	Name       string        `yaml:"name"`
	TypeParams StringOrArray `yaml:"type_params,omitempty"`
	Params     StringOrArray `yaml:"params,omitempty"`
	Results    StringOrArray `yaml:"results,omitempty"`
}

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = StringOrArray{}
		if str != "" {
			*s = StringOrArray{str}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// UnmarshalYAML accepts a mapping of getter to type, whose order is kept,
// or a sequence of {getter, type} entries.
func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Properties, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: property %q must map a getter to a type expression", key.Line, key.Value)
			}

			out = append(out, PropertyDesc{Getter: key.Value, Type: value.Value, Line: key.Line})
		}

		*p = out

		return nil

	case yaml.SequenceNode:
		out := make(Properties, 0, len(node.Content))

		for _, item := range node.Content {
			var d PropertyDesc
			if err := item.Decode(&d); err != nil {
				return err
			}

			d.Line = item.Line
			out = append(out, d)
		}

		*p = out

		return nil

	default:
		return fmt.Errorf("line %d: expected properties mapping or list, got %v", node.Line, node.Kind)
	}
}

// UnmarshalYAML records the line of the type.
func (t *TypeDesc) UnmarshalYAML(node *yaml.Node) error {
	type plain TypeDesc

	var d plain
	if err := node.Decode(&d); err != nil {
		return err
	}

	*t = TypeDesc(d)
	t.Line = node.Line

	return nil
}
