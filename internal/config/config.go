package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"builder-generator/internal/gen"
	"builder-generator/internal/plan"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "builder-generator.yaml"

// ErrNoSource is returned by Validate when no source is configured.
var ErrNoSource = errors.New("no source configured: set packages, descriptor or openapi")

// Config is a builder-generator run configuration.
type Config struct {
	Version string `yaml:"version,omitempty"`
	// Packages are go/packages patterns of the packages to scan.
	Packages []string `yaml:"packages,omitempty"`
	// Descriptor is a YAML type descriptor.
	Descriptor string `yaml:"descriptor,omitempty"`
	// OpenAPI is an OpenAPI 3 document whose component schemas are generated.
	OpenAPI string `yaml:"openapi,omitempty"`
	// OpenAPIPackage is the import path of the package generated from OpenAPI.
	OpenAPIPackage string `yaml:"openapi_package,omitempty"`
	// Types restricts generation to the named types. Empty means every
	// type marked for generation.
	Types []string `yaml:"types,omitempty"`

	// OutputDir receives the files of packages without a known directory.
	OutputDir   string `yaml:"output_dir,omitempty"`
	FileSuffix  string `yaml:"file_suffix,omitempty"`
	HelpersFile string `yaml:"helpers_file,omitempty"`
	Comments    bool   `yaml:"comments"`

	Strict bool `yaml:"strict,omitempty"`
	Stack  bool `yaml:"stack,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	g := gen.DefaultGeneratorConfig()

	return &Config{
		Version:        "1",
		OpenAPIPackage: "openapi",
		OutputDir:      g.OutputDir,
		FileSuffix:     g.FileSuffix,
		HelpersFile:    g.HelpersFile,
		Comments:       g.GenerateComments,
	}
}

// Load reads path over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// LoadOptional loads path, or returns the defaults when path is the default
// file name and does not exist.
func LoadOptional(path string) (*Config, error) {
	if path == DefaultFile {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
	}

	return Load(path)
}

// Parse parses YAML data over the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return c, nil
}

// Marshal serializes the configuration to YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes the configuration to path.
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Packages) == 0 && c.Descriptor == "" && c.OpenAPI == "" {
		errs = append(errs, ErrNoSource)
	}

	if c.OpenAPI != "" && c.OpenAPIPackage == "" {
		errs = append(errs, errors.New("openapi_package is required with openapi"))
	}

	if c.FileSuffix == "" || c.FileSuffix == ".go" {
		errs = append(errs, fmt.Errorf("file_suffix %q would collide with source files", c.FileSuffix))
	}

	return errors.Join(errs...)
}

// Plan returns the planning configuration.
func (c *Config) Plan() plan.Config {
	return plan.Config{StrictMode: c.Strict, Stack: c.Stack}
}

// Generator returns the code generation configuration.
func (c *Config) Generator() gen.GeneratorConfig {
	g := gen.DefaultGeneratorConfig()
	g.OutputDir = c.OutputDir
	g.FileSuffix = c.FileSuffix
	g.HelpersFile = c.HelpersFile
	g.GenerateComments = c.Comments

	return g
}

// Wants reports whether the named type is selected for generation.
func (c *Config) Wants(name string) bool {
	if len(c.Types) == 0 {
		return true
	}

	return slices.Contains(c.Types, name)
}
