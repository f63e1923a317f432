package gen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/descriptor"
	"builder-generator/internal/plan"
)

const companyYAML = `
package: example.com/org
types:
  - name: Person
    properties:
      GetName: string
      GetSite: Site
      GetHome: Site
  - name: Company
    properties:
      GetTitle: string
      GetSite: Site
  - name: Site
    properties:
      GetCity: string
`

func planYAML(t *testing.T, src string) *plan.Result {
	t.Helper()

	f, err := descriptor.Parse([]byte(src))
	require.NoError(t, err)

	u, err := descriptor.ToUniverse(f)
	require.NoError(t, err)

	res, err := plan.NewPlanner(u, u, plan.DefaultConfig()).Plan(plan.Candidates(u))
	require.NoError(t, err)

	return res
}

func generate(t *testing.T, res *plan.Result) (map[string]string, []GeneratedFile) {
	t.Helper()

	cfg := DefaultGeneratorConfig()
	cfg.OutputDir = t.TempDir()

	files, err := NewGenerator(cfg).Generate(res)
	require.NoError(t, err)

	byName := make(map[string]string, len(files))
	for _, f := range files {
		byName[f.Filename] = string(f.Content)
	}

	return byName, files
}

func TestGenerator_Generate_FilesInNestingOrder(t *testing.T) {
	res := planYAML(t, companyYAML)
	require.Len(t, res.Types, 3, res.Diagnostics.Error())

	_, files := generate(t, res)

	var names []string
	for _, f := range files {
		names = append(names, f.Filename)
		assert.Equal(t, "example.com/org", f.PkgPath)
	}

	want := []string{"site_builder.go", "company_builder.go", "person_builder.go", "builder_helpers.go"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerator_Generate_ParsesAsGo(t *testing.T) {
	res := planYAML(t, companyYAML)
	byName, _ := generate(t, res)

	fset := token.NewFileSet()

	for name, src := range byName {
		f, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		require.NoError(t, err, src)
		assert.Equal(t, "org", f.Name.Name)
		assert.True(t, strings.HasPrefix(src, "// Code generated by builder-generator. DO NOT EDIT."), name)
	}

	person, _ := res.Type("Person")
	src := byName["person_builder.go"]

	assert.Contains(t, src, "// Source: example.com/org.Person")
	assert.Contains(t, src, "type "+person.Datatype.Builder.Generated+" struct {")
	assert.Contains(t, src, "type "+person.Datatype.Value+" struct {")

	for _, c := range person.Triad.Consts {
		assert.Contains(t, src, c.Name)
	}

	for _, fn := range person.Triad.Funcs {
		assert.Contains(t, src, fn.Name)
	}
}

func TestGenerator_Generate_SharedHelpers(t *testing.T) {
	res := planYAML(t, companyYAML)
	byName, _ := generate(t, res)

	helpers := byName["builder_helpers.go"]
	assert.Equal(t, 1, strings.Count(helpers, "func newSiteBuilder()"))
	assert.NotContains(t, byName["person_builder.go"], "func newSiteBuilder()")
	assert.NotContains(t, helpers, "// Source:")
}

func TestGenerator_Generate_NoHelpers(t *testing.T) {
	res := planYAML(t, `
package: example.com/geo
types:
  - name: Point
    properties:
      GetX: int
      GetY: int
`)
	byName, files := generate(t, res)

	require.Len(t, files, 1)
	assert.Contains(t, byName, "point_builder.go")
}

func TestGenerator_Generate_Comments(t *testing.T) {
	res := planYAML(t, companyYAML)

	cfg := DefaultGeneratorConfig()
	cfg.OutputDir = t.TempDir()
	cfg.GenerateComments = false

	files, err := NewGenerator(cfg).Generate(res)
	require.NoError(t, err)

	for _, f := range files {
		if f.Filename != "site_builder.go" {
			continue
		}

		assert.NotContains(t, string(f.Content), "holds the state of a Site")
	}
}

func TestGenerator_Generate_Dirs(t *testing.T) {
	res := planYAML(t, companyYAML)

	dir := t.TempDir()
	cfg := DefaultGeneratorConfig()
	cfg.Dirs = map[string]string{"example.com/org": dir}
	cfg.PackageNames = map[string]string{"example.com/org": "organization"}

	files, err := NewGenerator(cfg).Generate(res)
	require.NoError(t, err)

	for _, f := range files {
		assert.Equal(t, dir, f.Dir)
		assert.Contains(t, string(f.Content), "package organization")
	}
}

func TestWriteFiles_Stale(t *testing.T) {
	res := planYAML(t, companyYAML)
	_, files := generate(t, res)

	stale, err := Stale(files)
	require.NoError(t, err)
	assert.Len(t, stale, len(files), "nothing written yet")
	assert.Empty(t, Existing(files))

	require.NoError(t, WriteFiles(files))

	stale, err = Stale(files)
	require.NoError(t, err)
	assert.Empty(t, stale)
	assert.Len(t, Existing(files), len(files))

	require.NoError(t, os.WriteFile(files[0].Path(), []byte("package org\n"), filePerm))

	stale, err = Stale(files)
	require.NoError(t, err)
	assert.Equal(t, []string{files[0].Path()}, stale)
}

func TestWriteDebugUnformatted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeDebugUnformatted(dir, "person_builder.go", []byte("package ")))

	data, err := os.ReadFile(filepath.Join(dir, "person_builder.unformatted.go.txt"))
	require.NoError(t, err)
	assert.Equal(t, "package ", string(data))

	require.NoError(t, writeDebugUnformatted("", "x.go", nil))
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Person":      "person_builder.go",
		"HTTPRequest": "http_request_builder.go",
		"PetOwner":    "pet_owner_builder.go",
		"userID":      "user_id_builder.go",
	}

	for in, want := range cases {
		assert.Equal(t, want, Filename(in, "_builder.go"), in)
	}
}

func TestPackageName(t *testing.T) {
	cases := map[string]string{
		"example.com/people":     "people",
		"github.com/x/go-yaml":   "yaml",
		"example.com/api/v2":     "api",
		"example.com/my-api":     "myapi",
		"example.com/Mixed.Case": "mixedcase",
	}

	for in, want := range cases {
		assert.Equal(t, want, PackageName(in), in)
	}
}
