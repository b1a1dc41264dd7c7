package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreness/klproj/internal/project"
)

const fragmentSrc = `#version 150
out vec4 fragColor;
void main() {
	fragColor = vec4(1.0);
}
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "project.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.frag"), []byte(fragmentSrc), 0644))

	path := writeManifest(t, dir, `name: Demo
author: someone
api: GL3
width: 1280
height: 720
environment: true
params:
  - type: CONSTANT_FLOAT1
    name: intensity
    display: Intensity
    value: 0.5
    min: 0
    max: 1
passes:
  - label: Main
    stages:
      - kind: FRAGMENT
        file: main.frag
`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo", m.Name)

	p, err := m.Build(dir)
	require.NoError(t, err)

	assert.Equal(t, project.ProfileGL3, p.API)
	assert.Equal(t, 1280, p.Props.Width)
	assert.Equal(t, "someone", p.Props.Author)
	assert.Equal(t, "Demo", p.Props.Comment)

	// environment params then declared params.
	require.Len(t, p.Params, 4)
	assert.Equal(t, "time", p.Params[0].VariableName)
	assert.Equal(t, "intensity", p.Params[3].VariableName)
	v, ok := p.Params[3].Prop("value")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	require.Len(t, p.Passes, 1)
	pass := p.Passes[0]
	assert.Equal(t, "Main", pass.Label)

	// A vertex stage is synthesized in front of the declared fragment stage.
	require.Len(t, pass.Stages, 2)
	assert.Equal(t, project.StageVertex, pass.Stages[0].Kind)
	assert.True(t, pass.Stages[0].Hidden)
	assert.Equal(t, project.StageFragment, pass.Stages[1].Kind)

	src, ok := pass.Stages[1].Source(project.ProfileGL3)
	require.True(t, ok)
	assert.Equal(t, fragmentSrc, src.Code)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "name: x\nbogus_key: true\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown/misspelled")
}

func TestBuildInlineSourceAndWatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "w.frag"), []byte(fragmentSrc), 0644))

	path := writeManifest(t, dir, `name: Watchers
passes:
  - stages:
      - kind: FRAGMENT
        file: w.frag
        watch: true
      - kind: VERTEX
        source: |
          void main() { gl_Position = vec4(0.0); }
`)
	m, err := Load(path)
	require.NoError(t, err)
	p, err := m.Build(dir)
	require.NoError(t, err)

	// Both stages declared, so nothing is synthesized.
	require.Len(t, p.Passes[0].Stages, 2)

	watched := p.Passes[0].Stages[0]
	assert.True(t, watched.FileWatch)
	assert.Equal(t, filepath.Join(dir, "w.frag"), watched.FileWatchPath)
}

func TestBuildVectorParams(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `name: Vectors
params:
  - type: CONSTANT_FLOAT3
    name: tint
    vector: [1, 0.5, 0.25]
passes:
  - stages:
      - kind: FRAGMENT
        source: "void main() {}"
`)
	m, err := Load(path)
	require.NoError(t, err)
	p, err := m.Build(dir)
	require.NoError(t, err)

	v, ok := p.Params[0].Prop("value")
	require.True(t, ok)
	assert.Equal(t, project.Vec3{X: 1, Y: 0.5, Z: 0.25}, v)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{
			name:        "no passes",
			yaml:        "name: x\n",
			errContains: "no passes",
		},
		{
			name: "pass with no stages",
			yaml: `name: x
passes:
  - label: empty
`,
			errContains: "has no stages",
		},
		{
			name: "stage with neither file nor source",
			yaml: `name: x
passes:
  - stages:
      - kind: FRAGMENT
`,
			errContains: "needs a file or inline source",
		},
		{
			name: "stage with both file and source",
			yaml: `name: x
passes:
  - stages:
      - kind: FRAGMENT
        file: a.frag
        source: "void main() {}"
`,
			errContains: "mutually exclusive",
		},
		{
			name: "unknown stage kind",
			yaml: `name: x
passes:
  - stages:
      - kind: PIXEL
        source: "void main() {}"
`,
			errContains: "unknown stage kind",
		},
		{
			name: "bad vector arity",
			yaml: `name: x
params:
  - type: CONSTANT_FLOAT2
    name: p
    vector: [1, 2, 3]
passes:
  - stages:
      - kind: FRAGMENT
        source: "void main() {}"
`,
			errContains: "wants 2 components",
		},
		{
			name: "unknown api",
			yaml: "name: x\napi: VULKAN\npasses:\n  - stages:\n      - kind: FRAGMENT\n        source: \"void main() {}\"\n",
			errContains: "unknown shader profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeManifest(t, dir, tt.yaml)
			m, err := Load(path)
			require.NoError(t, err)

			_, err = m.Build(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestBuildMissingShaderFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `name: x
passes:
  - stages:
      - kind: FRAGMENT
        file: nope.frag
`)
	m, err := Load(path)
	require.NoError(t, err)

	_, err = m.Build(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passes[0].stages[0]")
}
