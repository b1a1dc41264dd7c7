package isf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalShader = `/*{
	"DESCRIPTION": "Solid color",
	"CREDIT": "test",
	"ISFVSN": "2",
	"CATEGORIES": ["Color"],
	"INPUTS": [
		{"NAME": "level", "TYPE": "float", "DEFAULT": 0.5, "MIN": 0.0, "MAX": 1.0}
	]
}*/

void main() {
	gl_FragColor = vec4(vec3(level), 1.0);
}
`

func TestParseBytes(t *testing.T) {
	shader, err := ParseBytes([]byte(minimalShader), "minimal.fs")
	require.NoError(t, err)

	assert.Equal(t, "Solid color", shader.Description)
	assert.Equal(t, "test", shader.Credit)
	assert.Equal(t, "2", shader.ISFVersion)
	assert.Equal(t, []string{"Color"}, shader.Categories)

	require.Len(t, shader.Inputs, 1)
	in := shader.Inputs[0]
	assert.Equal(t, "level", in.Name)
	assert.Equal(t, "float", in.Type)
	assert.Equal(t, 0.5, in.Default)

	// The body is everything after the metadata comment, verbatim.
	assert.True(t, strings.HasPrefix(shader.Body, "\n\nvoid main()"))
	assert.Contains(t, shader.Body, "gl_FragColor")
	assert.NotContains(t, shader.Body, "DESCRIPTION")
}

func TestParseBytesMetadataErrors(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		errContains string
	}{
		{
			name:        "no metadata block",
			src:         "void main() {}\n",
			errContains: "no JSON metadata block",
		},
		{
			name:        "metadata not at start",
			src:         "void main() {}\n/*{ \"INPUTS\": [] }*/\n",
			errContains: "no JSON metadata block",
		},
		{
			name:        "invalid JSON",
			src:         "/*{ \"INPUTS\": [,] }*/\nvoid main() {}\n",
			errContains: "invalid JSON metadata",
		},
		{
			name:        "input missing NAME",
			src:         `/*{ "INPUTS": [{"TYPE": "float"}] }*/` + "\nvoid main() {}\n",
			errContains: "missing required key NAME",
		},
		{
			name:        "input missing TYPE",
			src:         `/*{ "INPUTS": [{"NAME": "x"}] }*/` + "\nvoid main() {}\n",
			errContains: `input "x" is missing required key TYPE`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.src), tt.name+".fs")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseBytesDuplicateInput(t *testing.T) {
	src := `/*{
		"INPUTS": [
			{"NAME": "x", "TYPE": "float"},
			{"NAME": "x", "TYPE": "bool"}
		]
	}*/
	void main() {}
	`
	_, err := ParseBytes([]byte(src), "dup.fs")
	require.Error(t, err)

	var derr *DuplicateInputError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "x", derr.Name)
}

func TestParseBytesLeadingWhitespace(t *testing.T) {
	src := "\n\t  " + minimalShader
	shader, err := ParseBytes([]byte(src), "ws.fs")
	require.NoError(t, err)
	assert.Len(t, shader.Inputs, 1)
}

func TestParseBytesSizeLimit(t *testing.T) {
	big := make([]byte, MaxFileSize+1)
	_, err := ParseBytes(big, "big.fs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestParseBytesPasses(t *testing.T) {
	src := `/*{
		"INPUTS": [],
		"PASSES": [
			{"TARGET": "buffer", "PERSISTENT": 1, "WIDTH": "$WIDTH/2"},
			{}
		]
	}*/
	void main() {}
	`
	shader, err := ParseBytes([]byte(src), "passes.fs")
	require.NoError(t, err)

	require.Len(t, shader.Passes, 2)
	assert.Equal(t, "buffer", shader.Passes[0].Target)
	assert.True(t, shader.Passes[0].Persistent)
	assert.Equal(t, "$WIDTH/2", shader.Passes[0].Width)
	assert.Empty(t, shader.Passes[1].Target)
	assert.False(t, shader.Passes[1].Persistent)
}

func TestParseBytesImported(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Import
	}{
		{
			name: "object with PATH entries",
			src:  `/*{ "IMPORTED": {"b": {"PATH": "b.png"}, "a": {"PATH": "a.png"}} }*/` + "\nvoid main() {}",
			want: []Import{{Name: "a", Path: "a.png"}, {Name: "b", Path: "b.png"}},
		},
		{
			name: "object with string entries",
			src:  `/*{ "IMPORTED": {"tex": "tex.jpg"} }*/` + "\nvoid main() {}",
			want: []Import{{Name: "tex", Path: "tex.jpg"}},
		},
		{
			name: "empty array ignored",
			src:  `/*{ "IMPORTED": [] }*/` + "\nvoid main() {}",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shader, err := ParseBytes([]byte(tt.src), "imported.fs")
			require.NoError(t, err)
			assert.Equal(t, tt.want, shader.Imported)
		})
	}
}

func TestParseFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.fs")
	require.NoError(t, os.WriteFile(path, []byte(minimalShader), 0644))

	shader, err := Parse(path)
	require.NoError(t, err)
	assert.Len(t, shader.Inputs, 1)

	_, err = Parse(filepath.Join(dir, "missing.fs"))
	assert.Error(t, err)
}

func TestShaderKind(t *testing.T) {
	tests := []struct {
		name   string
		inputs []Input
		want   Kind
	}{
		{
			name: "generator",
			want: Generator,
		},
		{
			name:   "filter",
			inputs: []Input{{Name: "inputImage", Type: "image"}},
			want:   Filter,
		},
		{
			name: "transition",
			inputs: []Input{
				{Name: "startImage", Type: "image"},
				{Name: "endImage", Type: "image"},
				{Name: "progress", Type: "float"},
			},
			want: Transition,
		},
		{
			name: "incomplete transition is a generator",
			inputs: []Input{
				{Name: "startImage", Type: "image"},
				{Name: "progress", Type: "float"},
			},
			want: Generator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Shader{Inputs: tt.inputs}
			assert.Equal(t, tt.want, s.Kind())
		})
	}
}

func TestInputDisplayName(t *testing.T) {
	assert.Equal(t, "Blur Amount", Input{Name: "blur", Label: "Blur Amount"}.DisplayName())
	assert.Equal(t, "blur", Input{Name: "blur"}.DisplayName())
}
