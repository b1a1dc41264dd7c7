package glsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreness/klproj/internal/project"
)

func TestDefaultVertexShader(t *testing.T) {
	gl3 := DefaultVertexShader(project.ProfileGL3)
	assert.Contains(t, gl3, "#version 150")
	assert.Contains(t, gl3, "in vec4 a_position;")
	assert.Contains(t, gl3, "gl_Position = mvp * a_position;")

	gl2 := DefaultVertexShader(project.ProfileGL2)
	assert.Contains(t, gl2, "#version 120")
	assert.Contains(t, gl2, "attribute vec4 a_position;")
}

func TestAdaptVertexTypical(t *testing.T) {
	src := `varying vec2 v_uv;

void main() {
	isf_vertShaderInit();
	v_uv = isf_FragNormCoord;
}
`
	out, err := AdaptVertex(src, envParams(), project.ProfileGL3)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#version 150\n"))
	assert.Contains(t, out, "out vec2 v_uv;")
	assert.Contains(t, out, "in vec4 a_position;")
	assert.Contains(t, out, "uniform mat4 mvp;")
	assert.Contains(t, out, "gl_Position = mvp * a_position;")
	assert.Contains(t, out, "v_uv = ((a_position.xy + 1.0) * 0.5);")
	assert.NotContains(t, out, "isf_vertShaderInit")
	assert.NotContains(t, out, "varying")
}

func TestAdaptVertexVersionConditional(t *testing.T) {
	src := `#if __VERSION__ <= 120
varying vec2 v_uv;
#else
out vec2 v_uv;
#endif

void main() {
	isf_vertShaderInit();
	v_uv = vec2(0.0);
}
`
	out, err := AdaptVertex(src, nil, project.ProfileGL3)
	require.NoError(t, err)

	// The modern branch survives, the legacy one is gone.
	assert.Contains(t, out, "out vec2 v_uv;")
	assert.NotContains(t, out, "varying")
	assert.NotContains(t, out, "__VERSION__")
}

func TestAdaptVertexKeepsExistingPosition(t *testing.T) {
	src := `in vec4 a_position;
uniform mat4 mvp;

void main() {
	gl_Position = mvp * a_position;
}
`
	out, err := AdaptVertex(src, nil, project.ProfileGL3)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "in vec4 a_position;"))
	assert.Equal(t, 1, strings.Count(out, "uniform mat4 mvp;"))
	assert.Equal(t, 1, strings.Count(out, "gl_Position"))
}

func TestAdaptVertexNoMain(t *testing.T) {
	src := "out vec2 v_uv;\n"
	_, err := AdaptVertex(src, nil, project.ProfileGL3)
	require.Error(t, err)

	var aerr *AdaptError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "vertex", aerr.Stage)
	assert.Equal(t, "main", aerr.Token)
}

func TestAdaptVertexResidualToken(t *testing.T) {
	src := `void main() {
	isf_somethingElse();
}
`
	_, err := AdaptVertex(src, nil, project.ProfileGL3)
	require.Error(t, err)

	var aerr *AdaptError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Message, "unsupported built-in")
}

func TestAdaptVertexIdempotent(t *testing.T) {
	src := `varying vec2 v_uv;
void main() {
	isf_vertShaderInit();
	v_uv = isf_FragNormCoord;
}
`
	once, err := AdaptVertex(src, nil, project.ProfileGL3)
	require.NoError(t, err)

	twice, err := AdaptVertex(once, nil, project.ProfileGL3)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
