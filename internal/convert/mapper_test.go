package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreness/klproj/internal/isf"
	"github.com/dreness/klproj/internal/project"
)

func TestEnvironmentParams(t *testing.T) {
	params := EnvironmentParams(0)
	require.Len(t, params, 6)

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.VariableName
	}
	assert.Equal(t, []string{"TIME", "RENDERSIZE", "DATE", "TIMEDELTA", "FRAMEINDEX", "PASSINDEX"}, names)

	assert.Equal(t, project.ParamClock, params[0].Type)
	assert.Equal(t, project.ParamFrameResolution, params[1].Type)
	assert.Equal(t, project.ParamDate, params[2].Type)
	assert.Equal(t, project.ParamFrameDelta, params[3].Type)
	assert.Equal(t, project.ParamFrameNumber, params[4].Type)
	assert.Equal(t, project.ParamFloat1, params[5].Type)

	v, ok := params[5].Prop("value")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestMapInputScalars(t *testing.T) {
	tests := []struct {
		name      string
		input     isf.Input
		wantType  project.ParamType
		wantValue any
		wantMin   any
		wantMax   any
	}{
		{
			name:      "float with full range",
			input:     isf.Input{Name: "amount", Type: "float", Default: 0.5, Min: 0.0, Max: 2.0},
			wantType:  project.ParamFloat1,
			wantValue: 0.5,
			wantMin:   0.0,
			wantMax:   2.0,
		},
		{
			name:      "long behaves as float",
			input:     isf.Input{Name: "mode", Type: "long", Default: 1.0},
			wantType:  project.ParamFloat1,
			wantValue: 1.0,
		},
		{
			name:      "bool default true",
			input:     isf.Input{Name: "flag", Type: "bool", Default: true},
			wantType:  project.ParamFloat1,
			wantValue: 1.0,
			wantMin:   0.0,
			wantMax:   1.0,
		},
		{
			name:      "event gets a zero value and unit range",
			input:     isf.Input{Name: "trigger", Type: "event"},
			wantType:  project.ParamFloat1,
			wantValue: 0.0,
			wantMin:   0.0,
			wantMax:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param, err := MapInput("test.fs", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, param.Type)
			assert.Equal(t, tt.input.Name, param.VariableName)

			if tt.wantValue != nil {
				v, ok := param.Prop("value")
				require.True(t, ok)
				assert.Equal(t, tt.wantValue, v)
			}
			if tt.wantMin != nil {
				v, ok := param.Prop("min")
				require.True(t, ok)
				assert.Equal(t, tt.wantMin, v)
			}
			if tt.wantMax != nil {
				v, ok := param.Prop("max")
				require.True(t, ok)
				assert.Equal(t, tt.wantMax, v)
			}
		})
	}
}

func TestMapInputFloatWithoutRange(t *testing.T) {
	param, err := MapInput("test.fs", isf.Input{Name: "x", Type: "float"})
	require.NoError(t, err)

	_, hasValue := param.Prop("value")
	_, hasMin := param.Prop("min")
	_, hasMax := param.Prop("max")
	assert.False(t, hasValue)
	assert.False(t, hasMin)
	assert.False(t, hasMax)
}

func TestMapInputPoint2D(t *testing.T) {
	param, err := MapInput("test.fs", isf.Input{
		Name:    "center",
		Type:    "point2D",
		Default: []any{0.25, 0.75},
		Max:     []any{1.0, 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, project.ParamFloat2, param.Type)

	v, ok := param.Prop("value")
	require.True(t, ok)
	assert.Equal(t, project.Vec2{X: 0.25, Y: 0.75}, v)

	_, hasMin := param.Prop("min")
	assert.False(t, hasMin)

	max, ok := param.Prop("max")
	require.True(t, ok)
	assert.Equal(t, project.Vec2{X: 1, Y: 1}, max)
}

func TestMapInputColor(t *testing.T) {
	t.Run("full RGBA default", func(t *testing.T) {
		param, err := MapInput("test.fs", isf.Input{
			Name:    "tint",
			Type:    "color",
			Default: []any{1.0, 0.5, 0.25, 0.75},
		})
		require.NoError(t, err)
		assert.Equal(t, project.ParamFloat4, param.Type)

		v, ok := param.Prop("value")
		require.True(t, ok)
		assert.Equal(t, project.Vec4{X: 1, Y: 0.5, Z: 0.25, W: 0.75}, v)
	})

	t.Run("RGB default pads opaque alpha", func(t *testing.T) {
		param, err := MapInput("test.fs", isf.Input{
			Name:    "tint",
			Type:    "color",
			Default: []any{0.1, 0.2, 0.3},
		})
		require.NoError(t, err)

		v, ok := param.Prop("value")
		require.True(t, ok)
		assert.Equal(t, project.Vec4{X: 0.1, Y: 0.2, Z: 0.3, W: 1}, v)
	})

	t.Run("no default means opaque white", func(t *testing.T) {
		param, err := MapInput("test.fs", isf.Input{Name: "tint", Type: "color"})
		require.NoError(t, err)

		v, ok := param.Prop("value")
		require.True(t, ok)
		assert.Equal(t, project.Vec4{X: 1, Y: 1, Z: 1, W: 1}, v)
	})
}

func TestMapInputTextures(t *testing.T) {
	image, err := MapInput("test.fs", isf.Input{Name: "inputImage", Type: "image"})
	require.NoError(t, err)
	assert.Equal(t, project.ParamTexture2D, image.Type)

	filter, ok := image.Prop("filter")
	require.True(t, ok)
	assert.Equal(t, "LINEAR", filter)
	wrap, ok := image.Prop("wrap")
	require.True(t, ok)
	assert.Equal(t, "REPEAT", wrap)

	for _, typ := range []string{"audio", "audioFFT"} {
		param, err := MapInput("test.fs", isf.Input{Name: "sound", Type: typ})
		require.NoError(t, err)
		assert.Equal(t, project.ParamTexture2D, param.Type)
	}
}

func TestMapInputUnsupportedType(t *testing.T) {
	_, err := MapInput("test.fs", isf.Input{Name: "x", Type: "quaternion"})
	require.Error(t, err)

	var uerr *UnsupportedInputTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "x", uerr.Name)
	assert.Equal(t, "quaternion", uerr.Type)
	assert.Contains(t, err.Error(), "test.fs")
}

func TestMapInputsPreservesOrder(t *testing.T) {
	inputs := []isf.Input{
		{Name: "c", Type: "float"},
		{Name: "a", Type: "bool"},
		{Name: "b", Type: "color"},
	}
	params, err := MapInputs("test.fs", inputs)
	require.NoError(t, err)

	require.Len(t, params, 3)
	assert.Equal(t, "c", params[0].VariableName)
	assert.Equal(t, "a", params[1].VariableName)
	assert.Equal(t, "b", params[2].VariableName)
}
