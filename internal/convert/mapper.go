// Package convert turns parsed composite shaders into project models: it
// maps input descriptors to typed parameters, adapts the shader body, and
// assembles the pass/stage structure.
package convert

import (
	"fmt"

	"github.com/dreness/klproj/internal/isf"
	"github.com/dreness/klproj/internal/project"
)

// UnsupportedInputTypeError reports an input whose type tag has no
// parameter mapping. Dropping the input silently would leave a dangling
// GLSL reference, so the conversion fails instead.
type UnsupportedInputTypeError struct {
	File string
	Name string
	Type string
}

func (e *UnsupportedInputTypeError) Error() string {
	return fmt.Sprintf("%s: map: input %q has unsupported type %q", e.File, e.Name, e.Type)
}

// EnvironmentParams returns the implicit environment parameters every
// converted shader receives, in their fixed conventional order: elapsed
// time, render size, date, frame delta, frame index, pass index. This
// order precedes mapped inputs and downstream consumers (uniform
// declaration, buffer layout) rely on it.
func EnvironmentParams(passIndex int) []project.Parameter {
	return []project.Parameter{
		{
			Type:         project.ParamClock,
			DisplayName:  "Time",
			VariableName: "TIME",
			UIExpanded:   true,
			Props: []project.Prop{
				{Name: "running", Value: 1.0},
				{Name: "speed", Value: 1.0},
				{Name: "direction", Value: 1.0},
			},
		},
		{
			Type:         project.ParamFrameResolution,
			DisplayName:  "Render Size",
			VariableName: "RENDERSIZE",
			UIExpanded:   true,
		},
		{
			Type:         project.ParamDate,
			DisplayName:  "Date",
			VariableName: "DATE",
		},
		{
			Type:         project.ParamFrameDelta,
			DisplayName:  "Time Delta",
			VariableName: "TIMEDELTA",
		},
		{
			Type:         project.ParamFrameNumber,
			DisplayName:  "Frame Index",
			VariableName: "FRAMEINDEX",
		},
		{
			Type:         project.ParamFloat1,
			DisplayName:  "Pass Index",
			VariableName: "PASSINDEX",
			Props:        []project.Prop{{Name: "value", Value: float64(passIndex)}},
		},
	}
}

// MapInput converts one input descriptor to a parameter. The mapping is
// total over {event, bool, long, float, point2D, color, image, audio,
// audioFFT}; anything else is an UnsupportedInputTypeError.
func MapInput(file string, in isf.Input) (project.Parameter, error) {
	param := project.Parameter{
		DisplayName:  in.DisplayName(),
		VariableName: in.Name,
	}

	switch in.Type {
	case "event", "bool":
		param.Type = project.ParamFloat1
		value := 0.0
		if b, ok := in.Default.(bool); ok && b {
			value = 1.0
		}
		if f, ok := scalarOf(in.Default); ok {
			value = f
		}
		param.Props = []project.Prop{
			{Name: "value", Value: value},
			{Name: "min", Value: scalarOr(in.Min, 0.0)},
			{Name: "max", Value: scalarOr(in.Max, 1.0)},
		}

	case "float", "long":
		param.Type = project.ParamFloat1
		if v, ok := scalarOf(in.Default); ok {
			param.SetProp("value", v)
		}
		if v, ok := scalarOf(in.Min); ok {
			param.SetProp("min", v)
		}
		if v, ok := scalarOf(in.Max); ok {
			param.SetProp("max", v)
		}

	case "point2D":
		param.Type = project.ParamFloat2
		param.SetProp("value", vec2Of(in.Default, project.Vec2{}))
		if in.Min != nil {
			param.SetProp("min", vec2Of(in.Min, project.Vec2{}))
		}
		if in.Max != nil {
			param.SetProp("max", vec2Of(in.Max, project.Vec2{X: 1, Y: 1}))
		}

	case "color":
		param.Type = project.ParamFloat4
		param.SetProp("value", vec4Of(in.Default, project.Vec4{X: 1, Y: 1, Z: 1, W: 1}, 0, 1))
		if in.Min != nil {
			param.SetProp("min", vec4Of(in.Min, project.Vec4{}, 0, 0))
		}
		if in.Max != nil {
			param.SetProp("max", vec4Of(in.Max, project.Vec4{X: 1, Y: 1, Z: 1, W: 1}, 1, 1))
		}

	case "image":
		param.Type = project.ParamTexture2D
		param.Props = []project.Prop{
			{Name: "filter", Value: "LINEAR"},
			{Name: "wrap", Value: "REPEAT"},
		}

	case "audio", "audioFFT":
		// Audio arrives as a texture in spectrum layout; sampled like any
		// other 2D image.
		param.Type = project.ParamTexture2D

	default:
		return project.Parameter{}, &UnsupportedInputTypeError{File: file, Name: in.Name, Type: in.Type}
	}

	return param, nil
}

// MapInputs maps a descriptor list, preserving source order.
func MapInputs(file string, inputs []isf.Input) ([]project.Parameter, error) {
	params := make([]project.Parameter, 0, len(inputs))
	for _, in := range inputs {
		p, err := MapInput(file, in)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func scalarOf(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func scalarOr(v any, fallback float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return fallback
}

// vec2Of reads a JSON [x, y] list, falling back component-wise.
func vec2Of(v any, fallback project.Vec2) project.Vec2 {
	list, ok := v.([]any)
	if !ok {
		return fallback
	}
	out := fallback
	if len(list) > 0 {
		out.X = scalarOr(list[0], fallback.X)
	}
	if len(list) > 1 {
		out.Y = scalarOr(list[1], fallback.Y)
	}
	return out
}

// vec4Of reads a JSON color list, padding missing components: color
// channels pad with rgbPad and alpha with alphaPad (an RGB default still
// means an opaque color).
func vec4Of(v any, fallback project.Vec4, rgbPad, alphaPad float64) project.Vec4 {
	list, ok := v.([]any)
	if !ok {
		return fallback
	}
	vals := [4]float64{rgbPad, rgbPad, rgbPad, alphaPad}
	for i := 0; i < len(list) && i < 4; i++ {
		vals[i] = scalarOr(list[i], vals[i])
	}
	return project.Vec4{X: vals[0], Y: vals[1], Z: vals[2], W: vals[3]}
}
