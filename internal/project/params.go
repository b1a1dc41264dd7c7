package project

// Helper constructors for commonly-used parameter configurations.

// TimeParam returns a running clock parameter.
func TimeParam(name string, speed float64) Parameter {
	return Parameter{
		Type:         ParamClock,
		DisplayName:  "Time",
		VariableName: name,
		Props: []Prop{
			{Name: "running", Value: 1.0},
			{Name: "direction", Value: 1.0},
			{Name: "speed", Value: speed},
			{Name: "loop", Value: 0.0},
			{Name: "loopStart", Value: 0.0},
			{Name: "loopEnd", Value: 6.28319},
		},
	}
}

// ResolutionParam returns a frame-resolution parameter.
func ResolutionParam(name string) Parameter {
	return Parameter{
		Type:         ParamFrameResolution,
		DisplayName:  "Resolution",
		VariableName: name,
	}
}

// MouseParam returns a simple mouse-input parameter. KodeLife inverts Y by
// default so shader coordinates match window coordinates.
func MouseParam(name string, normalized bool) Parameter {
	norm := 0.0
	if normalized {
		norm = 1.0
	}
	return Parameter{
		Type:         ParamMouseSimple,
		DisplayName:  "Mouse",
		VariableName: name,
		Props: []Prop{
			{Name: "variant", Value: 1.0},
			{Name: "normalize", Value: norm},
			{Name: "invert", Value: Vec2{X: 0, Y: 1}},
		},
	}
}

// MVPParam returns the model-view-projection matrix parameter vertex stages
// depend on.
func MVPParam() Parameter {
	return Parameter{
		Type:         ParamTransformMVP,
		DisplayName:  "Model View Projection Matrix",
		VariableName: "mvp",
	}
}

// ShadertoyParams returns the standard Shadertoy-compatible uniform set, in
// the order Shadertoy documents them.
func ShadertoyParams() []Parameter {
	return []Parameter{
		ResolutionParam("iResolution"),
		TimeParam("iTime", 1.0),
		{Type: ParamFrameDelta, DisplayName: "Frame Delta", VariableName: "iTimeDelta"},
		{Type: ParamFrameNumber, DisplayName: "Frame Number", VariableName: "iFrame"},
		MouseParam("iMouse", false),
		{Type: ParamDate, DisplayName: "Date", VariableName: "iDate"},
		{Type: ParamAudioSampleRate, DisplayName: "Audio Sample Rate", VariableName: "iSampleRate"},
	}
}
