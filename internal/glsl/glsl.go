// Package glsl rewrites ISF shader bodies into standalone GLSL without a
// full-language parser.
//
// All rewriting is anchor-based text transformation: each step looks for a
// known textual anchor (the version directive, a macro call, a legacy
// output assignment) and rewrites around it. A step that cannot resolve its
// anchor fails with AdaptError instead of skipping — a partial rewrite
// produces a plausible-looking shader that does not compile, which is worse
// than an explicit failure.
//
// The adapter is idempotent: running it on its own output is a no-op.
package glsl

import (
	"fmt"

	"github.com/dreness/klproj/internal/project"
)

// AdaptError reports a rewrite step whose anchor was missing or malformed.
type AdaptError struct {
	Stage   string // "fragment" or "vertex"
	Token   string // the identifier or macro involved, if any
	Message string
}

func (e *AdaptError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("adapt %s shader: %s: %s", e.Stage, e.Token, e.Message)
	}
	return fmt.Sprintf("adapt %s shader: %s", e.Stage, e.Message)
}

// UniformType maps a parameter type to the GLSL type of its uniform
// declaration. The mapping is total over the model's parameter set.
func UniformType(t project.ParamType) (string, bool) {
	switch t {
	case project.ParamClock, project.ParamFrameDelta, project.ParamFrameNumber,
		project.ParamAudioSampleRate, project.ParamFloat1:
		return "float", true
	case project.ParamFrameResolution, project.ParamFloat2:
		return "vec2", true
	case project.ParamFloat3:
		return "vec3", true
	case project.ParamMouseSimple, project.ParamDate, project.ParamFloat4:
		return "vec4", true
	case project.ParamTexture2D, project.ParamPrevFrame, project.ParamPrevPass,
		project.ParamAudioSpectrumFull, project.ParamAudioSpectrumSplit:
		return "sampler2D", true
	case project.ParamTransformMVP:
		return "mat4", true
	}
	return "", false
}

// versionDirective returns the #version line prepended when a body has none.
func versionDirective(profile project.Profile) string {
	switch profile {
	case project.ProfileGL2, project.ProfileDX9:
		return "#version 120"
	case project.ProfileES3, project.ProfileES3300, project.ProfileES3310, project.ProfileES3320:
		return "#version 300 es"
	default:
		return "#version 150"
	}
}
