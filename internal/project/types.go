// Package project defines the in-memory model of a KodeLife project:
// a tree of passes, shader stages, shader sources, and typed parameters.
//
// Entities are constructed bottom-up (parameters and sources before stages,
// stages before passes, passes before the project) and are treated as
// read-only once handed to the serializer.
package project

import "fmt"

// Profile identifies a target shading-language/API dialect.
type Profile string

const (
	ProfileDX9    Profile = "DX9"
	ProfileES3    Profile = "ES3"
	ProfileES3300 Profile = "ES3-300"
	ProfileES3310 Profile = "ES3-310"
	ProfileES3320 Profile = "ES3-320"
	ProfileGL2    Profile = "GL2"
	ProfileGL3    Profile = "GL3"
	ProfileMTL    Profile = "MTL"
)

// ParseProfile validates a profile tag read from user input or a document.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(s); p {
	case ProfileDX9, ProfileES3, ProfileES3300, ProfileES3310, ProfileES3320,
		ProfileGL2, ProfileGL3, ProfileMTL:
		return p, nil
	}
	return "", fmt.Errorf("unknown shader profile %q", s)
}

// StageKind identifies a pipeline stage role, in pipeline order.
type StageKind string

const (
	StageVertex      StageKind = "VERTEX"
	StageTessControl StageKind = "TESS_CONTROL"
	StageTessEval    StageKind = "TESS_EVAL"
	StageGeometry    StageKind = "GEOMETRY"
	StageFragment    StageKind = "FRAGMENT"
	StageCompute     StageKind = "COMPUTE"
)

// ParseStageKind validates a stage kind tag.
func ParseStageKind(s string) (StageKind, error) {
	switch k := StageKind(s); k {
	case StageVertex, StageTessControl, StageTessEval, StageGeometry,
		StageFragment, StageCompute:
		return k, nil
	}
	return "", fmt.Errorf("unknown stage kind %q", s)
}

// PassKind distinguishes graphics passes from compute passes.
type PassKind string

const (
	PassRender  PassKind = "RENDER"
	PassCompute PassKind = "COMPUTE"
)

// ParsePassKind validates a pass kind tag.
func ParsePassKind(s string) (PassKind, error) {
	switch k := PassKind(s); k {
	case PassRender, PassCompute:
		return k, nil
	}
	return "", fmt.Errorf("unknown pass kind %q", s)
}

// ParamType is the closed set of parameter kinds a shader stage can consume.
type ParamType string

const (
	ParamClock             ParamType = "CLOCK"
	ParamFrameResolution   ParamType = "FRAME_RESOLUTION"
	ParamFrameDelta        ParamType = "FRAME_DELTA"
	ParamFrameNumber       ParamType = "FRAME_NUMBER"
	ParamMouseSimple       ParamType = "INPUT_MOUSE_SIMPLE"
	ParamDate              ParamType = "DATE"
	ParamAudioSampleRate   ParamType = "AUDIO_SAMPLE_RATE"
	ParamAudioSpectrumFull ParamType = "AUDIO_SPECTRUM_FULL"
	ParamAudioSpectrumSplit ParamType = "AUDIO_SPECTRUM_SPLIT"
	ParamFloat1            ParamType = "CONSTANT_FLOAT1"
	ParamFloat2            ParamType = "CONSTANT_FLOAT2"
	ParamFloat3            ParamType = "CONSTANT_FLOAT3"
	ParamFloat4            ParamType = "CONSTANT_FLOAT4"
	ParamTexture2D         ParamType = "CONSTANT_TEXTURE_2D"
	ParamPrevFrame         ParamType = "FRAME_PREV_FRAME"
	ParamPrevPass          ParamType = "FRAME_PREV_PASS"
	ParamTransformMVP      ParamType = "TRANSFORM_MVP"
)

// ParseParamType validates a parameter type tag.
func ParseParamType(s string) (ParamType, error) {
	switch t := ParamType(s); t {
	case ParamClock, ParamFrameResolution, ParamFrameDelta, ParamFrameNumber,
		ParamMouseSimple, ParamDate, ParamAudioSampleRate,
		ParamAudioSpectrumFull, ParamAudioSpectrumSplit,
		ParamFloat1, ParamFloat2, ParamFloat3, ParamFloat4,
		ParamTexture2D, ParamPrevFrame, ParamPrevPass, ParamTransformMVP:
		return t, nil
	}
	return "", fmt.Errorf("unknown parameter type %q", s)
}

// Vec2 is a 2-component vector.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3-component vector.
type Vec3 struct {
	X, Y, Z float64
}

// Vec4 is a 4-component vector.
type Vec4 struct {
	X, Y, Z, W float64
}

// Prop is one kind-specific parameter property. Value must be one of
// float64, string, Vec2, Vec3, or Vec4; the serializer rejects anything
// else. Order is preserved.
type Prop struct {
	Name  string
	Value any
}

// Parameter is a named, typed value supplied to one or more shader stages
// at a defined scope (project, pass, or stage). Kind-specific fields like
// current value, UI range, and sampler state live in Props.
type Parameter struct {
	Type         ParamType
	DisplayName  string
	VariableName string
	UIExpanded   bool
	Props        []Prop
}

// Prop returns the value of a named property and whether it is set.
func (p *Parameter) Prop(name string) (any, bool) {
	for _, pr := range p.Props {
		if pr.Name == name {
			return pr.Value, true
		}
	}
	return nil, false
}

// SetProp appends or replaces a property, preserving insertion order.
func (p *Parameter) SetProp(name string, value any) {
	for i, pr := range p.Props {
		if pr.Name == name {
			p.Props[i].Value = value
			return
		}
	}
	p.Props = append(p.Props, Prop{Name: name, Value: value})
}

// ShaderSource holds the verbatim source text for one profile. The model
// never interprets the text.
type ShaderSource struct {
	Profile Profile
	Code    string
}

// Stage is one shader pipeline stage. Sources acts as an ordered mapping
// from profile to source text; at most one source per profile (enforced by
// AddSource and again at serialization time).
type Stage struct {
	Kind          StageKind
	Enabled       bool
	Hidden        bool
	Locked        bool
	FileWatch     bool
	FileWatchPath string
	Params        []Parameter
	Sources       []ShaderSource
}

// NewStage returns an enabled, visible stage of the given kind.
func NewStage(kind StageKind) *Stage {
	return &Stage{Kind: kind, Enabled: true}
}

// AddSource registers source text for a profile. Registering the same
// profile twice is a caller bug and returns an error rather than silently
// replacing the earlier text.
func (s *Stage) AddSource(profile Profile, code string) error {
	for _, src := range s.Sources {
		if src.Profile == profile {
			return fmt.Errorf("stage %s already has a source for profile %s", s.Kind, profile)
		}
	}
	s.Sources = append(s.Sources, ShaderSource{Profile: profile, Code: code})
	return nil
}

// Source returns the source registered for a profile, if any.
func (s *Stage) Source(profile Profile) (ShaderSource, bool) {
	for _, src := range s.Sources {
		if src.Profile == profile {
			return src, true
		}
	}
	return ShaderSource{}, false
}

// ColorMask controls which channels a pass writes.
type ColorMask struct {
	R, G, B, A bool
}

// BlendState is the fixed-function blend configuration for a pass.
type BlendState struct {
	Enabled     bool
	SrcRGB      string
	DstRGB      string
	SrcA        string
	DstA        string
	EquationRGB string
	EquationA   string
}

// CullState is the face-culling configuration for a pass.
type CullState struct {
	Enabled bool
	CCW     bool
}

// DepthState is the depth-test configuration for a pass.
type DepthState struct {
	Enabled bool
	Write   bool
	Func    string
}

// RenderState groups the fixed-function state of a render pass.
type RenderState struct {
	ColorMask ColorMask
	Blend     BlendState
	Cull      CullState
	Depth     DepthState
}

// DefaultRenderState returns the state KodeLife uses for a fresh pass:
// all channels written, blending off, CCW culling, LESS depth test.
func DefaultRenderState() RenderState {
	return RenderState{
		ColorMask: ColorMask{R: true, G: true, B: true, A: true},
		Blend: BlendState{
			SrcRGB:      "SRC_ALPHA",
			DstRGB:      "ONE_MINUS_SRC_ALPHA",
			SrcA:        "ONE",
			DstA:        "ONE_MINUS_SRC_ALPHA",
			EquationRGB: "ADD",
			EquationA:   "ADD",
		},
		Cull:  CullState{Enabled: true, CCW: true},
		Depth: DepthState{Enabled: true, Write: true, Func: "LESS"},
	}
}

// RenderTarget describes the color/depth attachments of a pass.
type RenderTarget struct {
	Width          int
	Height         int
	ResolutionMode string
	ColorFormat    string
	ClearColor     Vec4
	DepthClear     bool
}

// DefaultRenderTarget returns a project-sized RGBA32F target cleared to
// opaque black.
func DefaultRenderTarget(width, height int) RenderTarget {
	return RenderTarget{
		Width:          width,
		Height:         height,
		ResolutionMode: "PROJECT",
		ColorFormat:    "RGBA32F",
		ClearColor:     Vec4{W: 1},
		DepthClear:     true,
	}
}

// Projection holds both perspective and orthographic settings; Type selects
// which one is active (0 = perspective).
type Projection struct {
	Type        int
	FOV         float64
	PerspectiveZ Vec2
	OrthoBounds Vec4
	OrthoZ      Vec2
}

// View is the camera position for a pass.
type View struct {
	Eye    Vec3
	Center Vec3
	Up     Vec3
}

// Model is the model transform for a pass.
type Model struct {
	Scale     Vec3
	Rotate    Vec3
	Translate Vec3
}

// Transform groups the camera/model transforms of a render pass.
type Transform struct {
	Projection Projection
	View       View
	Model      Model
}

// DefaultTransform returns the identity-ish transform KodeLife starts with.
func DefaultTransform() Transform {
	return Transform{
		Projection: Projection{
			FOV:          60,
			PerspectiveZ: Vec2{X: 0.01, Y: 10},
			OrthoBounds:  Vec4{X: -1, Y: 1, Z: -1, W: 1},
			OrthoZ:       Vec2{X: -10, Y: 10},
		},
		View:  View{Eye: Vec3{Z: 4}, Up: Vec3{Y: 1}},
		Model: Model{Scale: Vec3{X: 1, Y: 1, Z: 1}},
	}
}

// Pass is one render or compute pass: metadata, pass-scope parameters, and
// an ordered list of stages.
type Pass struct {
	Kind          PassKind
	Label         string
	Enabled       bool
	PrimitiveType string
	RenderState   RenderState
	Target        RenderTarget
	Transform     Transform
	Params        []Parameter
	Stages        []*Stage
}

// NewPass returns an enabled render pass with default state, target, and
// transform blocks.
func NewPass(kind PassKind, label string, width, height int) *Pass {
	return &Pass{
		Kind:          kind,
		Label:         label,
		Enabled:       true,
		PrimitiveType: "TRIANGLES",
		RenderState:   DefaultRenderState(),
		Target:        DefaultRenderTarget(width, height),
		Transform:     DefaultTransform(),
	}
}

// Properties is the project-level metadata block.
type Properties struct {
	Creator         string
	CreatorVersion  string
	VersionMajor    int
	VersionMinor    int
	VersionPatch    int
	Author          string
	Comment         string
	Enabled         bool
	Width           int
	Height          int
	Format          string
	ClearColor      Vec4
	AudioSourceType int
	AudioFilePath   string
}

// FormatVersion is the container format version written to the root element.
const FormatVersion = 19

// Project is the root of the model: metadata, project-scope parameters, and
// an ordered list of passes. Immutable once handed to the serializer.
type Project struct {
	Version int
	API     Profile
	Props   Properties
	Params  []Parameter
	Passes  []*Pass
}

// New returns a project targeting the given API with KodeLife's stock
// metadata defaults (1920x1080, RGBA32F, opaque black clear).
func New(api Profile) *Project {
	return &Project{
		Version: FormatVersion,
		API:     api,
		Props: Properties{
			Creator:        "net.hexler.KodeLife",
			CreatorVersion: "1.2.3.202",
			VersionMajor:   1,
			VersionMinor:   1,
			VersionPatch:   1,
			Enabled:        true,
			Width:          1920,
			Height:         1080,
			Format:         "RGBA32F",
			ClearColor:     Vec4{W: 1},
		},
	}
}

// SetResolution sets the project render size.
func (p *Project) SetResolution(width, height int) *Project {
	p.Props.Width = width
	p.Props.Height = height
	return p
}

// AddParam appends a project-scope parameter. Order is load-bearing: some
// backends pack uniforms into one buffer in list order.
func (p *Project) AddParam(param Parameter) *Project {
	p.Params = append(p.Params, param)
	return p
}

// AddPass appends a pass. Passes execute in the order they are added.
func (p *Project) AddPass(pass *Pass) *Project {
	p.Passes = append(p.Passes, pass)
	return p
}
