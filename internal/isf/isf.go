// Package isf parses ISF (Interactive Shader Format) composite files: a
// JSON metadata block embedded in a leading comment, followed by raw GLSL.
//
// The parser extracts metadata and the residual shader body; it never
// interprets or validates the GLSL itself.
package isf

// Kind classifies a shader by its implicit image inputs.
type Kind int

const (
	// Generator shaders synthesize an image from nothing.
	Generator Kind = iota
	// Filter shaders transform exactly one implicit image input.
	Filter
	// Transition shaders blend two implicit image inputs by a progress scalar.
	Transition
)

// String returns a human-readable classification label.
func (k Kind) String() string {
	switch k {
	case Filter:
		return "filter"
	case Transition:
		return "transition"
	default:
		return "generator"
	}
}

// Input is one entry of the INPUTS metadata array.
//
// Default, Min, Max, and Identity carry whatever JSON value the metadata
// held (float64, bool, or []any for vector types); the parameter mapper
// interprets them per input type.
type Input struct {
	Name     string
	Type     string
	Label    string
	Default  any
	Min      any
	Max      any
	Identity any
	Values   []int    // for "long" enum selectors
	Labels   []string // for "long" enum selectors
}

// DisplayName returns the UI label, falling back to the variable name.
func (in Input) DisplayName() string {
	if in.Label != "" {
		return in.Label
	}
	return in.Name
}

// PassDef is one entry of the PASSES metadata array. It is parsed for
// presence and shape only; multi-pass expansion is outside the converter's
// contract.
type PassDef struct {
	Target      string
	Persistent  bool
	Float       bool
	Width       string
	Height      string
	Description string
	Name        string
}

// Import is one entry of the IMPORTED metadata object.
type Import struct {
	Name string
	Path string
}

// Shader is a parsed composite file.
type Shader struct {
	ISFVersion  string
	Version     string
	Description string
	Credit      string
	Categories  []string
	Inputs      []Input
	Passes      []PassDef
	Imported    []Import
	Body        string // residual shader source after the metadata block
}

// Input returns the named input descriptor, if declared.
func (s *Shader) Input(name string) (Input, bool) {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// Kind classifies the shader: a filter declares "inputImage", a transition
// declares "startImage", "endImage", and "progress", anything else is a
// generator.
func (s *Shader) Kind() Kind {
	if _, ok := s.Input("inputImage"); ok {
		return Filter
	}
	_, start := s.Input("startImage")
	_, end := s.Input("endImage")
	_, progress := s.Input("progress")
	if start && end && progress {
		return Transition
	}
	return Generator
}
