package convert

import (
	"fmt"
	"os"
	"strings"

	"github.com/dreness/klproj/internal/glsl"
	"github.com/dreness/klproj/internal/isf"
	"github.com/dreness/klproj/internal/project"
)

// Options configures a conversion.
type Options struct {
	API    project.Profile // target API written to the project root
	Width  int
	Height int

	// VertexSource is an optional sidecar vertex shader body; when empty
	// the default pass-through vertex shader is used.
	VertexSource string
}

// DefaultOptions returns the conversion defaults: GL3 at 1920x1080.
func DefaultOptions() Options {
	return Options{API: project.ProfileGL3, Width: 1920, Height: 1080}
}

// Convert assembles a project from a parsed composite shader. file names
// the source in error messages.
//
// The pipeline is synchronous over immutable inputs: map inputs to
// parameters, adapt the shader body, build stages and a single render
// pass, attach metadata. Multi-pass composites with render targets or
// persistent buffers are outside the converter's contract and fail
// explicitly.
func Convert(shader *isf.Shader, file string, opts Options) (*project.Project, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%s: convert: invalid resolution %dx%d", file, opts.Width, opts.Height)
	}
	if err := checkSinglePass(shader, file); err != nil {
		return nil, err
	}

	params := EnvironmentParams(0)
	inputs, err := MapInputs(file, shader.Inputs)
	if err != nil {
		return nil, err
	}
	params = append(params, inputs...)

	sourceProfile := stageProfile(opts.API)

	fragment := project.NewStage(project.StageFragment)
	adapted, err := glsl.Adapt(shader.Body, params, sourceProfile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := fragment.AddSource(sourceProfile, adapted); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	vertex := project.NewStage(project.StageVertex)
	vertex.Hidden = true
	vertex.Params = []project.Parameter{project.MVPParam()}
	vertexCode := glsl.DefaultVertexShader(sourceProfile)
	if opts.VertexSource != "" {
		vertexCode, err = glsl.AdaptVertex(opts.VertexSource, params, sourceProfile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	if err := vertex.AddSource(sourceProfile, vertexCode); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	pass := project.NewPass(project.PassRender, passLabel(shader), opts.Width, opts.Height)
	pass.Stages = []*project.Stage{vertex, fragment}

	proj := project.New(opts.API).SetResolution(opts.Width, opts.Height)
	if shader.Description != "" {
		proj.Props.Comment = shader.Description
	}
	if shader.Version != "" {
		proj.Props.Author = "ISF v" + shader.Version
	}
	for _, p := range params {
		proj.AddParam(p)
	}
	proj.AddPass(pass)

	if err := project.Validate(proj); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return proj, nil
}

// ConvertFile reads, parses, and converts a composite file. A sidecar
// vertex shader (same base name, .vs extension) is picked up automatically.
func ConvertFile(path string, opts Options) (*project.Project, error) {
	shader, err := isf.Parse(path)
	if err != nil {
		return nil, err
	}

	if opts.VertexSource == "" {
		if vs, err := os.ReadFile(sidecarPath(path)); err == nil {
			opts.VertexSource = string(vs)
		}
	}

	return Convert(shader, path, opts)
}

// sidecarPath returns the companion vertex shader path for a composite file.
func sidecarPath(path string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndex(path, "/") {
		return path[:i] + ".vs"
	}
	return path + ".vs"
}

// checkSinglePass accepts shaders with no PASSES array, or a degenerate
// single-entry array without a named target (equivalent to single-pass).
// Everything else needs a pass-graph model this converter does not have.
func checkSinglePass(shader *isf.Shader, file string) error {
	switch {
	case len(shader.Passes) == 0:
		return nil
	case len(shader.Passes) == 1 && shader.Passes[0].Target == "" && !shader.Passes[0].Persistent:
		return nil
	}
	return fmt.Errorf("%s: convert: multi-pass composite shaders (persistent buffers, render targets) are not supported", file)
}

// stageProfile narrows the project API to the GLSL dialect sources are
// registered under.
func stageProfile(api project.Profile) project.Profile {
	if api == project.ProfileGL2 {
		return project.ProfileGL2
	}
	return project.ProfileGL3
}

// passLabel derives the pass label from the description (truncated) or the
// shader's classification. Truncation counts runes, not bytes; cutting a
// multi-byte character in half would put invalid UTF-8 in the container.
func passLabel(shader *isf.Shader) string {
	if d := shader.Description; d != "" {
		if r := []rune(d); len(r) > 30 {
			return string(r[:30])
		}
		return d
	}
	switch shader.Kind() {
	case isf.Filter:
		return "ISF Filter"
	case isf.Transition:
		return "ISF Transition"
	default:
		return "ISF Generator"
	}
}
