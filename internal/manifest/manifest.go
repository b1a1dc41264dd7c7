// Package manifest loads hand-authored project descriptions from YAML and
// builds project models from them. A manifest is the editable counterpart
// of the binary container: shader sources live in plain files next to it.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dreness/klproj/internal/glsl"
	"github.com/dreness/klproj/internal/project"
)

// Manifest describes one project. Field names follow the YAML keys.
type Manifest struct {
	Name    string `yaml:"name"`
	Author  string `yaml:"author"`
	Comment string `yaml:"comment"`
	API     string `yaml:"api"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`

	// Environment injects the implicit time/resolution/mouse parameters
	// at project scope.
	Environment bool `yaml:"environment"`

	Params []Param `yaml:"params"`
	Passes []Pass  `yaml:"passes"`
}

// Param describes one parameter at any scope.
type Param struct {
	Type    string   `yaml:"type"`
	Name    string   `yaml:"name"`
	Display string   `yaml:"display"`
	Value   *float64 `yaml:"value"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Vector  []float64 `yaml:"vector"`
}

// Pass describes one render pass.
type Pass struct {
	Label     string  `yaml:"label"`
	Primitive string  `yaml:"primitive"`
	Params    []Param `yaml:"params"`
	Stages    []Stage `yaml:"stages"`
}

// Stage describes one shader stage. Exactly one of File and Source must be
// set; File is resolved relative to the manifest.
type Stage struct {
	Kind    string  `yaml:"kind"`
	Profile string  `yaml:"profile"`
	File    string  `yaml:"file"`
	Source  string  `yaml:"source"`
	Watch   bool    `yaml:"watch"`
	Hidden  bool    `yaml:"hidden"`
	Params  []Param `yaml:"params"`
}

// Load parses a manifest file. Unknown YAML keys are rejected so typos
// surface as errors instead of silently dropped settings.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest %s: parse (check for unknown/misspelled fields): %w", path, err)
	}
	return &m, nil
}

// Build assembles a project from the manifest. dir is the directory shader
// file references resolve against (usually the manifest's own directory).
func (m *Manifest) Build(dir string) (*project.Project, error) {
	api := project.ProfileGL3
	if m.API != "" {
		var err error
		api, err = project.ParseProfile(m.API)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}

	width, height := m.Width, m.Height
	if width <= 0 {
		width = 1920
	}
	if height <= 0 {
		height = 1080
	}

	p := project.New(api).SetResolution(width, height)
	p.Props.Author = m.Author
	p.Props.Comment = m.Comment
	if m.Comment == "" {
		p.Props.Comment = m.Name
	}

	if m.Environment {
		p.AddParam(project.TimeParam("time", 1.0))
		p.AddParam(project.ResolutionParam("resolution"))
		p.AddParam(project.MouseParam("mouse", true))
	}
	for i, mp := range m.Params {
		param, err := buildParam(mp, fmt.Sprintf("params[%d]", i))
		if err != nil {
			return nil, err
		}
		p.AddParam(param)
	}

	if len(m.Passes) == 0 {
		return nil, fmt.Errorf("manifest: no passes defined")
	}
	for i, mpass := range m.Passes {
		pass, err := buildPass(mpass, i, dir, api, width, height)
		if err != nil {
			return nil, err
		}
		p.AddPass(pass)
	}

	if err := project.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func buildPass(mp Pass, index int, dir string, api project.Profile, width, height int) (*project.Pass, error) {
	label := mp.Label
	if label == "" {
		label = fmt.Sprintf("Pass %d", index+1)
	}

	pass := project.NewPass(project.PassRender, label, width, height)
	if mp.Primitive != "" {
		pass.PrimitiveType = mp.Primitive
	}

	for i, p := range mp.Params {
		param, err := buildParam(p, fmt.Sprintf("passes[%d].params[%d]", index, i))
		if err != nil {
			return nil, err
		}
		pass.Params = append(pass.Params, param)
	}

	profile := project.ProfileGL3
	if api == project.ProfileGL2 {
		profile = project.ProfileGL2
	}

	hasVertex := false
	for i, ms := range mp.Stages {
		stage, err := buildStage(ms, dir, profile, fmt.Sprintf("passes[%d].stages[%d]", index, i))
		if err != nil {
			return nil, err
		}
		if stage.Kind == project.StageVertex {
			hasVertex = true
		}
		pass.Stages = append(pass.Stages, stage)
	}
	if len(pass.Stages) == 0 {
		return nil, fmt.Errorf("manifest: passes[%d] has no stages", index)
	}

	// Every render pass needs a vertex stage; synthesize the pass-through
	// one when the manifest only lists a fragment shader.
	if !hasVertex {
		vertex := project.NewStage(project.StageVertex)
		vertex.Hidden = true
		vertex.Params = []project.Parameter{project.MVPParam()}
		if err := vertex.AddSource(profile, glsl.DefaultVertexShader(profile)); err != nil {
			return nil, err
		}
		pass.Stages = append([]*project.Stage{vertex}, pass.Stages...)
	}

	return pass, nil
}

func buildStage(ms Stage, dir string, defaultProfile project.Profile, path string) (*project.Stage, error) {
	kind, err := project.ParseStageKind(ms.Kind)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}

	profile := defaultProfile
	if ms.Profile != "" {
		profile, err = project.ParseProfile(ms.Profile)
		if err != nil {
			return nil, fmt.Errorf("manifest: %s: %w", path, err)
		}
	}

	stage := project.NewStage(kind)
	stage.Hidden = ms.Hidden

	for i, p := range ms.Params {
		param, err := buildParam(p, fmt.Sprintf("%s.params[%d]", path, i))
		if err != nil {
			return nil, err
		}
		stage.Params = append(stage.Params, param)
	}

	switch {
	case ms.File != "" && ms.Source != "":
		return nil, fmt.Errorf("manifest: %s: file and source are mutually exclusive", path)
	case ms.File != "":
		full := ms.File
		if !filepath.IsAbs(full) {
			full = filepath.Join(dir, full)
		}
		code, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("manifest: %s: %w", path, err)
		}
		if err := stage.AddSource(profile, string(code)); err != nil {
			return nil, fmt.Errorf("manifest: %s: %w", path, err)
		}
		if ms.Watch {
			stage.FileWatch = true
			stage.FileWatchPath = full
		}
	case ms.Source != "":
		if err := stage.AddSource(profile, ms.Source); err != nil {
			return nil, fmt.Errorf("manifest: %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("manifest: %s: stage needs a file or inline source", path)
	}

	return stage, nil
}

func buildParam(mp Param, path string) (project.Parameter, error) {
	ptype, err := project.ParseParamType(mp.Type)
	if err != nil {
		return project.Parameter{}, fmt.Errorf("manifest: %s: %w", path, err)
	}
	if mp.Name == "" {
		return project.Parameter{}, fmt.Errorf("manifest: %s: parameter needs a name", path)
	}

	display := mp.Display
	if display == "" {
		display = mp.Name
	}
	param := project.Parameter{
		Type:         ptype,
		DisplayName:  display,
		VariableName: mp.Name,
	}

	if len(mp.Vector) > 0 {
		v, err := vectorValue(ptype, mp.Vector)
		if err != nil {
			return project.Parameter{}, fmt.Errorf("manifest: %s: %w", path, err)
		}
		param.SetProp("value", v)
	} else if mp.Value != nil {
		param.SetProp("value", *mp.Value)
	}
	if mp.Min != nil {
		param.SetProp("min", *mp.Min)
	}
	if mp.Max != nil {
		param.SetProp("max", *mp.Max)
	}
	return param, nil
}

// vectorValue checks the component count against the parameter type.
func vectorValue(t project.ParamType, v []float64) (any, error) {
	switch t {
	case project.ParamFloat2:
		if len(v) != 2 {
			return nil, fmt.Errorf("type %s wants 2 components, got %d", t, len(v))
		}
		return project.Vec2{X: v[0], Y: v[1]}, nil
	case project.ParamFloat3:
		if len(v) != 3 {
			return nil, fmt.Errorf("type %s wants 3 components, got %d", t, len(v))
		}
		return project.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	case project.ParamFloat4:
		if len(v) != 4 {
			return nil, fmt.Errorf("type %s wants 4 components, got %d", t, len(v))
		}
		return project.Vec4{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
	}
	return nil, fmt.Errorf("type %s does not take a vector value", t)
}
