package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject() *Project {
	stage := NewStage(StageFragment)
	_ = stage.AddSource(ProfileGL3, "void main() {}")

	pass := NewPass(PassRender, "Main", 640, 480)
	pass.Stages = []*Stage{stage}

	p := New(ProfileGL3).SetResolution(640, 480)
	p.AddParam(TimeParam("time", 1.0))
	p.AddPass(pass)
	return p
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, Validate(testProject()))
}

func TestValidateDuplicateNamesSameScope(t *testing.T) {
	p := testProject()
	p.AddParam(TimeParam("time", 2.0))

	err := Validate(p)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "project", errs[0].Path)
	assert.Contains(t, errs[0].Message, `duplicate parameter variable name "time"`)
	assert.NotEmpty(t, errs[0].Suggestion)
}

func TestValidateSameNameDifferentScopes(t *testing.T) {
	// The same variable name in different scopes is legal; scopes shadow.
	p := testProject()
	p.Passes[0].Params = append(p.Passes[0].Params, TimeParam("time", 1.0))
	p.Passes[0].Stages[0].Params = append(p.Passes[0].Stages[0].Params, TimeParam("time", 1.0))

	assert.NoError(t, Validate(p))
}

func TestValidateSameNameInSameKindStages(t *testing.T) {
	// Two stages of the same kind in one pass are distinct scopes; the
	// same variable name in each is not a duplicate.
	p := testProject()
	for i := 0; i < 2; i++ {
		s := NewStage(StageCompute)
		require.NoError(t, s.AddSource(ProfileGL3, "void main() {}"))
		s.Params = []Parameter{TimeParam("t", 1.0)}
		p.Passes[0].Stages = append(p.Passes[0].Stages, s)
	}

	assert.NoError(t, Validate(p))
}

func TestValidateEmptyVariableName(t *testing.T) {
	p := testProject()
	p.AddParam(Parameter{Type: ParamFloat1, DisplayName: "Broken"})

	err := Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no variable name")
}

func TestValidateStageWithoutSources(t *testing.T) {
	p := testProject()
	p.Passes[0].Stages = append(p.Passes[0].Stages, NewStage(StageVertex))

	err := Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass[0].stage[VERTEX]")
	assert.Contains(t, err.Error(), "no shader sources")
}

func TestValidateFileWatchStageNeedsNoSources(t *testing.T) {
	p := testProject()
	watched := NewStage(StageVertex)
	watched.FileWatch = true
	watched.FileWatchPath = "/tmp/shader.vs"
	p.Passes[0].Stages = append(p.Passes[0].Stages, watched)

	assert.NoError(t, Validate(p))
}

func TestValidateBadPropType(t *testing.T) {
	p := testProject()
	p.AddParam(Parameter{
		Type:         ParamFloat1,
		VariableName: "bad",
		Props:        []Prop{{Name: "value", Value: []int{1, 2}}},
	})

	err := Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestValidateCollectsAllViolations(t *testing.T) {
	p := testProject()
	p.AddParam(TimeParam("time", 2.0))
	p.Passes[0].Stages = append(p.Passes[0].Stages, NewStage(StageGeometry))

	err := Validate(p)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs.Error(), "found 2 validation errors")
}

func TestStageAddSourceRejectsDuplicateProfile(t *testing.T) {
	s := NewStage(StageFragment)
	require.NoError(t, s.AddSource(ProfileGL3, "a"))

	err := s.AddSource(ProfileGL3, "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a source for profile GL3")

	// The original source is untouched.
	src, ok := s.Source(ProfileGL3)
	require.True(t, ok)
	assert.Equal(t, "a", src.Code)
}

func TestWalkParamsOrder(t *testing.T) {
	p := testProject()
	p.Passes[0].Params = append(p.Passes[0].Params, ResolutionParam("resolution"))
	p.Passes[0].Stages[0].Params = append(p.Passes[0].Stages[0].Params, MVPParam())

	var visited []string
	err := WalkParams(p, func(scope Scope, param *Parameter) error {
		visited = append(visited, scope.String()+":"+param.VariableName)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"project:time",
		"pass[0]:resolution",
		"pass[0].stage[FRAGMENT]:mvp",
	}, visited)
}

func TestWalkParamsStopsOnError(t *testing.T) {
	p := testProject()
	p.AddParam(ResolutionParam("resolution"))

	count := 0
	err := WalkParams(p, func(Scope, *Parameter) error {
		count++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, count)
}
