package project

import (
	"bytes"
	"fmt"
)

// ValidationError is a model invariant violation with enough context to
// name the offending entity.
type ValidationError struct {
	Path       string // entity path, e.g. "pass[0].stage[FRAGMENT].params[2]"
	Message    string
	Suggestion string // optional
}

// Error returns a formatted error message.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid project at %s: %s", e.Path, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}
	return msg
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "found %d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&buf, "  %d. %s\n", i+1, err.Error())
	}
	return buf.String()
}

// Validate checks the invariants the serializer depends on:
//
//   - parameter variable names are unique within their declaration scope
//     (a duplicate becomes a GLSL redeclaration error downstream)
//   - every stage has at least one profile source, unless it reads its
//     source from a watched external file
//   - at most one source per profile per stage
//   - parameter property values are of a serializable type
//
// It returns ValidationErrors listing every violation found.
func Validate(p *Project) error {
	var errs ValidationErrors

	// Dedupe scopes are keyed by position, not by Scope.String: two stages
	// of the same kind in one pass are distinct scopes even though they
	// render identically in error paths.
	seen := make(map[[2]int]map[string]bool) // (pass, stage) -> variable name set
	_ = WalkParams(p, func(scope Scope, param *Parameter) error {
		key := [2]int{scope.PassIndex, scope.StageIndex}
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if param.VariableName == "" {
			errs = append(errs, ValidationError{
				Path:    scope.String(),
				Message: fmt.Sprintf("parameter %q has no variable name", param.DisplayName),
			})
			return nil
		}
		if seen[key][param.VariableName] {
			errs = append(errs, ValidationError{
				Path:       scope.String(),
				Message:    fmt.Sprintf("duplicate parameter variable name %q", param.VariableName),
				Suggestion: "rename one of the parameters; duplicates redeclare the same GLSL uniform",
			})
		}
		seen[key][param.VariableName] = true

		for _, prop := range param.Props {
			switch prop.Value.(type) {
			case float64, string, Vec2, Vec3, Vec4:
			default:
				errs = append(errs, ValidationError{
					Path: scope.String(),
					Message: fmt.Sprintf("parameter %q property %q has unsupported type %T",
						param.VariableName, prop.Name, prop.Value),
				})
			}
		}
		return nil
	})

	for pi, pass := range p.Passes {
		for _, stage := range pass.Stages {
			path := fmt.Sprintf("pass[%d].stage[%s]", pi, stage.Kind)
			if len(stage.Sources) == 0 && stage.FileWatchPath == "" {
				errs = append(errs, ValidationError{
					Path:       path,
					Message:    "stage has no shader sources",
					Suggestion: "add a source for at least one profile or set a file watch path",
				})
			}
			profiles := make(map[Profile]bool)
			for _, src := range stage.Sources {
				if profiles[src.Profile] {
					errs = append(errs, ValidationError{
						Path:    path,
						Message: fmt.Sprintf("more than one source for profile %s", src.Profile),
					})
				}
				profiles[src.Profile] = true
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
