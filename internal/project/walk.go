package project

import "fmt"

// Scope names the declaration scope of a parameter during traversal.
type Scope struct {
	PassIndex  int // -1 for project scope
	StageIndex int // -1 for project and pass scope
	Pass       *Pass
	Stage      *Stage
}

// String renders a scope for error messages, e.g. "pass[1].stage[FRAGMENT]".
func (s Scope) String() string {
	switch {
	case s.PassIndex < 0:
		return "project"
	case s.StageIndex < 0:
		return fmt.Sprintf("pass[%d]", s.PassIndex)
	default:
		return fmt.Sprintf("pass[%d].stage[%s]", s.PassIndex, s.Stage.Kind)
	}
}

// WalkParams visits every parameter in the project in its canonical order:
// project scope first, then each pass in order (pass scope, then each stage
// in order). This single routine feeds both uniform-buffer layout and
// serialization, so the two can never disagree; returning a non-nil error
// from fn stops the walk.
func WalkParams(p *Project, fn func(scope Scope, param *Parameter) error) error {
	for i := range p.Params {
		if err := fn(Scope{PassIndex: -1, StageIndex: -1}, &p.Params[i]); err != nil {
			return err
		}
	}
	for pi, pass := range p.Passes {
		for i := range pass.Params {
			if err := fn(Scope{PassIndex: pi, StageIndex: -1, Pass: pass}, &pass.Params[i]); err != nil {
				return err
			}
		}
		for si, stage := range pass.Stages {
			for i := range stage.Params {
				scope := Scope{PassIndex: pi, StageIndex: si, Pass: pass, Stage: stage}
				if err := fn(scope, &stage.Params[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
