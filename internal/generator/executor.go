package generator

import (
	"context"
	"fmt"

	"github.com/dreness/klproj/internal/output"
)

// ExecuteOptions configures a batch run.
type ExecuteOptions struct {
	DryRun bool
	Force  bool
}

// Execute validates every operation, then runs them in order. Validation
// failures abort before any operation executes; with DryRun the plan is
// printed instead of executed.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, op := range ops {
		if opts.DryRun {
			output.Step("[dry run] " + op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		output.Success(op.Description())
	}
	return nil
}
