package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dreness/klproj/internal/document"
	"github.com/dreness/klproj/internal/generator"
	"github.com/dreness/klproj/internal/output"
	"github.com/dreness/klproj/internal/project"
)

// InspectCmd creates the inspect command.
func InspectCmd() *cobra.Command {
	var extractDir string

	cmd := &cobra.Command{
		Use:   "inspect <project.klproj>",
		Short: "Show the structure of an existing project file",
		Long: `Inspect decompresses and parses a .klproj container and prints its
structure: metadata, parameters per scope, passes, stages, and sources.
With --extract, shader sources are written out as plain files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			proj, err := document.Load(path)
			if err != nil {
				return err
			}

			printProject(proj)

			if extractDir != "" {
				return extractSources(cmd.Context(), proj, extractDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&extractDir, "extract", "", "Directory to extract shader sources into")

	return cmd
}

func printProject(p *project.Project) {
	output.Info(fmt.Sprintf("format v%d, API %s, %dx%d", p.Version, p.API, p.Props.Width, p.Props.Height))
	if p.Props.Comment != "" {
		output.Step("comment: " + p.Props.Comment)
	}
	if p.Props.Author != "" {
		output.Step("author: " + p.Props.Author)
	}

	_ = project.WalkParams(p, func(scope project.Scope, param *project.Parameter) error {
		output.Step(fmt.Sprintf("%s: %s %s (%s)", scope, param.Type, param.VariableName, param.DisplayName))
		return nil
	})

	for i, pass := range p.Passes {
		output.Info(fmt.Sprintf("pass[%d] %q (%s, %s)", i, pass.Label, pass.Kind, pass.PrimitiveType))
		for _, stage := range pass.Stages {
			profiles := make([]string, 0, len(stage.Sources))
			for _, src := range stage.Sources {
				profiles = append(profiles, string(src.Profile))
			}
			output.Step(fmt.Sprintf("stage %s: %d source(s) %v", stage.Kind, len(stage.Sources), profiles))
		}
	}
}

// extractSources writes every shader source to dir, named
// pass<N>.<stage>.<profile>.glsl.
func extractSources(ctx context.Context, p *project.Project, dir string) error {
	var ops []generator.Operation
	for i, pass := range p.Passes {
		for _, stage := range pass.Stages {
			for _, src := range stage.Sources {
				name := filepath.Join(dir, fmt.Sprintf("pass%d.%s.%s.glsl", i, stage.Kind, src.Profile))
				ops = append(ops, &generator.WriteFileOp{
					Path:    name,
					Content: []byte(src.Code),
					Mode:    0644,
				})
			}
		}
	}
	return generator.Execute(ctx, ops, generator.ExecuteOptions{Force: true})
}
