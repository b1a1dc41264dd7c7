package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dreness/klproj/internal/generator"
	"github.com/dreness/klproj/internal/manifest"
	"github.com/dreness/klproj/internal/output"
)

// BuildCmd creates the build command.
func BuildCmd() *cobra.Command {
	var (
		outPath string
		dryRun  bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "build <manifest.yml>",
		Short: "Build a project from a YAML manifest",
		Long: `Build assembles a .klproj file from a YAML manifest that names the
passes, stages, parameters, and shader source files of a project.
Shader file references are resolved relative to the manifest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			output.Verbose("loading manifest " + path)

			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			proj, err := m.Build(filepath.Dir(path))
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = manifestOutputPath(path)
			}
			op := &generator.WriteProjectOp{Path: outPath, Project: proj}
			return generator.Execute(cmd.Context(), []generator.Operation{op}, generator.ExecuteOptions{
				DryRun: dryRun,
				Force:  force,
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: manifest name with .klproj)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be written without writing")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}

func manifestOutputPath(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return filepath.Join(filepath.Dir(path), base+".klproj")
}
