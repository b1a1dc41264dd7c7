package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dreness/klproj/internal/convert"
	"github.com/dreness/klproj/internal/generator"
	"github.com/dreness/klproj/internal/output"
)

// ConvertCmd creates the convert command.
func ConvertCmd() *cobra.Command {
	var (
		outDir string
		api    string
		width  int
		height int
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "convert <shader.fs> [shader.fs...]",
		Short: "Convert ISF composite shader files to projects",
		Long: `Convert parses ISF composite shader files (JSON metadata in a leading
comment, GLSL body), maps their inputs to project parameters, adapts the
GLSL, and writes one .klproj file per input.

A sidecar vertex shader with the same base name and a .vs extension is
picked up automatically. Inputs are converted independently: a bad file
is reported and skipped, the rest of the batch still converts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.convertOptions(api, width, height)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.OutDir
			}

			failed := 0
			for _, path := range args {
				if err := convertOne(cmd.Context(), path, outDir, opts, dryRun, force); err != nil {
					output.Warn(err.Error())
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: next to each input)")
	cmd.Flags().StringVar(&api, "api", "", "Target API profile (GL2, GL3, ES3, ...)")
	cmd.Flags().IntVar(&width, "width", 0, "Project render width")
	cmd.Flags().IntVar(&height, "height", 0, "Project render height")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be written without writing")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing output files")

	return cmd
}

func convertOne(ctx context.Context, path, outDir string, opts convert.Options, dryRun, force bool) error {
	output.Verbose("converting " + path)

	proj, err := convert.ConvertFile(path, opts)
	if err != nil {
		return err
	}

	op := &generator.WriteProjectOp{Path: outputPath(path, outDir), Project: proj}
	return generator.Execute(ctx, []generator.Operation{op}, generator.ExecuteOptions{
		DryRun: dryRun,
		Force:  force,
	})
}

// outputPath maps an input shader path to its .klproj destination,
// optionally redirected into outDir.
func outputPath(input, outDir string) string {
	base := filepath.Base(input)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base += ".klproj"

	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}
