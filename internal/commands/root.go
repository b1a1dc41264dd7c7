// Package commands defines the klproj CLI: converting composite shader
// files, building projects from manifests, and inspecting existing
// project containers.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/dreness/klproj"
	"github.com/dreness/klproj/internal/output"
)

// RootCmd creates the root command for the klproj CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "klproj",
		Short: "Build KodeLife project files from shaders",
		Long: `klproj assembles KodeLife project files (.klproj) without the editor.

It converts ISF composite shader files into ready-to-open projects,
builds projects from YAML manifests, and inspects existing containers.`,
		Version: klproj.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}
