package main

import (
	"os"

	"github.com/dreness/klproj/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.ConvertCmd())
	rootCmd.AddCommand(commands.BuildCmd())
	rootCmd.AddCommand(commands.InspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
