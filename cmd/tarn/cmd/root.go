package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tarn",
	Short: "Tarn language tools",
	Long: `Tools for working with Tarn source code.

A module is a directory of .tarn files; imports name further module
directories, resolved against the importing module and then against
the standard library.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}
