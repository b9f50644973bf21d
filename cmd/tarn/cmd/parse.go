package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tarn-lang/tarn/parser"
)

var (
	stdlibPath string
	printTree  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parse a Tarn module and report diagnostics",
	Long: `Parse the module at <path> and everything it imports.

<path> is normally a module directory; a single source file is
accepted for quick checks. Diagnostics go to standard error, and the
exit status is non-zero if any were reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&stdlibPath, "stdlib", defaultStdlib(),
		"standard library directory")
	parseCmd.Flags().BoolVar(&printTree, "print", false,
		"print the parsed tree to standard output")
}

func defaultStdlib() string {
	if dir := os.Getenv("TARN_STDLIB"); dir != "" {
		return dir
	}
	return "stdlib"
}

func runParse(cmd *cobra.Command, args []string) error {
	ok, program := parser.Parse(args[0], stdlibPath, os.Stderr)
	if printTree {
		for _, m := range program.Members {
			fmt.Println(m.String())
		}
	}
	if !ok {
		return errors.New("parse failed")
	}
	return nil
}
