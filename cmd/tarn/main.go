package main

import (
	"os"

	"github.com/tarn-lang/tarn/cmd/tarn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
