package main

import (
	"os"

	"github.com/dmorlim/jqr/internal/config"
	"github.com/dmorlim/jqr/internal/execute"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	result := execute.Run(cfg, os.Stdin)
	result.Print()
	return result.ExitCode
}
