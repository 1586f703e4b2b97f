package main

import (
	"os"

	"github.com/marqo-ai/compat-runner/cmd"
	"github.com/marqo-ai/compat-runner/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
