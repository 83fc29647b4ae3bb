package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/logging"
)

func main() {
	log, err := logging.New(logging.Options{Level: "info", HumanReadable: true, Component: "cli"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	correlationID := logging.NewCorrelationID()
	ctx := logging.WithCorrelationID(context.Background(), correlationID)

	app := &AppContext{Logger: log}
	rootCmd := newRootCmd(app)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
