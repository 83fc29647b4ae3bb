package main

import (
	"github.com/spf13/cobra"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/logging"
)

type rootFlags struct {
	verbose bool
	json    bool
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "foundry",
		Short:         "foundry compiles and runs declarative data-pipeline projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if flags.verbose {
				level = "debug"
			}
			log, err := logging.New(logging.Options{Level: level, HumanReadable: !flags.json, Component: "cli"})
			if err != nil {
				return err
			}
			app.Logger = log
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.json, "json", false, "emit log output as JSON instead of human-readable text")

	cmd.AddCommand(newCompileCmd(flags, app))
	cmd.AddCommand(newRunCmd(flags, app))
	cmd.AddCommand(newDoctorCmd(flags, app))
	cmd.AddCommand(newGraphCmd(flags, app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
