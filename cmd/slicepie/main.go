// Command slicepie runs the Mandato 360 calculators from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/mandato360/internal/fixtures"
	"github.com/mmynk/mandato360/pkg/logging"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	fixturesPath string
	logLevel     string
}

func (o *options) loadFixtures() (*fixtures.Fixtures, error) {
	return fixtures.Load(o.fixturesPath)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "slicepie",
		Short: "Mandato 360 - equity pool, projections and Consill IA from the terminal",
		Long: `slicepie runs the Mandato 360 dashboard calculators without the web UI.

It starts from the same seed data as the server (embedded, or a YAML file
passed with --fixtures) and never persists anything.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWith(cmd.ErrOrStderr(), logging.ParseLevel(opts.logLevel), "")
		},
	}
	root.PersistentFlags().StringVar(&opts.fixturesPath, "fixtures", os.Getenv("MANDATO_FIXTURES"), "YAML file replacing the embedded seed data")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(newSimulateCmd(opts))
	root.AddCommand(newFinancialsCmd(opts))
	root.AddCommand(newRoadmapCmd(opts))
	root.AddCommand(newChatCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
