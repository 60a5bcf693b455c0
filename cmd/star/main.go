// Command star runs one Starlane mesh participant: a Star process
// hosting the traversal engine, the search actor, the wrangler table,
// and the fabric listener other stars dial into.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/log"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "star",
	Short: "star runs a Starlane mesh participant",
	Long: `star starts one Star: a single process that can host particles,
answer searches, route waves to and from its neighbours over the
fabric, and optionally hold a seat in the mesh's replicated registry.

Every Star can play every role — there is no separate manager/worker
split. A Constellation is just however many of these processes a
deployment chooses to run and wire into a fabric.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"star version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(certCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
