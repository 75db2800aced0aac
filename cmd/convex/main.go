// convex - convex hulls and approximate convex decomposition of glTF meshes.
//
// Commands:
//
//	hull       - Build one convex hull around a model
//	decompose  - Split a model into a set of convex hulls
//	view       - Spin a wireframe of a model and its hulls in the terminal
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// logger is configured from the persistent flags before any command runs.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.TimeOnly,
	Prefix:          "convex",
})

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "convex",
		Short: "Convex hulls and convex decomposition for glTF meshes",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newHullCmd(),
		newDecomposeCmd(),
		newViewCmd(),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		cancel()
		os.Exit(1)
	}
}
