// Command proximity runs a scripted approach of two meshes through the
// broad phase, the narrow phase and the contact events, and reports what it finds.
package main

import (
	"fmt"
	"os"

	"github.com/akmonengine/proximity"
	"github.com/akmonengine/proximity/internal/config"
	"github.com/akmonengine/proximity/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "proximity",
		Short:        "Broad-phase candidates and closed-form distances for deforming meshes",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newMethodsCmd())
	return root
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the broad-phase methods and whether this binary provides them",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range proximity.Methods() {
				status := "available"
				if !m.Available() {
					status = "not built in (gpu build tag)"
				}
				fmt.Fprintf(out, "%-16s %s\n", m, status)
			}
			return nil
		},
	}
}

// runFlags are the command line overrides of the config file
type runFlags struct {
	configPath string
	method     string
	workers    int
	steps      int
	shape      string
	dim        int
	debug      bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Move two meshes towards each other and report candidates and contacts per step",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &f, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.Init(cfg.Logging.Level, cfg.Logging.File())
			defer logger.Sync()

			return runScene(cmd.OutOrStdout(), cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVarP(&f.method, "method", "m", "", "broad-phase method (see the methods command)")
	flags.IntVarP(&f.workers, "workers", "w", 0, "worker goroutines")
	flags.IntVar(&f.steps, "steps", 0, "number of steps")
	flags.StringVar(&f.shape, "shape", "", "mesh shape: sphere or box")
	flags.IntVar(&f.dim, "dim", 0, "2 for polylines in the plane, 3 for triangle meshes")
	flags.BoolVar(&f.debug, "debug", false, "enable debug logging")

	return cmd
}

// applyFlags overrides the config with the flags set on the command line
func applyFlags(cmd *cobra.Command, f *runFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.BroadPhase.Method = f.method
	}
	if flags.Changed("workers") {
		cfg.BroadPhase.Workers = f.workers
	}
	if flags.Changed("steps") {
		cfg.Scene.Steps = f.steps
	}
	if flags.Changed("shape") {
		cfg.Scene.Shape = f.shape
	}
	if flags.Changed("dim") {
		cfg.Contact.Dim = f.dim
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
}
