// Command rvsdgc is a small driver over the rvsdg kernel: it builds
// named fixture graphs, runs normalization pipelines over serialized
// graphs, and reports structural statistics. There is no frontend
// language in this repo (spec.md leaves that to a component this
// kernel doesn't implement), so "build" takes a fixture name rather
// than a source file the way nagac takes a .wgsl file.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/halvorlinder/jlm/internal/serialize"
	"github.com/halvorlinder/jlm/passes"
)

var (
	logger  *zap.Logger
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:          "rvsdgc",
		Short:        "rvsdgc builds, normalizes, and inspects rvsdg graphs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if verbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(buildCmd(), normalizeCmd(), statsCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build <fixture>",
		Short: "build a named fixture graph and dump it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := fixtureByName(args[0])
			if err != nil {
				return errors.Wrap(err, "build")
			}
			reg, err := defaultRegistry()
			if err != nil {
				return errors.Wrap(err, "build")
			}
			text, err := serialize.Dump(g, reg)
			if err != nil {
				return errors.Wrap(err, "build: dump")
			}
			logger.Debug("built fixture", zap.String("fixture", args[0]), zap.Int("nodes", len(g.Root().Nodes())))
			return writeOutput(output, text)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func normalizeCmd() *cobra.Command {
	var output string
	var passNames []string
	var maxSweeps int
	cmd := &cobra.Command{
		Use:   "normalize <input>",
		Short: "run a pass pipeline over a dumped graph and dump the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return errors.Wrap(err, "normalize")
			}
			reg, err := defaultRegistry()
			if err != nil {
				return errors.Wrap(err, "normalize")
			}
			g, err := serialize.Parse(text, reg)
			if err != nil {
				return errors.Wrap(err, "normalize: parse")
			}

			cfg := &passes.PipelineConfig{Passes: passNames, MaxSweeps: maxSweeps}
			pipeline, err := cfg.Build()
			if err != nil {
				return errors.Wrap(err, "normalize: build pipeline")
			}
			pipeline.Logger = logger
			sweeps, err := pipeline.Run(g)
			if err != nil {
				return errors.Wrap(err, "normalize: run pipeline")
			}
			logger.Info("pipeline converged", zap.Int("sweeps", sweeps))

			out, err := serialize.Dump(g, reg)
			if err != nil {
				return errors.Wrap(err, "normalize: dump")
			}
			return writeOutput(output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringSliceVar(&passNames, "passes", []string{"flatten-binary", "cse", "dead-node-elimination"}, "ordered list of passes.StandardPasses names to run")
	cmd.Flags().IntVar(&maxSweeps, "max-sweeps", 0, "override the pipeline's fixed-point sweep cap (0 keeps the default)")
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <input>",
		Short: "report node counts by kind for a dumped graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return errors.Wrap(err, "stats")
			}
			reg, err := defaultRegistry()
			if err != nil {
				return errors.Wrap(err, "stats")
			}
			g, err := serialize.Parse(text, reg)
			if err != nil {
				return errors.Wrap(err, "stats: parse")
			}
			printStats(os.Stdout, g)
			return nil
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <input>",
		Short: "parse a dumped graph and re-dump it in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return errors.Wrap(err, "export")
			}
			reg, err := defaultRegistry()
			if err != nil {
				return errors.Wrap(err, "export")
			}
			g, err := serialize.Parse(text, reg)
			if err != nil {
				return errors.Wrap(err, "export: parse")
			}
			out, err := serialize.Dump(g, reg)
			if err != nil {
				return errors.Wrap(err, "export: dump")
			}
			return writeOutput(output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return string(data), nil
}

func writeOutput(path, text string) error {
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
