package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/emptyOVO/freqset-go/batch"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func getenvInt(name string, d int) int {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg batch.TrafficConfig
	var logLevel string

	cmd := &cobra.Command{
		Use:   "traffic <input path> <output path>",
		Short: "Sum transferred volume per IP, split by download and upload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)

			cfg.Inputs = []string{args[0]}
			cfg.Output = args[1]
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := batch.RunTraffic(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d record(s) -> %s (%s)\n", res.Name, res.Records, res.Output, res.Duration)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cfg.Workers, "worker", "w", getenvInt("MR_WORKERS", runtime.NumCPU()), "Number of map workers")
	flags.BoolVarP(&cfg.InRAM, "inRAM", "m", true, "Keep intermediate data in RAM instead of spilling to --spill-dir")
	flags.StringVar(&cfg.SpillDir, "spill-dir", os.TempDir(), "Directory for intermediate files")
	flags.IntVar(&cfg.SplitLines, "split-lines", getenvInt("MR_SPLIT_LINES", 10000), "Input lines per map split")
	flags.StringVar(&logLevel, "log-level", "info", "Log level")
	return cmd
}
