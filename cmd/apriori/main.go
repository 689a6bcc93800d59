package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/emptyOVO/freqset-go/batch"
	"github.com/emptyOVO/freqset-go/mrapps/apriori"
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

func getenvBool(name string, d bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func getenvDefault(name, d string) string {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	return v
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg batch.AprioriConfig
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "apriori <input path> <output path>",
		Short: "Count frequent 1- and 2-itemsets per country",
		Long: `apriori scans semicolon-delimited transaction logs twice. The first pass
writes frequent single items per country to <output path>/frequent1, the second
writes frequent item pairs per country to <output path>/frequent2.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid from here on; failures are not usage errors.
			cmd.SilenceUsage = true

			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)

			cfg.Inputs = []string{args[0]}
			cfg.OutputRoot = args[1]
			if configPath != "" {
				sinks, err := loadSinksConfig(configPath)
				if err != nil {
					return fmt.Errorf("load config %s: %w", configPath, err)
				}
				cfg.Sinks = sinks
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := batch.RunApriori(ctx, cfg)
			if err != nil {
				return err
			}
			for _, p := range res.Phases {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frequent itemset(s) -> %s (%s)\n", p.Name, p.Records, p.Output, p.Duration)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cfg.MinSupport, "min-support", "s", getenvInt("APRIORI_MIN_SUPPORT", apriori.DefaultMinSupport), "Minimum support count")
	flags.IntVarP(&cfg.Shards, "reduce", "r", getenvInt("APRIORI_SHARDS", apriori.DefaultShards), "Number of reducers per phase")
	flags.IntVarP(&cfg.Workers, "worker", "w", getenvInt("MR_WORKERS", runtime.NumCPU()), "Number of map workers")
	flags.BoolVarP(&cfg.InRAM, "inRAM", "m", getenvBool("MR_IN_RAM", true), "Keep intermediate data in RAM instead of spilling to --spill-dir")
	flags.StringVar(&cfg.SpillDir, "spill-dir", getenvDefault("MR_SPILL_DIR", os.TempDir()), "Directory for intermediate files")
	flags.IntVar(&cfg.SplitLines, "split-lines", getenvInt("MR_SPLIT_LINES", 10000), "Input lines per map split")
	flags.StringVar(&cfg.HealthAddr, "health-addr", getenvDefault("HEALTH_ADDR", ""), "Serve gRPC health checks on this address")
	flags.StringVarP(&configPath, "config", "c", "", "Sink config file path (JSON)")
	flags.StringVar(&logLevel, "log-level", getenvDefault("LOG_LEVEL", "info"), "Log level")
	return cmd
}

func loadSinksConfig(path string) (batch.SinksConfig, error) {
	var cfg batch.SinksConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
