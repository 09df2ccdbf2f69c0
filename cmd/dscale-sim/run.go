package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jihwankim/dscale-sim/pkg/handlers"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/obslog"
	"github.com/jihwankim/dscale-sim/pkg/obsmetrics"
	"github.com/jihwankim/dscale-sim/pkg/scenario"
	"github.com/jihwankim/dscale-sim/pkg/scenario/validator"
	"github.com/jihwankim/dscale-sim/pkg/simconfig"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run an experiment",
	Long:  `Loads an experiment YAML file, validates it, and runs it to completion or until its step budget is exhausted.`,
	RunE:  runExperiment,
}

func init() {
	runCmd.Flags().String("experiment", "", "path to experiment YAML file")
	runCmd.Flags().Bool("dry-run", false, "validate the experiment without running it")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address for the run's duration (overrides config)")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	experimentPath, _ := cmd.Flags().GetString("experiment")
	if experimentPath == "" {
		return fmt.Errorf("--experiment flag is required")
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := obslog.Level(cfg.Logging.Level)
	if verbose {
		logLevel = obslog.LevelDebug
	}
	log := obslog.New(obslog.Config{
		Level:  logLevel,
		Format: obslog.Format(cfg.Logging.Format),
		Output: os.Stdout,
	})

	log.Info("dscale-sim starting", "version", version)

	log.Info("loading experiment", "file", experimentPath)
	exp, err := scenario.LoadFile(experimentPath)
	if err != nil {
		return fmt.Errorf("failed to load experiment: %w", err)
	}

	log.Info("validating experiment")
	v := validator.New()
	if err := v.Validate(exp); err != nil {
		fmt.Fprint(os.Stderr, v.GetReport())
		return fmt.Errorf("experiment validation failed: %w", err)
	}
	if v.HasWarnings() {
		log.Warn("experiment has warnings")
		for _, w := range v.Warnings {
			log.Warn("  " + w)
		}
	}
	log.Info("experiment validated", "name", exp.Metadata.Name)

	if dryRun {
		fmt.Println("experiment is valid (dry-run mode)")
		return nil
	}

	plan, err := scenario.Plan(exp, handlers.Registry())
	if err != nil {
		return fmt.Errorf("failed to plan experiment: %w", err)
	}
	plan = plan.WithLogger(log)

	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}
	var m *obsmetrics.Metrics
	var stopMetrics context.CancelFunc
	if metricsAddr != "" {
		m = obsmetrics.New()
		plan = plan.WithMetrics(m)
		ctx, cancel := context.WithCancel(context.Background())
		stopMetrics = cancel
		go func() {
			if err := m.Server(ctx, metricsAddr); err != nil {
				log.Warn("metrics server stopped", "error", err)
			}
		}()
		log.Info("serving metrics", "addr", metricsAddr)
	}

	sched, err := plan.Build()
	if err != nil {
		return fmt.Errorf("failed to build simulation: %w", err)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopCh
		log.Warn("received interrupt; the run will still complete, this build has no mid-run cancellation")
	}()

	log.Info("starting simulation", "experiment", exp.Metadata.Name, "maxSteps", exp.Spec.MaxSteps)
	result := sched.Run(jiffy.Jiffy(exp.Spec.MaxSteps))

	if stopMetrics != nil {
		stopMetrics()
	}

	fmt.Printf("finished: %s\n", result.Reason)
	fmt.Printf("events processed: %d\n", result.EventsProcessed)
	fmt.Printf("final time: %s\n", result.FinalTime)

	return nil
}

func loadConfig() (*simconfig.Config, error) {
	path := cfgFile
	if path == "" {
		path = "dscale-sim.yaml"
	}
	return simconfig.Load(path)
}
