package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apiplan "github.com/kereval/fieldops/api/plan"
	"github.com/kereval/fieldops/config"
	"github.com/kereval/fieldops/core/model"
	"github.com/kereval/fieldops/core/optimizer"
	"github.com/kereval/fieldops/core/plan"
	"github.com/kereval/fieldops/infra/logger"
)

var (
	snapshotPath string
	useOptimizer bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one planning pass over a snapshot file and print the plan",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "snapshot file (JSON)")
	planCmd.Flags().BoolVar(&useOptimizer, "optimize", false, "consult the external optimizer")
	if err := planCmd.MarkFlagRequired("snapshot"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadOrDefault(cfgPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	planner := plan.NewGreedyPlanner(cfg.Planner, logger.New("planner"))
	result := planner.Plan(snap)

	resp := apiplan.PlanResponse{Plan: result}
	if useOptimizer && cfg.Optimizer.URL != "" {
		client := optimizer.NewHTTPClient(cfg.Optimizer, logger.New("optimizer-client"))
		gw := optimizer.NewGateway(client, cfg.Optimizer, cfg.Planner, logger.New("optimizer"), nil)
		resp.Plan, resp.SuggestionOutcomes = gw.Reconcile(ctx, snap, result)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// loadOrDefault reads the config file, falling back to defaults when the
// default config path does not exist.
func loadOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &config.Config{}
		cfg.API.SetDefaults()
		cfg.Planner.SetDefaults()
		cfg.Optimizer.SetDefaults()
		cfg.Metrics.SetDefaults()
		cfg.Logging.SetDefaults()
		return cfg, nil
	}
	return config.Load(path)
}
