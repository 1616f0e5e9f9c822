package main

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"k4solve/cmd/k4solve/ui"
	"k4solve/internal/trial"
)

var (
	necessityStart int
	necessityEnd   int
)

var necessityCmd = &cobra.Command{
	Use:   "necessity",
	Short: "Mutation-test whether the solution is uniquely forced over a range",
	Long: `Runs every single-letter mutation over the target index range through the
full solve+derive pipeline. A range is uniquely forced exactly when zero
mutations remain feasible. One CSV/SQLite row is written per trial.`,
	RunE: runNecessity,
}

func init() {
	necessityCmd.Flags().IntVar(&necessityStart, "start", 75, "first index of the target range")
	necessityCmd.Flags().IntVar(&necessityEnd, "end", 96, "last index of the target range (inclusive)")
}

func runNecessity(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cfgPath)
	if err != nil {
		return err
	}
	timeout, err := in.cfg.Harness.TimeoutDuration()
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	sink, closeSinks, err := buildSinks(in.cfg, runID)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info("necessity run", zap.String("run_id", runID),
		zap.Int("start", necessityStart), zap.Int("end", necessityEnd))

	summary, err := trial.Necessity(cmd.Context(), logger, in.baseline(), trial.NecessityConfig{
		Start:   necessityStart,
		End:     necessityEnd,
		Workers: in.cfg.Harness.Workers,
		Timeout: timeout,
	}, sink)
	if summary == nil {
		return err
	}

	fmt.Println(ui.TitleStyle.Render("Necessity summary"))
	fmt.Println(ui.KV("run_id", runID))
	fmt.Println(ui.KV("trials", summary.Total))
	fmt.Println(ui.KV("feasible", summary.Feasible))
	fmt.Println(ui.KV("timeouts", summary.Timeouts))
	fmt.Println(ui.KV("errors", summary.Errors))
	printReasons(summary.ByReason)
	if len(summary.PerIndexFeasible) > 0 {
		idxs := make([]int, 0, len(summary.PerIndexFeasible))
		for i := range summary.PerIndexFeasible {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		for _, i := range idxs {
			fmt.Println(ui.FailStyle.Render(fmt.Sprintf("index %d: %d feasible mutants", i, summary.PerIndexFeasible[i])))
		}
	}
	fmt.Println(ui.Verdict(summary.Feasible == 0,
		"range is uniquely forced: no mutation survives",
		fmt.Sprintf("%d mutations remain feasible", summary.Feasible)))
	return err
}

func printReasons(byReason map[string]int) {
	keys := make([]string, 0, len(byReason))
	for k := range byReason {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(ui.MutedStyle.Render(fmt.Sprintf("  %s: %d", k, byReason[k])))
	}
}
