package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"k4solve/cmd/k4solve/ui"
	"k4solve/internal/report"
	"k4solve/internal/validate"
	"k4solve/internal/wheel"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the class wheels from the anchors and derive the plaintext",
	Long: `Solves one key wheel per class from the anchor constraints, derives the
plaintext the wheels force, validates it, and writes the proof artifact if
the config names one. Undetermined positions print as '?'.`,
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cfgPath)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	logger.Info("solving",
		zap.String("run_id", runID),
		zap.Int("text_len", len(in.text)),
		zap.Int("anchors", len(in.anchors)),
		zap.String("classing", in.cfg.Classing.Formula),
		zap.String("addressing", in.cfg.Addressing))

	wheels, err := wheel.Solve(in.text, in.anchors, in.part, in.opts)
	if err != nil {
		fmt.Println(ui.Verdict(false, "", fmt.Sprintf("solve failed: %v", err)))
		return err
	}
	derived := wheel.Derive(in.text, wheels, in.part, in.mode)
	res := validate.Check(derived, validate.Expectation{
		Anchors:         in.anchors,
		PlaintextSHA256: in.cfg.ExpectedSHA256,
	})

	fmt.Println(ui.TitleStyle.Render("Derived plaintext"))
	fmt.Println(derived.String())
	fmt.Println(ui.KV("run_id", runID))
	fmt.Println(ui.KV("undetermined", len(derived.Undetermined())))
	fmt.Println(ui.KV("plaintext_sha256", validate.Digest(derived.String())))
	for _, w := range wheels {
		fmt.Println(ui.InfoStyle.Render(fmt.Sprintf(
			"class %d: %s period=%d phase=%d known=%d/%d",
			w.Class, w.Family, w.Period, w.Phase, w.Known(), w.Period)))
	}
	if res.Passed {
		fmt.Println(ui.Verdict(true, "validation passed", ""))
	} else {
		fmt.Println(ui.Verdict(false, "", fmt.Sprintf("validation failed: %s (%s)", res.Reason, res.Detail)))
	}

	if in.cfg.Output.Proof != "" {
		proof := report.NewProof(runID, seed, in.text, wheels, derived,
			in.cfg.Classing.Formula, in.cfg.Classing.NumClasses, in.cfg.Addressing)
		if err := proof.WriteFile(in.cfg.Output.Proof); err != nil {
			return err
		}
		logger.Info("proof written", zap.String("path", in.cfg.Output.Proof))
	}
	if !res.Passed {
		return fmt.Errorf("validation failed: %s", res.Reason)
	}
	return nil
}
