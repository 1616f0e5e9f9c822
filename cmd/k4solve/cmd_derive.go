package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"k4solve/cmd/k4solve/ui"
	"k4solve/internal/wheel"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive plaintext from explicitly pinned wheels, without solving",
	Long: `Applies the per-class wheel configurations from the config's wheels
section directly: the anchors still feed the residues, but no period or
family search happens. Useful for checking a claimed key schedule.`,
	RunE: runDerive,
}

func runDerive(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cfgPath)
	if err != nil {
		return err
	}
	if len(in.opts.Fixed) != in.part.Assignment.NumClasses {
		return fmt.Errorf("derive requires a wheels override for every class (%d configured, %d classes)",
			len(in.opts.Fixed), in.part.Assignment.NumClasses)
	}

	wheels, err := wheel.Solve(in.text, in.anchors, in.part, in.opts)
	if err != nil {
		return fmt.Errorf("pinned wheels are inconsistent with the anchors: %w", err)
	}
	derived := wheel.Derive(in.text, wheels, in.part, in.mode)

	fmt.Println(ui.TitleStyle.Render("Derived plaintext (pinned wheels)"))
	fmt.Println(derived.String())
	fmt.Println(ui.KV("undetermined", len(derived.Undetermined())))
	return nil
}
