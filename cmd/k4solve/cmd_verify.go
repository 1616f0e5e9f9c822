package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"k4solve/cmd/k4solve/ui"
	"k4solve/internal/validate"
	"k4solve/internal/wheel"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [plaintext-file]",
	Short: "Check a candidate plaintext against the anchors and expected digest",
	Long: `Reads a candidate plaintext (same length as the ciphertext, '?' for
undetermined positions) and runs the feasibility checks from the run config:
completeness, anchor slices, and the expected SHA-256 if configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	in, err := loadInputs(cfgPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read plaintext %s: %w", args[0], err)
	}
	s := strings.TrimSpace(string(data))
	if len(s) != len(in.text) {
		return fmt.Errorf("plaintext length %d does not match ciphertext length %d", len(s), len(in.text))
	}

	derived := make(wheel.DerivedPlaintext, len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '?':
			// stays undetermined
		case s[i] >= 'A' && s[i] <= 'Z':
			derived[i] = wheel.Cell{V: s[i] - 'A', Known: true}
		default:
			return fmt.Errorf("position %d: %q is neither A-Z nor '?'", i, s[i])
		}
	}

	res := validate.Check(derived, validate.Expectation{
		Anchors:         in.anchors,
		RequireComplete: in.cfg.ExpectedSHA256 != "",
		PlaintextSHA256: in.cfg.ExpectedSHA256,
	})
	if res.Passed {
		fmt.Println(ui.Verdict(true, "plaintext is consistent with the evidence", ""))
		return nil
	}
	fmt.Println(ui.Verdict(false, "", fmt.Sprintf("%s: %s", res.Reason, res.Detail)))
	return fmt.Errorf("verification failed: %s", res.Reason)
}
