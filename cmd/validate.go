package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/mj1618/desktop-runner/internal/output"
	"github.com/mj1618/desktop-runner/internal/runner"
)

var validateCmd = &cobra.Command{
	Use:   "validate <steps.yaml|->",
	Short: "Check a step file without running it",
	Long:  "Check that every step names a registered action with the right number of arguments and that every IMAGE and OCR step's template images exist.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

type validateResult struct {
	OK     bool     `yaml:"ok"               json:"ok"`
	Steps  int      `yaml:"steps"            json:"steps"`
	Errors []string `yaml:"errors,omitempty" json:"errors,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	steps, err := runner.LoadSteps(args[0])
	if err != nil {
		return err
	}
	sess, err := newSession()
	if err != nil {
		return err
	}

	result := validateResult{OK: true, Steps: len(steps)}
	verr := sess.Validate(steps)
	for _, e := range multierr.Errors(verr) {
		result.OK = false
		result.Errors = append(result.Errors, e.Error())
	}
	if err := output.Print(result); err != nil {
		return err
	}
	if verr != nil {
		return fmt.Errorf("%d problem(s) found", len(result.Errors))
	}
	return nil
}
