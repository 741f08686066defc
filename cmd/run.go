package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-runner/internal/output"
	"github.com/mj1618/desktop-runner/internal/runner"
	"github.com/mj1618/desktop-runner/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run <steps.yaml|->",
	Short: "Run a step file",
	Long: `Run a YAML list of steps in order. Each step is an action name followed by
its string arguments.

The live robotgo build injects input, captures the screen and runs OCR, but
it has no accessibility tree reader. Tree locators (NAME, ID, TEXT, VALUE and
their PARTIAL forms), focusWindow/focusPane and the window actions therefore
need --snapshot; IMAGE, OCR and LOCATION steps work against the live screen.

Example (replayed against a captured tree):
  desktop-runner --snapshot desktop.yaml run - <<'EOF'
  - [launchApplication, /usr/bin/gedit]
  - [focusWindow, Untitled]
  - [write, name, EDIT, Body, hello world]
  - [shortcut, ctrl, s]
  - [waitToDisplay, name, WINDOW, Save As, 5]
  EOF`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-retry", false, "Fail a step on its first unsuccessful attempt")
	runCmd.Flags().String("artifacts", "", "Write an annotated screenshot of a failed step to this directory")
	runCmd.Flags().Duration("step-delay", -1, "Pause between steps (default runner.step_delay)")
}

func runRun(cmd *cobra.Command, args []string) error {
	steps, err := runner.LoadSteps(args[0])
	if err != nil {
		return err
	}

	if noRetry, _ := cmd.Flags().GetBool("no-retry"); noRetry {
		appConfig.Runner.Retry = false
	}
	if dir, _ := cmd.Flags().GetString("artifacts"); dir != "" {
		appConfig.Runner.ArtifactDir = dir
	}
	if d, _ := cmd.Flags().GetDuration("step-delay"); d >= 0 {
		appConfig.Runner.StepDelay = d
	}

	sess, err := newSession()
	if err != nil {
		return err
	}
	sess.SetBaseDir(session.StepsDir(args[0]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, runErr := sess.Run(ctx, steps)
	if err := output.Print(report); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}
