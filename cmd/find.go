package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/output"
)

var findCmd = &cobra.Command{
	Use:   "find <kind> <param1> <param2>",
	Short: "Locate elements with a locator",
	Long: `Locate elements the same way a step does, e.g.

  desktop-runner find name BUTTON OK
  desktop-runner find partialname EDIT User --all
  desktop-runner find image dialog ok_button
  desktop-runner find ocr SCREEN "Sign in"`,
	Args: cobra.ExactArgs(3),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().Bool("all", false, "Return every match instead of polling for the first")
}

func runFind(cmd *cobra.Command, args []string) error {
	spec, err := locator.Parse(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	sess, err := newSession()
	if err != nil {
		return err
	}
	found, err := sess.Find(context.Background(), spec, all)
	if err != nil {
		return err
	}

	result := output.FindResult{Locator: spec.String(), Count: len(found), Elements: []output.ElementInfo{}}
	for _, el := range found {
		result.Elements = append(result.Elements, output.Describe(el))
	}
	return output.Print(result)
}
