package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-runner/internal/observability"
	"github.com/mj1618/desktop-runner/internal/output"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/session"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List every step action and its arguments",
	RunE:  runActions,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

type actionEntry struct {
	Name   string   `yaml:"name"             json:"name"`
	Params []string `yaml:"params,flow"      json:"params"`
	Usage  string   `yaml:"usage"            json:"usage"`
}

func runActions(cmd *cobra.Command, args []string) error {
	// Listing needs no desktop, so an empty provider is enough.
	sess := session.New(appConfig, &platform.Provider{}, observability.GetLogger())
	entries := []actionEntry{}
	for _, d := range sess.Registry.Descriptors() {
		params := d.Params
		if params == nil {
			params = []string{}
		}
		entries = append(entries, actionEntry{Name: d.Name, Params: params, Usage: d.Usage()})
	}
	return output.Print(entries)
}
