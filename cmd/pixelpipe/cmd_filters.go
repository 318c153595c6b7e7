package main

import (
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/pixelpipe"
)

func getFiltersCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the registered filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, def := range pixelpipe.Filters() {
				cmd.Printf("%-24s %s\n", def.Name, def.Description)
				if !verbose {
					continue
				}
				defaults, err := yaml.Marshal(def.Defaults())
				if err != nil {
					return err
				}
				for _, line := range strings.Split(strings.TrimSpace(string(defaults)), "\n") {
					if line != "{}" {
						cmd.Printf("%-24s   %s\n", "", line)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print each filter's default options")
	return cmd
}
