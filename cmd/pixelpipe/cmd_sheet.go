package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
)

type sheetEnv struct {
	ioEnv
	filters []string
	columns int
	width   int
	bg      string
}

func getSheetCmd(g *globalEnv) *cobra.Command {
	env := &sheetEnv{}
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Render a contact sheet comparing filters",
		Long: `
Applies each --filter (default options) to the input and lays the input
and every result out in a labelled grid.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			s, err := g.settings()
			if err != nil {
				return err
			}
			opts := imageutil.DefaultSheetOptions()
			if env.columns > 0 {
				opts.Columns = env.columns
			}
			if env.bg != "" {
				if opts.Background, err = pixelpipe.ParseColor(env.bg); err != nil {
					return err
				}
			}

			img, err := imageutil.ReadFromFile(env.input)
			if err != nil {
				return err
			}
			if env.width > 0 && img.Width() > env.width {
				img = imageutil.ResizeToWidth(img, env.width, imageutil.InterpolationCatmullRom)
			}

			names := env.filters
			if len(names) == 0 {
				for _, def := range pixelpipe.Filters() {
					names = append(names, def.Name)
				}
			}
			panels := []imageutil.Panel{{Label: "input", Image: img}}
			for _, name := range names {
				pl, err := pixelpipe.Build(name, nil, s)
				if err != nil {
					return err
				}
				out, err := g.runWatched(cmd.Context(), pl, img.Clone())
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				panels = append(panels, imageutil.Panel{Label: name, Image: out})
			}

			sheet, err := imageutil.ContactSheet(panels, opts)
			if err != nil {
				return err
			}
			if err := imageutil.WriteToFile(sheet, env.output); err != nil {
				return err
			}
			report(cmd, env.output, sheet, time.Since(start))
			return nil
		},
	}
	env.addFlags(cmd)
	cmd.Flags().StringSliceVarP(&env.filters, "filter", "f", nil, "filters to compare, all registered filters when empty")
	cmd.Flags().IntVar(&env.columns, "columns", 0, "panels per row")
	cmd.Flags().IntVar(&env.width, "width", 256, "shrink the input to this width first, 0 to keep it")
	cmd.Flags().StringVar(&env.bg, "background", "", "sheet background colour")
	return cmd
}
