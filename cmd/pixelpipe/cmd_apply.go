package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/config"
	"github.com/wbrown/pixelpipe/imageutil"
)

// ioEnv holds the input and output paths of the single-image commands.
type ioEnv struct {
	input  string
	output string
}

func (e *ioEnv) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&e.input, "input", "i", "", "input image")
	cmd.Flags().StringVarP(&e.output, "output", "o", "", "output image, format chosen by extension")
	must(cmd.MarkFlagRequired("input"))
	must(cmd.MarkFlagRequired("output"))
}

// process reads the input, runs pl over it and writes the output.
func (e *ioEnv) process(cmd *cobra.Command, g *globalEnv, pl pixelpipe.Pipeline) error {
	start := time.Now()
	img, err := imageutil.ReadFromFile(e.input)
	if err != nil {
		return err
	}
	out, err := g.runWatched(cmd.Context(), pl, img)
	if err != nil {
		return err
	}
	if err := imageutil.WriteToFile(out, e.output); err != nil {
		return err
	}
	report(cmd, e.output, out, time.Since(start))
	return nil
}

// report prints a one-line summary of a written image.
func report(cmd *cobra.Command, path string, b *imageutil.PixelBuffer, elapsed time.Duration) {
	size := "?"
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	cmd.Printf("%s: %dx%d, %s pixels, %s, %v\n", path, b.Width(), b.Height(),
		humanize.Comma(int64(b.Size().Area())), size, elapsed.Round(time.Millisecond))
}

type applyEnv struct {
	ioEnv
	params []string
}

func getApplyCmd(g *globalEnv) *cobra.Command {
	env := &applyEnv{}
	cmd := &cobra.Command{
		Use:   "apply <filter>",
		Short: "Apply a single filter to an image",
		Long: `
Applies one registered filter (see "pixelpipe filters") to an image.
Filter options are given as repeated --param key=value pairs.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.settings()
			if err != nil {
				return err
			}
			params, err := config.ParamsFromPairs(env.params)
			if err != nil {
				return err
			}
			pl, err := pixelpipe.Build(args[0], params, s)
			if err != nil {
				return err
			}
			log.Debug().Str("filter", args[0]).Strs("params", env.params).Msg("filter built")
			return env.process(cmd, g, pl)
		},
	}
	env.addFlags(cmd)
	cmd.Flags().StringArrayVarP(&env.params, "param", "p", nil, "filter option as key=value, repeatable")
	return cmd
}

func getRunCmd(g *globalEnv) *cobra.Command {
	env := &ioEnv{}
	cmd := &cobra.Command{
		Use:   "run <recipe.yaml>",
		Short: "Apply a recipe to an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := g.loadRecipe(cmd, args[0])
			if err != nil {
				return err
			}
			return env.process(cmd, g, chain)
		},
	}
	env.addFlags(cmd)
	return cmd
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("pixelpipe: %v", err))
	}
}
