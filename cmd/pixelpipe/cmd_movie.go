package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/movie"
	"github.com/wbrown/pixelpipe/progress"
)

type movieEnv struct {
	size   string
	frames int
}

func getMovieCmd(g *globalEnv) *cobra.Command {
	env := &movieEnv{}
	cmd := &cobra.Command{
		Use:   "movie <recipe.yaml>",
		Short: "Apply a recipe to raw RGBA frames from stdin",
		Long: `
Reads raw RGBA8 frames from stdin, applies the recipe to each frame and
writes the frames to stdout. Decode and encode with ffmpeg, e.g.

  ffmpeg -i in.mp4 -f rawvideo -pix_fmt rgba - |
    pixelpipe movie edges.yaml --size 640x360 |
    ffmpeg -f rawvideo -pix_fmt rgba -s 640x360 -i - out.mp4
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(env.size)
			if err != nil {
				return err
			}
			chain, err := g.loadRecipe(cmd, args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			p := &progress.Progress{}
			n, err := movie.Process(cmd.InOrStdin(), cmd.OutOrStdout(), size, chain, env.frames, p)
			elapsed := time.Since(start)
			fps := float64(n) / max(elapsed.Seconds(), 1e-9)
			log.Info().
				Str("frames", humanize.Comma(int64(n))).
				Str("fps", humanize.FtoaWithDigits(fps, 2)).
				Dur("elapsed", elapsed).
				Msg("movie finished")
			return err
		},
	}
	cmd.Flags().StringVar(&env.size, "size", "", "frame size as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&env.frames, "frames", 0, "expected frame count, for progress only")
	must(cmd.MarkFlagRequired("size"))
	return cmd
}

// parseSize parses WIDTHxHEIGHT.
func parseSize(s string) (imageutil.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if !ok || werr != nil || herr != nil || w <= 0 || h <= 0 {
		return imageutil.Size{}, fmt.Errorf("%w: size %q is not WIDTHxHEIGHT", pixelpipe.ErrInvalidOptions, s)
	}
	return imageutil.Size{Width: w, Height: h}, nil
}
