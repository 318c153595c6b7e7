package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wbrown/pixelpipe/imageutil"
)

type batchEnv struct {
	outDir string
	format string
}

func getBatchCmd(g *globalEnv) *cobra.Command {
	env := &batchEnv{}
	cmd := &cobra.Command{
		Use:   "batch <recipe.yaml> <image>...",
		Short: "Apply a recipe to many images",
		Long: `
Applies a recipe to every image given. A failing image does not stop the
batch; all failures are reported together at the end.
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := g.loadRecipe(cmd, args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(env.outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			start := time.Now()
			var errs *multierror.Error
			var pixels int64
			done := 0
			for _, in := range args[1:] {
				out := env.outputPath(in)
				img, err := imageutil.ReadFromFile(in)
				if err == nil {
					img, err = g.runWatched(cmd.Context(), chain, img)
				}
				if err == nil {
					err = imageutil.WriteToFile(img, out)
				}
				if err != nil {
					log.Warn().Err(err).Str("input", in).Msg("batch item failed")
					errs = multierror.Append(errs, fmt.Errorf("%s: %w", in, err))
					continue
				}
				done++
				pixels += int64(img.Size().Area())
				log.Debug().Str("input", in).Str("output", out).Msg("batch item written")
			}

			elapsed := time.Since(start)
			cmd.Printf("%s of %s images, %s pixels in %v\n",
				humanize.Comma(int64(done)), humanize.Comma(int64(len(args)-1)),
				humanize.Comma(pixels), elapsed.Round(time.Millisecond))
			return errs.ErrorOrNil()
		},
	}
	cmd.Flags().StringVar(&env.outDir, "out-dir", "out", "directory for the processed images")
	cmd.Flags().StringVar(&env.format, "format", "", "output extension, e.g. png; defaults to the input's")
	return cmd
}

// outputPath maps an input path into the output directory.
func (e *batchEnv) outputPath(in string) string {
	base := filepath.Base(in)
	if e.format != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + strings.TrimPrefix(e.format, ".")
	}
	return filepath.Join(e.outDir, base)
}
