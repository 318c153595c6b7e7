// Command pixelpipe applies image filters and filter recipes to images,
// batches of images and raw video streams.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/config"
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// globalEnv holds the flags shared by every command.
type globalEnv struct {
	logLevel string
	logJSON  bool
	threads  int
	fast     bool
	border   string
	fill     string
	interval time.Duration
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pixelpipe: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	env := &globalEnv{}
	root := &cobra.Command{
		Use:           "pixelpipe",
		Short:         "Image filter engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.setup(logOut)
		},
	}
	root.PersistentFlags().StringVar(&env.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&env.logJSON, "log-json", false, "log JSON lines instead of console output")
	root.PersistentFlags().IntVar(&env.threads, "threads", 0, "row workers, 0 for one per CPU")
	root.PersistentFlags().BoolVar(&env.fast, "fast", false, "skip border enlargement for spatial filters")
	root.PersistentFlags().StringVar(&env.border, "border", "constant", "border strategy for spatial filters")
	root.PersistentFlags().StringVar(&env.fill, "fill", "#000000", "border fill colour")
	root.PersistentFlags().DurationVar(&env.interval, "progress", time.Second, "progress log interval, 0 to disable")

	root.AddCommand(
		getApplyCmd(env),
		getRunCmd(env),
		getBatchCmd(env),
		getMovieCmd(env),
		getSheetCmd(env),
		getFiltersCmd(),
	)
	return root
}

// setup configures logging and parallelism.
func (g *globalEnv) setup(out io.Writer) error {
	level, err := zerolog.ParseLevel(strings.ToLower(g.logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	if g.logJSON {
		w = out
	}
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	if g.threads < 0 {
		return fmt.Errorf("%w: --threads %d", pixelpipe.ErrInvalidOptions, g.threads)
	}
	imageutil.SetParallelism(g.threads)
	return nil
}

// settings converts the global flags.
func (g *globalEnv) settings() (pixelpipe.Settings, error) {
	s := pixelpipe.DefaultSettings()
	s.Fast = g.fast
	border, err := pixelpipe.ParseBorderStrategy(g.border)
	if err != nil {
		return s, err
	}
	s.Border = border
	if s.Fill, err = pixelpipe.ParseColor(g.fill); err != nil {
		return s, err
	}
	return s, nil
}

// loadRecipe loads path and applies its thread count unless --threads was
// given.
func (g *globalEnv) loadRecipe(cmd *cobra.Command, path string) (pixelpipe.Chain, error) {
	r, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if r.Threads > 0 && !cmd.Flags().Changed("threads") {
		imageutil.SetParallelism(r.Threads)
	}
	return r.Build()
}

// runWatched runs pl over b while logging progress.
func (g *globalEnv) runWatched(ctx context.Context, pl pixelpipe.Pipeline, b *imageutil.PixelBuffer) (*imageutil.PixelBuffer, error) {
	pp := progress.NewPipeline()
	if g.interval > 0 {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go progress.Watch(ctx, pp, g.interval)
	}
	return pl.Run(b, pp)
}
