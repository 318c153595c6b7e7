package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Watch logs the running stage of pp every interval until ctx is done or
// the pipeline finishes. It only reads counters.
func Watch(ctx context.Context, pp *PipelineProgress, interval time.Duration) {
	if pp == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pp.Finished() {
				return
			}
			stage, ok := pp.Current()
			if !ok {
				continue
			}
			line := Describe(pp, stage)
			if line == last {
				continue
			}
			last = line
			log.Info().
				Str("stage", stage.Name).
				Int("step", pp.Combined().Value()+1).
				Int("steps", pp.Combined().Max()).
				Float64("percent", stage.Progress.Percentage()).
				Msg("processing")
		}
	}
}

// Describe renders a one-line status for stage, e.g. "2/3 gaussian-blur 41%".
func Describe(pp *PipelineProgress, stage Stage) string {
	return fmt.Sprintf("%d/%d %s %.0f%%",
		pp.Combined().Value()+1, pp.Combined().Max(), stage.Name, stage.Progress.Percentage())
}
