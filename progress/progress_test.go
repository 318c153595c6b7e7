package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReachesHundredPercent(t *testing.T) {
	const n = 1000
	p := New(n)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += 8 {
				p.Increment()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, n, p.Value())
	assert.Equal(t, n, p.Max())
	assert.Equal(t, 100.0, p.Percentage())
	assert.True(t, p.Done())
}

func TestProgressSetupResets(t *testing.T) {
	p := New(4)
	p.Add(3)
	require.Equal(t, 75.0, p.Percentage())

	p.Setup(10)
	assert.Equal(t, 0, p.Value())
	assert.Equal(t, 10, p.Max())
	assert.False(t, p.Done())
}

func TestProgressZeroMax(t *testing.T) {
	p := New(0)
	p.Increment()
	assert.Equal(t, 0.0, p.Percentage())
	assert.False(t, p.Done())
}

func TestNilProgressIsInert(t *testing.T) {
	var p *Progress
	p.Setup(3)
	p.Increment()
	p.Add(2)
	assert.Equal(t, 0, p.Value())
	assert.Equal(t, 0.0, p.Percentage())
}

func TestPipelineProgressCurrentStage(t *testing.T) {
	pp := NewPipeline()
	pp.Expect(3)

	_, ok := pp.Current()
	assert.False(t, ok, "no stage registered yet")

	enlarge := pp.Register("enlargement")
	enlarge.Setup(2)
	cur, ok := pp.Current()
	require.True(t, ok)
	assert.Equal(t, "enlargement", cur.Name)

	enlarge.Increment()
	enlarge.Increment()
	pp.IncrementCombined()

	pp.Register("gaussian-blur")
	cur, ok = pp.Current()
	require.True(t, ok)
	assert.Equal(t, "gaussian-blur", cur.Name)
	pp.IncrementCombined()

	pp.Register("crop")
	pp.IncrementCombined()

	assert.True(t, pp.Finished())
	_, ok = pp.Current()
	assert.False(t, ok)

	names := []string{}
	for _, s := range pp.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"enlargement", "gaussian-blur", "crop"}, names)
	assert.Equal(t, 100.0, pp.Combined().Percentage())
}

func TestPipelineProgressSetupCombinedClearsStages(t *testing.T) {
	pp := NewPipeline()
	pp.Expect(1)
	pp.Register("old")
	pp.IncrementCombined()

	pp.SetupCombined(2)
	assert.Empty(t, pp.Stages())
	assert.Equal(t, 0, pp.Combined().Value())
	assert.Equal(t, 2, pp.Combined().Max())
}

func TestDescribe(t *testing.T) {
	pp := NewPipeline()
	pp.Expect(3)
	p := pp.Register("gaussian-blur")
	p.Setup(4)
	p.Add(2)
	stage, ok := pp.Current()
	require.True(t, ok)
	assert.Equal(t, "1/3 gaussian-blur 50%", Describe(pp, stage))
}
