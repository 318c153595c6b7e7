package pixelpipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/pixelpipe/imageutil"
)

// Settings are the pipeline-wide options every filter is built with.
type Settings struct {
	// Fast runs bordered processors without enlargement and cropping.
	Fast   bool
	Border BorderStrategy
	Fill   imageutil.Pixel
}

// DefaultSettings returns full mode with an opaque black constant border.
func DefaultSettings() Settings {
	return Settings{Border: BorderConstant, Fill: DefaultFill}
}

// FilterDef describes a named filter: its default options and how to build
// a pipeline from YAML-encoded option overrides.
type FilterDef struct {
	Name        string
	Description string
	defaults    func() any
	build       func(params []byte, s Settings) (Pipeline, error)
}

// Defaults returns a fresh copy of the filter's default options.
func (d FilterDef) Defaults() any { return d.defaults() }

// Build decodes params over the defaults and returns the pipeline. Empty
// params keep every default. Unknown keys fail with ErrInvalidOptions.
func (d FilterDef) Build(params []byte, s Settings) (Pipeline, error) {
	pl, err := d.build(params, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	return pl, nil
}

// NewFilterDef declares a filter whose options decode into a copy of
// defaults before build runs.
func NewFilterDef[T any](name, desc string, defaults T, build func(opts T, s Settings) (Pipeline, error)) FilterDef {
	return FilterDef{
		Name:        name,
		Description: desc,
		defaults: func() any {
			d := defaults
			return &d
		},
		build: func(params []byte, s Settings) (Pipeline, error) {
			opts := defaults
			if err := DecodeOptions(params, &opts); err != nil {
				return nil, err
			}
			return build(opts, s)
		},
	}
}

// DecodeOptions decodes a YAML mapping into v, rejecting unknown keys.
func DecodeOptions(params []byte, v any) error {
	if len(bytes.TrimSpace(params)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(params))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

var (
	registryMu sync.RWMutex
	registry   = map[string]FilterDef{}
)

// Register adds def to the registry. It panics if the name is empty or
// already taken.
func Register(def FilterDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if def.Name == "" || def.build == nil {
		panic("pixelpipe: Register of incomplete filter definition")
	}
	if _, dup := registry[def.Name]; dup {
		panic("pixelpipe: Register called twice for filter " + def.Name)
	}
	registry[def.Name] = def
}

// Lookup returns the filter registered under name.
func Lookup(name string) (FilterDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[name]
	return def, ok
}

// Filters returns every registered filter sorted by name.
func Filters() []FilterDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	defs := make([]FilterDef, 0, len(registry))
	for _, name := range slices.Sorted(maps.Keys(registry)) {
		defs = append(defs, registry[name])
	}
	return defs
}

// Build looks up name and builds it with params.
func Build(name string, params []byte, s Settings) (Pipeline, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidOptions, name)
	}
	return def.Build(params, s)
}

func single(p Processor, err error) (Pipeline, error) {
	if err != nil {
		return nil, err
	}
	return NewSingle(p), nil
}

func bordered(s Settings) func(p BorderedProcessor, err error) (Pipeline, error) {
	return func(p BorderedProcessor, err error) (Pipeline, error) {
		if err != nil {
			return nil, err
		}
		return NewEnlargementCropPipeline(p, EnlargementCropOptions{
			Fast:     s.Fast,
			Strategy: s.Border,
			Fill:     s.Fill,
		})
	}
}

type preciseOptions struct {
	Precise bool `yaml:"precise"`
}

type grayscaleOptions struct {
	Method  string `yaml:"method"`
	Precise bool   `yaml:"precise"`
}

type brightnessOptions struct {
	Factor float64 `yaml:"factor"`
}

type thresholdOptions struct {
	Channels string `yaml:"channels"`
	Red      uint8  `yaml:"red"`
	Green    uint8  `yaml:"green"`
	Blue     uint8  `yaml:"blue"`
}

type quantizationOptions struct {
	Levels int `yaml:"levels"`
}

type gammaOptions struct {
	Gamma   float64 `yaml:"gamma"`
	Precise bool    `yaml:"precise"`
}

type blurOptions struct {
	Radius  int     `yaml:"radius"`
	Sigma   float64 `yaml:"sigma"`
	Precise bool    `yaml:"precise"`
}

type radiusOptions struct {
	Radius int `yaml:"radius"`
}

type meanBlurOptions struct {
	Radius  int  `yaml:"radius"`
	Precise bool `yaml:"precise"`
}

type cannyOptions struct {
	Radius  int     `yaml:"radius"`
	Sigma   float64 `yaml:"sigma"`
	Kernel  string  `yaml:"kernel"`
	Low     float64 `yaml:"low"`
	High    float64 `yaml:"high"`
	Precise bool    `yaml:"precise"`
}

type bilateralOptions struct {
	Radius         int     `yaml:"radius"`
	SigmaSpatial   float64 `yaml:"sigma_spatial"`
	SigmaIntensity float64 `yaml:"sigma_intensity"`
	Precise        bool    `yaml:"precise"`
}

type scaleOptions struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Factor        float64 `yaml:"factor"`
	Interpolation string  `yaml:"interpolation"`
}

type rotateOptions struct {
	Degrees int `yaml:"degrees"`
}

type rotateFlexibleOptions struct {
	Degrees float64 `yaml:"degrees"`
}

type remappingOptions struct {
	Function string  `yaml:"function"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	Factor   float64 `yaml:"factor"`
}

// operandOptions names the second image of add or subtract: a file, or a
// constant colour when Image is empty.
type operandOptions struct {
	Image string `yaml:"image"`
	Color string `yaml:"color"`
}

func (o operandOptions) operand() (*imageutil.PixelBuffer, Pixel, error) {
	if o.Image != "" {
		b, err := imageutil.ReadFromFile(o.Image)
		return b, Pixel{}, err
	}
	c, err := ParseColor(o.Color)
	return nil, c, err
}

type cropOptions struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type enlargementOptions struct {
	Border int `yaml:"border"`
}

type paletteOptions struct {
	Palette string   `yaml:"palette"`
	Colors  []string `yaml:"colors"`
	Dither  bool     `yaml:"dither"`
}

// palette resolves explicit colours first, then the named palette.
func (o paletteOptions) palette() (*Palette, error) {
	if len(o.Colors) == 0 {
		return NamedPalette(o.Palette)
	}
	colors := make([]Pixel, len(o.Colors))
	for i, s := range o.Colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		colors[i] = c
	}
	return NewPalette(colors)
}

func init() {
	for _, def := range builtinFilters() {
		Register(def)
	}
}

func builtinFilters() []FilterDef {
	return []FilterDef{
		NewFilterDef("negative", "invert colour channels", preciseOptions{},
			func(o preciseOptions, _ Settings) (Pipeline, error) {
				return NewSingle(&Negative{Precise: o.Precise}), nil
			}),
		NewFilterDef("sepia", "sepia tone", preciseOptions{},
			func(o preciseOptions, _ Settings) (Pipeline, error) {
				return NewSingle(&Sepia{Precise: o.Precise}), nil
			}),
		NewFilterDef("grayscale", "reduce to gray by average, lightness or luminosity",
			grayscaleOptions{Method: "average"},
			func(o grayscaleOptions, _ Settings) (Pipeline, error) {
				m, err := ParseGrayscaleMethod(o.Method)
				if err != nil {
					return nil, err
				}
				return NewSingle(&Grayscale{Method: m, Precise: o.Precise}), nil
			}),
		NewFilterDef("brightness", "scale HSL lightness", brightnessOptions{Factor: 1.2},
			func(o brightnessOptions, _ Settings) (Pipeline, error) {
				return single(NewBrightness(o.Factor))
			}),
		NewFilterDef("threshold", "zero selected channels at or below their cutoff",
			thresholdOptions{Channels: "rgb", Red: 128, Green: 128, Blue: 128},
			func(o thresholdOptions, _ Settings) (Pipeline, error) {
				return single(NewThreshold(o.Channels, o.Red, o.Green, o.Blue))
			}),
		NewFilterDef("quantization", "reduce each channel to evenly spaced levels",
			quantizationOptions{Levels: 4},
			func(o quantizationOptions, _ Settings) (Pipeline, error) {
				return single(NewQuantization(o.Levels))
			}),
		NewFilterDef("palette", "map to the nearest colour of a fixed palette, optionally dithered",
			paletteOptions{Palette: "ansi16"},
			func(o paletteOptions, _ Settings) (Pipeline, error) {
				pal, err := o.palette()
				if err != nil {
					return nil, err
				}
				return NewSingle(&PaletteMap{Palette: pal, Dither: o.Dither}), nil
			}),
		NewFilterDef("gamma", "raise normalized channels to a power", gammaOptions{Gamma: 2.2},
			func(o gammaOptions, _ Settings) (Pipeline, error) {
				return single(NewGamma(o.Gamma, o.Precise))
			}),
		NewFilterDef("gaussian-blur", "Gaussian blur", blurOptions{Radius: 2, Sigma: 1.4},
			func(o blurOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewGaussianBlur(o.Radius, o.Sigma, o.Precise))
			}),
		NewFilterDef("mean-blur", "box blur", meanBlurOptions{Radius: 1},
			func(o meanBlurOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewMeanBlur(o.Radius, o.Precise))
			}),
		NewFilterDef("median", "per-channel window median", radiusOptions{Radius: 1},
			func(o radiusOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewMedian(o.Radius))
			}),
		NewFilterDef("sharpen", "3x3 sharpen", preciseOptions{},
			func(o preciseOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewSharpen(o.Precise))
			}),
		NewFilterDef("emboss", "3x3 emboss", preciseOptions{},
			func(o preciseOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewEmboss(o.Precise))
			}),
		NewFilterDef("laplacian-of-gaussian", "zero-mean blob detector",
			blurOptions{Radius: 2, Sigma: 1.4},
			func(o blurOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewLaplacianOfGaussian(o.Radius, o.Sigma, o.Precise))
			}),
		NewFilterDef("sobel", "Sobel gradient magnitude", preciseOptions{},
			func(o preciseOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewSobel(o.Precise), nil)
			}),
		NewFilterDef("sobel-rgb", "per-channel Sobel gradient magnitude", preciseOptions{},
			func(o preciseOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewSobelRGB(o.Precise), nil)
			}),
		NewFilterDef("prewitt", "Prewitt gradient magnitude", preciseOptions{},
			func(o preciseOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewPrewitt(o.Precise), nil)
			}),
		NewFilterDef("prewitt-rgb", "per-channel Prewitt gradient magnitude", preciseOptions{},
			func(o preciseOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewPrewittRGB(o.Precise), nil)
			}),
		NewFilterDef("canny", "Canny edge map",
			cannyOptions{Radius: 2, Sigma: 1.4, Kernel: "sobel", Low: 0.2, High: 0.6},
			func(o cannyOptions, s Settings) (Pipeline, error) {
				// The blur always replicates edges, but a strategy the
				// other bordered filters reject is rejected here too.
				if err := s.Border.validate(); err != nil {
					return nil, err
				}
				k, err := ParseCannyKernel(o.Kernel)
				if err != nil {
					return nil, err
				}
				return single(NewCanny(CannyOptions{
					Radius:  o.Radius,
					Sigma:   o.Sigma,
					Kernel:  k,
					Low:     o.Low,
					High:    o.High,
					Precise: o.Precise,
					Fast:    s.Fast,
				}))
			}),
		NewFilterDef("kuwahara", "edge-preserving quadrant smoothing", radiusOptions{Radius: 2},
			func(o radiusOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewKuwahara(o.Radius))
			}),
		NewFilterDef("bilateral", "edge-preserving weighted smoothing",
			bilateralOptions{Radius: 2, SigmaSpatial: 2, SigmaIntensity: 0.1},
			func(o bilateralOptions, s Settings) (Pipeline, error) {
				return bordered(s)(NewBilateral(o.Radius, o.SigmaSpatial, o.SigmaIntensity, o.Precise))
			}),
		NewFilterDef("scale", "resize to width x height or by factor",
			scaleOptions{Factor: 1, Interpolation: "catmull-rom"},
			func(o scaleOptions, _ Settings) (Pipeline, error) {
				interp, err := imageutil.ParseInterpolation(o.Interpolation)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
				}
				if o.Width > 0 || o.Height > 0 {
					return single(NewScale(o.Width, o.Height, interp))
				}
				return single(NewScaleFactor(o.Factor, interp))
			}),
		NewFilterDef("rotate", "rotate clockwise by a multiple of 90 degrees", rotateOptions{Degrees: 90},
			func(o rotateOptions, _ Settings) (Pipeline, error) {
				return single(NewRotate(o.Degrees))
			}),
		NewFilterDef("rotate-flexible", "rotate clockwise by any angle onto a larger canvas",
			rotateFlexibleOptions{Degrees: 45},
			func(o rotateFlexibleOptions, s Settings) (Pipeline, error) {
				return single(NewRotateFlexible(o.Degrees, s.Fill))
			}),
		NewFilterDef("remapping", "linear, exponential or logarithmic curve in linear light",
			remappingOptions{Function: "linear", Min: 0, Max: 1, Factor: 2},
			func(o remappingOptions, _ Settings) (Pipeline, error) {
				fn, err := ParseRemapFunction(o.Function)
				if err != nil {
					return nil, err
				}
				return single(NewRemapping(RemappingOptions{Function: fn, Min: o.Min, Max: o.Max, Factor: o.Factor}))
			}),
		NewFilterDef("add", "saturating per-channel sum with a second image or colour",
			operandOptions{Color: "#00000000"},
			func(o operandOptions, _ Settings) (Pipeline, error) {
				b, c, err := o.operand()
				if err != nil {
					return nil, err
				}
				return NewSingle(&Add{Operand: b, Color: c}), nil
			}),
		NewFilterDef("subtract", "saturating per-channel difference with a second image or colour",
			operandOptions{Color: "#00000000"},
			func(o operandOptions, _ Settings) (Pipeline, error) {
				b, c, err := o.operand()
				if err != nil {
					return nil, err
				}
				return NewSingle(&Subtract{Operand: b, Color: c}), nil
			}),
		NewFilterDef("crop", "cut out a rectangle", cropOptions{},
			func(o cropOptions, _ Settings) (Pipeline, error) {
				return single(NewCrop(imageutil.Pt(o.X, o.Y), imageutil.Size{Width: o.Width, Height: o.Height}))
			}),
		NewFilterDef("enlargement", "pad every edge with the border fill", enlargementOptions{Border: 1},
			func(o enlargementOptions, s Settings) (Pipeline, error) {
				return single(NewEnlargement(o.Border, s.Border, s.Fill))
			}),
	}
}
