package extract

import (
	"fmt"
	"log/slog"

	"github.com/nutriscan/labelocr/internal/engine"
	"github.com/nutriscan/labelocr/internal/nutrition"
	"github.com/nutriscan/labelocr/internal/preprocess"
	"github.com/nutriscan/labelocr/internal/storage"
)

// Config holds configuration for the extraction pipeline and its stages.
type Config struct {
	// WorkDir is where transient processed images are written.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir" json:"work_dir"`
	// Method selects a recognition engine by ID, or "auto" for best-of.
	Method string `mapstructure:"method" yaml:"method" json:"method"`
	// Debug keeps intermediate images on disk after the run.
	Debug bool `mapstructure:"debug" yaml:"debug" json:"debug"`

	Preprocess preprocess.Config      `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Tesseract  engine.TesseractConfig `mapstructure:"tesseract" yaml:"tesseract" json:"tesseract"`
	// Deep enables the ONNX engine when a model path is configured.
	Deep engine.DeepConfig `mapstructure:"deep" yaml:"deep" json:"deep"`
}

// DefaultConfig returns a pipeline config with stage defaults.
func DefaultConfig() Config {
	return Config{
		Method:     engine.MethodAuto,
		Preprocess: preprocess.DefaultConfig(),
		Tesseract:  engine.DefaultTesseractConfig(),
		Deep:       engine.DefaultDeepConfig(),
	}
}

// Pipeline runs normalize → recognize → parse for one image per call.
// Instances are reusable; each run works on its own transient files.
type Pipeline struct {
	cfg          Config
	store        storage.Store
	normalizer   *preprocess.Normalizer
	orchestrator *engine.Orchestrator
	parser       *nutrition.Parser
	closers      []func() error
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg     Config
	engines []engine.Engine
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithWorkDir sets the transient image directory.
func (b *Builder) WithWorkDir(dir string) *Builder {
	if dir != "" {
		b.cfg.WorkDir = dir
	}
	return b
}

// WithMethod selects the recognition method ("auto" or an engine ID).
func (b *Builder) WithMethod(method string) *Builder {
	if method != "" {
		b.cfg.Method = method
	}
	return b
}

// WithDebug toggles keeping intermediate images.
func (b *Builder) WithDebug(debug bool) *Builder {
	b.cfg.Debug = debug
	return b
}

// WithLanguages sets the tesseract language list.
func (b *Builder) WithLanguages(langs []string) *Builder {
	if len(langs) > 0 {
		b.cfg.Tesseract.Languages = langs
	}
	return b
}

// WithDeepModel points the deep engine at a recognition model and
// dictionary; both must be set for the engine to be built.
func (b *Builder) WithDeepModel(modelPath, dictPath string) *Builder {
	if modelPath != "" {
		b.cfg.Deep.ModelPath = modelPath
	}
	if dictPath != "" {
		b.cfg.Deep.DictPath = dictPath
	}
	return b
}

// WithEngine registers an extra recognition engine, mainly for tests.
func (b *Builder) WithEngine(e engine.Engine) *Builder {
	b.engines = append(b.engines, e)
	return b
}

// Build wires storage, normalizer, engines, orchestrator and parser.
func (b *Builder) Build() (*Pipeline, error) {
	store, err := storage.NewDiskStore(b.cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("create work storage: %w", err)
	}

	p := &Pipeline{
		cfg:        b.cfg,
		store:      store,
		normalizer: preprocess.New(b.cfg.Preprocess, store),
		parser:     nutrition.NewParser(),
	}

	engines := append([]engine.Engine{}, b.engines...)
	if len(engines) == 0 {
		engines = append(engines, engine.NewTesseractEngine(b.cfg.Tesseract))
		if b.cfg.Deep.ModelPath != "" && b.cfg.Deep.DictPath != "" {
			deep, err := engine.NewDeepEngine(b.cfg.Deep)
			if err != nil {
				slog.Warn("deep engine unavailable, continuing without it", "error", err)
			} else {
				engines = append(engines, deep)
				p.closers = append(p.closers, deep.Close)
			}
		}
	}
	p.orchestrator = engine.NewOrchestrator(engines...)
	return p, nil
}

// Close releases engine resources held by the pipeline.
func (p *Pipeline) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
