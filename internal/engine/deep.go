package engine

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	onnxrt "github.com/yalue/onnxruntime_go"
)

// DeepEngineID identifies the ONNX-backed multilingual backend.
const DeepEngineID = "deep"

// DeepConfig holds settings for the deep recognition backend.
type DeepConfig struct {
	// ModelPath points at the CTC recognition model in ONNX format.
	ModelPath string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	// DictPath points at the character dictionary, one character per line.
	DictPath string `mapstructure:"dict_path" yaml:"dict_path" json:"dict_path"`
	// ImageHeight is the fixed input height text lines are scaled to.
	ImageHeight int `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	// NumThreads caps intra-op parallelism; 0 leaves the runtime default.
	NumThreads int `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// DefaultDeepConfig returns the default deep-engine settings.
func DefaultDeepConfig() DeepConfig {
	return DeepConfig{
		ImageHeight: 48,
	}
}

// Region is one recognized text line with its location in the source image.
type Region struct {
	Box        image.Rectangle `json:"box"`
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
}

// DeepEngine runs a CTC recognition model over detected text lines via
// ONNX Runtime. Construction loads the model once; Recognize is safe for
// concurrent use.
type DeepEngine struct {
	cfg     DeepConfig
	session *onnxrt.DynamicAdvancedSession
	charset *charset
	mu      sync.Mutex
}

// NewDeepEngine loads the charset and ONNX session.
func NewDeepEngine(cfg DeepConfig) (*DeepEngine, error) {
	if cfg.ImageHeight <= 0 {
		cfg.ImageHeight = DefaultDeepConfig().ImageHeight
	}
	cs, err := loadCharset(cfg.DictPath)
	if err != nil {
		return nil, err
	}

	if err := ensureRuntimeLibrary(); err != nil {
		return nil, err
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}

	opts, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() { _ = opts.Destroy() }()
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("set thread count: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", cfg.ModelPath, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s has no usable input/output", cfg.ModelPath)
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &DeepEngine{cfg: cfg, session: session, charset: cs}, nil
}

// ID implements Engine.
func (e *DeepEngine) ID() string { return DeepEngineID }

// Close releases the ONNX session.
func (e *DeepEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}

// Recognize splits the image into text lines, recognizes each and joins the
// line texts with single spaces. The outcome confidence is the arithmetic
// mean of the per-line confidences.
func (e *DeepEngine) Recognize(imageRef string) (Outcome, error) {
	regions, err := e.RecognizeRegions(imageRef)
	if err != nil {
		return Outcome{}, err
	}
	parts := make([]string, 0, len(regions))
	var sum float64
	for _, r := range regions {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		parts = append(parts, r.Text)
		sum += r.Confidence
	}
	out := Outcome{EngineID: e.ID(), Text: strings.Join(parts, " ")}
	if len(parts) > 0 {
		out.Confidence = sum / float64(len(parts))
	}
	return out, nil
}

// RecognizeRegions returns per-line results with their bounding boxes.
func (e *DeepEngine) RecognizeRegions(imageRef string) ([]Region, error) {
	img, err := imaging.Open(imageRef)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", imageRef, err)
	}

	bands := splitTextLines(img, e.cfg.ImageHeight/8)
	if len(bands) == 0 {
		return nil, nil
	}

	regions := make([]Region, 0, len(bands))
	for _, band := range bands {
		line := cropBand(img, band, 2)
		text, conf, err := e.recognizeLine(line)
		if err != nil {
			slog.Debug("line recognition failed", "top", band.Top, "error", err)
			continue
		}
		b := img.Bounds()
		regions = append(regions, Region{
			Box:        image.Rect(b.Min.X, band.Top, b.Max.X, band.Bottom),
			Text:       text,
			Confidence: conf,
		})
	}
	return regions, nil
}

func (e *DeepEngine) recognizeLine(line image.Image) (string, float64, error) {
	data, width := e.prepareInput(line)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return "", 0, fmt.Errorf("engine is closed")
	}

	input, err := onnxrt.NewTensor(onnxrt.NewShape(1, 3, int64(e.cfg.ImageHeight), int64(width)), data)
	if err != nil {
		return "", 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := e.session.Run([]onnxrt.Value{input}, outputs); err != nil {
		return "", 0, fmt.Errorf("run inference: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return "", 0, fmt.Errorf("expected float32 output tensor, got %T", outputs[0])
	}
	shape := out.GetShape()
	if len(shape) != 3 {
		return "", 0, fmt.Errorf("unexpected output shape %v", shape)
	}
	steps, classes := int(shape[1]), int(shape[2])

	indices, probs := greedyDecode(out.GetData(), steps, classes)
	return e.charset.decode(indices), meanProb(probs), nil
}

// prepareInput scales a line to the model height and packs it as NCHW
// float32 normalized to [-1, 1].
func (e *DeepEngine) prepareInput(line image.Image) ([]float32, int) {
	h := e.cfg.ImageHeight
	resized := imaging.Resize(line, 0, h, imaging.Linear)
	w := resized.Bounds().Dx()
	if w == 0 {
		w = h
		resized = imaging.New(w, h, image.White.C)
	}

	data := make([]float32, 3*h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := resized.NRGBAAt(x, y)
			data[0*h*w+y*w+x] = (float32(c.R)/255.0 - 0.5) / 0.5
			data[1*h*w+y*w+x] = (float32(c.G)/255.0 - 0.5) / 0.5
			data[2*h*w+y*w+x] = (float32(c.B)/255.0 - 0.5) / 0.5
		}
	}
	return data, w
}

// ensureRuntimeLibrary points onnxruntime_go at a shared library when the
// default lookup would not find one.
func ensureRuntimeLibrary() error {
	if p := os.Getenv("ONNXRUNTIME_LIB_PATH"); p != "" {
		onnxrt.SetSharedLibraryPath(p)
		return nil
	}
	candidates := []string{
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
		"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			onnxrt.SetSharedLibraryPath(filepath.Clean(p))
			return nil
		}
	}
	// Fall through and let the runtime try its built-in default.
	return nil
}
