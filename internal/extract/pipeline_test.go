package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriscan/labelocr/internal/engine"
	"github.com/nutriscan/labelocr/internal/nutrition"
	"github.com/nutriscan/labelocr/internal/testutil"
)

type fakeEngine struct {
	id    string
	text  string
	conf  float64
	panic bool
}

func (f *fakeEngine) ID() string { return f.id }

func (f *fakeEngine) Recognize(string) (engine.Outcome, error) {
	if f.panic {
		panic("engine blew up")
	}
	return engine.Outcome{EngineID: f.id, Text: f.text, Confidence: f.conf}, nil
}

const labelText = "Energy: 350 kcal Protein: 12.5g Fat: 8.2g Carbohydrates: 60g"

func buildPipeline(t *testing.T, e engine.Engine) *Pipeline {
	t.Helper()
	p, err := NewBuilder().
		WithWorkDir(t.TempDir()).
		WithEngine(e).
		Build()
	require.NoError(t, err)
	return p
}

func TestRunCombinesOCRAndParsingConfidence(t *testing.T) {
	p := buildPipeline(t, &fakeEngine{id: "fake", text: labelText, conf: 0.9})
	img := testutil.WriteLabelImage(t, testutil.DefaultLabelConfig())

	res := p.Run(img)

	require.Empty(t, res.Error)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, labelText, res.RawText)
	assert.Equal(t, "fake", res.Details.OCREngine)
	assert.InDelta(t, 0.9, res.Details.OCRConfidence, 1e-9)

	wantParsing := nutrition.NewParser().Parse(labelText).Confidence
	assert.InDelta(t, wantParsing, res.Details.ParsingConfidence, 1e-9)
	assert.InDelta(t, combineConfidence(0.9, wantParsing), res.Confidence, 1e-9)
	assert.Empty(t, res.Details.MissingRequired)
	assert.Len(t, res.Details.FoundNutrients, 4)
	assert.Positive(t, res.Details.ProcessingTimeSeconds)
}

func TestRunNoTextExtracted(t *testing.T) {
	p := buildPipeline(t, &fakeEngine{id: "fake", text: "   ", conf: 0.8})
	img := testutil.WriteLabelImage(t, testutil.DefaultLabelConfig())

	res := p.Run(img)

	assert.Zero(t, res.Confidence)
	assert.Equal(t, "No text extracted", res.Error)
	assert.Empty(t, res.NutritionData)
	assert.Equal(t, nutrition.RequiredKeys, res.Details.MissingRequired)
}

func TestRunCorruptImageDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o600))

	p := buildPipeline(t, &fakeEngine{id: "fake", text: "", conf: 0})
	res := p.Run(path)

	assert.Zero(t, res.Confidence)
	assert.NotEmpty(t, res.Error)
}

func TestRunRecoversFromPanic(t *testing.T) {
	p := buildPipeline(t, &fakeEngine{id: "fake", panic: true})
	img := testutil.WriteLabelImage(t, testutil.DefaultLabelConfig())

	res := p.Run(img)

	assert.Zero(t, res.Confidence)
	assert.Contains(t, res.Error, "internal error")
	assert.Contains(t, res.Error, "engine blew up")
}

func TestRunCleansUpTransientImages(t *testing.T) {
	workDir := t.TempDir()
	p, err := NewBuilder().
		WithWorkDir(workDir).
		WithEngine(&fakeEngine{id: "fake", text: labelText, conf: 0.7}).
		Build()
	require.NoError(t, err)

	img := testutil.WriteLabelImage(t, testutil.DefaultLabelConfig())
	res := p.Run(img)
	require.Empty(t, res.Error)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunDebugKeepsTransientImages(t *testing.T) {
	workDir := t.TempDir()
	p, err := NewBuilder().
		WithWorkDir(workDir).
		WithDebug(true).
		WithEngine(&fakeEngine{id: "fake", text: labelText, conf: 0.7}).
		Build()
	require.NoError(t, err)

	img := testutil.WriteLabelImage(t, testutil.DefaultLabelConfig())
	res := p.Run(img)
	require.Empty(t, res.Error)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestBuilderDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, engine.MethodAuto, cfg.Method)
	assert.False(t, cfg.Debug)

	p, err := NewBuilder().WithWorkDir(t.TempDir()).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{engine.TesseractEngineID}, p.orchestrator.Engines())
	assert.NoError(t, p.Close())
}
