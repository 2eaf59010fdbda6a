package forecast

import (
	"os"
	"runtime"
	"sync"

	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
)

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// DefaultLibraryPath returns the conventional onnxruntime shared library name.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "/usr/lib/libonnxruntime.so"
	}
}

// InitializeRuntime loads the onnxruntime shared library once per process.
// Later calls return the first result.
func InitializeRuntime(libraryPath string) error {
	runtimeOnce.Do(func() {
		if libraryPath == "" {
			libraryPath = DefaultLibraryPath()
		}

		ort.SetSharedLibraryPath(libraryPath)

		if err := ort.InitializeEnvironment(); err != nil {
			runtimeErr = errors.Wrapf(errors.ErrCodeModelNotLoaded, err, "failed to initialize onnxruntime from %s", libraryPath)
		}
	})

	return runtimeErr
}

// ONNXPredictor runs an exported single-feature LSTM with input shape
// (1, lookback, 1) named "input" and output shape (1, 1) named "output".
type ONNXPredictor struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewONNXPredictor loads modelPath.
func NewONNXPredictor(modelPath, libraryPath string, lookback int) (*ONNXPredictor, error) {
	if lookback <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "lookback must be positive, got %d", lookback)
	}

	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeModelNotLoaded, err, "model file %s", modelPath)
	}

	if err := InitializeRuntime(libraryPath); err != nil {
		return nil, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(lookback), 1), make([]float32, lookback))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelNotLoaded, "failed to create input tensor", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()

		return nil, errors.Wrap(errors.ErrCodeModelNotLoaded, "failed to create output tensor", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()

		return nil, errors.Wrapf(errors.ErrCodeModelNotLoaded, err, "failed to create session for %s", modelPath)
	}

	return &ONNXPredictor{session: session, input: input, output: output}, nil
}

// Predict copies window into the input tensor and runs the session.
func (p *ONNXPredictor) Predict(window []float32) (float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return 0, errors.New(errors.ErrCodeModelNotLoaded, "predictor is closed")
	}

	data := p.input.GetData()
	if len(window) != len(data) {
		return 0, errors.Newf(errors.ErrCodeForecastFailed, "window has %d values, model expects %d", len(window), len(data))
	}

	copy(data, window)

	if err := p.session.Run(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeForecastFailed, "inference failed", err)
	}

	return p.output.GetData()[0], nil
}

// Close destroys the session and its tensors.
func (p *ONNXPredictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error

	if p.session != nil {
		err = multierr.Append(err, p.session.Destroy())
		p.session = nil
	}

	if p.input != nil {
		err = multierr.Append(err, p.input.Destroy())
		p.input = nil
	}

	if p.output != nil {
		err = multierr.Append(err, p.output.Destroy())
		p.output = nil
	}

	return err
}

var _ Predictor = (*ONNXPredictor)(nil)

// Open loads an ONNX model and wraps it in a ModelSource.
func Open(modelPath, libraryPath string, lookback int) (*ModelSource, error) {
	predictor, err := NewONNXPredictor(modelPath, libraryPath, lookback)
	if err != nil {
		return nil, err
	}

	return NewModelSource(predictor, lookback)
}
