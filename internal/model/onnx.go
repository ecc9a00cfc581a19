package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect; later calls return the first result.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXClassifier runs a classifier exported to ONNX. The model takes a
// float32 tensor of shape [1, 19] and emits an int64 label tensor.
type ONNXClassifier struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// NewONNXClassifier loads the model and creates an inference session. When
// libPath is empty the runtime library is expected next to the model.
func NewONNXClassifier(modelPath, libPath string) (*ONNXClassifier, error) {
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	inputName, err := validateInput(inputs)
	if err != nil {
		return nil, err
	}
	outputName, err := selectLabelOutput(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	if err := opts.SetIntraOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("onnx: failed to set intra-op threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("onnx: failed to set inter-op threads: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputName}, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &ONNXClassifier{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
	}, nil
}

// validateInput expects a single 2-D float input with 19 columns.
func validateInput(inputs []ort.InputOutputInfo) (string, error) {
	if len(inputs) != 1 {
		return "", fmt.Errorf("onnx: expected 1 input, model has %d", len(inputs))
	}
	in := inputs[0]
	if len(in.Dimensions) != 2 {
		return "", fmt.Errorf("onnx: expected 2D input tensor, got %v", in.Dimensions)
	}
	if cols := in.Dimensions[1]; cols != -1 && cols != domain.FeatureCount {
		return "", fmt.Errorf("onnx: model expects %d features, encoder produces %d", cols, domain.FeatureCount)
	}
	if in.DataType != ort.TensorElementDataTypeFloat {
		return "", fmt.Errorf("onnx: expected float input, got %v", in.DataType)
	}
	return in.Name, nil
}

// selectLabelOutput prefers an output named "label", the converter's name for
// the predicted class, and falls back to the first int64 tensor.
func selectLabelOutput(outputs []ort.InputOutputInfo) (string, error) {
	for _, out := range outputs {
		if out.Name == "label" {
			return out.Name, nil
		}
	}
	for _, out := range outputs {
		if out.DataType == ort.TensorElementDataTypeInt64 {
			return out.Name, nil
		}
	}
	return "", errors.New("onnx: model has no int64 label output")
}

// Classify runs a single inference call. The session is safe for concurrent
// use; tensors are per call.
func (c *ONNXClassifier) Classify(v domain.FeatureVector) (domain.Label, error) {
	data := make([]float32, domain.FeatureCount)
	for i, x := range v {
		data[i] = float32(x)
	}

	in, err := ort.NewTensor(ort.NewShape(1, domain.FeatureCount), data)
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := c.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return 0, fmt.Errorf("onnx: inference failed: %w", err)
	}

	labels := out.GetData()
	if len(labels) != 1 {
		return 0, fmt.Errorf("onnx: expected 1 label, got %d", len(labels))
	}
	return domain.LabelFromClass(labels[0])
}

// Close releases the session.
func (c *ONNXClassifier) Close() error {
	return c.session.Destroy()
}
