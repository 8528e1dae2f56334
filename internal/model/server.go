package model

import (
	"fmt"
	"strconv"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/drive-api/internal/batch"
)

// Options fixes where and how the model runs. They cannot change after
// NewServer returns.
type Options struct {
	// LibraryPath points at the onnxruntime shared library. Empty uses the
	// platform default.
	LibraryPath string
	UseGPU      bool
	DeviceID    int
	Precision   Precision
}

// Server runs batches through an ONNX Runtime session.
type Server struct {
	session  *ort.DynamicAdvancedSession
	Metadata Metadata
	opts     Options
}

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return err
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return
	}
	envRefs--
	if envRefs == 0 {
		ort.DestroyEnvironment()
	}
}

func NewServer(modelPath string, metadata Metadata, opts Options) (*Server, error) {
	metadata.applyDefaults()
	if opts.Precision == "" {
		opts.Precision = FP16
	}

	if err := acquireEnvironment(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize ONNX environment: %w", ErrLoad, err)
	}

	session, err := newSession(modelPath, metadata, opts)
	if err != nil {
		releaseEnvironment()
		return nil, err
	}

	return &Server{
		session:  session,
		Metadata: metadata,
		opts:     opts,
	}, nil
}

func newSession(modelPath string, metadata Metadata, opts Options) (*ort.DynamicAdvancedSession, error) {
	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session options: %w", ErrLoad, err)
	}
	defer sessionOptions.Destroy()

	if opts.UseGPU {
		cudaOptions, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create CUDA options: %w", ErrLoad, err)
		}
		defer cudaOptions.Destroy()

		if err := cudaOptions.Update(map[string]string{"device_id": strconv.Itoa(opts.DeviceID)}); err != nil {
			return nil, fmt.Errorf("%w: failed to select CUDA device %d: %w", ErrLoad, opts.DeviceID, err)
		}
		if err := sessionOptions.AppendExecutionProviderCUDA(cudaOptions); err != nil {
			return nil, fmt.Errorf("%w: CUDA execution provider unavailable: %w", ErrLoad, err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		sessionOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ONNX session: %w", ErrLoad, err)
	}
	return session, nil
}

// Execute runs one forward pass over b.
func (s *Server) Execute(b *batch.Batch) ([]batch.PredictionRow, error) {
	inputShape := ort.NewShape(b.Shape()...)
	outputShape := ort.NewShape(int64(b.Rows), int64(s.Metadata.OutputWidth))

	var (
		values []float32
		err    error
	)
	switch s.opts.Precision {
	case FP16:
		values, err = s.runHalf(inputShape, outputShape, b.Data)
	case FP32:
		values, err = s.runFloat(inputShape, outputShape, b.Data)
	default:
		err = fmt.Errorf("%w: unsupported precision %q", ErrExecution, s.opts.Precision)
	}
	if err != nil {
		return nil, err
	}

	return rowsFrom(values, b.Rows, s.Metadata.OutputWidth)
}

func (s *Server) runHalf(inputShape, outputShape ort.Shape, data []float32) ([]float32, error) {
	inputTensor, err := ort.NewCustomDataTensor(inputShape, encodeHalf(data), ort.TensorElementDataTypeFloat16)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input tensor: %w", ErrExecution, err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewCustomDataTensor(outputShape,
		make([]byte, 2*outputShape.FlattenedSize()), ort.TensorElementDataTypeFloat16)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create output tensor: %w", ErrExecution, err)
	}
	defer outputTensor.Destroy()

	if err := s.session.Run([]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	return decodeHalf(outputTensor.GetData()), nil
}

func (s *Server) runFloat(inputShape, outputShape ort.Shape, data []float32) ([]float32, error) {
	inputTensor, err := ort.NewTensor(inputShape, data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input tensor: %w", ErrExecution, err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create output tensor: %w", ErrExecution, err)
	}
	defer outputTensor.Destroy()

	if err := s.session.Run([]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	return append([]float32(nil), outputTensor.GetData()...), nil
}

func (s *Server) Close() {
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
		releaseEnvironment()
	}
}
