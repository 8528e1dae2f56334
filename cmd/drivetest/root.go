package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Brownie44l1/drive-api/internal/model"
	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// Options holds the harness settings gathered from flags and mode words.
type Options struct {
	Grey       bool
	TTA        bool
	Iterations int
	Image      string
	Left       string
	Right      string
	InputName  string
	OutputName string
	Precision  string
	CPU        bool
	DeviceID   int
	Library    string
}

var opts Options

var rootCmd = &cobra.Command{
	Use:   "drivetest <model.onnx> [grey|gray] [tta]",
	Short: "Time steering/throttle inference on sample images",
	Long: `Loads a road-following model and runs it on sample images from the
working directory. "grey" (or "gray") switches to stereo greyscale input read
from the left and right images; "tta" adds mirrored copies to every batch.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyModeWords(&opts, args[1:]); err != nil {
			return err
		}
		return run(cmd, args[0], opts)
	},
}

// Execute runs the harness and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&opts.Grey, "grey", false, "stereo greyscale mode")
	f.BoolVar(&opts.TTA, "tta", false, "test-time augmentation with mirrored frames")
	f.IntVarP(&opts.Iterations, "iterations", "n", 10, "number of timed runs")
	f.StringVar(&opts.Image, "image", "sample.jpg", "colour sample image")
	f.StringVar(&opts.Left, "left", "left.jpg", "left sample image for stereo mode")
	f.StringVar(&opts.Right, "right", "right.jpg", "right sample image for stereo mode")
	f.StringVar(&opts.InputName, "input-name", "input", "model input tensor name")
	f.StringVar(&opts.OutputName, "output-name", "output", "model output tensor name")
	f.StringVar(&opts.Precision, "precision", string(model.FP16), "fp16 or fp32")
	f.BoolVar(&opts.CPU, "cpu", false, "run on the CPU instead of CUDA")
	f.IntVar(&opts.DeviceID, "device", 0, "CUDA device id")
	f.StringVar(&opts.Library, "ort-library", os.Getenv("ORT_LIBRARY_PATH"), "path to the onnxruntime shared library")
}

// applyModeWords accepts the positional mode words after the model path.
func applyModeWords(o *Options, words []string) error {
	for _, w := range words {
		switch strings.ToLower(w) {
		case "grey", "gray":
			o.Grey = true
		case "tta":
			o.TTA = true
		default:
			return fmt.Errorf("unknown mode %q (want grey, gray or tta)", w)
		}
	}
	return nil
}

func run(cmd *cobra.Command, modelPath string, o Options) error {
	precision, err := model.ParsePrecision(o.Precision)
	if err != nil {
		return err
	}
	if o.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", o.Iterations)
	}

	paths := []string{o.Image}
	channels := 3
	if o.Grey {
		paths = []string{o.Left, o.Right}
		channels = 1
	}

	width, height, err := preprocess.ImageSize(paths[0])
	if err != nil {
		return err
	}

	frames, err := loadFrames(paths, width, height, channels)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	start := time.Now()
	server, err := model.NewServer(modelPath, model.Metadata{
		InputName:  o.InputName,
		OutputName: o.OutputName,
		Width:      width,
		Height:     height,
		Channels:   channels,
	}, model.Options{
		LibraryPath: o.Library,
		UseGPU:      !o.CPU,
		DeviceID:    o.DeviceID,
		Precision:   precision,
	})
	if err != nil {
		return err
	}

	pipeline, err := model.NewPipeline(server, width, height, channels, preprocess.Stats{})
	if err != nil {
		server.Close()
		return err
	}
	defer pipeline.Close()
	fmt.Fprintf(out, "Model loaded in %f\n", time.Since(start).Seconds())

	req := model.MonoRequest(frames[0], o.TTA)
	if o.Grey {
		req = model.StereoRequest(frames[0], frames[1], o.TTA)
	}

	for i := 0; i < o.Iterations; i++ {
		start := time.Now()
		estimate, err := pipeline.Process(req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Estimated: steering %f, throttle %f, processed in: %f\n",
			estimate.Steering, estimate.Throttle, time.Since(start).Seconds())
	}
	return nil
}

// loadFrames decodes every sample concurrently, keeping the order of paths.
func loadFrames(paths []string, width, height, channels int) ([]preprocess.Frame, error) {
	frames := make([]preprocess.Frame, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			frame, err := preprocess.LoadFrame(path, width, height, channels)
			if err != nil {
				return err
			}
			frames[i] = frame
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}
