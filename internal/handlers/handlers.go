package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Brownie44l1/drive-api/internal/batch"
	"github.com/Brownie44l1/drive-api/internal/model"
	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// Predictor is the part of model.Pipeline the handlers use.
type Predictor interface {
	Process(req model.Request) (batch.Estimate, error)
	Width() int
	Height() int
	Channels() int
}

type Handler struct {
	// the pipeline is not reentrant
	mu         sync.Mutex
	pipeline   Predictor
	defaultTTA bool
}

func NewHandler(pipeline Predictor, defaultTTA bool) *Handler {
	return &Handler{
		pipeline:   pipeline,
		defaultTTA: defaultTTA,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Predict takes raw interleaved pixel buffers already at the model's size:
// one frame for mono, two (left, right) for stereo.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	tta := h.defaultTTA
	if req.TTA != nil {
		tta = *req.TTA
	}

	frames := make([]preprocess.Frame, len(req.Frames))
	for i, pix := range req.Frames {
		frame, err := preprocess.NewFrame(h.pipeline.Width(), h.pipeline.Height(), h.pipeline.Channels(), pix)
		if err != nil {
			http.Error(w, fmt.Sprintf("Frame %d: %v", i, err), http.StatusBadRequest)
			return
		}
		frames[i] = frame
	}

	h.respond(w, frames, tta)
}

// PredictFromImage takes an "image" upload for mono or "left" and "right"
// uploads for stereo. Images are resized to the model's input size.
func (h *Handler) PredictFromImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form (10MB max)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	fields := []string{"image"}
	if _, ok := r.MultipartForm.File["left"]; ok {
		fields = []string{"left", "right"}
	}

	frames := make([]preprocess.Frame, 0, len(fields))
	for _, field := range fields {
		file, header, err := r.FormFile(field)
		if err != nil {
			http.Error(w, fmt.Sprintf("No %q file provided. Use 'image', or 'left' and 'right'", field), http.StatusBadRequest)
			return
		}
		log.Printf("Received %s: %s, size: %d bytes", field, header.Filename, header.Size)

		frame, err := h.decodeFrame(file)
		file.Close()
		if err != nil {
			http.Error(w, "Invalid image format. Supported: JPEG, PNG, BMP, TIFF, WebP", http.StatusBadRequest)
			return
		}
		frames = append(frames, frame)
	}

	tta := h.defaultTTA
	if v := r.FormValue("tta"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid tta value", http.StatusBadRequest)
			return
		}
		tta = parsed
	}

	h.respond(w, frames, tta)
}

func (h *Handler) decodeFrame(file multipart.File) (preprocess.Frame, error) {
	img, format, err := preprocess.Decode(file)
	if err != nil {
		return preprocess.Frame{}, err
	}
	log.Printf("Image format: %s, dimensions: %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())

	return preprocess.FrameFromImage(img, h.pipeline.Width(), h.pipeline.Height(), h.pipeline.Channels())
}

func (h *Handler) respond(w http.ResponseWriter, frames []preprocess.Frame, tta bool) {
	variant, err := batch.VariantFor(len(frames), tta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	start := time.Now()
	estimate, err := h.pipeline.Process(model.Request{Variant: variant, Frames: frames})
	elapsed := time.Since(start)
	h.mu.Unlock()

	if err != nil {
		if errors.Is(err, preprocess.ErrConfiguration) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Prediction error: %v", err)
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.PredictionResponse{
		Steering:  estimate.Steering,
		Throttle:  estimate.Throttle,
		Variant:   variant.String(),
		Rows:      variant.Rows(),
		ElapsedMs: float64(elapsed.Microseconds()) / 1000,
	})
}
