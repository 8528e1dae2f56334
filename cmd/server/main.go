package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Brownie44l1/drive-api/internal/config"
	"github.com/Brownie44l1/drive-api/internal/handlers"
	"github.com/Brownie44l1/drive-api/internal/model"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func main() {
	cfg := config.Load()

	metadata, err := model.LoadMetadata(cfg.MetadataPath)
	if err != nil {
		log.Fatalf("Failed to load metadata: %v", err)
	}

	precision, err := model.ParsePrecision(cfg.Precision)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Loading model from: %s", cfg.ModelPath)

	modelServer, err := model.NewServer(cfg.ModelPath, metadata, model.Options{
		LibraryPath: cfg.LibraryPath,
		UseGPU:      cfg.UseGPU,
		DeviceID:    cfg.DeviceID,
		Precision:   precision,
	})
	if err != nil {
		log.Fatalf("Failed to initialize model server: %v", err)
	}

	pipeline, err := model.NewPipeline(modelServer, metadata.Width, metadata.Height, metadata.Channels, metadata.Stats())
	if err != nil {
		modelServer.Close()
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}
	defer pipeline.Close()

	handler := handlers.NewHandler(pipeline, cfg.TTA)

	http.HandleFunc("/health", enableCORS(handler.Health))
	http.HandleFunc("/predict", enableCORS(handler.Predict))
	http.HandleFunc("/predict/image", enableCORS(handler.PredictFromImage))

	log.Printf("Server starting on port %d", cfg.Port)
	log.Printf("Input: %dx%dx%d, precision: %s, gpu: %v (device %d), tta: %v",
		metadata.Width, metadata.Height, metadata.Channels, precision, cfg.UseGPU, cfg.DeviceID, cfg.TTA)
	log.Println("Endpoints:")
	log.Println("  GET /health - Health check")
	log.Println("  POST /predict - Raw frame prediction")
	log.Println("  POST /predict/image - Predict from image upload (image, or left+right)")

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
