package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the settings for the server binary.
type Config struct {
	Port         int
	ModelPath    string
	MetadataPath string

	// onnxruntime shared library; empty uses the platform default
	LibraryPath string
	UseGPU      bool
	DeviceID    int
	Precision   string

	// TTA is the default for requests that do not set it.
	TTA bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:         envInt("PORT", 8080),
		ModelPath:    envStr("MODEL_PATH", "models/road_following.onnx"),
		MetadataPath: envStr("METADATA_PATH", "models/model_metadata.json"),
		LibraryPath:  envStr("ORT_LIBRARY_PATH", ""),
		UseGPU:       envBool("USE_GPU", true),
		DeviceID:     envInt("CUDA_DEVICE_ID", 0),
		Precision:    envStr("PRECISION", "fp16"),
		TTA:          envBool("TTA", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
