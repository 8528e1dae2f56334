package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MODEL_PATH", "METADATA_PATH", "ORT_LIBRARY_PATH", "USE_GPU", "CUDA_DEVICE_ID", "PRECISION", "TTA"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "models/road_following.onnx", cfg.ModelPath)
	assert.Equal(t, "models/model_metadata.json", cfg.MetadataPath)
	assert.Empty(t, cfg.LibraryPath)
	assert.True(t, cfg.UseGPU)
	assert.Equal(t, 0, cfg.DeviceID)
	assert.Equal(t, "fp16", cfg.Precision)
	assert.False(t, cfg.TTA)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MODEL_PATH", "/models/drive.onnx")
	t.Setenv("USE_GPU", "false")
	t.Setenv("CUDA_DEVICE_ID", "1")
	t.Setenv("PRECISION", "fp32")
	t.Setenv("TTA", "1")

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/models/drive.onnx", cfg.ModelPath)
	assert.False(t, cfg.UseGPU)
	assert.Equal(t, 1, cfg.DeviceID)
	assert.Equal(t, "fp32", cfg.Precision)
	assert.True(t, cfg.TTA)
}

func TestLoadIgnoresMalformed(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("TTA", "sometimes")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.TTA)
}
