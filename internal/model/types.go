package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

type Metadata struct {
	InputName   string    `json:"input_name"`
	OutputName  string    `json:"output_name"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Channels    int       `json:"channels"`
	OutputWidth int       `json:"output_width"`
	Mean        []float32 `json:"mean,omitempty"`
	Std         []float32 `json:"std,omitempty"`
}

type PredictionRequest struct {
	Frames [][]byte `json:"frames"`
	TTA    *bool    `json:"tta,omitempty"`
}

type PredictionResponse struct {
	Steering  float32 `json:"steering"`
	Throttle  float32 `json:"throttle"`
	Variant   string  `json:"variant"`
	Rows      int     `json:"rows"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// LoadMetadata reads a model metadata file and fills in defaults.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	metadata.applyDefaults()
	return metadata, nil
}

func (m *Metadata) applyDefaults() {
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.Channels == 0 {
		m.Channels = 3
	}
	if m.OutputWidth == 0 {
		m.OutputWidth = 2
	}
}

// Stats returns the normalization override from the metadata, or zero Stats
// when the defaults for the channel count apply.
func (m Metadata) Stats() preprocess.Stats {
	return preprocess.Stats{Mean: m.Mean, Std: m.Std}
}
