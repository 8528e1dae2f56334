package model

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/x448/float16"
)

// Precision is the floating-point width tensors are sent to the runtime in.
type Precision string

const (
	FP16 Precision = "fp16"
	FP32 Precision = "fp32"
)

func ParsePrecision(s string) (Precision, error) {
	switch p := Precision(strings.ToLower(strings.TrimSpace(s))); p {
	case FP16, FP32:
		return p, nil
	case "":
		return FP16, nil
	default:
		return "", fmt.Errorf("unknown precision %q (want fp16 or fp32)", s)
	}
}

// encodeHalf packs values as little-endian IEEE 754 half floats.
func encodeHalf(values []float32) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], float16.Fromfloat32(v).Bits())
	}
	return out
}

func decodeHalf(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float16.Frombits(binary.LittleEndian.Uint16(data[2*i:])).Float32()
	}
	return out
}
