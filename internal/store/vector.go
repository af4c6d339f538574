package store

import (
	"encoding/binary"
	"math"
)

// serializeVector converts a float64 slice to a byte blob (little-endian)
func serializeVector(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float64 slice
func deserializeVector(blob []byte) []float64 {
	vector := make([]float64, len(blob)/8)
	for i := range vector {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float64) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float64 {
	return deserializeVector(blob)
}
