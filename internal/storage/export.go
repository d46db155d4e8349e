package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/nbodybench/internal/body"
)

type ExportData struct {
	RunMetadata
	Bodies [][]float32 `json:"body_state"`
}

// ExportJSONStdout writes a run's metadata and final body state as one
// JSON document to stdout.
func ExportJSONStdout(meta *RunMetadata, bodies *body.Store) error {
	data := ExportData{
		RunMetadata: *meta,
		Bodies:      make([][]float32, bodies.Len()),
	}

	for i := 0; i < bodies.Len(); i++ {
		b := bodies.At(i)
		data.Bodies[i] = []float32{b.X, b.Y, b.Z, b.VX, b.VY, b.VZ}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
