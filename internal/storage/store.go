package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/nbodybench/internal/body"
	"github.com/san-kum/nbodybench/internal/sim"
)

// Store persists completed runs: one directory per run holding
// metadata.json and a bodies.csv snapshot of the final state. It keeps
// final states only, never trajectories.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID                     string             `json:"id"`
	Timestamp              time.Time          `json:"timestamp"`
	Shift                  int                `json:"shift"`
	Bodies                 int                `json:"bodies"`
	Dt                     float32            `json:"dt"`
	Iters                  int                `json:"iters"`
	Softening              float32            `json:"softening"`
	Seed                   int64              `json:"seed"`
	Salt                   int64              `json:"salt"`
	Backend                string             `json:"backend"`
	AvgIterMillis          float64            `json:"avg_iter_ms"`
	GigaInteractionsPerSec float64            `json:"giga_interactions_per_sec"`
	Fingerprint            uint64             `json:"fingerprint"`
	Metrics                map[string]float64 `json:"metrics"`
	Errors                 []string           `json:"errors,omitempty"`
}

func (s *Store) Save(meta RunMetadata, result *sim.Result, bodies *body.Store) (string, error) {
	runID := fmt.Sprintf("n%d_%d", bodies.Len(), time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Bodies = bodies.Len()
	meta.Iters = result.Iters
	meta.AvgIterMillis = result.AvgIterMillis
	meta.GigaInteractionsPerSec = result.GigaInteractionsPerSec
	meta.Metrics = result.Metrics
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "bodies.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeBodies(csvFile, bodies); err != nil {
		return "", err
	}

	return runID, nil
}

// writeBodies writes the final-state snapshot, surfacing any buffered
// write error the csv writer held back until its flush.
func writeBodies(out io.Writer, bodies *body.Store) error {
	w := csv.NewWriter(out)

	header := []string{"index", "x", "y", "z", "vx", "vy", "vz"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < bodies.Len(); i++ {
		b := bodies.At(i)
		row := []string{
			strconv.Itoa(i),
			formatField(b.X), formatField(b.Y), formatField(b.Z),
			formatField(b.VX), formatField(b.VY), formatField(b.VZ),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatField(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadBodies rebuilds a body store from a run's final-state snapshot.
func (s *Store) LoadBodies(runID string) (*body.Store, error) {
	csvPath := filepath.Join(s.baseDir, runID, "bodies.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 1 {
		return body.NewStore(0)
	}

	bodies, err := body.NewStore(len(records) - 1)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != 7 {
			return nil, fmt.Errorf("storage: malformed row %d in %s", i, csvPath)
		}

		var fields [6]float32
		for j := 0; j < 6; j++ {
			v, err := strconv.ParseFloat(record[j+1], 32)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d field %s: %w", i, record[j+1], err)
			}
			fields[j] = float32(v)
		}

		bodies.Set(i-1, body.Body{
			X: fields[0], Y: fields[1], Z: fields[2],
			VX: fields[3], VY: fields[4], VZ: fields[5],
		})
	}

	return bodies, nil
}
