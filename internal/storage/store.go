package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
	"gonum.org/v1/gonum/mat"
)

const (
	metadataFile = "metadata.json"
	modelFile    = "model.json"
	statesFile   = "states.csv"
)

var ErrInvalidRunID = errors.New("storage: invalid run id")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// runDir maps a run id to its directory. Ids are single path elements, so a
// run never lands outside baseDir.
func (s *Store) runDir(runID string) (string, error) {
	if runID == "" || runID == "." || strings.Contains(runID, "..") || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Dim            int                `json:"dim"`
	Steps          int                `json:"steps"`
	Seed           int64              `json:"seed"`
	RNG            string             `json:"rng"`
	Input          string             `json:"input"`
	SpectralRadius float64            `json:"spectral_radius"`
	Metrics        map[string]float64 `json:"metrics"`
	// NonFinite names metrics dropped from Metrics because JSON cannot
	// carry NaN or Inf.
	NonFinite []string `json:"non_finite,omitempty"`
}

// ModelData is the on-disk form of a model, one slice per matrix row.
type ModelData struct {
	A [][]float64 `json:"a"`
	B [][]float64 `json:"b"`
	C [][]float64 `json:"c"`
}

func EncodeModel(m *ssm.Model) ModelData {
	return ModelData{A: rows(m.A), B: rows(m.B), C: rows(m.C)}
}

func (d ModelData) Decode() (*ssm.Model, error) {
	a, err := dense(d.A)
	if err != nil {
		return nil, fmt.Errorf("matrix a: %w", err)
	}
	b, err := dense(d.B)
	if err != nil {
		return nil, fmt.Errorf("matrix b: %w", err)
	}
	c, err := dense(d.C)
	if err != nil {
		return nil, fmt.Errorf("matrix c: %w", err)
	}
	return ssm.New(a, b, c)
}

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, model *ssm.Model, result *sim.Result) (string, error) {
	now := time.Now()
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("ssm_n%d_%d", meta.Dim, now.UnixNano())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now
	}
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}
	meta.Metrics, meta.NonFinite = splitFinite(meta.Metrics)

	runDir, err := s.runDir(meta.ID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, modelFile), EncodeModel(model)); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func splitFinite(in map[string]float64) (map[string]float64, []string) {
	out := make(map[string]float64, len(in))
	var dropped []string
	for name, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			dropped = append(dropped, name)
			continue
		}
		out[name] = v
	}
	sort.Strings(dropped)
	return out, dropped
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	_, n := result.X.Dims()
	header := []string{"t", "u"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	header = append(header, "y")
	if err := w.Write(header); err != nil {
		return err
	}

	for t := 0; t < result.Len(); t++ {
		row := []string{strconv.Itoa(t), formatFloat(result.U[t])}
		for i := 0; i < n; i++ {
			row = append(row, formatFloat(result.X.At(t, i)))
		}
		row = append(row, formatFloat(result.Y[t]))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatFloat keeps full precision so a reloaded run matches bit for bit.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := readJSON(filepath.Join(dir, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadModel(runID string) (*ssm.Model, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	var data ModelData
	if err := readJSON(filepath.Join(dir, modelFile), &data); err != nil {
		return nil, err
	}
	return data.Decode()
}

// LoadResult rebuilds the trajectory of a saved run.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(dir, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: %w", runID, sim.ErrInvalidLength)
	}

	// t, u, x0..xN-1, y
	n := len(records[0]) - 3
	if n < 1 {
		return nil, fmt.Errorf("run %s: malformed header %v", runID, records[0])
	}

	steps := len(records) - 1
	result := &sim.Result{
		U:          make([]float64, steps),
		X:          mat.NewDense(steps, n, nil),
		Y:          make([]float64, steps),
		StepsTaken: steps - 1,
	}

	for t, record := range records[1:] {
		vals := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, t, err)
			}
			vals[j] = v
		}
		result.U[t] = vals[0]
		result.X.SetRow(t, vals[1:n+1])
		result.Y[t] = vals[n+1]
	}

	if meta, err := s.Load(runID); err == nil {
		result.Metrics = meta.Metrics
	}

	return result, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func rows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

func dense(data [][]float64) (*mat.Dense, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	r, c := len(data), len(data[0])
	flat := make([]float64, 0, r*c)
	for i, row := range data {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), c)
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(r, c, flat), nil
}
