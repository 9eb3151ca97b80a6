package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ssmsim/internal/prng"
	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
	"gonum.org/v1/gonum/mat"
)

func sampleRun(t *testing.T) (*ssm.Model, *sim.Result) {
	t.Helper()

	src := prng.NewThreefry(0)
	model, err := ssm.Random(src, 3)
	if err != nil {
		t.Fatal(err)
	}
	result, err := sim.Simulate(model, src.Uniform(6))
	if err != nil {
		t.Fatal(err)
	}
	result.Metrics = map[string]float64{"peak_output": 1.5}
	return model, result
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	model, result := sampleRun(t)
	runID, err := st.Save(RunMetadata{Dim: 3, Steps: 6, Seed: 42, RNG: "threefry", Input: "uniform"}, model, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["peak_output"] != 1.5 {
		t.Errorf("expected peak 1.5, got %f", meta.Metrics["peak_output"])
	}
	if meta.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	loadedModel, err := st.LoadModel(runID)
	if err != nil {
		t.Fatalf("load model failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if loadedModel.A.At(i, j) != model.A.At(i, j) {
				t.Fatalf("A[%d][%d] mismatch", i, j)
			}
		}
		if loadedModel.B.At(i, 0) != model.B.At(i, 0) || loadedModel.C.At(0, i) != model.C.At(0, i) {
			t.Fatalf("B/C mismatch at %d", i)
		}
	}

	loaded, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if loaded.Len() != 6 {
		t.Fatalf("expected 6 steps, got %d", loaded.Len())
	}
	for step := 0; step < 6; step++ {
		if loaded.U[step] != result.U[step] || loaded.Y[step] != result.Y[step] {
			t.Errorf("step %d differs after reload", step)
		}
		for i := 0; i < 3; i++ {
			if loaded.X.At(step, i) != result.X.At(step, i) {
				t.Errorf("x[%d][%d] differs after reload", step, i)
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	model, result := sampleRun(t)
	for _, id := range []string{"run_a", "run_b"} {
		if _, err := st.Save(RunMetadata{ID: id, Dim: 3}, model, result); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	model, result := sampleRun(t)
	runID, err := st.Save(RunMetadata{Dim: 3}, model, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "model.json", "states.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestNonFiniteRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	model, result := sampleRun(t)
	result.Y[2] = math.NaN()
	result.Y[3] = math.Inf(-1)

	runID, err := st.Save(RunMetadata{Dim: 3}, model, result)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := st.LoadResult(runID)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(loaded.Y[2]) || !math.IsInf(loaded.Y[3], -1) {
		t.Errorf("non-finite values lost: %v %v", loaded.Y[2], loaded.Y[3])
	}
}

func TestModelDataRejectsRaggedRows(t *testing.T) {
	data := ModelData{
		A: [][]float64{{1, 2}, {3}},
		B: [][]float64{{1}, {1}},
		C: [][]float64{{1, 1}},
	}
	if _, err := data.Decode(); err == nil {
		t.Error("expected error for ragged matrix")
	}
}

func TestWriteJSON(t *testing.T) {
	model, result := sampleRun(t)
	meta := &RunMetadata{ID: "x", Dim: 3, Seed: 7, RNG: "threefry", Input: "uniform"}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewExportData(meta, model, result)); err != nil {
		t.Fatal(err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Steps != 6 || len(decoded.X) != 6 || len(decoded.X[0]) != 3 {
		t.Errorf("unexpected export shape: steps=%d x=%dx%d", decoded.Steps, len(decoded.X), len(decoded.X[0]))
	}
	if len(decoded.Model.A) != 3 || len(decoded.Model.B[0]) != 1 || len(decoded.Model.C) != 1 {
		t.Error("model not exported with the right shapes")
	}
}

func TestNonFiniteMetricsDropped(t *testing.T) {
	st := New(t.TempDir())
	model, result := sampleRun(t)
	result.Metrics = map[string]float64{"peak_output": math.NaN(), "stability": 1}

	runID, err := st.Save(RunMetadata{Dim: 3}, model, result)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := meta.Metrics["peak_output"]; ok {
		t.Error("NaN metric should not be stored")
	}
	if len(meta.NonFinite) != 1 || meta.NonFinite[0] != "peak_output" {
		t.Errorf("unexpected non-finite list %v", meta.NonFinite)
	}
}

func TestExportJSONNonFinite(t *testing.T) {
	st := New(t.TempDir())
	model, err := ssm.New(
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}),
	)
	if err != nil {
		t.Fatal(err)
	}
	result, err := sim.Simulate(model, []float64{0, math.NaN(), math.Inf(-1)})
	if err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save(RunMetadata{Dim: 1}, model, result)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := st.LoadResult(runID)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, meta, model, loaded); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, []byte(`"NaN"`)) || !bytes.Contains(raw, []byte(`"-Inf"`)) {
		t.Errorf("non-finite values not encoded as strings:\n%s", raw)
	}

	var decoded ExportData
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.U[0] != 0 || !math.IsNaN(float64(decoded.U[1])) || !math.IsInf(float64(decoded.U[2]), -1) {
		t.Errorf("u did not survive: %v", decoded.U)
	}
	if decoded.Y[0] != 0 || !math.IsNaN(float64(decoded.Y[1])) || !math.IsNaN(float64(decoded.Y[2])) {
		t.Errorf("y did not survive: %v", decoded.Y)
	}
}

func TestRunIDStaysInsideBaseDir(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "data")
	st := New(base)
	model, result := sampleRun(t)

	for _, id := range []string{"../escape", "a/b", `a\b`, "..", ".", "x..y"} {
		if _, err := st.Save(RunMetadata{ID: id, Dim: 3}, model, result); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("Save(%q) error = %v, want ErrInvalidRunID", id, err)
		}
		if _, err := st.Load(id); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("Load(%q) error = %v, want ErrInvalidRunID", id, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "escape")); !os.IsNotExist(err) {
		t.Error("run written outside the data directory")
	}

	id, err := st.Save(RunMetadata{ID: "named_run", Dim: 3}, model, result)
	if err != nil || id != "named_run" {
		t.Fatalf("plain id rejected: %q, %v", id, err)
	}
	if _, err := st.LoadResult(id); err != nil {
		t.Errorf("load of named run failed: %v", err)
	}
}
