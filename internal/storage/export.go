package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
)

// Float is a float64 that survives JSON when it is NaN or infinite: those
// values are written as the strings "NaN", "+Inf" and "-Inf".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	text := string(data)
	if len(text) > 0 && text[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return err
		}
		text = unquoted
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type ExportModel struct {
	A [][]Float `json:"a"`
	B [][]Float `json:"b"`
	C [][]Float `json:"c"`
}

type ExportData struct {
	ID      string           `json:"id"`
	Dim     int              `json:"dim"`
	Steps   int              `json:"steps"`
	Seed    int64            `json:"seed"`
	RNG     string           `json:"rng"`
	Input   string           `json:"input"`
	Model   ExportModel      `json:"model"`
	U       []Float          `json:"u"`
	X       [][]Float        `json:"x"`
	Y       []Float          `json:"y"`
	Metrics map[string]Float `json:"metrics"`
}

func NewExportData(meta *RunMetadata, model *ssm.Model, result *sim.Result) ExportData {
	metrics := make(map[string]Float, len(result.Metrics))
	for name, v := range result.Metrics {
		metrics[name] = Float(v)
	}
	return ExportData{
		ID:    meta.ID,
		Dim:   meta.Dim,
		Steps: result.Len(),
		Seed:  meta.Seed,
		RNG:   meta.RNG,
		Input: meta.Input,
		Model: ExportModel{
			A: floatRows(rows(model.A)),
			B: floatRows(rows(model.B)),
			C: floatRows(rows(model.C)),
		},
		U:       floats(result.U),
		X:       floatRows(rows(result.X)),
		Y:       floats(result.Y),
		Metrics: metrics,
	}
}

func floats(v []float64) []Float {
	out := make([]Float, len(v))
	for i, x := range v {
		out[i] = Float(x)
	}
	return out
}

func floatRows(r [][]float64) [][]Float {
	out := make([][]Float, len(r))
	for i, row := range r {
		out[i] = floats(row)
	}
	return out
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta *RunMetadata, model *ssm.Model, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, NewExportData(meta, model, result))
}

func ExportJSONStdout(meta *RunMetadata, model *ssm.Model, result *sim.Result) error {
	return WriteJSON(os.Stdout, NewExportData(meta, model, result))
}
