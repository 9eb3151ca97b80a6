package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
	"gonum.org/v1/gonum/mat"
)

// Printer writes human-readable run summaries. Styling follows the color
// profile of w, so plain writers get plain text.
type Printer struct {
	w     io.Writer
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff")),
		label: r.NewStyle().Foreground(lipgloss.Color("#888899")),
		value: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff")),
	}
}

// Demo prints the shapes of A, B, C, u, x, y and the (u, y) pairs of the
// first `first` timesteps.
func (p *Printer) Demo(model *ssm.Model, result *sim.Result, first int) {
	a, b, c := model.Shapes()
	fmt.Fprintln(p.w, p.label.Render("A shape:"), a)
	fmt.Fprintln(p.w, p.label.Render("B shape:"), b)
	fmt.Fprintln(p.w, p.label.Render("C shape:"), c)

	u, x, y := result.Shapes()
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title.Render("Simulation results:"))
	fmt.Fprintln(p.w, p.label.Render("Input signal shape:"), u)
	fmt.Fprintln(p.w, p.label.Render("Hidden states shape:"), x)
	fmt.Fprintln(p.w, p.label.Render("Output signal shape:"), y)

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title.Render("First few timesteps:"))
	for t := 0; t < first && t < result.Len(); t++ {
		fmt.Fprintf(p.w, "t=%d: u = %s y = %s\n", t, p.value.Render(Float(result.U[t])), p.value.Render(Float(result.Y[t])))
	}
}

// Matrices prints A, B and C.
func (p *Printer) Matrices(model *ssm.Model) {
	for _, m := range []struct {
		name string
		m    *mat.Dense
	}{{"A", model.A}, {"B", model.B}, {"C", model.C}} {
		fmt.Fprintf(p.w, "%s %s =\n", p.title.Render(m.name), ssm.ShapeOf(m.m))
		fmt.Fprintf(p.w, "%.6f\n\n", mat.Formatted(m.m, mat.Prefix(""), mat.Squeeze()))
	}
}

// Metrics prints metric values in name order.
func (p *Printer) Metrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(p.w, p.title.Render("metrics:"))
	for _, name := range names {
		fmt.Fprintf(p.w, "  %s %s\n", p.label.Render(name+":"), p.value.Render(fmt.Sprintf("%.6f", metrics[name])))
	}
}

// Plot draws series as an ASCII chart. Non-finite values are dropped first
// since they cannot be scaled.
func (p *Printer) Plot(series []float64, caption string, width, height int) {
	data := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		fmt.Fprintln(p.w, "no finite data to plot")
		return
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(p.w, graph)
	fmt.Fprintln(p.w)
}

// Float formats v with the shortest digits that round-trip, always showing
// a decimal point in fixed notation (0.0, 3.0, 0.25).
// Magnitudes below 1e-4 or from 1e16 up use exponent notation.
func Float(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
