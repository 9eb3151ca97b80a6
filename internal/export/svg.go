package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ssmsim/internal/analysis"
)

// SeriesToSVG plots values against their index.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	points := make([]analysis.Point, len(values))
	for i, v := range values {
		points[i] = analysis.Point{X: float64(i), Y: v}
	}
	return TrajectoryToSVG(points, width, height, strokeColor)
}

// TrajectoryToSVG creates an SVG path through points. Non-finite points are
// skipped; fewer than two drawable points yields "".
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	finite := make([]analysis.Point, 0, len(points))
	for _, p := range points {
		if isFinite(p.X) && isFinite(p.Y) {
			finite = append(finite, p)
		}
	}
	if len(finite) < 2 {
		return ""
	}

	minX, maxX, minY, maxY := analysis.Bounds(finite)

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range finite {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
