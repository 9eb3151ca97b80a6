package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/ssmsim/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait pairs hidden-state components xIdx and yIdx over time.
func PhasePortrait(result *sim.Result, xIdx, yIdx int) ([]Point, error) {
	_, n := result.X.Dims()
	if xIdx < 0 || yIdx < 0 || xIdx >= n || yIdx >= n {
		return nil, fmt.Errorf("state dimension %d too small for axes x%d, x%d", n, xIdx, yIdx)
	}

	points := make([]Point, result.Len())
	for t := range points {
		points[t] = Point{X: result.X.At(t, xIdx), Y: result.X.At(t, yIdx)}
	}
	return points, nil
}

// Bounds returns the extent of points, widening a zero range to one.
func Bounds(points []Point) (xMin, xMax, yMin, yMax float64) {
	if len(points) == 0 {
		return 0, 1, 0, 1
	}
	xMin, xMax = points[0].X, points[0].X
	yMin, yMax = points[0].Y, points[0].Y
	for _, p := range points {
		xMin = min(xMin, p.X)
		xMax = max(xMax, p.X)
		yMin = min(yMin, p.Y)
		yMax = max(yMax, p.Y)
	}
	if xMax == xMin {
		xMax = xMin + 1
	}
	if yMax == yMin {
		yMax = yMin + 1
	}
	return
}

// ScatterASCII draws points on a width×height character grid. Early points
// are '.', middle 'o' and late '●'.
func ScatterASCII(points []Point, width, height int) string {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	xMin, xMax, yMin, yMax := Bounds(points)
	xRange, yRange := xMax-xMin, yMax-yMin

	for i, p := range points {
		px := int(float64(width-1) * (p.X - xMin) / xRange)
		py := height - 1 - int(float64(height-1)*(p.Y-yMin)/yRange)
		if px < 0 || px >= width || py < 0 || py >= height {
			continue
		}
		switch {
		case i < len(points)/3:
			canvas[py][px] = '.'
		case i < 2*len(points)/3:
			canvas[py][px] = 'o'
		default:
			canvas[py][px] = '●'
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %10.3g ┌%s┐\n", yMax, strings.Repeat("─", width)))
	for i, row := range canvas {
		if i == height/2 {
			sb.WriteString(fmt.Sprintf("  %10.3g │", (yMax+yMin)/2))
		} else {
			sb.WriteString("             │")
		}
		sb.WriteString(string(row))
		sb.WriteString("│\n")
	}
	sb.WriteString(fmt.Sprintf("  %10.3g └%s┘\n", yMin, strings.Repeat("─", width)))
	sb.WriteString(fmt.Sprintf("             %-10.3g%s%10.3g\n", xMin, strings.Repeat(" ", max(0, width-20)), xMax))
	return sb.String()
}
