package report

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Point is one marker of a scatter series
type Point struct {
	Label string `json:"label"`
	X     Number `json:"x"`
	Y     Number `json:"y"`
	Size  Number `json:"size,omitempty"`
}

// Trend is an ordinary least squares line y = Intercept + Slope*x.
// Every field is undefined when fewer than two points with distinct x
// carry data.
type Trend struct {
	Intercept Number `json:"intercept"`
	Slope     Number `json:"slope"`
	RSquared  Number `json:"r_squared"`
	N         int    `json:"n"`
}

// At evaluates the trend line
func (t Trend) At(x float64) float64 {
	return float64(t.Intercept) + float64(t.Slope)*x
}

// Scatter is a labelled scatter series with its trend fit
type Scatter struct {
	Title  string  `json:"title"`
	XLabel string  `json:"x_label"`
	YLabel string  `json:"y_label"`
	Points []Point `json:"points"`
	Trend  Trend   `json:"trend"`
}

func newScatter(title, xLabel, yLabel string, points []Point) Scatter {
	if points == nil {
		points = []Point{}
	}
	return Scatter{
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Points: points,
		Trend:  FitOLS(points),
	}
}

// FitOLS fits a least squares line through the points whose x and y are
// both defined
func FitOLS(points []Point) Trend {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if !p.X.Valid() || !p.Y.Valid() {
			continue
		}
		xs = append(xs, float64(p.X))
		ys = append(ys, float64(p.Y))
	}

	trend := Trend{Intercept: NaN(), Slope: NaN(), RSquared: NaN(), N: len(xs)}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return trend
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	trend.Intercept = Number(alpha)
	trend.Slope = Number(beta)

	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	if !math.IsNaN(r2) {
		trend.RSquared = Number(r2)
	}
	return trend
}
