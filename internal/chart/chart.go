// Package chart turns an intraday series into line-chart options and keeps a
// single chart instance per display region up to date.
package chart

import (
	"sync"

	"StockPulse/internal/model"

	"github.com/google/uuid"
)

// Options mirrors the ApexCharts options object the dashboard page consumes.
type Options struct {
	Chart   Frame    `json:"chart"`
	Series  []Series `json:"series"`
	XAxis   XAxis    `json:"xaxis"`
	YAxis   YAxis    `json:"yaxis"`
	Tooltip Tooltip  `json:"tooltip"`
}

type Frame struct {
	Type       string     `json:"type"`
	Height     int        `json:"height"`
	Animations Animations `json:"animations"`
}

type Animations struct {
	Enabled bool `json:"enabled"`
}

type Series struct {
	Name string             `json:"name"`
	Data []model.ChartPoint `json:"data"`
}

type XAxis struct {
	Type   string `json:"type"`
	Labels Format `json:"labels"`
}

type YAxis struct {
	Title Title `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

type Tooltip struct {
	X Format `json:"x"`
}

type Format struct {
	Format string `json:"format"`
}

// Chart is one rendered chart instance. ID never changes after creation;
// Revision counts in-place updates.
type Chart struct {
	ID       uuid.UUID `json:"id"`
	Region   string    `json:"region"`
	Revision int       `json:"revision"`
	Options  Options   `json:"options"`
}

// UpdateOptions replaces the options in place.
func (c *Chart) UpdateOptions(opts Options) {
	c.Options = opts
	c.Revision++
}

// Target is the display region a chart is drawn into.
type Target interface {
	CreateChart(c Chart)
	UpdateChart(c Chart)
}

// Renderer owns the chart handle for one region. The first Render creates
// the chart; every later Render updates that same instance.
type Renderer struct {
	Region string
	Target Target

	mu    sync.Mutex
	chart *Chart
}

// NewRenderer creates a Renderer bound to region.
func NewRenderer(region string, target Target) *Renderer {
	return &Renderer{Region: region, Target: target}
}

// Render draws points and returns a copy of the chart instance as of this
// render. created is true when this call created the chart.
func (r *Renderer) Render(points []model.ChartPoint) (c Chart, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	opts := BuildOptions(points)
	if r.chart == nil {
		r.chart = &Chart{ID: uuid.New(), Region: r.Region, Options: opts}
		if r.Target != nil {
			r.Target.CreateChart(*r.chart)
		}
		return *r.chart, true
	}
	r.chart.UpdateOptions(opts)
	if r.Target != nil {
		r.Target.UpdateChart(*r.chart)
	}
	return *r.chart, false
}

// Current returns a copy of the chart instance, or nil before the first Render.
func (r *Renderer) Current() *Chart {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.chart == nil {
		return nil
	}
	cp := *r.chart
	return &cp
}

// Points converts newest-first bars into chronological (timestamp, open) points.
func Points(bars []model.Bar) []model.ChartPoint {
	points := make([]model.ChartPoint, len(bars))
	for i, b := range bars {
		points[len(bars)-1-i] = model.ChartPoint{X: b.Timestamp, Y: b.Open.InexactFloat64()}
	}
	return points
}

// BuildOptions returns the line-chart options for points. Animations are
// always off so a render is complete as soon as it is applied.
func BuildOptions(points []model.ChartPoint) Options {
	if points == nil {
		points = []model.ChartPoint{}
	}
	return Options{
		Chart: Frame{Type: "line", Height: 350, Animations: Animations{Enabled: false}},
		Series: []Series{{
			Name: "Stock Price",
			Data: points,
		}},
		XAxis:   XAxis{Type: "datetime", Labels: Format{Format: "HH:mm"}},
		YAxis:   YAxis{Title: Title{Text: "Price (USD)"}},
		Tooltip: Tooltip{X: Format{Format: "HH:mm"}},
	}
}
