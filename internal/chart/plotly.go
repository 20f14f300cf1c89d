// Package chart builds Plotly figure documents for the browser to draw.
package chart

import (
	"fmt"

	"github.com/Krchnk/gw-crypto-dashboard/internal/market"
)

const timeLayout = "2006-01-02 15:04:05"

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type string    `json:"type"`
	Mode string    `json:"mode"`
	Name string    `json:"name"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

type Layout struct {
	Title    Title `json:"title"`
	XAxis    Axis  `json:"xaxis"`
	YAxis    Axis  `json:"yaxis"`
	Autosize bool  `json:"autosize"`
}

type Axis struct {
	Title Title `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

// PriceFigure draws series as a single line+marker trace of USD price over
// time. Timestamps are rendered in UTC.
func PriceFigure(coinName string, series market.PriceSeries) Figure {
	trace := Trace{
		Type: "scatter",
		Mode: "lines+markers",
		Name: "Price (USD)",
		X:    make([]string, len(series)),
		Y:    make([]float64, len(series)),
	}
	for i, p := range series {
		trace.X[i] = p.Timestamp.UTC().Format(timeLayout)
		trace.Y[i] = p.Price.InexactFloat64()
	}

	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title:    Title{Text: fmt.Sprintf("%s Price Chart (Last 7 Days)", coinName)},
			XAxis:    Axis{Title: Title{Text: "Time"}},
			YAxis:    Axis{Title: Title{Text: "Price (USD)"}},
			Autosize: true,
		},
	}
}
