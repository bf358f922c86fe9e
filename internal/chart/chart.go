// Package chart renders the dashboard trend chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"fintrack/internal/core"
)

// ErrNotEnoughData is returned when the ledger spans fewer than two days.
var ErrNotEnoughData = errors.New("not enough data to draw a chart")

const (
	width         = 960
	height        = 360
	averageWindow = 7
)

// Point is one day of the chart.
type Point struct {
	Day     time.Time
	Net     float64
	Balance float64
}

// Points converts ledger days to chart points, oldest first. Balance is the
// running sum of daily nets.
func Points(ledger core.GroupedLedger) []Point {
	keys := ledger.Keys()
	out := make([]Point, 0, len(keys))
	balance := 0.0
	for i := len(keys) - 1; i >= 0; i-- {
		day, err := core.ParseDate(keys[i])
		if err != nil {
			continue
		}
		net := ledger[keys[i]].Amount.InexactFloat64()
		balance += net
		out = append(out, Point{Day: day.Time, Net: net, Balance: balance})
	}
	return out
}

// movingAverage averages each value with up to window-1 predecessors.
func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RenderPNG draws the daily net, its weekly average and the running balance.
func RenderPNG(ledger core.GroupedLedger) ([]byte, error) {
	points := Points(ledger)
	if len(points) < 2 {
		return nil, ErrNotEnoughData
	}

	xs := make([]time.Time, len(points))
	nets := make([]float64, len(points))
	balances := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Day
		nets[i] = p.Net
		balances[i] = p.Balance
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: gochart.ColorWhite,
		},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 02"),
			Style: gochart.Style{
				FontSize:  10,
				FontColor: gochart.ColorBlack,
			},
		},
		YAxis: gochart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
			Style: gochart.Style{
				FontSize:  10,
				FontColor: gochart.ColorBlack,
			},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Daily net",
				XValues: xs,
				YValues: nets,
				Style: gochart.Style{
					StrokeColor: gochart.ColorBlue,
					StrokeWidth: 2,
				},
			},
			gochart.TimeSeries{
				Name:    fmt.Sprintf("Average (%d days)", averageWindow),
				XValues: xs,
				YValues: movingAverage(nets, averageWindow),
				Style: gochart.Style{
					StrokeColor:     gochart.ColorBlue.WithAlpha(100),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
			gochart.TimeSeries{
				Name:    "Balance",
				XValues: xs,
				YValues: balances,
				Style: gochart.Style{
					StrokeColor: gochart.ColorGreen,
					StrokeWidth: 3,
				},
			},
		},
	}
	graph.Elements = []gochart.Renderable{
		gochart.Legend(&graph, gochart.Style{
			FontSize:  10,
			FontColor: gochart.ColorBlack,
		}),
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}
