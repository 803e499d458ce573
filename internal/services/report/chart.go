package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
)

// smaPeriod is the moving-average overlay window in trading days.
const smaPeriod = 50

// RenderCloseChart renders a PNG line chart of daily closes, with a 50-day
// simple moving average when there is enough history. Bars must be ascending
// by date. Returns raw PNG bytes.
func RenderCloseChart(symbol string, bars []models.Bar) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 bars, got %d", len(bars))
	}

	xValues := make([]time.Time, len(bars))
	closeY := make([]float64, len(bars))
	for i, b := range bars {
		xValues[i] = b.Date
		closeY[i] = b.Close.InexactFloat64()
	}

	span := bars[len(bars)-1].Date.Sub(bars[0].Date)
	tickLayout := "Jan 06"
	if span < 120*24*time.Hour {
		tickLayout = "02 Jan"
	}

	closeSeries := chart.TimeSeries{
		Name: symbol + " Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: closeY,
	}

	series := []chart.Series{closeSeries}
	if len(bars) > smaPeriod {
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA %d", smaPeriod),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues[smaPeriod-1:],
			YValues: MovingAverage(closeY, smaPeriod),
		})
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("%s %s to %s", symbol,
			common.FormatDate(bars[0].Date), common.FormatDate(bars[len(bars)-1].Date)),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format(tickLayout)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// MovingAverage returns the trailing simple average of values over period;
// element i covers values[i : i+period]. Returns nil when values is too short.
func MovingAverage(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}
