package report

import (
	"bufio"
	"io"
	"os"

	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
)

const (
	chartHeight    = 600
	barChartWidth  = 1000
	lineChartWidth = 1200
	maxXTicks      = 12
	yAxisName      = "Revenue USD"
)

var (
	skyBlue = drawing.ColorFromHex("87CEEB")
	orange  = drawing.ColorFromHex("FFA500")
	green   = drawing.ColorFromHex("008000")
)

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// yRange spans zero to a little above the largest value. go-chart rejects
// ranges of zero width, so an all-zero series still gets [0,1].
func yRange(values []float64) *chart.ContinuousRange {
	top := 0.0
	for _, v := range values {
		top = max(top, v)
	}
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

func barChart(title string, labels []string, values []float64, color drawing.Color) chart.BarChart {
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		bars[i] = chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{Show: true, FillColor: color, StrokeColor: color, StrokeWidth: 1},
		}
	}
	if len(bars) == 0 {
		bars = []chart.Value{{Label: "no data", Value: 0}}
	}

	barWidth := barChartWidth / (2 * max(len(bars), 1))
	return chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{Show: true},
		Width:      barChartWidth,
		Height:     chartHeight,
		BarWidth:   min(barWidth, 80),
		Background: chart.Style{Padding: chart.Box{Top: 60, Bottom: 40}},
		XAxis:      chart.Style{Show: true, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:      yAxisName,
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
			Range:     yRange(values),
		},
		Bars: bars,
	}
}

func topCustomersChart(rows []models.CustomerRevenue) chart.BarChart {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.FullName
		values[i] = r.TotalValue
	}
	return barChart("Top Customers by Revenue", labels, values, skyBlue)
}

func categorySalesChart(rows []models.CategorySales) chart.BarChart {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Category
		values[i] = r.TotalValue
	}
	return barChart("Sales by Product Category", labels, values, orange)
}

// monthTicks labels at most maxXTicks months. go-chart takes the x range
// from the ticks, so they always cover the first and last point, and a lone
// month gets blank ticks on either side.
func monthTicks(rows []models.MonthlyData) []chart.Tick {
	last := len(rows) - 1
	if last == 0 {
		return []chart.Tick{{Value: -1}, {Value: 0, Label: rows[0].Month}, {Value: 1}}
	}

	step := max(1, (len(rows)+maxXTicks-1)/maxXTicks)
	var ticks []chart.Tick
	for i := 0; last-i >= step; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: rows[i].Month})
	}
	return append(ticks, chart.Tick{Value: float64(last), Label: rows[last].Month})
}

// monthlySalesChart plots one point per month in order, indexed along the x
// axis.
func monthlySalesChart(rows []models.MonthlyData) chart.Chart {
	if len(rows) == 0 {
		rows = []models.MonthlyData{{Month: "no data"}}
	}
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = float64(i)
		ys[i] = r.Volume
	}

	return chart.Chart{
		Title:      "Monthly Revenue Trend",
		TitleStyle: chart.Style{Show: true},
		Width:      lineChartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:      "Month",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true, TextRotationDegrees: 45},
			Ticks:     monthTicks(rows),
		},
		YAxis: chart.YAxis{
			Name:      yAxisName,
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
			Range:     yRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Revenue",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					Show:        true,
					StrokeColor: green,
					StrokeWidth: 2,
					DotColor:    green,
					DotWidth:    4,
				},
			},
		},
	}
}

func writePNG(path string, graph renderable) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Output(err, path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := graph.Render(chart.PNG, w); err != nil {
		return apperrors.Output(err, path)
	}
	if err := w.Flush(); err != nil {
		return apperrors.Output(err, path)
	}
	if err := f.Close(); err != nil {
		return apperrors.Output(err, path)
	}
	return nil
}
