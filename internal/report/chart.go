package report

import (
	"io"

	"netscope/internal/network"
	"netscope/internal/store/history"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartTimeLayout = "01-02 15:04:05"
	chartWidth      = "1200px"
	chartHeight     = "520px"
)

var typeColors = map[network.NetworkType]string{
	network.TypeWiFi:      "#3b82f6",
	network.TypeBluetooth: "#a78bfa",
	network.TypeLTE:       "#34d399",
	network.TypeESIM:      "#fbbf24",
	network.TypeUnknown:   "#9ca3af",
}

// RenderTypeChart writes an HTML page with one stacked bar per history entry
// (per-type record counts) and the quality trend as a line on top.
func RenderTypeChart(w io.Writer, entries []history.Entry, window int) error {
	xAxis := make([]string, len(entries))
	for i, e := range entries {
		xAxis[i] = e.CreatedAt.Local().Format(chartTimeLayout)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "netscope statistics",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Networks per analysis",
			Subtitle: "record count by type, quality trend overlay",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(xAxis)
	for _, t := range network.AllTypes {
		data := make([]opts.BarData, len(entries))
		for i, e := range entries {
			data[i] = opts.BarData{Value: e.Stats.NetworkTypes[t]}
		}
		bar.AddSeries(string(t), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "types"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: typeColors[t]}),
		)
	}

	trend := BuildTrend(entries, window)
	quality := make([]opts.LineData, len(trend.Points))
	average := make([]opts.LineData, len(trend.Points))
	for i, p := range trend.Points {
		quality[i] = opts.LineData{Value: p.Quality}
		if p.MovingAverage != nil {
			average[i] = opts.LineData{Value: *p.MovingAverage}
		} else {
			average[i] = opts.LineData{Value: nil}
		}
	}
	line := charts.NewLine()
	line.SetXAxis(xAxis)
	line.AddSeries("quality", quality, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	line.AddSeries("quality SMA", average, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	page := components.NewPage()
	page.PageTitle = "netscope statistics"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(bar, line)
	return page.Render(w)
}
