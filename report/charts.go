package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is one named curve indexed by iteration or episode.
type Series struct {
	Name   string
	Values []float64
}

// LineChart draws every series on a shared x axis as long as the longest one.
func LineChart(title, subtitle string, series ...Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
	)

	n := 0
	for _, s := range series {
		n = max(n, len(s.Values))
	}
	steps := make([]string, n)
	for i := range steps {
		steps[i] = fmt.Sprintf("%d", i)
	}
	line.SetXAxis(steps)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

// MovingAverage smooths values over a trailing window. Early points average
// what is available.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		return append([]float64(nil), values...)
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

func Render(w io.Writer, lines ...*charts.Line) error {
	page := components.NewPage()
	for _, l := range lines {
		page.AddCharts(l)
	}
	return page.Render(w)
}

// WriteHTML renders the charts to dir/name.html and returns the file path.
func WriteHTML(dir, name string, lines ...*charts.Line) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create charts dir: %w", err)
	}
	path := filepath.Join(dir, name+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	if err := Render(f, lines...); err != nil {
		f.Close()
		return "", fmt.Errorf("render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
