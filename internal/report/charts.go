package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"store-monitor/internal/models"
)

// generateDowntimeChart renders a bar chart of the stores with the most
// downtime over the week window.
func (g *Generator) generateDowntimeChart(outputDir string, rows []models.ReportRow) error {
	top := topDowntime(rows, g.chartStores)
	if len(top) == 0 {
		return nil
	}

	bars := make([]chart.Value, 0, len(top))
	for _, r := range top {
		bars = append(bars, chart.Value{
			Label: shortLabel(r.StoreID),
			Value: r.DowntimeLastWeek,
		})
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Top %d stores by downtime, last week (hours)", len(bars)),
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    1200,
		Height:   400,
		BarWidth: 40,
		XAxis: chart.Style{
			FontSize: 8,
		},
		YAxis: chart.YAxis{
			Name: "Hours",
			NameStyle: chart.Style{
				FontSize: 12,
			},
		},
		Bars: bars,
	}

	filename := filepath.Join(outputDir, "downtime_week.png")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

// topDowntime returns up to n rows with positive week-window downtime,
// highest first.
func topDowntime(rows []models.ReportRow, n int) []models.ReportRow {
	var affected []models.ReportRow
	for _, r := range rows {
		if r.DowntimeLastWeek > 0 {
			affected = append(affected, r)
		}
	}
	sort.Slice(affected, func(i, j int) bool {
		return affected[i].DowntimeLastWeek > affected[j].DowntimeLastWeek
	})
	if n > 0 && len(affected) > n {
		affected = affected[:n]
	}
	return affected
}
