package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"store-monitor/internal/models"
)

func (g *Generator) generateTextSummary(outputDir, id string, rows []models.ReportRow) error {
	filename := filepath.Join(outputDir, "summary.txt")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Store Monitoring Report\n")
	fmt.Fprintf(file, "Report ID: %s\n", id)
	fmt.Fprintf(file, "Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Reference instant: %s\n\n", g.now.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(file, strings.Repeat("=", 60))

	var uptimeWeek, downtimeWeek float64
	affected := 0
	for _, r := range rows {
		uptimeWeek += r.UptimeLastWeek
		downtimeWeek += r.DowntimeLastWeek
		if r.DowntimeLastWeek > 0 {
			affected++
		}
	}

	fmt.Fprintln(file, "\nOVERALL")
	fmt.Fprintf(file, "  Stores: %d\n", len(rows))
	fmt.Fprintf(file, "  Stores with week downtime: %d\n", affected)
	fmt.Fprintf(file, "  Total uptime last week: %.2f h\n", uptimeWeek)
	fmt.Fprintf(file, "  Total downtime last week: %.2f h\n", downtimeWeek)
	fmt.Fprintln(file)
	fmt.Fprintln(file, strings.Repeat("=", 60))

	fmt.Fprintln(file, "\nWORST STORES (downtime last week)")
	top := topDowntime(rows, 10)
	if len(top) == 0 {
		fmt.Fprintln(file, "No downtime recorded.")
	}
	for i, r := range top {
		fmt.Fprintf(file, "%2d. %s  %.2f h down, %.2f h up\n",
			i+1, r.StoreID, r.DowntimeLastWeek, r.UptimeLastWeek)
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nWindow units: hour window in minutes, day and week windows in hours.")
	fmt.Fprintln(file, "Full rows are in the accompanying report.csv.")

	return nil
}
