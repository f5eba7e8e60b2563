package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"store-monitor/internal/models"
)

// writeCSV writes the six-column report with its header. Values were
// already rounded by the engine; they are printed with two decimals.
func writeCSV(path string, rows []models.ReportRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.Write(models.ReportColumns); err != nil {
		file.Close()
		return err
	}
	for _, r := range rows {
		record := []string{
			r.StoreID,
			formatValue(r.UptimeLastHour),
			formatValue(r.UptimeLastDay),
			formatValue(r.UptimeLastWeek),
			formatValue(r.DowntimeLastHour),
			formatValue(r.DowntimeLastDay),
			formatValue(r.DowntimeLastWeek),
		}
		if err := w.Write(record); err != nil {
			file.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
