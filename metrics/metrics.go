package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gen-data-go/models"
)

var (
	metricRowsGenerated  *prometheus.CounterVec
	metricWorkbookWrites prometheus.Histogram
)

// Register creates the generator metrics and registers them with reg
func Register(reg prometheus.Registerer) {
	metricRowsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gendata",
		Name:      "rows_generated_total",
		Help:      "shows how many data rows were generated per sheet",
	}, []string{"sheet"})

	metricWorkbookWrites = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gendata",
		Name:      "workbook_write_seconds",
		Help:      "shows how long it takes to write a workbook",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5},
	})

	reg.MustRegister(metricRowsGenerated, metricWorkbookWrites)
}

// ObserveSheets counts the data rows of every sheet. It is a no-op before Register.
func ObserveSheets(sheets []models.Sheet) {
	if metricRowsGenerated == nil {
		return
	}
	for _, sheet := range sheets {
		metricRowsGenerated.With(prometheus.Labels{"sheet": sheet.Name}).Add(float64(len(sheet.Rows)))
	}
}

// ObserveWrite records the time spent writing a workbook since t
func ObserveWrite(t time.Time) {
	if metricWorkbookWrites == nil {
		return
	}
	metricWorkbookWrites.Observe(time.Since(t).Seconds())
}

// Summary reads back the generated row counts per sheet and the total workbook
// write time from g
func Summary(g prometheus.Gatherer) (map[string]float64, float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, 0, err
	}

	rows := make(map[string]float64)
	var writeSeconds float64
	for _, mf := range families {
		switch mf.GetName() {
		case "gendata_rows_generated_total":
			for _, m := range mf.GetMetric() {
				for _, label := range m.GetLabel() {
					if label.GetName() == "sheet" {
						rows[label.GetValue()] += m.GetCounter().GetValue()
					}
				}
			}
		case "gendata_workbook_write_seconds":
			for _, m := range mf.GetMetric() {
				writeSeconds += m.GetHistogram().GetSampleSum()
			}
		}
	}
	return rows, writeSeconds, nil
}
