package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gen-data-go/models"
)

func TestObserveSheets(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	ObserveSheets([]models.Sheet{
		{Name: models.StudentSheet, Rows: make([][]interface{}, 3)},
		{Name: models.ScoreSheet, Rows: make([][]interface{}, 2)},
	})
	ObserveWrite(time.Now())

	assert.Equal(t, 3.0, testutil.ToFloat64(metricRowsGenerated.WithLabelValues(models.StudentSheet)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricRowsGenerated.WithLabelValues(models.ScoreSheet)))

	count, err := testutil.GatherAndCount(reg, "gendata_workbook_write_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	ObserveSheets([]models.Sheet{
		{Name: models.StudentSheet, Rows: make([][]interface{}, 4)},
		{Name: models.ScoreSheet, Rows: make([][]interface{}, 4)},
	})
	ObserveWrite(time.Now().Add(-time.Second))

	rows, writeSeconds, err := Summary(reg)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{models.StudentSheet: 4, models.ScoreSheet: 4}, rows)
	assert.GreaterOrEqual(t, writeSeconds, 1.0)
}

func TestSummary_NothingRecorded(t *testing.T) {
	rows, writeSeconds, err := Summary(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, writeSeconds)
}
