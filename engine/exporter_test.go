package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/entity"
)

func exportResult(rows int) *entity.QueryResult {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	points := make([]entity.AggregatedDataPoint, 0, rows)
	for i := 0; i < rows; i++ {
		points = append(points, entity.AggregatedDataPoint{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Labels:    map[string]string{"host": "web-01"},
			Values:    map[string]float64{"cpu_usage:avg": float64(10 + i)},
		})
	}
	return &entity.QueryResult{Points: points, RowCount: rows, GeneratedAt: base}
}

func TestEncodeResultCSV(t *testing.T) {
	data, extension, contentType, err := EncodeResult(exportResult(10), entity.FormatCSV)
	assert.NoError(t, err)
	assert.Equal(t, "csv", extension)
	assert.Equal(t, "text/csv", contentType)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 11) // header plus ten rows
	assert.Equal(t, "timestamp,host,cpu_usage:avg", lines[0])
	assert.Equal(t, "2026-03-01T12:00:00Z,web-01,10", lines[1])
}

func TestEncodeResultJSON(t *testing.T) {
	data, extension, contentType, err := EncodeResult(exportResult(2), entity.FormatJSON)
	assert.NoError(t, err)
	assert.Equal(t, "json", extension)
	assert.Equal(t, "application/json", contentType)

	var decoded entity.QueryResult
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.RowCount)
	assert.Len(t, decoded.Points, 2)
}

func TestEncodeResultDegradedFallbacks(t *testing.T) {
	csvData, _, _, err := EncodeResult(exportResult(3), entity.FormatCSV)
	assert.NoError(t, err)

	excelData, extension, _, err := EncodeResult(exportResult(3), entity.FormatExcel)
	assert.NoError(t, err)
	assert.Equal(t, "xlsx", extension)
	assert.Equal(t, csvData, excelData)

	jsonData, _, _, err := EncodeResult(exportResult(3), entity.FormatJSON)
	assert.NoError(t, err)

	parquetData, extension, _, err := EncodeResult(exportResult(3), entity.FormatParquet)
	assert.NoError(t, err)
	assert.Equal(t, "parquet", extension)
	assert.Equal(t, jsonData, parquetData)
}

func TestEncodeResultUnsupportedFormat(t *testing.T) {
	_, _, _, err := EncodeResult(exportResult(1), "avro")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 34, 56, 0, time.UTC)

	assert.Equal(t, "daily_report_20260301T123456.csv", ExportFileName("daily report", "csv", at))
	assert.Equal(t, "export_20260301T123456.json", ExportFileName("!!!", "json", at))
}

func TestScheduleOffset(t *testing.T) {
	assert.Equal(t, time.Hour, ScheduleOffset("hourly"))
	assert.Equal(t, 24*time.Hour, ScheduleOffset("daily"))
	assert.Equal(t, 7*24*time.Hour, ScheduleOffset("weekly"))
	assert.Equal(t, 24*time.Hour, ScheduleOffset("0 4 * * *"))
}
