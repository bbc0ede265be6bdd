package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

// BIConnector runs export jobs: execute the job's query, encode the result,
// write it to the configured destination and record the execution.
type BIConnector struct {
	repository   *repository.Repository
	logger       *infra.LoggerClient
	queryEngine  *QueryEngine
	minio        *infra.MinioClient
	httpClient   *http.Client
	pollInterval time.Duration
	localDir     string
	cancel       context.CancelFunc
}

func NewBIConnector(repo *repository.Repository, logger *infra.LoggerClient, queryEngine *QueryEngine, minio *infra.MinioClient, pollInterval time.Duration, localDir string) *BIConnector {
	return &BIConnector{
		repository:   repo,
		logger:       logger,
		queryEngine:  queryEngine,
		minio:        minio,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: pollInterval,
		localDir:     localDir,
	}
}

// Start begins the scheduled-export poll loop.
func (c *BIConnector) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.logger.InfoWithContextf(ctx, "[BI Connector] Started with poll interval %s", c.pollInterval)
	runPeriodic(ctx, c.logger, "BI Connector", c.pollInterval, c.RunDueExports)
}

func (c *BIConnector) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// RunDueExports executes every scheduled job whose next run time has passed,
// then advances its schedule. A per-job failure never aborts the batch.
func (c *BIConnector) RunDueExports(ctx context.Context) {
	now := time.Now()

	due, err := c.repository.ExportRepo.ListDue(now)
	if err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to list due exports: %v", err)
		return
	}

	for i := range due {
		job := &due[i]
		if _, err := c.ExecuteExport(ctx, job.ID); err != nil {
			c.logger.ErrorWithContextf(ctx, err, "[BI Connector] Export %s failed: %v", job.Name, err)
		}
		nextRun := now.Add(ScheduleOffset(job.Schedule))
		if err := c.repository.ExportRepo.SetNextRun(job.ID, nextRun); err != nil {
			c.logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to advance schedule for %s: %v", job.Name, err)
		}
	}
}

// ExecuteExport runs one export job end to end. The execution row is created
// in running state up front and finalized as success or failed; a failure is
// returned to the caller after being recorded.
func (c *BIConnector) ExecuteExport(ctx context.Context, exportID uuid.UUID) (*entity.ExportExecution, error) {
	job, err := c.repository.ExportRepo.FindByID(exportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load export job: %w", err)
	}

	execution := &entity.ExportExecution{
		ID:        uuid.New(),
		ExportID:  job.ID,
		StartedAt: time.Now(),
		Status:    entity.ExecutionStatusRunning,
	}
	if err := c.repository.ExecutionRepo.Create(execution); err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	filePath, rows, size, err := c.runExport(ctx, job)
	completed := time.Now()
	execution.CompletedAt = &completed

	if err != nil {
		execution.Status = entity.ExecutionStatusFailed
		execution.Error = err.Error()
		if updateErr := c.repository.ExecutionRepo.Update(execution); updateErr != nil {
			c.logger.ErrorWithContextf(ctx, updateErr, "[BI Connector] Failed to record failed execution for %s: %v", job.Name, updateErr)
		}
		return execution, err
	}

	execution.Status = entity.ExecutionStatusSuccess
	execution.RowsExported = rows
	execution.FilePath = filePath
	execution.FileSize = size
	if err := c.repository.ExecutionRepo.Update(execution); err != nil {
		return execution, fmt.Errorf("failed to record execution result: %w", err)
	}

	c.logger.InfoWithContextf(ctx, "[BI Connector] Export %s completed: %d rows, %d bytes to %s", job.Name, rows, size, filePath)
	return execution, nil
}

func (c *BIConnector) runExport(ctx context.Context, job *entity.BIExport) (filePath string, rows int, size int64, err error) {
	var query entity.AnalyticsQuery
	if err := json.Unmarshal(job.Query, &query); err != nil {
		return "", 0, 0, fmt.Errorf("failed to decode export query: %w", err)
	}

	result, err := c.queryEngine.Execute(ctx, query)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to run export query: %w", err)
	}

	data, extension, contentType, err := EncodeResult(result, job.Format)
	if err != nil {
		return "", 0, 0, err
	}

	fileName := ExportFileName(job.Name, extension, time.Now())
	filePath, size, err = c.writeDestination(ctx, job, fileName, contentType, data)
	if err != nil {
		return "", 0, 0, err
	}
	return filePath, result.RowCount, size, nil
}

func (c *BIConnector) writeDestination(ctx context.Context, job *entity.BIExport, fileName, contentType string, data []byte) (string, int64, error) {
	switch job.DestinationType {
	case entity.DestinationLocal:
		dir := configString(job.DestinationConfig, "path")
		if dir == "" {
			dir = c.localDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, fmt.Errorf("failed to create export directory: %w", err)
		}
		path := filepath.Join(dir, fileName)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", 0, fmt.Errorf("failed to write export file: %w", err)
		}
		return path, int64(len(data)), nil

	case entity.DestinationS3:
		bucket := configString(job.DestinationConfig, "bucket")
		if bucket == "" {
			return "", 0, fmt.Errorf("s3 destination requires a bucket")
		}
		prefix := configString(job.DestinationConfig, "prefix")
		objectName := fileName
		if prefix != "" {
			objectName = prefix + "/" + fileName
		}
		if err := c.minio.EnsureBucket(ctx, bucket); err != nil {
			return "", 0, err
		}
		written, err := c.minio.PutObject(ctx, bucket, objectName, contentType, data)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("s3://%s/%s", bucket, objectName), written, nil

	case entity.DestinationHTTP:
		url := configString(job.DestinationConfig, "url")
		if url == "" {
			return "", 0, fmt.Errorf("http destination requires a url")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return "", 0, fmt.Errorf("failed to build export request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Export-Filename", fileName)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", 0, fmt.Errorf("failed to push export: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return "", 0, fmt.Errorf("export push rejected with status %d", resp.StatusCode)
		}
		return url + "/" + fileName, int64(len(data)), nil

	default:
		return "", 0, fmt.Errorf("unknown destination type %q", job.DestinationType)
	}
}

// EncodeResult serializes a query result in the requested format. Excel and
// parquet are degraded fallbacks carrying CSV and JSON bytes under the renamed
// extension.
func EncodeResult(result *entity.QueryResult, format string) (data []byte, extension, contentType string, err error) {
	switch format {
	case entity.FormatCSV:
		data, err = encodeCSV(result)
		return data, "csv", "text/csv", err
	case entity.FormatJSON:
		data, err = json.MarshalIndent(result, "", "  ")
		return data, "json", "application/json", err
	case entity.FormatExcel:
		data, err = encodeCSV(result)
		return data, "xlsx", "text/csv", err
	case entity.FormatParquet:
		data, err = json.MarshalIndent(result, "", "  ")
		return data, "parquet", "application/json", err
	default:
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// encodeCSV writes a header row plus one row per data point. Value columns are
// the union of all "<metric>:<aggregation>" keys, sorted for a stable layout.
func encodeCSV(result *entity.QueryResult) ([]byte, error) {
	valueKeys := map[string]struct{}{}
	labelKeys := map[string]struct{}{}
	for _, point := range result.Points {
		for k := range point.Values {
			valueKeys[k] = struct{}{}
		}
		for k := range point.Labels {
			labelKeys[k] = struct{}{}
		}
	}
	valueColumns := sortedKeys(valueKeys)
	labelColumns := sortedKeys(labelKeys)

	header := append([]string{"timestamp"}, labelColumns...)
	header = append(header, valueColumns...)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, point := range result.Points {
		row := make([]string, 0, len(header))
		row = append(row, point.Timestamp.UTC().Format(time.RFC3339))
		for _, k := range labelColumns {
			row = append(row, point.Labels[k])
		}
		for _, k := range valueColumns {
			if value, ok := point.Values[k]; ok {
				row = append(row, strconv.FormatFloat(value, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// ExportFileName builds the deterministic artifact name from job name and
// timestamp.
func ExportFileName(jobName, extension string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeFileName(jobName), at.UTC().Format("20060102T150405"), extension)
}

func sanitizeFileName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "export"
	}
	return string(out)
}

// ScheduleOffset interprets the schedule keyword as a fixed offset. This is a
// deliberate stub, not a cron evaluator: unknown schedules run daily.
func ScheduleOffset(schedule string) time.Duration {
	switch schedule {
	case "hourly":
		return time.Hour
	case "daily":
		return 24 * time.Hour
	case "weekly":
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
