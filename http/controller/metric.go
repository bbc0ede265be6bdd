package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/http/controller/dto"
	"github.com/tnqbao/gau-observability/utils"
	"gorm.io/datatypes"
)

func (ctrl *Controller) IngestMetrics(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestMetricsRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Metrics] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	now := time.Now()
	samples := make([]entity.MetricSample, 0, len(req.Samples))
	for _, s := range req.Samples {
		ts := now
		if s.Timestamp != nil {
			ts = *s.Timestamp
		}
		labels := datatypes.JSONMap{}
		for k, v := range s.Labels {
			labels[k] = v
		}
		samples = append(samples, entity.MetricSample{
			ID:         uuid.New(),
			MetricName: s.MetricName,
			Value:      s.Value,
			Labels:     labels,
			Timestamp:  ts,
		})
	}

	if err := ctrl.Repository.MetricRepo.CreateBatch(samples); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Metrics] Failed to ingest %d samples: %v", len(samples), err)
		utils.JSON500(c, "Failed to ingest metrics")
		return
	}

	utils.JSON201(c, gin.H{"ingested": len(samples)})
}

func (ctrl *Controller) ListMetricNames(c *gin.Context) {
	ctx := c.Request.Context()

	window := 24 * time.Hour
	if raw := c.Query("window"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			window = parsed
		}
	}

	now := time.Now()
	names, err := ctrl.Repository.MetricRepo.DistinctMetricNames(now.Add(-window), now)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Metrics] Failed to list metric names: %v", err)
		utils.JSON500(c, "Failed to list metric names")
		return
	}

	utils.JSON200(c, gin.H{"metrics": names})
}

// ListMetricAggregates returns pre-aggregated rollup rows for one metric.
func (ctrl *Controller) ListMetricAggregates(c *gin.Context) {
	ctx := c.Request.Context()

	metric := c.Param("name")
	interval := c.DefaultQuery("interval", "1m")

	window := 24 * time.Hour
	if raw := c.Query("window"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			window = parsed
		}
	}

	now := time.Now()
	aggregates, err := ctrl.Repository.AggregateRepo.ListByMetricInterval(metric, interval, now.Add(-window), now)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Metrics] Failed to list aggregates for '%s': %v", metric, err)
		utils.JSON500(c, "Failed to list metric aggregates")
		return
	}

	utils.JSON200(c, aggregates)
}
