package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-observability/utils"
)

func (ctrl *Controller) ListAnomalies(c *gin.Context) {
	ctx := c.Request.Context()

	metric := c.Query("metric")

	var acknowledged *bool
	if raw := c.Query("acknowledged"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.JSON400(c, "Invalid acknowledged filter")
			return
		}
		acknowledged = &parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	anomalies, err := ctrl.Repository.AnomalyRepo.List(metric, acknowledged, limit)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Anomaly Detector] Failed to list anomalies: %v", err)
		utils.JSON500(c, "Failed to list anomalies")
		return
	}

	utils.JSON200(c, anomalies)
}

func (ctrl *Controller) AcknowledgeAnomaly(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.Repository.AnomalyRepo.Acknowledge(id); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Anomaly Detector] Failed to acknowledge anomaly %s: %v", id, err)
		utils.JSON500(c, "Failed to acknowledge anomaly")
		return
	}

	utils.JSON200(c, gin.H{"acknowledged": id})
}
