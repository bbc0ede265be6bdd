package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-observability/http/controller/dto"
	"github.com/tnqbao/gau-observability/utils"
)

func (ctrl *Controller) CreatePrediction(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PredictRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Predictor] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	prediction, err := ctrl.Engine.Predictor.Predict(req.Metric, req.Labels, req.Method)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Predictor] Forecast for '%s' failed: %v", req.Metric, err)
		utils.JSON500(c, "Forecast failed")
		return
	}

	utils.JSON201(c, prediction)
}

func (ctrl *Controller) ListPredictions(c *gin.Context) {
	ctx := c.Request.Context()

	metric := c.Query("metric")
	if metric == "" {
		utils.JSON400(c, "metric query parameter is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	predictions, err := ctrl.Repository.PredictionRepo.ListByMetric(metric, limit)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Predictor] Failed to list predictions for '%s': %v", metric, err)
		utils.JSON500(c, "Failed to list predictions")
		return
	}

	utils.JSON200(c, predictions)
}
