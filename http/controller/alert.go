package controller

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/http/controller/dto"
	"github.com/tnqbao/gau-observability/utils"
	"gorm.io/datatypes"
)

func (ctrl *Controller) CreateAlert(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAlertRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	alertID := uuid.New()
	alert := &entity.Alert{
		ID:                 alertID,
		Name:               req.Name,
		Severity:           req.Severity,
		Metric:             req.Metric,
		Operator:           req.Operator,
		Threshold:          req.Threshold,
		Duration:           req.Duration,
		EvaluationInterval: req.EvaluationInterval,
		LabelFilter:        datatypes.JSONMap(req.LabelFilter),
		Channels:           buildChannels(alertID, req.Channels),
		Status:             entity.AlertStatusActive,
		Enabled:            true,
	}

	if err := ctrl.Repository.AlertRepo.Create(alert); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to create alert '%s': %v", req.Name, err)
		utils.JSON500(c, "Failed to create alert")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Alerts] Created alert '%s' on metric '%s'", alert.Name, alert.Metric)
	utils.JSON201(c, alert)
}

func (ctrl *Controller) ListAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	alerts, err := ctrl.Repository.AlertRepo.List()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to list alerts: %v", err)
		utils.JSON500(c, "Failed to list alerts")
		return
	}

	utils.JSON200(c, alerts)
}

func (ctrl *Controller) GetAlertByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	alert, err := ctrl.Repository.AlertRepo.FindByID(id)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Alert %s not found: %v", id, err)
		utils.JSON404(c, "Alert not found")
		return
	}

	utils.JSON200(c, alert)
}

func (ctrl *Controller) UpdateAlert(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateAlertRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	alert, err := ctrl.Repository.AlertRepo.FindByID(id)
	if err != nil {
		utils.JSON404(c, "Alert not found")
		return
	}

	if req.Name != nil {
		alert.Name = *req.Name
	}
	if req.Severity != nil {
		alert.Severity = *req.Severity
	}
	if req.Operator != nil {
		alert.Operator = *req.Operator
	}
	if req.Threshold != nil {
		alert.Threshold = *req.Threshold
	}
	if req.Duration != nil {
		alert.Duration = *req.Duration
	}
	if req.EvaluationInterval != nil {
		alert.EvaluationInterval = *req.EvaluationInterval
	}
	if req.LabelFilter != nil {
		alert.LabelFilter = datatypes.JSONMap(req.LabelFilter)
	}
	if req.Channels != nil {
		alert.Channels = buildChannels(alert.ID, req.Channels)
	}
	if req.Enabled != nil {
		alert.Enabled = *req.Enabled
		if !alert.Enabled {
			ctrl.Engine.Evaluator.EvictPending(alert.ID)
		}
	}

	if err := ctrl.Repository.AlertRepo.Update(alert); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to update alert %s: %v", id, err)
		utils.JSON500(c, "Failed to update alert")
		return
	}

	utils.JSON200(c, alert)
}

func (ctrl *Controller) DeleteAlert(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.Repository.AlertRepo.Delete(id); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to delete alert %s: %v", id, err)
		utils.JSON500(c, "Failed to delete alert")
		return
	}

	ctrl.Engine.Evaluator.EvictPending(id)
	utils.JSON200(c, gin.H{"deleted": id})
}

func (ctrl *Controller) SilenceAlert(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.SilenceAlertRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	until := time.Now().Add(time.Duration(req.DurationMinutes) * time.Minute)
	if err := ctrl.Repository.AlertRepo.Silence(id, until); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to silence alert %s: %v", id, err)
		utils.JSON500(c, "Failed to silence alert")
		return
	}

	ctrl.Engine.Evaluator.EvictPending(id)
	utils.JSON200(c, gin.H{"silenced_until": until})
}

func (ctrl *Controller) ListAlertHistory(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	triggers, err := ctrl.Repository.TriggerRepo.ListByAlertID(id, limit)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Alerts] Failed to list history for %s: %v", id, err)
		utils.JSON500(c, "Failed to list alert history")
		return
	}

	utils.JSON200(c, triggers)
}

func buildChannels(alertID uuid.UUID, dtos []dto.NotificationChannelDTO) []entity.NotificationChannel {
	channels := make([]entity.NotificationChannel, 0, len(dtos))
	for _, ch := range dtos {
		enabled := true
		if ch.Enabled != nil {
			enabled = *ch.Enabled
		}
		config := datatypes.JSON("{}")
		if ch.Config != nil {
			if raw, err := json.Marshal(ch.Config); err == nil {
				config = datatypes.JSON(raw)
			}
		}
		channels = append(channels, entity.NotificationChannel{
			ID:      uuid.New(),
			AlertID: alertID,
			Type:    ch.Type,
			Name:    ch.Name,
			Enabled: enabled,
			Config:  config,
		})
	}
	return channels
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}
