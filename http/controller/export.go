package controller

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/engine"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/http/controller/dto"
	"github.com/tnqbao/gau-observability/utils"
	"gorm.io/datatypes"
)

func (ctrl *Controller) CreateExport(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateExportRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	query, err := json.Marshal(req.Query)
	if err != nil {
		utils.JSON400(c, "Invalid export query")
		return
	}

	export := &entity.BIExport{
		ID:                uuid.New(),
		Name:              req.Name,
		ExportType:        req.ExportType,
		Format:            req.Format,
		Query:             datatypes.JSON(query),
		Schedule:          req.Schedule,
		DestinationType:   req.DestinationType,
		DestinationConfig: datatypes.JSONMap(req.DestinationConfig),
		Status:            entity.ExportStatusActive,
	}
	if export.ExportType == entity.ExportTypeScheduled {
		nextRun := time.Now().Add(engine.ScheduleOffset(export.Schedule))
		export.NextRunAt = &nextRun
	}

	if err := ctrl.Repository.ExportRepo.Create(export); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to create export '%s': %v", req.Name, err)
		utils.JSON500(c, "Failed to create export")
		return
	}

	utils.JSON201(c, export)
}

func (ctrl *Controller) ListExports(c *gin.Context) {
	ctx := c.Request.Context()

	exports, err := ctrl.Repository.ExportRepo.List()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to list exports: %v", err)
		utils.JSON500(c, "Failed to list exports")
		return
	}

	utils.JSON200(c, exports)
}

func (ctrl *Controller) GetExportByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	export, err := ctrl.Repository.ExportRepo.FindByID(id)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Export %s not found: %v", id, err)
		utils.JSON404(c, "Export not found")
		return
	}

	utils.JSON200(c, export)
}

// RunExport executes the job immediately, regardless of its schedule.
func (ctrl *Controller) RunExport(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	execution, err := ctrl.Engine.Connector.ExecuteExport(ctx, id)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Manual run of export %s failed: %v", id, err)
		if errors.Is(err, engine.ErrUnsupportedFormat) {
			utils.JSON400(c, "Unsupported export format")
			return
		}
		utils.JSON500(c, "Export execution failed")
		return
	}

	utils.JSON200(c, execution)
}

func (ctrl *Controller) ListExportExecutions(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	executions, err := ctrl.Repository.ExecutionRepo.ListByExportID(id, limit)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to list executions for %s: %v", id, err)
		utils.JSON500(c, "Failed to list export executions")
		return
	}

	utils.JSON200(c, executions)
}

func (ctrl *Controller) DeleteExport(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.Repository.ExportRepo.Delete(id); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[BI Connector] Failed to delete export %s: %v", id, err)
		utils.JSON500(c, "Failed to delete export")
		return
	}

	utils.JSON200(c, gin.H{"deleted": id})
}
