package controller

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/engine"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/http/controller/dto"
	"github.com/tnqbao/gau-observability/utils"
	"gorm.io/datatypes"
)

func (ctrl *Controller) CreateDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDashboardRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	dashboardID := uuid.New()
	panels, err := buildPanels(dashboardID, req.Panels)
	if err != nil {
		utils.JSON400(c, "Invalid panel definition")
		return
	}

	dashboard := &entity.Dashboard{
		ID:              dashboardID,
		Name:            req.Name,
		Tags:            marshalTags(req.Tags),
		RefreshInterval: req.RefreshInterval,
		TimeRange:       req.TimeRange,
		Layout:          req.Layout,
		IsDefault:       req.IsDefault,
		IsPublic:        req.IsPublic,
		Panels:          panels,
	}

	if err := ctrl.Repository.DashboardRepo.Create(dashboard); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to create dashboard '%s': %v", req.Name, err)
		utils.JSON500(c, "Failed to create dashboard")
		return
	}

	utils.JSON201(c, dashboard)
}

func (ctrl *Controller) ListDashboards(c *gin.Context) {
	ctx := c.Request.Context()

	dashboards, err := ctrl.Repository.DashboardRepo.List()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to list dashboards: %v", err)
		utils.JSON500(c, "Failed to list dashboards")
		return
	}

	utils.JSON200(c, dashboards)
}

func (ctrl *Controller) GetDashboardByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	dashboard, err := ctrl.Repository.DashboardRepo.FindByID(id)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Dashboard %s not found: %v", id, err)
		utils.JSON404(c, "Dashboard not found")
		return
	}

	utils.JSON200(c, dashboard)
}

func (ctrl *Controller) UpdateDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateDashboardRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	dashboard, err := ctrl.Repository.DashboardRepo.FindByID(id)
	if err != nil {
		utils.JSON404(c, "Dashboard not found")
		return
	}

	if req.Name != nil {
		dashboard.Name = *req.Name
	}
	if req.Tags != nil {
		dashboard.Tags = marshalTags(req.Tags)
	}
	if req.RefreshInterval != nil {
		dashboard.RefreshInterval = *req.RefreshInterval
	}
	if req.TimeRange != nil {
		dashboard.TimeRange = *req.TimeRange
	}
	if req.Layout != nil {
		dashboard.Layout = *req.Layout
	}
	if req.IsDefault != nil {
		dashboard.IsDefault = *req.IsDefault
	}
	if req.IsPublic != nil {
		dashboard.IsPublic = *req.IsPublic
	}

	if req.Panels != nil {
		panels, err := buildPanels(dashboard.ID, req.Panels)
		if err != nil {
			utils.JSON400(c, "Invalid panel definition")
			return
		}
		if err := ctrl.Repository.DashboardRepo.ReplacePanels(dashboard.ID, panels); err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to replace panels for %s: %v", id, err)
			utils.JSON500(c, "Failed to update dashboard panels")
			return
		}
		dashboard.Panels = panels
	}

	if err := ctrl.Repository.DashboardRepo.Update(dashboard); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to update dashboard %s: %v", id, err)
		utils.JSON500(c, "Failed to update dashboard")
		return
	}

	utils.JSON200(c, dashboard)
}

func (ctrl *Controller) DeleteDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.Repository.DashboardRepo.Delete(id); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to delete dashboard %s: %v", id, err)
		utils.JSON500(c, "Failed to delete dashboard")
		return
	}

	utils.JSON200(c, gin.H{"deleted": id})
}

// RenderDashboard returns the Grafana-compatible export document.
func (ctrl *Controller) RenderDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	dashboard, err := ctrl.Repository.DashboardRepo.FindByID(id)
	if err != nil {
		utils.JSON404(c, "Dashboard not found")
		return
	}

	rendered, err := engine.RenderDashboard(dashboard)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboards] Failed to render dashboard %s: %v", id, err)
		utils.JSON500(c, "Failed to render dashboard")
		return
	}

	utils.JSON200(c, rendered)
}

func buildPanels(dashboardID uuid.UUID, dtos []dto.DashboardPanelDTO) ([]entity.DashboardPanel, error) {
	panels := make([]entity.DashboardPanel, 0, len(dtos))
	for i, p := range dtos {
		query, err := json.Marshal(p.Query)
		if err != nil {
			return nil, err
		}
		vizConfig := datatypes.JSON("{}")
		if p.VisualizationConfig != nil {
			raw, err := json.Marshal(p.VisualizationConfig)
			if err != nil {
				return nil, err
			}
			vizConfig = datatypes.JSON(raw)
		}
		panelType := p.Type
		if panelType == "" {
			panelType = "timeseries"
		}
		panels = append(panels, entity.DashboardPanel{
			ID:                  uuid.New(),
			DashboardID:         dashboardID,
			Title:               p.Title,
			Type:                panelType,
			Query:               datatypes.JSON(query),
			VisualizationConfig: vizConfig,
			GridX:               p.GridX,
			GridY:               p.GridY,
			GridW:               p.GridW,
			GridH:               p.GridH,
			Position:            i,
		})
	}
	return panels, nil
}

func marshalTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
