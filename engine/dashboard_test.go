package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/datatypes"
)

func TestRenderDashboard(t *testing.T) {
	query, err := json.Marshal(entity.AnalyticsQuery{
		Metrics:   []string{"cpu_usage", "mem_usage"},
		TimeRange: entity.TimeRange{Relative: "6h"},
	})
	assert.NoError(t, err)

	dashboard := &entity.Dashboard{
		ID:              uuid.New(),
		Name:            "Cluster Overview",
		Tags:            datatypes.JSON(`["infra","prod"]`),
		RefreshInterval: "30s",
		TimeRange:       "6h",
		Panels: []entity.DashboardPanel{
			{
				Title: "CPU",
				Type:  "pie",
				Query: datatypes.JSON(query),
				GridX: 0, GridY: 0, GridW: 12, GridH: 8,
			},
		},
	}

	rendered, err := RenderDashboard(dashboard)
	assert.NoError(t, err)

	assert.Equal(t, "Cluster Overview", rendered.Title)
	assert.Equal(t, []string{"infra", "prod"}, rendered.Tags)
	assert.Equal(t, 36, rendered.SchemaVersion)
	assert.Equal(t, 1, rendered.Version)
	assert.Equal(t, "30s", rendered.Refresh)
	assert.Equal(t, "now-6h", rendered.Time.From)
	assert.Equal(t, "now", rendered.Time.To)

	assert.Len(t, rendered.Panels, 1)
	panel := rendered.Panels[0]
	assert.Equal(t, "piechart", panel.Type)
	assert.Equal(t, GrafanaGridPos{X: 0, Y: 0, W: 12, H: 8}, panel.GridPos)

	assert.Len(t, panel.Targets, 2)
	assert.Equal(t, "cpu_usage", panel.Targets[0].Expr)
	assert.Equal(t, "A", panel.Targets[0].RefID)
	assert.Equal(t, "B", panel.Targets[1].RefID)
}

func TestRenderDashboardUnknownPanelTypeDefaults(t *testing.T) {
	dashboard := &entity.Dashboard{
		Name:   "Minimal",
		Panels: []entity.DashboardPanel{{Title: "Something", Type: "hologram"}},
	}

	rendered, err := RenderDashboard(dashboard)
	assert.NoError(t, err)
	assert.Equal(t, "timeseries", rendered.Panels[0].Type)
	assert.Equal(t, "now-1h", rendered.Time.From)
}

func TestPanelTypeLookup(t *testing.T) {
	assert.Equal(t, "barchart", panelTypeLookup["bar"])
	assert.Equal(t, "piechart", panelTypeLookup["pie"])
	assert.Equal(t, "heatmap", panelTypeLookup["heatmap"])
	assert.Equal(t, "stat", panelTypeLookup["stat"])
}

func TestTargetRefWrapsPastZ(t *testing.T) {
	assert.Equal(t, "A", targetRef(0))
	assert.Equal(t, "Z", targetRef(25))
	assert.Equal(t, "A", targetRef(26))
}
