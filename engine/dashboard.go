package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tnqbao/gau-observability/entity"
)

// panelTypeLookup maps internal panel types onto Grafana panel plugin ids.
// Unknown types fall back to timeseries.
var panelTypeLookup = map[string]string{
	"timeseries": "timeseries",
	"gauge":      "gauge",
	"table":      "table",
	"stat":       "stat",
	"heatmap":    "heatmap",
	"pie":        "piechart",
	"bar":        "barchart",
}

// GrafanaDashboard is the export artifact consumed by external visualization
// tools.
type GrafanaDashboard struct {
	Title         string           `json:"title"`
	Tags          []string         `json:"tags"`
	Panels        []GrafanaPanel   `json:"panels"`
	SchemaVersion int              `json:"schemaVersion"`
	Version       int              `json:"version"`
	Refresh       string           `json:"refresh,omitempty"`
	Time          GrafanaTimeRange `json:"time"`
}

type GrafanaTimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type GrafanaPanel struct {
	ID          int                    `json:"id"`
	Title       string                 `json:"title"`
	Type        string                 `json:"type"`
	Targets     []GrafanaTarget        `json:"targets"`
	GridPos     GrafanaGridPos         `json:"gridPos"`
	Options     map[string]interface{} `json:"options"`
	FieldConfig map[string]interface{} `json:"fieldConfig"`
}

type GrafanaTarget struct {
	Expr   string `json:"expr"`
	RefID  string `json:"refId"`
	Legend string `json:"legendFormat"`
}

type GrafanaGridPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// RenderDashboard converts a stored dashboard into the Grafana-compatible
// export document.
func RenderDashboard(dashboard *entity.Dashboard) (*GrafanaDashboard, error) {
	rendered := &GrafanaDashboard{
		Title:         dashboard.Name,
		Tags:          []string{},
		Panels:        []GrafanaPanel{},
		SchemaVersion: 36,
		Version:       1,
		Refresh:       dashboard.RefreshInterval,
		Time:          renderTimeRange(dashboard.TimeRange),
	}

	if len(dashboard.Tags) > 0 {
		if err := json.Unmarshal(dashboard.Tags, &rendered.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode dashboard tags: %w", err)
		}
	}

	for i := range dashboard.Panels {
		panel, err := renderPanel(&dashboard.Panels[i], i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to render panel %q: %w", dashboard.Panels[i].Title, err)
		}
		rendered.Panels = append(rendered.Panels, *panel)
	}
	return rendered, nil
}

func renderPanel(panel *entity.DashboardPanel, id int) (*GrafanaPanel, error) {
	panelType, ok := panelTypeLookup[panel.Type]
	if !ok {
		panelType = "timeseries"
	}

	rendered := &GrafanaPanel{
		ID:    id,
		Title: panel.Title,
		Type:  panelType,
		GridPos: GrafanaGridPos{
			X: panel.GridX,
			Y: panel.GridY,
			W: panel.GridW,
			H: panel.GridH,
		},
		Targets:     []GrafanaTarget{},
		Options:     map[string]interface{}{},
		FieldConfig: map[string]interface{}{"defaults": map[string]interface{}{}, "overrides": []interface{}{}},
	}

	if len(panel.VisualizationConfig) > 0 {
		if err := json.Unmarshal(panel.VisualizationConfig, &rendered.Options); err != nil {
			return nil, fmt.Errorf("failed to decode visualization config: %w", err)
		}
	}

	if len(panel.Query) > 0 {
		var query entity.AnalyticsQuery
		if err := json.Unmarshal(panel.Query, &query); err != nil {
			return nil, fmt.Errorf("failed to decode panel query: %w", err)
		}
		for i, metric := range query.Metrics {
			rendered.Targets = append(rendered.Targets, GrafanaTarget{
				Expr:   metric,
				RefID:  targetRef(i),
				Legend: metric,
			})
		}
	}
	return rendered, nil
}

// renderTimeRange maps a stored relative range onto Grafana's now-relative
// syntax; absolute ranges render as ISO timestamps.
func renderTimeRange(timeRange string) GrafanaTimeRange {
	if timeRange == "" {
		return GrafanaTimeRange{From: "now-1h", To: "now"}
	}
	if relativeRangePattern.MatchString(timeRange) {
		return GrafanaTimeRange{From: "now-" + timeRange, To: "now"}
	}
	if ts, err := time.Parse(time.RFC3339, timeRange); err == nil {
		return GrafanaTimeRange{From: ts.Format(time.RFC3339), To: time.Now().UTC().Format(time.RFC3339)}
	}
	return GrafanaTimeRange{From: "now-1h", To: "now"}
}

// targetRef yields the series reference letter: A..Z, wrapping past 26.
func targetRef(index int) string {
	return string(rune('A' + index%26))
}
