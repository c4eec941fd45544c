package registry

import "github.com/viewdeck/viewdeck/pkg/ui"

// builtinDefinitions returns the catalog entries registered at
// construction. Order here is the order List reports them in.
func builtinDefinitions() []*Definition {
	return []*Definition{
		{
			Type:        ui.TypeText,
			Name:        "Text",
			Description: "Display text content with optional formatting",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"content": map[string]any{"type": "string"},
					"variant": map[string]any{
						"type": "string",
						"enum": []any{"h1", "h2", "h3", "body", "caption"},
					},
				},
				"required": []any{"content"},
			},
			DefaultProps: map[string]any{"variant": "body"},
		},
		{
			Type:        ui.TypeChart,
			Name:        "Chart",
			Description: "Display data visualizations (line, bar, pie, etc.)",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"chart_type": map[string]any{
						"type": "string",
						"enum": []any{"line", "bar", "pie", "area", "scatter", "donut"},
					},
					"data":   map[string]any{"type": "array"},
					"title":  map[string]any{"type": "string"},
					"x_axis": map[string]any{"type": "string"},
					"y_axis": map[string]any{"type": "string"},
				},
				"required": []any{"chart_type", "data"},
			},
			DefaultProps: map[string]any{"chart_type": "line"},
		},
		{
			Type:        ui.TypeTable,
			Name:        "Table",
			Description: "Display tabular data with optional sorting/filtering",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"columns":    map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					"rows":       map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					"sortable":   map[string]any{"type": "boolean"},
					"filterable": map[string]any{"type": "boolean"},
				},
				"required": []any{"columns", "rows"},
			},
			DefaultProps: map[string]any{"sortable": true, "filterable": false},
		},
		{
			Type:        ui.TypeMetric,
			Name:        "Metric",
			Description: "Display a single metric/KPI with optional trend",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"label":       map[string]any{"type": "string"},
					"value":       map[string]any{"type": []any{"string", "number"}},
					"unit":        map[string]any{"type": "string"},
					"trend":       map[string]any{"type": "string", "enum": []any{"up", "down", "flat"}},
					"trend_value": map[string]any{"type": "string"},
				},
				"required": []any{"label", "value"},
			},
			DefaultProps: map[string]any{"trend": "flat"},
		},
		{
			Type:        ui.TypeCard,
			Name:        "Card",
			Description: "Container card with title and content",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":    map[string]any{"type": "string"},
					"subtitle": map[string]any{"type": "string"},
					"content":  map[string]any{"type": "string"},
				},
			},
		},
		{
			Type:        ui.TypeAlert,
			Name:        "Alert",
			Description: "Display alert/notification message",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
					"severity": map[string]any{
						"type": "string",
						"enum": []any{"info", "success", "warning", "error"},
					},
					"dismissible": map[string]any{"type": "boolean"},
				},
				"required": []any{"message"},
			},
			DefaultProps: map[string]any{"severity": "info", "dismissible": true},
		},
		{
			Type:        ui.TypeProgress,
			Name:        "Progress",
			Description: "Display progress indicator",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"value":   map[string]any{"type": "number", "minimum": 0, "maximum": 100},
					"label":   map[string]any{"type": "string"},
					"variant": map[string]any{"type": "string", "enum": []any{"linear", "circular"}},
				},
				"required": []any{"value"},
			},
			DefaultProps: map[string]any{"variant": "linear"},
		},
		{
			Type:        ui.TypeForm,
			Name:        "Form",
			Description: "Interactive form with input fields",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"fields":       map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					"submit_label": map[string]any{"type": "string"},
					"action":       map[string]any{"type": "string"},
				},
				"required": []any{"fields"},
			},
			DefaultProps: map[string]any{"submit_label": "Submit"},
		},
		{
			Type:        ui.TypeButton,
			Name:        "Button",
			Description: "Clickable button with a label",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"label": map[string]any{"type": "string"},
					"variant": map[string]any{
						"type": "string",
						"enum": []any{"primary", "secondary", "danger"},
					},
					"action": map[string]any{"type": "string"},
				},
			},
			DefaultProps: map[string]any{"label": "Button", "variant": "primary"},
		},
		{
			Type:        ui.TypeImage,
			Name:        "Image",
			Description: "Display an image",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"src": map[string]any{"type": "string"},
					"alt": map[string]any{"type": "string"},
				},
				"required": []any{"src"},
			},
			DefaultProps: map[string]any{"alt": ""},
		},
		{
			Type:        ui.TypeList,
			Name:        "List",
			Description: "Ordered or unordered list of items",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items":   map[string]any{"type": "array"},
					"ordered": map[string]any{"type": "boolean"},
				},
				"required": []any{"items"},
			},
			DefaultProps: map[string]any{"ordered": false},
		},
	}
}
