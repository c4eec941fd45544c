package adapter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// HTML renders a view as a self-contained markup fragment with a fixed
// stylesheet, one renderer per component type. Unknown component types
// produce a generic fallback node rather than failing the whole view.
type HTML struct{}

// NewHTML creates the HTML adapter.
func NewHTML() *HTML {
	return &HTML{}
}

func (a *HTML) Type() string {
	return TypeHTML
}

func (a *HTML) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderView produces the full view fragment: stylesheet, header and
// every top-level component in order, arranged by the view's layout.
func (a *HTML) RenderView(view *ui.View) (*Result, error) {
	var b strings.Builder
	for _, c := range view.Components {
		b.WriteString(a.renderComponent(c))
		b.WriteByte('\n')
	}

	markup := fmt.Sprintf(`<div class="vd-view" data-view-id="%s">
<style>%s</style>
<div class="view-header"><h2>%s</h2></div>
<div class="view-content" style="%s">
%s</div>
</div>`,
		escapeAttr(view.ID),
		stylesheet,
		escapeHTML(view.Name),
		escapeAttr(layoutToCSS(view.Layout)),
		b.String())

	return &Result{
		AdapterType: a.Type(),
		Content:     []byte(markup),
		ContentType: a.ContentType(),
		Metadata: map[string]any{
			"view_id":         view.ID,
			"view_name":       view.Name,
			"version":         view.Version,
			"component_count": len(view.Components),
		},
		RenderedAt: time.Now().UTC(),
	}, nil
}

// RenderComponent produces markup for a single component subtree.
func (a *HTML) RenderComponent(component *ui.Component) (*Result, error) {
	return &Result{
		AdapterType: a.Type(),
		Content:     []byte(a.renderComponent(component)),
		ContentType: a.ContentType(),
		Metadata: map[string]any{
			"component_id":   component.ID,
			"component_type": string(component.Type),
		},
		RenderedAt: time.Now().UTC(),
	}, nil
}

func (a *HTML) renderComponent(c *ui.Component) string {
	switch c.Type {
	case ui.TypeText:
		return a.renderText(c)
	case ui.TypeChart:
		return a.renderChart(c)
	case ui.TypeTable:
		return a.renderTable(c)
	case ui.TypeMetric:
		return a.renderMetric(c)
	case ui.TypeCard:
		return a.renderCard(c)
	case ui.TypeAlert:
		return a.renderAlert(c)
	case ui.TypeProgress:
		return a.renderProgress(c)
	case ui.TypeForm:
		return a.renderForm(c)
	case ui.TypeButton:
		return a.renderButton(c)
	case ui.TypeImage:
		return a.renderImage(c)
	case ui.TypeList:
		return a.renderList(c)
	default:
		return a.renderFallback(c)
	}
}

var textTags = map[string]string{
	"h1":      "h1",
	"h2":      "h2",
	"h3":      "h3",
	"body":    "p",
	"caption": "span",
}

func (a *HTML) renderText(c *ui.Component) string {
	variant := stringProp(c.Props, "variant", "body")
	tag, ok := textTags[variant]
	if !ok {
		tag = "p"
	}
	return fmt.Sprintf(`<%s class="vd-text vd-text--%s" style="%s">%s</%s>`,
		tag,
		escapeAttr(variant),
		escapeAttr(stylesToCSS(c.Styles)),
		escapeHTML(stringProp(c.Props, "content", "")),
		tag)
}

func (a *HTML) renderChart(c *ui.Component) string {
	// Real charting needs a client-side library; emit a placeholder
	// with the data embedded for the frontend to pick up.
	chartType := stringProp(c.Props, "chart_type", "line")
	data, _ := c.Props["data"].([]any)
	encoded, err := json.Marshal(data)
	if err != nil {
		encoded = []byte("[]")
	}
	return fmt.Sprintf(`<div class="vd-chart" data-chart-type="%s" data-component-id="%s">
<div class="chart-title">%s</div>
<div class="chart-placeholder">[%s CHART - %d data points]</div>
<script type="application/json">%s</script>
</div>`,
		escapeAttr(chartType),
		escapeAttr(c.ID),
		escapeHTML(stringProp(c.Props, "title", "")),
		escapeHTML(strings.ToUpper(chartType)),
		len(data),
		encoded)
}

func (a *HTML) renderTable(c *ui.Component) string {
	columns, _ := c.Props["columns"].([]any)
	rows, _ := c.Props["rows"].([]any)

	var header strings.Builder
	header.WriteString("<tr>")
	for _, col := range columns {
		m, _ := col.(map[string]any)
		label := stringProp(m, "label", stringProp(m, "key", ""))
		header.WriteString("<th>" + escapeHTML(label) + "</th>")
	}
	header.WriteString("</tr>")

	var body strings.Builder
	for _, row := range rows {
		rm, _ := row.(map[string]any)
		body.WriteString("<tr>")
		for _, col := range columns {
			cm, _ := col.(map[string]any)
			key := stringProp(cm, "key", "")
			body.WriteString("<td>" + escapeHTML(anyToString(rm[key])) + "</td>")
		}
		body.WriteString("</tr>\n")
	}

	return fmt.Sprintf(`<table class="vd-table" data-component-id="%s">
<thead>%s</thead>
<tbody>%s</tbody>
</table>`,
		escapeAttr(c.ID), header.String(), body.String())
}

var trendIcons = map[string]string{
	"up":   "↑",
	"down": "↓",
	"flat": "→",
}

func (a *HTML) renderMetric(c *ui.Component) string {
	trendHTML := ""
	if trend := stringProp(c.Props, "trend", ""); trend != "" {
		trendHTML = fmt.Sprintf(`<span class="metric-trend trend--%s">%s %s</span>`,
			escapeAttr(trend),
			trendIcons[trend],
			escapeHTML(anyToString(c.Props["trend_value"])))
	}
	return fmt.Sprintf(`<div class="vd-metric" data-component-id="%s">
<div class="metric-label">%s</div>
<div class="metric-value">%s<span class="metric-unit">%s</span></div>
%s</div>`,
		escapeAttr(c.ID),
		escapeHTML(stringProp(c.Props, "label", "")),
		escapeHTML(anyToString(c.Props["value"])),
		escapeHTML(stringProp(c.Props, "unit", "")),
		trendHTML)
}

func (a *HTML) renderCard(c *ui.Component) string {
	var children strings.Builder
	for _, child := range c.Children {
		children.WriteString(a.renderComponent(child))
		children.WriteByte('\n')
	}
	return fmt.Sprintf(`<div class="vd-card" data-component-id="%s">
<div class="card-header">
<div class="card-title">%s</div>
<div class="card-subtitle">%s</div>
</div>
<div class="card-content">%s%s</div>
</div>`,
		escapeAttr(c.ID),
		escapeHTML(stringProp(c.Props, "title", "")),
		escapeHTML(stringProp(c.Props, "subtitle", "")),
		escapeHTML(stringProp(c.Props, "content", "")),
		children.String())
}

func (a *HTML) renderAlert(c *ui.Component) string {
	severity := stringProp(c.Props, "severity", "info")
	return fmt.Sprintf(`<div class="vd-alert vd-alert--%s" data-component-id="%s">%s</div>`,
		escapeAttr(severity),
		escapeAttr(c.ID),
		escapeHTML(stringProp(c.Props, "message", "")))
}

func (a *HTML) renderProgress(c *ui.Component) string {
	value := numProp(c.Props, "value")
	label := escapeHTML(stringProp(c.Props, "label", ""))

	if stringProp(c.Props, "variant", "linear") == "circular" {
		return fmt.Sprintf(`<div class="vd-progress vd-progress--circular" data-component-id="%s">
<svg viewBox="0 0 36 36"><circle cx="18" cy="18" r="16" stroke-dasharray="%g, 100"/></svg>
<span class="progress-label">%s %g%%</span>
</div>`,
			escapeAttr(c.ID), value, label, value)
	}
	return fmt.Sprintf(`<div class="vd-progress vd-progress--linear" data-component-id="%s">
<div class="progress-label">%s</div>
<div class="progress-bar"><div class="progress-fill" style="width: %g%%"></div></div>
<div class="progress-value">%g%%</div>
</div>`,
		escapeAttr(c.ID), label, value, value)
}

func (a *HTML) renderForm(c *ui.Component) string {
	fields, _ := c.Props["fields"].([]any)

	var b strings.Builder
	for _, field := range fields {
		m, _ := field.(map[string]any)
		name := stringProp(m, "name", "")
		label := stringProp(m, "label", name)
		b.WriteString(fmt.Sprintf(`<div class="form-field">
<label for="%s">%s</label>
<input type="%s" name="%s" id="%s" />
</div>
`,
			escapeAttr(name),
			escapeHTML(label),
			escapeAttr(stringProp(m, "type", "text")),
			escapeAttr(name),
			escapeAttr(name)))
	}

	return fmt.Sprintf(`<form class="vd-form" data-component-id="%s">
%s<button type="submit">%s</button>
</form>`,
		escapeAttr(c.ID),
		b.String(),
		escapeHTML(stringProp(c.Props, "submit_label", "Submit")))
}

func (a *HTML) renderButton(c *ui.Component) string {
	return fmt.Sprintf(`<button class="vd-button vd-button--%s" data-component-id="%s">%s</button>`,
		escapeAttr(stringProp(c.Props, "variant", "primary")),
		escapeAttr(c.ID),
		escapeHTML(stringProp(c.Props, "label", "Button")))
}

func (a *HTML) renderImage(c *ui.Component) string {
	return fmt.Sprintf(`<img class="vd-image" src="%s" alt="%s" data-component-id="%s" />`,
		escapeAttr(stringProp(c.Props, "src", "")),
		escapeAttr(stringProp(c.Props, "alt", "")),
		escapeAttr(c.ID))
}

func (a *HTML) renderList(c *ui.Component) string {
	items, _ := c.Props["items"].([]any)
	tag := "ul"
	if ordered, _ := c.Props["ordered"].(bool); ordered {
		tag = "ol"
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString("<li>" + escapeHTML(anyToString(item)) + "</li>")
	}
	return fmt.Sprintf(`<%s class="vd-list" data-component-id="%s">%s</%s>`,
		tag, escapeAttr(c.ID), b.String(), tag)
}

// renderFallback embeds the raw props so a frontend can still show
// something for types without a dedicated renderer.
func (a *HTML) renderFallback(c *ui.Component) string {
	encoded, err := json.Marshal(c.Props)
	if err != nil {
		encoded = []byte("{}")
	}
	return fmt.Sprintf(`<div class="vd-custom" data-component-id="%s" data-type="%s">%s</div>`,
		escapeAttr(c.ID),
		escapeAttr(string(c.Type)),
		escapeHTML(string(encoded)))
}

func stylesToCSS(styles map[string]string) string {
	if len(styles) == 0 {
		return ""
	}
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+styles[k])
	}
	return strings.Join(parts, "; ")
}

func layoutToCSS(layout map[string]any) string {
	switch stringProp(layout, "type", "") {
	case "grid":
		columns := numProp(layout, "columns")
		if columns <= 0 {
			columns = 1
		}
		return fmt.Sprintf("display: grid; grid-template-columns: repeat(%d, 1fr); gap: 1rem", int(columns))
	case "flex":
		return fmt.Sprintf("display: flex; flex-direction: %s; gap: 1rem",
			stringProp(layout, "direction", "row"))
	default:
		return ""
	}
}

func stringProp(props map[string]any, key, fallback string) string {
	if props == nil {
		return fallback
	}
	if s, ok := props[key].(string); ok {
		return s
	}
	return fallback
}

func numProp(props map[string]any, key string) float64 {
	if props == nil {
		return 0
	}
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func anyToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

const stylesheet = `
.vd-view { font-family: system-ui, sans-serif; padding: 1rem; }
.vd-metric { text-align: center; padding: 1rem; }
.vd-metric .metric-value { font-size: 2rem; font-weight: bold; }
.vd-metric .metric-label { color: #666; }
.vd-metric .trend--up { color: #22c55e; }
.vd-metric .trend--down { color: #ef4444; }
.vd-table { width: 100%; border-collapse: collapse; }
.vd-table th, .vd-table td { padding: 0.5rem; border: 1px solid #ddd; text-align: left; }
.vd-table th { background: #f5f5f5; }
.vd-card { border: 1px solid #ddd; border-radius: 8px; padding: 1rem; }
.vd-alert { padding: 1rem; border-radius: 4px; }
.vd-alert--info { background: #e0f2fe; color: #0369a1; }
.vd-alert--success { background: #dcfce7; color: #166534; }
.vd-alert--warning { background: #fef3c7; color: #92400e; }
.vd-alert--error { background: #fee2e2; color: #991b1b; }
.vd-progress--linear .progress-bar { background: #e5e5e5; height: 8px; border-radius: 4px; }
.vd-progress--linear .progress-fill { background: #3b82f6; height: 100%; border-radius: 4px; }
`
