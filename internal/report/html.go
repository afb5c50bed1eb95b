package report

import (
	"fmt"
	"html/template"
	"os"
)

var timelineTemplate = template.Must(template.New("timeline").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Incident Timeline - {{.IncidentID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; margin: 40px; color: #1f2430; }
h1 { font-size: 22px; }
.meta { color: #667085; margin-bottom: 24px; }
.timeline { border-left: 3px solid #3b5bdb; padding-left: 24px; }
.event { position: relative; margin-bottom: 20px; }
.event::before { content: ""; position: absolute; left: -31px; top: 4px; width: 11px; height: 11px;
  border-radius: 50%; background: #3b5bdb; }
.time { font-size: 12px; color: #667085; }
.title { font-weight: 600; }
.desc { font-size: 14px; }
.source { display: inline-block; font-size: 11px; background: #eef1f8; border-radius: 4px;
  padding: 1px 6px; margin-top: 2px; }
.empty { color: #98a2b3; font-style: italic; }
</style>
</head>
<body>
<h1>Incident Timeline: {{.IncidentID}}</h1>
<div class="meta">Report {{.ReportID}} generated {{.GeneratedAt}}</div>
{{if .Events}}
<div class="timeline">
{{range .Events}}<div class="event">
<div class="time">{{.Timestamp}}</div>
<div class="title">{{.Event}}</div>
<div class="desc">{{.Description}}</div>
<span class="source">{{.Source}}</span>
{{if .URL}}<div><a href="{{.URL}}">{{.URL}}</a></div>{{end}}
</div>
{{end}}</div>
{{else}}
<p class="empty">No timeline events were recorded for this incident.</p>
{{end}}
</body>
</html>
`))

var ganttTemplate = template.Must(template.New("gantt").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Incident Gantt - {{.IncidentID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; margin: 40px; color: #1f2430; }
h1 { font-size: 22px; }
.meta { color: #667085; margin-bottom: 24px; }
.row { display: flex; align-items: center; margin-bottom: 8px; }
.label { width: 240px; font-size: 13px; }
.track { flex: 1; background: #eef1f8; border-radius: 4px; height: 18px; position: relative; }
.bar { position: absolute; height: 18px; border-radius: 4px; background: #3b5bdb; }
.bar.resolved { background: #12b76a; }
.time { width: 190px; font-size: 11px; color: #667085; padding-left: 12px; }
.empty { color: #98a2b3; font-style: italic; }
</style>
</head>
<body>
<h1>Incident Phases: {{.IncidentID}}</h1>
<div class="meta">Report {{.ReportID}} generated {{.GeneratedAt}}</div>
{{if .Rows}}
{{range .Rows}}<div class="row">
<div class="label">{{.Label}}</div>
<div class="track"><div class="bar{{if .Final}} resolved{{end}}" style="left: {{.Offset}}%; width: {{.Width}}%;"></div></div>
<div class="time">{{.Timestamp}}</div>
</div>
{{end}}
{{else}}
<p class="empty">No timeline events were recorded for this incident.</p>
{{end}}
</body>
</html>
`))

type htmlPage struct {
	IncidentID  string
	ReportID    string
	GeneratedAt string
	Events      []TimelineEvent
	Rows        []ganttRow
}

type ganttRow struct {
	Label     string
	Timestamp string
	Offset    float64
	Width     float64
	Final     bool
}

// RenderTimelineHTML writes a vertical timeline page for the incident.
func RenderTimelineHTML(doc *Document, path string) error {
	page := htmlPage{
		IncidentID:  doc.ReportMetadata.IncidentID,
		ReportID:    doc.ReportMetadata.ReportID,
		GeneratedAt: doc.ReportMetadata.GenerationTimestamp,
		Events:      doc.TimelineEvents,
	}
	return renderHTML(timelineTemplate, page, path)
}

// RenderGanttHTML writes a phase chart for the incident. Bar positions
// are proportional to event order; exact durations are shown as text.
func RenderGanttHTML(doc *Document, path string) error {
	page := htmlPage{
		IncidentID:  doc.ReportMetadata.IncidentID,
		ReportID:    doc.ReportMetadata.ReportID,
		GeneratedAt: doc.ReportMetadata.GenerationTimestamp,
		Rows:        ganttRows(doc.TimelineEvents),
	}
	return renderHTML(ganttTemplate, page, path)
}

// ganttRows spreads events evenly across the track. Each bar spans from
// its event to the next one; the last event gets a fixed-width bar.
func ganttRows(events []TimelineEvent) []ganttRow {
	n := len(events)
	if n == 0 {
		return nil
	}

	rows := make([]ganttRow, 0, n)
	step := 100.0 / float64(n)
	for i, ev := range events {
		width := step
		if i == n-1 {
			width = 100.0 - float64(i)*step
		}
		rows = append(rows, ganttRow{
			Label:     ev.Event,
			Timestamp: ev.Timestamp,
			Offset:    float64(i) * step,
			Width:     width,
			Final:     i == n-1,
		})
	}
	return rows
}

func renderHTML(tmpl *template.Template, page htmlPage, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, page); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}
