package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Section order for the rendered correction-of-error document.
var tocEntries = []string{
	"Executive Summary",
	"Incident Details",
	"Timeline of Events",
	"Root Cause Analysis",
	"Resolution Actions",
	"Impact Assessment",
	"Response Team",
	"Lessons Learned",
	"Key Metrics",
	"Technical Appendix",
}

// RenderPDF writes the retrospective document as a PDF to path. The
// parent directory must already exist.
func RenderPDF(doc *Document, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title(), false)
	pdf.SetAutoPageBreak(true, 20)

	renderTitlePage(pdf, doc)
	renderTableOfContents(pdf)
	renderExecutiveSummary(pdf, doc)
	renderIncidentDetails(pdf, doc)
	renderTimeline(pdf, doc)
	renderRootCause(pdf, doc)
	renderResolutionActions(pdf, doc)
	renderImpactAssessment(pdf, doc)
	renderResponseTeam(pdf, doc)
	renderLessonsLearned(pdf, doc)
	renderKeyMetrics(pdf, doc)
	renderTechnicalAppendix(pdf, doc)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF to %s: %w", path, err)
	}
	return nil
}

func renderTitlePage(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	pdf.Ln(40)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 12, "Correction of Error Report", "", "C", false)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 16)
	pdf.MultiCell(0, 10, doc.ReportMetadata.IncidentID, "", "C", false)
	pdf.Ln(20)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 7, fmt.Sprintf("Report ID: %s", doc.ReportMetadata.ReportID), "", "C", false)
	pdf.MultiCell(0, 7, fmt.Sprintf("Generated: %s", doc.ReportMetadata.GenerationTimestamp), "", "C", false)
	pdf.MultiCell(0, 7, fmt.Sprintf("Severity: %s", doc.ExecutiveSummary.Severity), "", "C", false)
	pdf.MultiCell(0, 7, fmt.Sprintf("Status: %s", doc.ExecutiveSummary.Status), "", "C", false)
}

func renderTableOfContents(pdf *fpdf.Fpdf) {
	pdf.AddPage()
	sectionHeading(pdf, "Table of Contents")
	pdf.SetFont("Helvetica", "", 11)
	for i, entry := range tocEntries {
		pdf.MultiCell(0, 7, fmt.Sprintf("%d. %s", i+1, entry), "", "L", false)
	}
}

func renderExecutiveSummary(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "1. Executive Summary")
	s := doc.ExecutiveSummary
	keyValueRow(pdf, "Incident ID", s.IncidentID)
	keyValueRow(pdf, "Severity", s.Severity)
	keyValueRow(pdf, "Priority", s.Priority)
	keyValueRow(pdf, "Status", s.Status)
	keyValueRow(pdf, "Total Duration (hours)", s.TotalDurationHours)
	keyValueRow(pdf, "First Response (minutes)", s.FirstResponseTimeMinutes)
	keyValueRow(pdf, "Affected Systems", fmt.Sprintf("%d", s.AffectedSystemsCount))
	keyValueRow(pdf, "Affected Users", fmt.Sprintf("%d", s.AffectedUsersCount))
	keyValueRow(pdf, "Resolution Method", s.ResolutionMethod)
	pdf.Ln(4)
	bodyText(pdf, s.BriefDescription)
}

func renderIncidentDetails(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "2. Incident Details")
	d := doc.IncidentDetails
	keyValueRow(pdf, "Incident ID", d.IncidentID)
	keyValueRow(pdf, "Title", orDefault(d.Title, "N/A"))
	keyValueRow(pdf, "Service", orDefault(d.ServiceName, "N/A"))
	keyValueRow(pdf, "Severity", d.Severity)
	keyValueRow(pdf, "Status", d.Status)
	keyValueRow(pdf, "Created At", orDefault(d.CreatedAt, "N/A"))
	keyValueRow(pdf, "Resolved At", orDefault(d.ResolvedAt, "N/A"))
	keyValueRow(pdf, "Reporter", orDefault(d.Reporter, "N/A"))
	keyValueRow(pdf, "Assigned To", orDefault(d.AssignedTo, "N/A"))
	if len(d.Tags) > 0 {
		keyValueRow(pdf, "Tags", strings.Join(d.Tags, ", "))
	}
	if d.Description != "" {
		pdf.Ln(4)
		bodyText(pdf, d.Description)
	}
}

func renderTimeline(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "3. Timeline of Events")

	if len(doc.TimelineEvents) == 0 {
		bodyText(pdf, "No timeline events were recorded for this incident.")
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 8, "Timestamp", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Event", "1", 0, "L", true, 0, "")
	pdf.CellFormat(80, 8, "Description", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	events := doc.TimelineEvents
	if len(events) > 10 {
		events = events[:10]
	}
	for _, ev := range events {
		pdf.CellFormat(60, 7, truncate(ev.Timestamp, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, truncate(ev.Event, 28), "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, truncate(ev.Description, 48), "1", 1, "L", false, 0, "")
	}
	if len(doc.TimelineEvents) > 10 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 6, fmt.Sprintf("(%d additional events omitted)", len(doc.TimelineEvents)-10), "", "L", false)
	}
}

func renderRootCause(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "4. Root Cause Analysis")
	r := doc.RootCauseAnalysis
	subHeading(pdf, "Primary Cause")
	bodyText(pdf, r.PrimaryCause)
	subHeading(pdf, "Failure Point")
	bodyText(pdf, r.FailurePoint)
	subHeading(pdf, "Logs Analysis")
	bodyText(pdf, r.LogsAnalysis)
	subHeading(pdf, "Technical Details")
	bodyText(pdf, r.TechnicalDetails)
	if len(r.ContributingFactors) > 0 {
		subHeading(pdf, "Contributing Factors")
		bulletList(pdf, r.ContributingFactors)
	}
	if len(r.WhyAnalysis) > 0 {
		subHeading(pdf, "Five Whys")
		bulletList(pdf, r.WhyAnalysis)
	}
}

func renderResolutionActions(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "5. Resolution Actions")
	a := doc.ResolutionActions

	if len(a.ImmediateActions) > 0 {
		subHeading(pdf, "Immediate Actions")
		bulletList(pdf, a.ImmediateActions)
	}
	if len(a.ManualSteps) > 0 {
		subHeading(pdf, "Manual Steps")
		bulletList(pdf, a.ManualSteps)
	}
	if len(a.CodeChanges) > 0 {
		subHeading(pdf, "Code Changes")
		for _, c := range a.CodeChanges {
			bodyText(pdf, fmt.Sprintf("%s (%s): %s", c.Type, c.Status, c.Title))
			if c.URL != "" {
				bodyText(pdf, c.URL)
			}
		}
	}
	if len(a.Documentation) > 0 {
		subHeading(pdf, "Documentation")
		for _, d := range a.Documentation {
			bodyText(pdf, fmt.Sprintf("%s: %s", d.Type, d.Title))
			if d.URL != "" {
				bodyText(pdf, d.URL)
			}
		}
	}
	if len(a.PreventiveMeasures) > 0 {
		subHeading(pdf, "Preventive Measures")
		bulletList(pdf, a.PreventiveMeasures)
	}
}

func renderImpactAssessment(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "6. Impact Assessment")
	i := doc.ImpactAssessment
	keyValueRow(pdf, "Duration (minutes)", fmt.Sprintf("%d", i.DurationMinutes))
	keyValueRow(pdf, "Duration (hours)", fmt.Sprintf("%.2f", i.DurationHours))
	keyValueRow(pdf, "Affected Users", fmt.Sprintf("%d", i.AffectedUsersCount))
	keyValueRow(pdf, "Customer Complaints", fmt.Sprintf("%d", i.CustomerComplaints))
	keyValueRow(pdf, "SLA Breach", fmt.Sprintf("%t", i.SLABreach))
	keyValueRow(pdf, "Impact Level", i.ImpactLevel)
	keyValueRow(pdf, "Business Impact", i.BusinessImpact)
	keyValueRow(pdf, "Financial Impact", i.FinancialImpact)
	if len(i.AffectedSystems) > 0 {
		subHeading(pdf, "Affected Systems")
		bulletList(pdf, i.AffectedSystems)
	}
}

func renderResponseTeam(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "7. Response Team")
	t := doc.ResponseTeam
	keyValueRow(pdf, "Incident Commander", orDefault(t.IncidentCommander, "N/A"))
	keyValueRow(pdf, "Communication Lead", orDefault(t.CommunicationLead, "N/A"))
	if t.SlackChannel != "" {
		keyValueRow(pdf, "Slack Channel", t.SlackChannel)
	}
	if len(t.AssignedEngineers) > 0 {
		subHeading(pdf, "Assigned Engineers")
		bulletList(pdf, t.AssignedEngineers)
	}
	if len(t.EscalatedTo) > 0 {
		subHeading(pdf, "Escalated To")
		bulletList(pdf, t.EscalatedTo)
	}
	if len(t.SlackParticipants) > 0 {
		subHeading(pdf, "Chat Participants")
		bulletList(pdf, t.SlackParticipants)
	}
}

func renderLessonsLearned(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "8. Lessons Learned")
	l := doc.LessonsLearned

	sections := []struct {
		title string
		items []string
	}{
		{"What Went Well", l.WhatWentWell},
		{"What Could Be Improved", l.WhatCouldBeImproved},
		{"Action Items", l.ActionItems},
		{"Prevention Recommendations", l.PreventionRecommendations},
		{"Process Improvements", l.ProcessImprovements},
		{"Monitoring Enhancements", l.MonitoringEnhancements},
		{"Training Needs", l.TrainingNeeds},
	}

	wrote := false
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		wrote = true
		subHeading(pdf, s.title)
		bulletList(pdf, s.items)
	}
	if !wrote {
		bodyText(pdf, "Lessons learned have not been captured yet.")
	}
}

func renderKeyMetrics(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "9. Key Metrics")
	m := doc.KeyMetrics

	duration := "N/A"
	if m.TotalIncidentDurationMinutes != nil {
		duration = fmt.Sprintf("%d minutes", *m.TotalIncidentDurationMinutes)
	}
	firstResponse := "N/A"
	if m.FirstResponseTimeMinutes != nil {
		firstResponse = fmt.Sprintf("%d minutes", *m.FirstResponseTimeMinutes)
	}
	team := "N/A"
	if m.TeamMembersInvolved != nil {
		team = fmt.Sprintf("%d", *m.TeamMembersInvolved)
	}

	keyValueRow(pdf, "Total Duration", duration)
	keyValueRow(pdf, "First Response Time", firstResponse)
	keyValueRow(pdf, "Resolution Method", m.ResolutionMethod)
	keyValueRow(pdf, "Affected Systems", fmt.Sprintf("%d", m.AffectedSystems))
	keyValueRow(pdf, "Affected Users", fmt.Sprintf("%d", m.AffectedUsers))
	keyValueRow(pdf, "Team Members Involved", team)
}

func renderTechnicalAppendix(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	sectionHeading(pdf, "10. Technical Appendix")
	a := doc.TechnicalAppendix

	if len(a.ErrorLogs) > 0 {
		subHeading(pdf, "Error Logs")
		pdf.SetFont("Courier", "", 8)
		for _, log := range a.ErrorLogs {
			pdf.MultiCell(0, 5, truncate(log, 500), "", "L", false)
		}
	}
	if len(a.ConfigurationChanges) > 0 {
		subHeading(pdf, "Configuration Changes")
		bulletList(pdf, a.ConfigurationChanges)
	}
	if len(a.MonitoringAlerts) > 0 {
		subHeading(pdf, "Monitoring Alerts")
		bulletList(pdf, a.MonitoringAlerts)
	}
	if len(a.ExternalReferences) > 0 {
		subHeading(pdf, "External References")
		for _, ref := range a.ExternalReferences {
			label := ref.Type
			if ref.Title != "" {
				label += ": " + ref.Title
			}
			if ref.Channel != "" {
				label += ": " + ref.Channel
			}
			bodyText(pdf, label)
			if ref.URL != "" {
				bodyText(pdf, ref.URL)
			}
		}
	}
}

func sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(30, 30, 90)
	pdf.MultiCell(0, 9, title, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func subHeading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 7, title, "", "L", false)
}

func bodyText(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func bulletList(pdf *fpdf.Fpdf, items []string) {
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.MultiCell(0, 6, "- "+item, "", "L", false)
	}
}

func keyValueRow(pdf *fpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 7, value, "", "L", false)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
