// Package report builds structured incident retrospective documents
// and renders them as PDF and HTML artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsmindai/opsmind/internal/store"
)

// IncidentData is the incident context a retrospective is built from.
// Every field is optional; the builder substitutes safe defaults.
type IncidentData struct {
	IncidentID        string
	Title             string
	Description       string
	ServiceName       string
	Severity          string
	Priority          string
	Status            string
	IncidentType      string
	CreatedAt         string
	ResolvedAt        string
	FirstResponseAt   string
	Reporter          string
	AssignedTo        string
	IncidentCommander string
	CommunicationLead string
	PlaybookApplied   string
	Timeline          string
	ResolutionDetails string
	Tags              []string

	RootCause           string
	ContributingFactors []string
	FailurePoint        string
	LogsAnalysis        string
	TechnicalDetails    string
	FiveWhys            []string

	ImmediateActions   []string
	ManualSteps        []string
	PreventiveMeasures []string

	AffectedSystems    []string
	AffectedUsersCount int
	BusinessImpact     string
	FinancialImpact    string
	CustomerComplaints int
	SLABreach          bool
	ImpactLevel        string

	AssignedEngineers []string
	EscalatedTo       []string
	ExternalContacts  []string

	WhatWentWell              []string
	WhatCouldBeImproved       []string
	ActionItems               []string
	PreventionRecommendations []string
	ProcessImprovements       []string
	MonitoringEnhancements    []string
	TrainingNeeds             []string

	ErrorLogs            []string
	SystemMetrics        map[string]any
	ConfigurationChanges []string
	MonitoringAlerts     []string
}

// FromRecord maps a stored incident record into report input.
func FromRecord(rec *store.IncidentRecord) IncidentData {
	return IncidentData{
		IncidentID:        rec.IncidentID,
		ServiceName:       rec.ServiceName,
		Severity:          rec.Severity,
		Status:            rec.Status,
		CreatedAt:         rec.CreatedAt,
		ResolvedAt:        rec.ResolvedAt,
		FirstResponseAt:   rec.FirstResponseAt,
		IncidentCommander: rec.Commander,
		CommunicationLead: rec.CommunicationLead,
		PlaybookApplied:   rec.PlaybookApplied,
		Timeline:          rec.Timeline,
		ResolutionDetails: rec.ResolutionDetails,
	}
}

// PRDetails describes a fix pull request linked to the incident.
type PRDetails struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	HTMLURL      string `json:"html_url"`
	CreatedAt    string `json:"created_at"`
	MergedAt     string `json:"merged_at"`
	ChangedFiles int    `json:"changed_files"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
}

// DocDetails describes an external documentation page for the incident.
type DocDetails struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// ChatDetails describes the incident chat channel.
type ChatDetails struct {
	Channel      string   `json:"channel"`
	Participants []string `json:"participants"`
	Messages     []string `json:"messages"`
}

// Document is the complete retrospective report.
type Document struct {
	ReportMetadata    Metadata          `json:"report_metadata"`
	ExecutiveSummary  ExecutiveSummary  `json:"executive_summary"`
	IncidentDetails   IncidentDetails   `json:"incident_details"`
	TimelineEvents    []TimelineEvent   `json:"timeline_events"`
	RootCauseAnalysis RootCauseAnalysis `json:"root_cause_analysis"`
	ResolutionActions ResolutionActions `json:"resolution_actions"`
	ImpactAssessment  ImpactAssessment  `json:"impact_assessment"`
	ResponseTeam      ResponseTeam      `json:"response_team"`
	LessonsLearned    LessonsLearned    `json:"lessons_learned"`
	TechnicalAppendix TechnicalAppendix `json:"technical_appendix"`
	KeyMetrics        Metrics           `json:"key_metrics"`
}

// Metadata identifies one generated report.
type Metadata struct {
	ReportID            string `json:"report_id"`
	GenerationTimestamp string `json:"generation_timestamp"`
	IncidentID          string `json:"incident_id"`
	ReportVersion       string `json:"report_version"`
}

// ExecutiveSummary is the at-a-glance view for leadership.
type ExecutiveSummary struct {
	IncidentID               string `json:"incident_id"`
	Severity                 string `json:"severity"`
	Priority                 string `json:"priority"`
	Status                   string `json:"status"`
	TotalDurationHours       string `json:"total_duration_hours"`
	FirstResponseTimeMinutes string `json:"first_response_time_minutes"`
	AffectedSystemsCount     int    `json:"affected_systems_count"`
	AffectedUsersCount       int    `json:"affected_users_count"`
	ResolutionMethod         string `json:"resolution_method"`
	BriefDescription         string `json:"brief_description"`
}

// IncidentDetails restates the core incident fields.
type IncidentDetails struct {
	IncidentID   string   `json:"incident_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ServiceName  string   `json:"service_name"`
	Severity     string   `json:"severity"`
	Priority     string   `json:"priority"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"created_at"`
	ResolvedAt   string   `json:"resolved_at"`
	Reporter     string   `json:"reporter"`
	AssignedTo   string   `json:"assigned_to"`
	Tags         []string `json:"tags"`
	IncidentType string   `json:"incident_type"`
}

// RootCauseAnalysis collects causal findings.
type RootCauseAnalysis struct {
	PrimaryCause        string   `json:"primary_cause"`
	ContributingFactors []string `json:"contributing_factors"`
	FailurePoint        string   `json:"failure_point"`
	LogsAnalysis        string   `json:"logs_analysis"`
	TechnicalDetails    string   `json:"technical_details"`
	WhyAnalysis         []string `json:"why_analysis"`
}

// CodeChange references a pull request made for the incident.
type CodeChange struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	FilesChanged int    `json:"files_changed"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
}

// DocReference references a documentation page.
type DocReference struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// ResolutionActions lists everything done to resolve the incident.
type ResolutionActions struct {
	ImmediateActions   []string       `json:"immediate_actions"`
	ManualSteps        []string       `json:"manual_steps"`
	CodeChanges        []CodeChange   `json:"code_changes"`
	Documentation      []DocReference `json:"documentation"`
	PreventiveMeasures []string       `json:"preventive_measures"`
}

// ImpactAssessment quantifies the blast radius.
type ImpactAssessment struct {
	DurationMinutes    int      `json:"duration_minutes"`
	DurationHours      float64  `json:"duration_hours"`
	AffectedSystems    []string `json:"affected_systems"`
	AffectedUsersCount int      `json:"affected_users_count"`
	BusinessImpact     string   `json:"business_impact"`
	FinancialImpact    string   `json:"financial_impact"`
	CustomerComplaints int      `json:"customer_complaints"`
	SLABreach          bool     `json:"sla_breach"`
	ImpactLevel        string   `json:"impact_level"`
}

// ResponseTeam records who responded.
type ResponseTeam struct {
	IncidentCommander string   `json:"incident_commander"`
	CommunicationLead string   `json:"communication_lead"`
	AssignedEngineers []string `json:"assigned_engineers"`
	EscalatedTo       []string `json:"escalated_to"`
	ExternalContacts  []string `json:"external_contacts"`
	SlackParticipants []string `json:"slack_participants,omitempty"`
	SlackChannel      string   `json:"slack_channel,omitempty"`
}

// LessonsLearned collects the retrospective outcomes.
type LessonsLearned struct {
	WhatWentWell              []string `json:"what_went_well"`
	WhatCouldBeImproved       []string `json:"what_could_be_improved"`
	ActionItems               []string `json:"action_items"`
	PreventionRecommendations []string `json:"prevention_recommendations"`
	ProcessImprovements       []string `json:"process_improvements"`
	MonitoringEnhancements    []string `json:"monitoring_enhancements"`
	TrainingNeeds             []string `json:"training_needs"`
}

// ExternalReference is a pointer into another system.
type ExternalReference struct {
	Type         string `json:"type"`
	URL          string `json:"url,omitempty"`
	Title        string `json:"title,omitempty"`
	Channel      string `json:"channel,omitempty"`
	MessageCount int    `json:"message_count,omitempty"`
}

// TechnicalAppendix carries raw supporting data.
type TechnicalAppendix struct {
	ErrorLogs            []string            `json:"error_logs"`
	SystemMetrics        map[string]any      `json:"system_metrics"`
	ConfigurationChanges []string            `json:"configuration_changes"`
	MonitoringAlerts     []string            `json:"monitoring_alerts"`
	ExternalReferences   []ExternalReference `json:"external_references"`
}

// Build assembles a retrospective document from the incident context.
// PR, documentation and chat details are optional. Missing fields fall
// back to safe defaults; Build never fails on incomplete input.
func Build(incident IncidentData, pr *PRDetails, doc *DocDetails, chat *ChatDetails) *Document {
	now := time.Now()
	metrics := calculateMetrics(incident, pr, doc, chat)

	return &Document{
		ReportMetadata: Metadata{
			ReportID:            now.Format("INC-RETRO-20060102-150405"),
			GenerationTimestamp: now.Format("2006-01-02T15:04:05.000000"),
			IncidentID:          orDefault(incident.IncidentID, "N/A"),
			ReportVersion:       "1.0",
		},
		ExecutiveSummary:  buildExecutiveSummary(incident, metrics),
		IncidentDetails:   buildIncidentDetails(incident),
		TimelineEvents:    buildTimeline(incident, pr, doc),
		RootCauseAnalysis: buildRootCauseAnalysis(incident),
		ResolutionActions: buildResolutionActions(incident, pr, doc),
		ImpactAssessment:  buildImpactAssessment(incident, metrics),
		ResponseTeam:      buildResponseTeam(incident, chat),
		LessonsLearned:    buildLessonsLearned(incident),
		TechnicalAppendix: buildTechnicalAppendix(incident, pr, doc, chat),
		KeyMetrics:        metrics,
	}
}

// JSON renders the document as pretty-printed JSON.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// Title is the human-facing report title.
func (d *Document) Title() string {
	return fmt.Sprintf("Incident Retrospective Report - %s", d.ReportMetadata.IncidentID)
}

func buildExecutiveSummary(incident IncidentData, metrics Metrics) ExecutiveSummary {
	totalHours := "N/A"
	if metrics.TotalIncidentDurationHours != nil {
		totalHours = fmt.Sprintf("%.2f", *metrics.TotalIncidentDurationHours)
	}
	firstResponse := "N/A"
	if metrics.FirstResponseTimeMinutes != nil {
		firstResponse = fmt.Sprintf("%d", *metrics.FirstResponseTimeMinutes)
	}

	return ExecutiveSummary{
		IncidentID:               orDefault(incident.IncidentID, "N/A"),
		Severity:                 orDefault(incident.Severity, "Unknown"),
		Priority:                 orDefault(incident.Priority, "Unknown"),
		Status:                   orDefault(incident.Status, "Unknown"),
		TotalDurationHours:       totalHours,
		FirstResponseTimeMinutes: firstResponse,
		AffectedSystemsCount:     metrics.AffectedSystems,
		AffectedUsersCount:       metrics.AffectedUsers,
		ResolutionMethod:         metrics.ResolutionMethod,
		BriefDescription:         briefDescription(incident.Description),
	}
}

func briefDescription(description string) string {
	if description == "" {
		description = "No description provided"
	}
	if len(description) > 200 {
		description = description[:200]
	}
	return description + "..."
}

func buildIncidentDetails(incident IncidentData) IncidentDetails {
	return IncidentDetails{
		IncidentID:   incident.IncidentID,
		Title:        incident.Title,
		Description:  incident.Description,
		ServiceName:  incident.ServiceName,
		Severity:     incident.Severity,
		Priority:     incident.Priority,
		Status:       incident.Status,
		CreatedAt:    incident.CreatedAt,
		ResolvedAt:   incident.ResolvedAt,
		Reporter:     incident.Reporter,
		AssignedTo:   incident.AssignedTo,
		Tags:         emptyIfNil(incident.Tags),
		IncidentType: incident.IncidentType,
	}
}

func buildRootCauseAnalysis(incident IncidentData) RootCauseAnalysis {
	return RootCauseAnalysis{
		PrimaryCause:        orDefault(incident.RootCause, "Investigation ongoing"),
		ContributingFactors: emptyIfNil(incident.ContributingFactors),
		FailurePoint:        orDefault(incident.FailurePoint, "Unknown"),
		LogsAnalysis:        orDefault(incident.LogsAnalysis, "No logs analysis available"),
		TechnicalDetails:    orDefault(incident.TechnicalDetails, "No technical details provided"),
		WhyAnalysis:         emptyIfNil(incident.FiveWhys),
	}
}

func buildResolutionActions(incident IncidentData, pr *PRDetails, doc *DocDetails) ResolutionActions {
	actions := ResolutionActions{
		ImmediateActions:   emptyIfNil(incident.ImmediateActions),
		ManualSteps:        emptyIfNil(incident.ManualSteps),
		CodeChanges:        []CodeChange{},
		Documentation:      []DocReference{},
		PreventiveMeasures: emptyIfNil(incident.PreventiveMeasures),
	}

	if pr != nil {
		status := "Open"
		if pr.MergedAt != "" {
			status = "Merged"
		}
		actions.CodeChanges = append(actions.CodeChanges, CodeChange{
			Type:         "Pull Request",
			Title:        orDefault(pr.Title, "N/A"),
			URL:          pr.HTMLURL,
			Status:       status,
			FilesChanged: pr.ChangedFiles,
			Additions:    pr.Additions,
			Deletions:    pr.Deletions,
		})
	}

	if doc != nil {
		actions.Documentation = append(actions.Documentation, DocReference{
			Type:      "Documentation Page",
			Title:     orDefault(doc.Title, "N/A"),
			URL:       doc.URL,
			CreatedAt: doc.CreatedAt,
		})
	}

	return actions
}

func buildImpactAssessment(incident IncidentData, metrics Metrics) ImpactAssessment {
	assessment := ImpactAssessment{
		AffectedSystems:    emptyIfNil(incident.AffectedSystems),
		AffectedUsersCount: incident.AffectedUsersCount,
		BusinessImpact:     orDefault(incident.BusinessImpact, "Unknown"),
		FinancialImpact:    orDefault(incident.FinancialImpact, "Not calculated"),
		CustomerComplaints: incident.CustomerComplaints,
		SLABreach:          incident.SLABreach,
		ImpactLevel:        orDefault(incident.ImpactLevel, "Unknown"),
	}
	if metrics.TotalIncidentDurationMinutes != nil {
		assessment.DurationMinutes = *metrics.TotalIncidentDurationMinutes
	}
	if metrics.TotalIncidentDurationHours != nil {
		assessment.DurationHours = *metrics.TotalIncidentDurationHours
	}
	return assessment
}

func buildResponseTeam(incident IncidentData, chat *ChatDetails) ResponseTeam {
	team := ResponseTeam{
		IncidentCommander: incident.IncidentCommander,
		CommunicationLead: incident.CommunicationLead,
		AssignedEngineers: emptyIfNil(incident.AssignedEngineers),
		EscalatedTo:       emptyIfNil(incident.EscalatedTo),
		ExternalContacts:  emptyIfNil(incident.ExternalContacts),
	}
	if chat != nil {
		team.SlackParticipants = uniqueStrings(chat.Participants)
		team.SlackChannel = chat.Channel
	}
	return team
}

func buildLessonsLearned(incident IncidentData) LessonsLearned {
	return LessonsLearned{
		WhatWentWell:              emptyIfNil(incident.WhatWentWell),
		WhatCouldBeImproved:       emptyIfNil(incident.WhatCouldBeImproved),
		ActionItems:               emptyIfNil(incident.ActionItems),
		PreventionRecommendations: emptyIfNil(incident.PreventionRecommendations),
		ProcessImprovements:       emptyIfNil(incident.ProcessImprovements),
		MonitoringEnhancements:    emptyIfNil(incident.MonitoringEnhancements),
		TrainingNeeds:             emptyIfNil(incident.TrainingNeeds),
	}
}

func buildTechnicalAppendix(incident IncidentData, pr *PRDetails, doc *DocDetails, chat *ChatDetails) TechnicalAppendix {
	appendix := TechnicalAppendix{
		ErrorLogs:            emptyIfNil(incident.ErrorLogs),
		SystemMetrics:        incident.SystemMetrics,
		ConfigurationChanges: emptyIfNil(incident.ConfigurationChanges),
		MonitoringAlerts:     emptyIfNil(incident.MonitoringAlerts),
		ExternalReferences:   []ExternalReference{},
	}
	if appendix.SystemMetrics == nil {
		appendix.SystemMetrics = map[string]any{}
	}

	if pr != nil && pr.HTMLURL != "" {
		appendix.ExternalReferences = append(appendix.ExternalReferences, ExternalReference{
			Type:  "GitHub PR",
			URL:   pr.HTMLURL,
			Title: orDefault(pr.Title, "Fix PR"),
		})
	}
	if doc != nil && doc.URL != "" {
		appendix.ExternalReferences = append(appendix.ExternalReferences, ExternalReference{
			Type:  "Documentation",
			URL:   doc.URL,
			Title: orDefault(doc.Title, "Incident Documentation"),
		})
	}
	if chat != nil && chat.Channel != "" {
		appendix.ExternalReferences = append(appendix.ExternalReferences, ExternalReference{
			Type:         "Slack Channel",
			Channel:      chat.Channel,
			MessageCount: len(chat.Messages),
		})
	}

	return appendix
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
