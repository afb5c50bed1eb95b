// Package pipeline runs the end-to-end incident flow: classify a log,
// persist an incident, build the retrospective report, render
// artifacts, and optionally open a fix PR and share the report to
// Slack. One run executes at a time; concurrent requests queue on the
// runner mutex.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opsmindai/opsmind/internal/alerts"
	"github.com/opsmindai/opsmind/internal/alerts/adapters"
	"github.com/opsmindai/opsmind/internal/analyzer"
	"github.com/opsmindai/opsmind/internal/artifacts"
	"github.com/opsmindai/opsmind/internal/config"
	"github.com/opsmindai/opsmind/internal/diffgen"
	"github.com/opsmindai/opsmind/internal/githubfix"
	"github.com/opsmindai/opsmind/internal/report"
	"github.com/opsmindai/opsmind/internal/slackshare"
	"github.com/opsmindai/opsmind/internal/store"
)

// PRCreator opens fix pull requests. Satisfied by githubfix.Client.
type PRCreator interface {
	CreateFixPR(ctx context.Context, repoURL, title, description string, changes map[string]string, baseBranch string) (*githubfix.PullRequestResult, error)
}

// FileSharer posts artifacts to chat. Satisfied by slackshare.Uploader.
type FileSharer interface {
	ShareFile(ctx context.Context, path, channel, title, comment string) (*slackshare.UploadResult, error)
}

// Options wire a Runner. Store, Resolver and Log are required; GitHub
// and Slack are optional integrations that degrade to warnings when
// absent or failing.
type Options struct {
	Store    *store.Store
	Resolver *artifacts.Resolver
	Config   config.Config
	Log      *logrus.Logger
	GitHub   PRCreator
	Slack    FileSharer
}

// Runner executes incident automation runs.
type Runner struct {
	mu         sync.Mutex
	store      *store.Store
	resolver   *artifacts.Resolver
	normalizer *alerts.Normalizer
	cfg        config.Config
	log        *logrus.Logger
	github     PRCreator
	slack      FileSharer
	now        func() time.Time
}

func New(opts Options) *Runner {
	return &Runner{
		store:      opts.Store,
		resolver:   opts.Resolver,
		normalizer: defaultNormalizer(),
		cfg:        opts.Config,
		log:        opts.Log,
		github:     opts.GitHub,
		slack:      opts.Slack,
		now:        time.Now,
	}
}

func defaultNormalizer() *alerts.Normalizer {
	return alerts.NewNormalizer(
		adapters.NewGenericAdapter(),
		adapters.NewGrafanaAdapter(),
		adapters.NewPagerDutyAdapter(),
		adapters.NewPrometheusAdapter(),
		adapters.NewDatadogAdapter(),
		adapters.NewNewRelicAdapter(),
	)
}

// Result is the JSON-serializable outcome of one run.
type Result struct {
	Success        bool                           `json:"success"`
	Skipped        bool                           `json:"skipped,omitempty"`
	IncidentID     string                         `json:"incident_id,omitempty"`
	Severity       string                         `json:"severity,omitempty"`
	ReportID       string                         `json:"report_id,omitempty"`
	ReportPath     string                         `json:"report_path,omitempty"`
	TimelinePath   string                         `json:"timeline_path,omitempty"`
	GanttPath      string                         `json:"gantt_path,omitempty"`
	ReportExisted  bool                           `json:"report_existed,omitempty"`
	Classification *analyzer.Classification       `json:"classification,omitempty"`
	Alert          *alerts.NormalizedAlert        `json:"alert,omitempty"`
	PullRequest    *githubfix.PullRequestResult   `json:"pull_request,omitempty"`
	SlackUpload    *slackshare.UploadResult       `json:"slack_upload,omitempty"`
	Warnings       []string                       `json:"warnings,omitempty"`
	Error          string                         `json:"error,omitempty"`
}

// Run classifies raw log content, persists a new incident and produces
// its retrospective artifacts.
func (r *Runner) Run(ctx context.Context, logContent string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	classification := analyzer.Analyze(logContent)
	service := classification.ServiceName
	if service == "" {
		service = "unknown-service"
	}

	now := r.now().UTC().Format("2006-01-02T15:04:05.000000")
	timeline := fmt.Sprintf("%s - Incident created from log classification (%s)", now, classification.ErrorType)

	fields := store.Fields{
		ServiceName: store.String(service),
		Timeline:    store.String(timeline),
	}
	if classification.Timestamp != "" {
		fields.Timestamp = store.String(classification.Timestamp)
	}
	if classification.RootCauseSummary != "" {
		fields.ResolutionDetails = store.String(classification.RootCauseSummary)
	}

	rec, err := r.store.Create("", fields)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, fmt.Errorf("failed to create incident: %w", err)
	}
	r.log.Infof("created incident %s for service %s (%s)", rec.IncidentID, service, classification.ErrorType)

	result := &Result{
		Success:        true,
		IncidentID:     rec.IncidentID,
		Severity:       rec.Severity,
		Classification: &classification,
	}

	incident := r.incidentFromClassification(rec, classification, logContent)
	if err := r.generateArtifacts(rec.IncidentID, incident, result); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, err
	}

	r.maybeCreatePR(ctx, rec, classification, result)
	r.maybeShareReport(ctx, rec.IncidentID, result)

	return result, nil
}

// RunAlert normalizes a monitoring webhook payload and, when the alert
// is severe enough, runs the incident flow for it.
func (r *Runner) RunAlert(ctx context.Context, payload []byte, sourceSystem string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, err := r.normalizer.Normalize(payload, sourceSystem, r.cfg.Thresholds)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	if !alert.ShouldCreateIncident {
		r.log.Infof("alert from %s is %s, no incident created", alert.AlertType, alert.Severity)
		return &Result{Success: true, Skipped: true, Alert: &alert}, nil
	}

	now := r.now().UTC().Format("2006-01-02T15:04:05.000000")
	timeline := fmt.Sprintf("%s - %s alert received (%s, value %.2f)",
		now, alert.AlertType, alert.Severity, alert.MetricValue)

	rec, err := r.store.Create("", store.Fields{
		ServiceName: store.String(alert.ServiceName),
		Severity:    store.String(severityFromPriority(alert.Severity)),
		Timestamp:   store.String(alert.Timestamp),
		Timeline:    store.String(timeline),
	})
	if err != nil {
		return &Result{Success: false, Error: err.Error(), Alert: &alert}, fmt.Errorf("failed to create incident: %w", err)
	}
	r.log.Infof("created incident %s from %s alert (%s)", rec.IncidentID, alert.AlertType, alert.Severity)

	result := &Result{
		Success:    true,
		IncidentID: rec.IncidentID,
		Severity:   rec.Severity,
		Alert:      &alert,
	}

	incident := report.FromRecord(rec)
	incident.Title = fmt.Sprintf("%s on %s", alert.AlertType, alert.ServiceName)
	incident.Description = alert.RawMessage
	incident.Priority = alert.Severity
	incident.IncidentType = alert.AlertType
	incident.MonitoringAlerts = []string{alert.RawMessage}

	if err := r.generateArtifacts(rec.IncidentID, incident, result); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, err
	}

	r.maybeShareReport(ctx, rec.IncidentID, result)
	return result, nil
}

// Replay regenerates retrospective artifacts for an existing incident.
func (r *Runner) Replay(ctx context.Context, incidentID string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.Read(incidentID)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	result := &Result{
		Success:    true,
		IncidentID: rec.IncidentID,
		Severity:   rec.Severity,
	}
	if err := r.generateArtifacts(rec.IncidentID, report.FromRecord(rec), result); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, err
	}
	return result, nil
}

// Document builds the retrospective document for an incident without
// touching the artifact directory.
func (r *Runner) Document(incidentID string) (*report.Document, error) {
	rec, err := r.store.Read(incidentID)
	if err != nil {
		return nil, err
	}
	return report.Build(report.FromRecord(rec), nil, nil, nil), nil
}

// incidentFromClassification enriches the stored record with what the
// analyzer found in the log.
func (r *Runner) incidentFromClassification(rec *store.IncidentRecord, c analyzer.Classification, logContent string) report.IncidentData {
	incident := report.FromRecord(rec)
	incident.Title = fmt.Sprintf("%s in %s", c.ErrorType, rec.ServiceName)
	incident.Description = c.RootCauseSummary
	incident.RootCause = c.RootCauseSummary
	incident.IncidentType = c.ErrorType

	if c.ClassName != "" || c.MethodName != "" {
		location := c.ClassName
		if c.MethodName != "" {
			location += "." + c.MethodName
		}
		if c.LineNumber > 0 {
			location += fmt.Sprintf(":%d", c.LineNumber)
		}
		incident.FailurePoint = location
	}

	incident.LogsAnalysis = fmt.Sprintf("Log format %s, suggested fix type %s", c.LogFormat, c.SuggestedFixType)
	incident.ErrorLogs = []string{truncateLog(logContent, 2000)}
	return incident
}

// generateArtifacts builds the report document and renders the PDF and
// HTML artifacts, skipping the PDF when one already exists.
func (r *Runner) generateArtifacts(incidentID string, incident report.IncidentData, result *Result) error {
	doc := report.Build(incident, nil, nil, nil)
	result.ReportID = doc.ReportMetadata.ReportID

	if _, err := r.resolver.EnsureDir(incidentID); err != nil {
		return err
	}

	if existing, ok := r.resolver.Exists(incidentID, artifacts.KindCOEReport); ok {
		r.log.Infof("report for %s already exists (%d bytes), skipping PDF render", incidentID, existing.Size)
		result.ReportPath = existing.Path
		result.ReportExisted = true
	} else {
		pdfPath := r.resolver.Path(incidentID, artifacts.KindCOEReport)
		if err := report.RenderPDF(doc, pdfPath); err != nil {
			return err
		}
		result.ReportPath = pdfPath
	}

	timelinePath := r.resolver.Path(incidentID, artifacts.KindTimeline)
	if err := report.RenderTimelineHTML(doc, timelinePath); err != nil {
		return err
	}
	result.TimelinePath = timelinePath

	ganttPath := r.resolver.Path(incidentID, artifacts.KindGantt)
	if err := report.RenderGanttHTML(doc, ganttPath); err != nil {
		return err
	}
	result.GanttPath = ganttPath

	return nil
}

// maybeCreatePR opens an advisory fix PR when a GitHub client and a
// target repository are configured and the classification points at a
// code fix. Failures degrade to warnings.
func (r *Runner) maybeCreatePR(ctx context.Context, rec *store.IncidentRecord, c analyzer.Classification, result *Result) {
	if r.github == nil || r.cfg.RepositoryURL == "" || c.SuggestedFixType != "code" {
		return
	}

	filePath := c.FilePath
	if filePath == "" {
		className := c.ClassName
		if className == "" {
			className = "Application"
		}
		filePath = fmt.Sprintf("src/%s.java", className)
	}

	summary := c.RootCauseSummary
	if summary == "" {
		summary = c.ErrorType
	}
	analysis := fmt.Sprintf("%s in class %s method %s at line %d",
		summary, c.ClassName, c.MethodName, c.LineNumber)
	diff := diffgen.Generate(analysis, filePath, languageFor(c.ErrorType))

	title := fmt.Sprintf("Fix %s in %s", c.ErrorType, rec.ServiceName)
	description := fmt.Sprintf(
		"## Root Cause Analysis\n\nIncident: %s\nService: %s\nError type: %s\n\n%s\n\nProposed patch is advisory and must be reviewed before applying.",
		rec.IncidentID, rec.ServiceName, c.ErrorType, summary)
	changes := map[string]string{
		fmt.Sprintf("fixes/%s/proposed_fix.diff", rec.IncidentID): diff,
	}

	pr, err := r.github.CreateFixPR(ctx, r.cfg.RepositoryURL, title, description, changes, r.cfg.BaseBranch)
	if err != nil {
		r.log.Warnf("fix PR for %s failed: %v", rec.IncidentID, err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("fix PR failed: %v", err))
		return
	}
	result.PullRequest = pr
}

// maybeShareReport uploads the PDF to the configured Slack channel.
// Failures degrade to warnings.
func (r *Runner) maybeShareReport(ctx context.Context, incidentID string, result *Result) {
	if r.slack == nil || r.cfg.SlackChannel == "" || result.ReportPath == "" {
		return
	}

	title := fmt.Sprintf("Incident Retrospective %s", incidentID)
	comment := fmt.Sprintf("Retrospective report for %s is ready.", incidentID)
	upload, err := r.slack.ShareFile(ctx, result.ReportPath, r.cfg.SlackChannel, title, comment)
	if err != nil {
		r.log.Warnf("Slack upload for %s failed: %v", incidentID, err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("slack upload failed: %v", err))
		return
	}
	result.SlackUpload = upload
}

// severityFromPriority maps alert priorities onto stored severities.
func severityFromPriority(priority string) string {
	switch priority {
	case "P1":
		return store.SeverityCritical
	case "P2":
		return store.SeverityHigh
	case "P3":
		return store.SeverityMedium
	default:
		return store.SeverityLow
	}
}

// languageFor picks the diff template language from the error type
// prefix assigned by the analyzer.
func languageFor(errorType string) string {
	switch {
	case strings.HasPrefix(errorType, "python"):
		return "python"
	case strings.HasPrefix(errorType, "nodejs"):
		return "javascript"
	default:
		return "java"
	}
}

func truncateLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
