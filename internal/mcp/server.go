// Package mcp provides an MCP (Model Context Protocol) server that lets AI
// assistants file work updates, answer follow-up questions and request
// weekly reports on a user's behalf.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/dlog/internal/core"
	"github.com/valter-silva-au/dlog/internal/observability"
	"github.com/valter-silva-au/dlog/pkg/models"
)

// Server wraps the dlog controllers and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	submitter   *core.SubmissionOrchestrator
	reports     *core.ReportController
	metricsCalc observability.MetricsCalculator
	reminders   observability.ReminderEngine
	defaultUser string
}

// NewServer creates a new MCP server. metricsCalc and reminders may be nil
// when the event log is unavailable. defaultUser fills in a missing user_id.
func NewServer(submitter *core.SubmissionOrchestrator, reports *core.ReportController, metricsCalc observability.MetricsCalculator, reminders observability.ReminderEngine, defaultUser, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		submitter:   submitter,
		reports:     reports,
		metricsCalc: metricsCalc,
		reminders:   reminders,
		defaultUser: strings.TrimSpace(defaultUser),
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "dlog", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type workUpdateInput struct {
	UserID   string `json:"user_id,omitempty" jsonschema:"the user identifier; defaults to the configured user"`
	Status   string `json:"status" jsonschema:"attendance status: working, wfh or leave"`
	Stack    string `json:"stack,omitempty" jsonschema:"task stack, e.g. Backend Development; not needed for leave"`
	Task     string `json:"task,omitempty" jsonschema:"what the user is working on; required for working and wfh"`
	Progress string `json:"progress,omitempty" jsonschema:"progress made so far"`
	Blockers string `json:"blockers,omitempty" jsonschema:"anything blocking the work"`
}

type validateOutput struct {
	Valid   bool   `json:"valid"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
}

type submitOutput struct {
	Outcome      string   `json:"outcome"`
	Message      string   `json:"message"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
	Questions    []string `json:"questions,omitempty"`
}

type answerFollowupInput struct {
	Question int    `json:"question" jsonschema:"1-based number of the question being answered"`
	Answer   string `json:"answer" jsonschema:"the answer text"`
}

type followupOutput struct {
	SessionID string  `json:"session_id"`
	Answered  int     `json:"answered"`
	Total     int     `json:"total"`
	Progress  float64 `json:"progress"`
	Message   string  `json:"message,omitempty"`
}

type completeFollowupInput struct {
	Answers []string `json:"answers,omitempty" jsonschema:"answers in question order; replaces answers given earlier"`
}

type completeFollowupOutput struct {
	Message string `json:"message"`
}

type discardFollowupInput struct{}

type discardFollowupOutput struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type reportInput struct {
	UserID    string `json:"user_id,omitempty" jsonschema:"the user identifier; defaults to the configured user"`
	StartDate string `json:"start_date,omitempty" jsonschema:"first day, YYYY-MM-DD; defaults to seven days ago"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"last day, YYYY-MM-DD; defaults to today"`
}

type reportOutput struct {
	Report                string `json:"report"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	WorkUpdatesCount      int    `json:"work_updates_count"`
	FollowupSessionsCount int    `json:"followup_sessions_count"`
	GeneratedAt           string `json:"generated_at,omitempty"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Submissions        int            `json:"submissions"`
	UpdatesCompleted   int            `json:"updates_completed"`
	Rejections         int            `json:"rejections"`
	FollowupsStarted   int            `json:"followups_started"`
	FollowupsCompleted int            `json:"followups_completed"`
	FollowupsDiscarded int            `json:"followups_discarded"`
	ReportsGenerated   int            `json:"reports_generated"`
	RequestFailures    int            `json:"request_failures"`
	SubmissionsByState map[string]int `json:"submissions_by_status"`
	AvgQualityScore    float64        `json:"avg_quality_score,omitempty"`
	EventCount         int            `json:"event_count"`
	OldestEvent        string         `json:"oldest_event,omitempty"`
	NewestEvent        string         `json:"newest_event,omitempty"`
}

type getRemindersInput struct{}

type reminderOutput struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

type getRemindersOutput struct {
	Reminders []reminderOutput `json:"reminders"`
	Count     int              `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "validate_work_update",
		Description: "Check a work update locally without sending it. Returns the first rule it breaks, if any.",
	}, s.handleValidate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "submit_work_update",
		Description: "Submit today's work update. If the backend asks for more detail the outcome is followup_required and the follow-up questions are returned.",
	}, s.handleSubmit)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "answer_followup",
		Description: "Answer one question of the open follow-up session.",
	}, s.handleAnswerFollowup)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_followup",
		Description: "Send the answers of the open follow-up session. Every question needs a non-blank answer.",
	}, s.handleCompleteFollowup)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "discard_followup",
		Description: "Drop the open follow-up session without sending answers. The work update draft is kept.",
	}, s.handleDiscardFollowup)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "generate_weekly_report",
		Description: "Generate an AI summary of a user's work updates over a date range (default: the last 7 days).",
	}, s.handleGenerateReport)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get counts of submissions, follow-ups, reports and failed requests from the local event log.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_reminders",
		Description: "List pending reminders: unanswered follow-ups, no update today, backend failures.",
	}, s.handleGetReminders)
}

// --- Tool handlers ---

func (s *Server) handleValidate(_ context.Context, _ *gomcp.CallToolRequest, input workUpdateInput) (*gomcp.CallToolResult, validateOutput, error) {
	draft, err := s.draftFrom(input)
	if err != nil {
		return errorResult(err.Error()), validateOutput{}, nil
	}
	if err := core.ValidateDraft(draft); err != nil {
		out := validateOutput{Message: err.Error()}
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			out.Rule = string(ve.Rule)
		}
		return nil, out, nil
	}
	return nil, validateOutput{Valid: true}, nil
}

func (s *Server) handleSubmit(ctx context.Context, _ *gomcp.CallToolRequest, input workUpdateInput) (*gomcp.CallToolResult, submitOutput, error) {
	draft, err := s.draftFrom(input)
	if err != nil {
		return errorResult(err.Error()), submitOutput{}, nil
	}

	outcome, err := s.submitter.Submit(ctx, draft)
	if err != nil {
		return errorResult(core.UserMessage(err)), submitOutput{}, nil
	}

	switch out := outcome.(type) {
	case core.Completed:
		return nil, submitOutput{Outcome: "completed", Message: out.Message, QualityScore: out.QualityScore}, nil
	case core.FollowupRequired:
		session := out.Followup.Session()
		return nil, submitOutput{
			Outcome:      "followup_required",
			Message:      s.submitter.Notice().Text,
			QualityScore: out.QualityScore,
			SessionID:    session.ID,
			Questions:    session.Questions,
		}, nil
	default:
		return errorResult(fmt.Sprintf("unexpected submission outcome %T", outcome)), submitOutput{}, nil
	}
}

func (s *Server) handleAnswerFollowup(_ context.Context, _ *gomcp.CallToolRequest, input answerFollowupInput) (*gomcp.CallToolResult, followupOutput, error) {
	fc := s.submitter.Followup()
	if fc == nil {
		return errorResult("no follow-up session is open"), followupOutput{}, nil
	}
	if err := fc.SetAnswerAt(input.Question-1, input.Answer); err != nil {
		return errorResult(err.Error()), followupOutput{}, nil
	}
	return nil, followupSummary(fc), nil
}

func (s *Server) handleCompleteFollowup(ctx context.Context, _ *gomcp.CallToolRequest, input completeFollowupInput) (*gomcp.CallToolResult, completeFollowupOutput, error) {
	fc := s.submitter.Followup()
	if fc == nil {
		return errorResult("no follow-up session is open"), completeFollowupOutput{}, nil
	}
	if len(input.Answers) > fc.Len() {
		return errorResult(fmt.Sprintf("got %d answers for %d questions", len(input.Answers), fc.Len())), completeFollowupOutput{}, nil
	}
	for i, a := range input.Answers {
		if err := fc.SetAnswerAt(i, a); err != nil {
			return errorResult(err.Error()), completeFollowupOutput{}, nil
		}
	}
	if err := fc.Complete(ctx); err != nil {
		return errorResult(core.UserMessage(err)), completeFollowupOutput{}, nil
	}
	return nil, completeFollowupOutput{Message: fc.Notice().Text}, nil
}

func (s *Server) handleDiscardFollowup(_ context.Context, _ *gomcp.CallToolRequest, _ discardFollowupInput) (*gomcp.CallToolResult, discardFollowupOutput, error) {
	fc := s.submitter.Followup()
	if fc == nil {
		return errorResult("no follow-up session is open"), discardFollowupOutput{}, nil
	}
	if err := s.submitter.DismissFollowup(); err != nil {
		return errorResult(core.UserMessage(err)), discardFollowupOutput{}, nil
	}
	return nil, discardFollowupOutput{SessionID: fc.ID(), Message: "Follow-up discarded. The draft is kept."}, nil
}

func (s *Server) handleGenerateReport(ctx context.Context, _ *gomcp.CallToolRequest, input reportInput) (*gomcp.CallToolResult, reportOutput, error) {
	user := strings.TrimSpace(input.UserID)
	if user == "" {
		user = s.defaultUser
	}
	if err := s.reports.Open(user); err != nil {
		return errorResult(err.Error()), reportOutput{}, nil
	}
	dates := s.reports.Range()
	if input.StartDate != "" {
		dates.Start = input.StartDate
	}
	if input.EndDate != "" {
		dates.End = input.EndDate
	}

	rep, err := s.reports.Generate(ctx, dates)
	if err != nil {
		return errorResult(core.UserMessage(err)), reportOutput{}, nil
	}
	return nil, reportOutput{
		Report:                rep.Narrative,
		StartDate:             rep.Range.Start,
		EndDate:               rep.Range.End,
		WorkUpdatesCount:      rep.WorkUpdatesCount,
		FollowupSessionsCount: rep.FollowupSessionsCount,
		GeneratedAt:           rep.GeneratedAt,
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be unavailable)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		Submissions:        metrics.Submissions,
		UpdatesCompleted:   metrics.UpdatesCompleted,
		Rejections:         metrics.Rejections,
		FollowupsStarted:   metrics.FollowupsStarted,
		FollowupsCompleted: metrics.FollowupsCompleted,
		FollowupsDiscarded: metrics.FollowupsDiscarded,
		ReportsGenerated:   metrics.ReportsGenerated,
		RequestFailures:    metrics.RequestFailures,
		SubmissionsByState: metrics.SubmissionsByState,
		EventCount:         metrics.EventCount,
	}
	if out.SubmissionsByState == nil {
		out.SubmissionsByState = make(map[string]int)
	}
	if metrics.AvgQualityScore != nil {
		out.AvgQualityScore = *metrics.AvgQualityScore
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetReminders(_ context.Context, _ *gomcp.CallToolRequest, _ getRemindersInput) (*gomcp.CallToolResult, getRemindersOutput, error) {
	if s.reminders == nil {
		return errorResult("reminder engine not available (event log may be unavailable)"), getRemindersOutput{}, nil
	}

	reminders, err := s.reminders.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating reminders: %s", err)), getRemindersOutput{}, nil
	}

	out := getRemindersOutput{
		Reminders: make([]reminderOutput, len(reminders)),
		Count:     len(reminders),
	}
	for i, r := range reminders {
		out.Reminders[i] = reminderOutput{
			ID:        r.ID,
			Condition: r.Condition,
			Severity:  string(r.Severity),
			Message:   r.Message,
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func (s *Server) draftFrom(input workUpdateInput) (models.WorkUpdateDraft, error) {
	status := models.StatusWorking
	if strings.TrimSpace(input.Status) != "" {
		var err error
		if status, err = models.ParseWorkStatus(input.Status); err != nil {
			return models.WorkUpdateDraft{}, err
		}
	}
	user := strings.TrimSpace(input.UserID)
	if user == "" {
		user = s.defaultUser
	}
	d := models.WorkUpdateDraft{
		UserID:   user,
		Status:   status,
		Stack:    strings.TrimSpace(input.Stack),
		Task:     input.Task,
		Progress: input.Progress,
		Blockers: input.Blockers,
	}
	return d.WithStatus(status), nil
}

func followupSummary(fc *core.FollowupController) followupOutput {
	session := fc.Session()
	answered := 0
	for _, a := range session.Answers {
		if strings.TrimSpace(a) != "" {
			answered++
		}
	}
	return followupOutput{
		SessionID: session.ID,
		Answered:  answered,
		Total:     len(session.Questions),
		Progress:  float64(answered) / float64(len(session.Questions)),
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{SubmissionsByState: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
