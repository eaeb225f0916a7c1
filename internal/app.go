// Package internal provides the App struct that wires all components of the
// dlog client together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/dlog/internal/cli"
	"github.com/valter-silva-au/dlog/internal/core"
	"github.com/valter-silva-au/dlog/internal/integration"
	"github.com/valter-silva-au/dlog/internal/observability"
	"github.com/valter-silva-au/dlog/internal/storage"
	"github.com/valter-silva-au/dlog/pkg/models"
)

// App holds all service dependencies for the dlog client.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Backend access and local state
	Backend *integration.BackendClient
	State   storage.StateStore

	// Controllers
	Submitter *core.SubmissionOrchestrator
	Reports   *core.ReportController

	// Observability
	EventLog    observability.EventLog
	Reminders   observability.ReminderEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the dlog client. basePath is
// the directory holding .dlogconfig and the .dlog state directory.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".dlog", "events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
		thresholds := observability.DefaultReminderThresholds()
		if cfg.Reminders.FollowupPendingHours > 0 {
			thresholds.FollowupPendingHours = cfg.Reminders.FollowupPendingHours
		}
		app.Reminders = observability.NewReminderEngine(app.EventLog, thresholds, nil)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
	}

	// --- Backend and state ---
	app.Backend = integration.NewBackendClient(cfg.Backend.BaseURL, cfg.Backend.HealthURL, nil)
	app.State = storage.NewStateStore(basePath)

	// --- Controllers ---
	app.Submitter = core.NewSubmissionOrchestrator(app.Backend, events, nil)
	app.Reports = core.NewReportController(app.Backend, events, nil, cfg.ReportDefaultDays)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.DefaultUser = cfg.UserID
	cli.Submitter = app.Submitter
	cli.Reports = app.Reports
	cli.State = app.State
	cli.Health = app.Backend

	cli.EventLog = app.EventLog
	cli.Reminders = app.Reminders
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory dlog keeps its config and state
// in. It checks the DLOG_HOME env var, then walks up from the current
// directory looking for .dlogconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("DLOG_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   observability.LevelFor(eventType),
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
