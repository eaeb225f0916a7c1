package cli

import (
	"context"

	"github.com/valter-silva-au/dlog/internal/core"
	"github.com/valter-silva-au/dlog/internal/integration"
	"github.com/valter-silva-au/dlog/internal/observability"
	"github.com/valter-silva-au/dlog/internal/storage"
)

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) (*integration.HealthStatus, error)
}

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	DefaultUser string

	Submitter *core.SubmissionOrchestrator
	Reports   *core.ReportController
	State     storage.StateStore
	Health    HealthChecker
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	Reminders   observability.ReminderEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
