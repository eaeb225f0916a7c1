package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types written by the controllers.
const (
	EventWorkUpdateSubmitted = "workupdate.submitted"
	EventWorkUpdateRejected  = "workupdate.rejected"
	EventWorkUpdateCompleted = "workupdate.completed"
	EventFollowupStarted     = "followup.started"
	EventFollowupCompleted   = "followup.completed"
	EventFollowupDiscarded   = "followup.discarded"
	EventReportGenerated     = "report.generated"
	EventRequestFailed       = "request.failed"
)
