package observability

import (
	"fmt"
	"sort"
	"time"
)

// ReminderSeverity represents how urgently a reminder should be acted on.
type ReminderSeverity string

const (
	SeverityHigh   ReminderSeverity = "high"
	SeverityMedium ReminderSeverity = "medium"
	SeverityLow    ReminderSeverity = "low"
)

// Reminder is a nudge derived from the event log.
type Reminder struct {
	ID          string           `json:"id"`
	Condition   string           `json:"condition"`
	Severity    ReminderSeverity `json:"severity"`
	Message     string           `json:"message"`
	TriggeredAt time.Time        `json:"triggered_at"`
}

// ReminderThresholds configures when reminders fire.
type ReminderThresholds struct {
	FollowupPendingHours int `yaml:"followup_pending_hours" json:"followup_pending_hours"`
}

// DefaultReminderThresholds returns the default thresholds.
func DefaultReminderThresholds() ReminderThresholds {
	return ReminderThresholds{FollowupPendingHours: 4}
}

// ReminderEngine evaluates reminder conditions against the event log.
type ReminderEngine interface {
	Evaluate() ([]Reminder, error)
}

type reminderEngine struct {
	eventLog   EventLog
	thresholds ReminderThresholds
	now        func() time.Time
}

// NewReminderEngine creates a ReminderEngine. now defaults to time.Now.
func NewReminderEngine(eventLog EventLog, thresholds ReminderThresholds, now func() time.Time) ReminderEngine {
	if now == nil {
		now = time.Now
	}
	return &reminderEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        now,
	}
}

// Evaluate returns the active reminders, most severe first.
func (re *reminderEngine) Evaluate() ([]Reminder, error) {
	now := re.now()
	var reminders []Reminder

	pending, err := re.checkPendingFollowups(now)
	if err != nil {
		return nil, fmt.Errorf("checking pending follow-ups: %w", err)
	}
	reminders = append(reminders, pending...)

	today, err := re.checkUpdateToday(now)
	if err != nil {
		return nil, fmt.Errorf("checking today's update: %w", err)
	}
	reminders = append(reminders, today...)

	failing, err := re.checkBackendFailing(now)
	if err != nil {
		return nil, fmt.Errorf("checking backend failures: %w", err)
	}
	reminders = append(reminders, failing...)

	sort.SliceStable(reminders, func(i, j int) bool {
		return severityRank(reminders[i].Severity) < severityRank(reminders[j].Severity)
	})
	return reminders, nil
}

// checkPendingFollowups finds sessions started but neither completed nor
// discarded within the threshold.
func (re *reminderEngine) checkPendingFollowups(now time.Time) ([]Reminder, error) {
	events, err := re.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, err
	}

	started := make(map[string]time.Time)
	for _, event := range events {
		sessionID, _ := event.Data["session_id"].(string)
		if sessionID == "" {
			continue
		}
		switch event.Type {
		case "followup.started":
			started[sessionID] = event.Time
		case "followup.completed", "followup.discarded":
			delete(started, sessionID)
		}
	}

	threshold := time.Duration(re.thresholds.FollowupPendingHours) * time.Hour
	var reminders []Reminder
	for sessionID, at := range started {
		if now.Sub(at) > threshold {
			reminders = append(reminders, Reminder{
				ID:          fmt.Sprintf("followup-%s", sessionID),
				Condition:   "followup_pending",
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("follow-up session %s has been waiting for answers for more than %d hours", sessionID, re.thresholds.FollowupPendingHours),
				TriggeredAt: now,
			})
		}
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].ID < reminders[j].ID })
	return reminders, nil
}

// checkUpdateToday fires when no work update was finalized since local
// midnight.
func (re *reminderEngine) checkUpdateToday(now time.Time) ([]Reminder, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	events, err := re.eventLog.Read(EventFilter{Since: &midnight})
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		if event.Type == "workupdate.completed" || event.Type == "followup.completed" {
			return nil, nil
		}
	}
	return []Reminder{{
		ID:          "update-" + now.Format("2006-01-02"),
		Condition:   "no_update_today",
		Severity:    SeverityMedium,
		Message:     "no work update has been completed today",
		TriggeredAt: now,
	}}, nil
}

// checkBackendFailing fires when the latest backend interaction failed.
func (re *reminderEngine) checkBackendFailing(now time.Time) ([]Reminder, error) {
	events, err := re.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, err
	}

	var lastFailure, lastSuccess time.Time
	for _, event := range events {
		switch event.Type {
		case "request.failed":
			lastFailure = event.Time
		case "workupdate.submitted", "workupdate.rejected", "followup.started", "followup.completed", "report.generated":
			lastSuccess = event.Time
		}
	}
	if lastFailure.IsZero() || !lastFailure.After(lastSuccess) {
		return nil, nil
	}
	return []Reminder{{
		ID:          "backend-unreachable",
		Condition:   "backend_unreachable",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("the last request to the backend failed at %s", lastFailure.Format("2006-01-02 15:04")),
		TriggeredAt: now,
	}}, nil
}

func severityRank(s ReminderSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}
