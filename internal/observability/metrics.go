package observability

import (
	"fmt"
	"time"
)

// Metrics holds counts derived from the event log.
type Metrics struct {
	Submissions        int            `json:"submissions"`
	Rejections         int            `json:"rejections"`
	UpdatesCompleted   int            `json:"updates_completed"`
	FollowupsStarted   int            `json:"followups_started"`
	FollowupsCompleted int            `json:"followups_completed"`
	FollowupsDiscarded int            `json:"followups_discarded"`
	ReportsGenerated   int            `json:"reports_generated"`
	RequestFailures    int            `json:"request_failures"`
	SubmissionsByState map[string]int `json:"submissions_by_status"`
	AvgQualityScore    *float64       `json:"avg_quality_score,omitempty"`
	EventCount         int            `json:"event_count"`
	OldestEvent        *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		SubmissionsByState: make(map[string]int),
	}
	m.EventCount = len(events)

	var scoreSum float64
	var scored int

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "workupdate.submitted":
			m.Submissions++
			if status, ok := event.Data["status"].(string); ok {
				m.SubmissionsByState[status]++
			}
			if score, ok := event.Data["quality_score"].(float64); ok {
				scoreSum += score
				scored++
			}
		case "workupdate.rejected":
			m.Rejections++
		case "workupdate.completed":
			m.UpdatesCompleted++
		case "followup.started":
			m.FollowupsStarted++
		case "followup.completed":
			m.FollowupsCompleted++
			// A completed follow-up finalizes its work update.
			m.UpdatesCompleted++
		case "followup.discarded":
			m.FollowupsDiscarded++
		case "report.generated":
			m.ReportsGenerated++
		case "request.failed":
			m.RequestFailures++
		}
	}

	if scored > 0 {
		avg := scoreSum / float64(scored)
		m.AvgQualityScore = &avg
	}

	return m, nil
}
