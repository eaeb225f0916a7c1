package core

import (
	"context"

	"github.com/valter-silva-au/dlog/pkg/models"
)

// Backend is the status-reporting API as seen by the controllers. An error
// return means the request never produced a decodable response; a response
// with Success=false is a structured rejection.
type Backend interface {
	SubmitWorkUpdate(ctx context.Context, sub models.WorkUpdateSubmission) (*models.SubmissionResult, error)
	StartFollowup(ctx context.Context, userID string) (*models.FollowupStart, error)
	CompleteFollowup(ctx context.Context, sessionID, userID string, answers []string) (*models.Ack, error)
	WeeklyReport(ctx context.Context, userID string, dates models.DateRange) (*models.WeeklyReportResponse, error)
}

// NoticeKind classifies a message surfaced to the user.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is the latest message a controller wants shown.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

func errorNotice(err error) Notice {
	return Notice{Kind: NoticeError, Text: UserMessage(err)}
}

// logEvent writes to events when one is configured. Logging failures never
// affect the workflow.
func logEvent(events EventLogger, eventType string, data map[string]any) {
	if events == nil {
		return
	}
	_ = events.LogEvent(eventType, data)
}
