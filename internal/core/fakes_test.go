package core

import (
	"context"
	"errors"
	"sync"

	"github.com/valter-silva-au/dlog/pkg/models"
)

var errUnreachable = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

// fakeBackend records calls and returns canned responses.
type fakeBackend struct {
	mu sync.Mutex

	submitResult *models.SubmissionResult
	submitErr    error
	startResult  *models.FollowupStart
	startErr     error
	completeAck  *models.Ack
	completeErr  error
	reportResp   *models.WeeklyReportResponse
	reportErr    error

	// block, when set, is waited on inside every call.
	block chan struct{}

	submissions []models.WorkUpdateSubmission
	starts      []string
	completions [][]string
	reports     []models.DateRange
}

func (f *fakeBackend) wait(ctx context.Context) {
	if f.block == nil {
		return
	}
	select {
	case <-f.block:
	case <-ctx.Done():
	}
}

func (f *fakeBackend) SubmitWorkUpdate(ctx context.Context, sub models.WorkUpdateSubmission) (*models.SubmissionResult, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, sub)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeBackend) StartFollowup(ctx context.Context, userID string) (*models.FollowupStart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, userID)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startResult, nil
}

func (f *fakeBackend) CompleteFollowup(ctx context.Context, sessionID, userID string, answers []string) (*models.Ack, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, answers)
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completeAck, nil
}

func (f *fakeBackend) WeeklyReport(ctx context.Context, userID string, dates models.DateRange) (*models.WeeklyReportResponse, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, dates)
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return f.reportResp, nil
}

func (f *fakeBackend) calls() (submits, starts, completes, reports int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions), len(f.starts), len(f.completions), len(f.reports)
}

// recordingLogger captures logged event types.
type recordingLogger struct {
	mu     sync.Mutex
	events []string
	data   []map[string]any
}

func (r *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	r.data = append(r.data, data)
	return nil
}

func (r *recordingLogger) has(eventType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
