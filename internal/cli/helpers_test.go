package cli

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/valter-silva-au/dlog/internal/core"
	"github.com/valter-silva-au/dlog/internal/storage"
	"github.com/valter-silva-au/dlog/pkg/models"
)

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	return string(out)
}

// backendMock is a canned core.Backend that records what it was sent.
type backendMock struct {
	submitResult *models.SubmissionResult
	submitErr    error
	startResult  *models.FollowupStart
	completeAck  *models.Ack
	completeErr  error
	reportResp   *models.WeeklyReportResponse
	reportErr    error

	submissions []models.WorkUpdateSubmission
	completions [][]string
	reports     []models.DateRange
}

func (b *backendMock) SubmitWorkUpdate(_ context.Context, sub models.WorkUpdateSubmission) (*models.SubmissionResult, error) {
	b.submissions = append(b.submissions, sub)
	if b.submitErr != nil {
		return nil, b.submitErr
	}
	return b.submitResult, nil
}

func (b *backendMock) StartFollowup(_ context.Context, _ string) (*models.FollowupStart, error) {
	return b.startResult, nil
}

func (b *backendMock) CompleteFollowup(_ context.Context, _, _ string, answers []string) (*models.Ack, error) {
	b.completions = append(b.completions, answers)
	if b.completeErr != nil {
		return nil, b.completeErr
	}
	return b.completeAck, nil
}

func (b *backendMock) WeeklyReport(_ context.Context, _ string, dates models.DateRange) (*models.WeeklyReportResponse, error) {
	b.reports = append(b.reports, dates)
	if b.reportErr != nil {
		return nil, b.reportErr
	}
	return b.reportResp, nil
}

func cliNow() time.Time {
	return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
}

// setupServices points the package service vars at fresh controllers backed
// by b and a state store in a temp directory, which is returned.
func setupServices(t *testing.T, b *backendMock) string {
	t.Helper()
	origSubmitter, origReports, origState := Submitter, Reports, State
	origUser, origFlag, origBase := DefaultUser, userFlag, BasePath
	t.Cleanup(func() {
		Submitter, Reports, State = origSubmitter, origReports, origState
		DefaultUser, userFlag, BasePath = origUser, origFlag, origBase
	})

	dir := t.TempDir()
	Submitter = core.NewSubmissionOrchestrator(b, nil, cliNow)
	Reports = core.NewReportController(b, nil, cliNow, 7)
	State = storage.NewStateStore(dir)
	BasePath = dir
	DefaultUser = "u1"
	userFlag = ""
	return dir
}

// reloadState reads the state file under dir with a fresh store.
func reloadState(t *testing.T, dir string) storage.StateStore {
	t.Helper()
	st := storage.NewStateStore(dir)
	if err := st.Load(); err != nil {
		t.Fatalf("reloading state: %v", err)
	}
	return st
}

// savePending stores a pending follow-up session as 'dlog submit' would.
func savePending(t *testing.T, questions ...string) {
	t.Helper()
	State.SetPendingFollowup(&models.PendingFollowup{
		Session: models.FollowupSession{ID: "s1", UserID: "u1", Questions: questions},
		Draft: models.WorkUpdateDraft{
			UserID: "u1",
			Status: models.StatusWorking,
			Stack:  "Backend Development",
			Task:   "Fix login",
		},
	})
	if err := State.Save(); err != nil {
		t.Fatalf("saving pending follow-up: %v", err)
	}
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
