package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valter-silva-au/dlog/pkg/models"
)

func newTestFollowup(t *testing.T, backend *fakeBackend, questions ...string) (*FollowupController, *int) {
	t.Helper()
	calls := 0
	fc, err := NewFollowupController(backend, nil, models.FollowupSession{ID: "s1", UserID: "u1", Questions: questions}, func() { calls++ })
	if err != nil {
		t.Fatalf("NewFollowupController() error = %v", err)
	}
	return fc, &calls
}

func TestNewFollowupController_NoQuestions(t *testing.T) {
	_, err := NewFollowupController(&fakeBackend{}, nil, models.FollowupSession{ID: "s1"}, nil)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("error = %v, want ErrNoQuestions", err)
	}
}

func TestNewFollowupController_ClampsIndex(t *testing.T) {
	fc, err := NewFollowupController(&fakeBackend{}, nil, models.FollowupSession{Questions: []string{"Q1", "Q2"}, Index: 7}, nil)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if fc.Index() != 1 {
		t.Errorf("Index() = %d, want 1", fc.Index())
	}
}

func TestFollowup_NextRequiresAnswer(t *testing.T) {
	fc, _ := newTestFollowup(t, &fakeBackend{}, "Q1", "Q2", "Q3")

	if fc.Next() {
		t.Fatal("Next() moved with a blank answer")
	}
	_ = fc.SetAnswer("   ")
	if fc.Next() || fc.CanAdvance() {
		t.Fatal("whitespace-only answer should not allow advancing")
	}
	_ = fc.SetAnswer("done")
	if !fc.Next() {
		t.Fatal("Next() should move with an answer")
	}
	if fc.Question() != "Q2" {
		t.Errorf("Question() = %q, want Q2", fc.Question())
	}
}

func TestFollowup_PreviousIsUnguarded(t *testing.T) {
	fc, _ := newTestFollowup(t, &fakeBackend{}, "Q1", "Q2")
	if fc.Previous() {
		t.Error("Previous() moved from the first question")
	}
	_ = fc.SetAnswer("a1")
	fc.Next()
	if !fc.Previous() {
		t.Fatal("Previous() should move back even with a blank answer")
	}
	if fc.Answer() != "a1" {
		t.Errorf("answer lost going back: %q", fc.Answer())
	}
}

func TestFollowup_NextStopsAtLast(t *testing.T) {
	fc, _ := newTestFollowup(t, &fakeBackend{}, "Q1")
	_ = fc.SetAnswer("a1")
	if !fc.IsLast() {
		t.Fatal("single question should be last")
	}
	if fc.Next() {
		t.Error("Next() must not move past the last question")
	}
}

func TestFollowup_Progress(t *testing.T) {
	fc, _ := newTestFollowup(t, &fakeBackend{}, "Q1", "Q2", "Q3")
	if got := fc.Progress(); got != 1.0/3.0 {
		t.Errorf("Progress() = %v, want 1/3", got)
	}
	_ = fc.SetAnswer("a")
	fc.Next()
	_ = fc.SetAnswer("b")
	fc.Next()
	if got := fc.Progress(); got != 1.0 {
		t.Errorf("Progress() on last = %v, want 1", got)
	}
}

func TestFollowup_CompleteRevalidatesAnswers(t *testing.T) {
	backend := &fakeBackend{completeAck: &models.Ack{Success: true}}
	fc, calls := newTestFollowup(t, backend, "Q1", "Q2")

	_ = fc.SetAnswer("a1")
	fc.Next()
	_ = fc.SetAnswer("a2")
	// Clear an earlier answer after moving past it.
	if err := fc.SetAnswerAt(0, " "); err != nil {
		t.Fatalf("SetAnswerAt() error = %v", err)
	}

	err := fc.Complete(context.Background())
	if !errors.Is(err, ErrIncompleteAnswers) {
		t.Fatalf("Complete() error = %v, want ErrIncompleteAnswers", err)
	}
	if _, _, completes, _ := backend.calls(); completes != 0 {
		t.Error("backend should not be called with incomplete answers")
	}
	if fc.Notice().Text != "Please answer all questions before submitting." {
		t.Errorf("notice = %q", fc.Notice().Text)
	}
	if *calls != 0 {
		t.Error("completion callback ran")
	}
}

func TestFollowup_CompleteSuccess(t *testing.T) {
	backend := &fakeBackend{completeAck: &models.Ack{Success: true}}
	fc, calls := newTestFollowup(t, backend, "Q1", "Q2")
	_ = fc.SetAnswerAt(0, "a1")
	_ = fc.SetAnswerAt(1, "a2")

	if err := fc.Complete(context.Background()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if fc.State() != StateClosed {
		t.Errorf("State() = %s, want closed", fc.State())
	}
	if *calls != 1 {
		t.Errorf("callback ran %d times, want 1", *calls)
	}
	if err := fc.Complete(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("second Complete() error = %v, want ErrSessionClosed", err)
	}
	if err := fc.SetAnswer("x"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("SetAnswer on closed session error = %v", err)
	}
}

func TestFollowup_CompleteFailureStaysOnLastQuestion(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
	}{
		{"rejected with message", &fakeBackend{completeAck: &models.Ack{Success: false, Message: "Session expired"}}, "Session expired"},
		{"rejected without message", &fakeBackend{completeAck: &models.Ack{Success: false}}, "Failed to submit follow-up answers"},
		{"network failure", &fakeBackend{completeErr: errUnreachable}, NetworkErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, calls := newTestFollowup(t, tt.backend, "Q1", "Q2")
			_ = fc.SetAnswerAt(0, "a1")
			_ = fc.SetAnswerAt(1, "a2")

			if err := fc.Complete(context.Background()); err == nil {
				t.Fatal("Complete() should fail")
			}
			if fc.State() != StateAtQuestion || !fc.IsLast() {
				t.Errorf("state %s index %d, want at_question on the last question", fc.State(), fc.Index())
			}
			if fc.Notice().Text != tt.want {
				t.Errorf("notice = %q, want %q", fc.Notice().Text, tt.want)
			}
			if fc.Session().Answers[1] != "a2" {
				t.Error("answers should be intact after a failure")
			}
			if *calls != 0 {
				t.Error("callback should not run on failure")
			}
		})
	}
}

func TestFollowup_SetAnswerAtOutOfRange(t *testing.T) {
	fc, _ := newTestFollowup(t, &fakeBackend{}, "Q1")
	if err := fc.SetAnswerAt(3, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestFollowupState_String(t *testing.T) {
	if StateSubmitting.String() != "submitting" {
		t.Errorf("String() = %q", StateSubmitting.String())
	}
}

func TestFollowup_BusyWhileCompleting(t *testing.T) {
	backend := &fakeBackend{completeAck: &models.Ack{Success: true}, block: make(chan struct{})}
	fc, calls := newTestFollowup(t, backend, "Q1", "Q2")
	_ = fc.SetAnswerAt(0, "a1")
	_ = fc.SetAnswerAt(1, "a2")

	done := make(chan error, 1)
	go func() { done <- fc.Complete(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for fc.State() != StateSubmitting {
		if time.Now().After(deadline) {
			t.Fatal("completion never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := fc.Complete(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Complete() error = %v, want ErrBusy", err)
	}
	if err := fc.SetAnswer("changed"); !errors.Is(err, ErrBusy) {
		t.Errorf("SetAnswer() while submitting error = %v, want ErrBusy", err)
	}
	if err := fc.Close(); !errors.Is(err, ErrBusy) {
		t.Errorf("Close() while submitting error = %v, want ErrBusy", err)
	}
	if fc.Previous() {
		t.Error("Previous() should not move while submitting")
	}

	close(backend.block)
	if err := <-done; err != nil {
		t.Fatalf("first Complete() error = %v", err)
	}
	if _, _, completes, _ := backend.calls(); completes != 1 {
		t.Errorf("backend received %d completions, want 1", completes)
	}
	if fc.Session().Answers[1] != "a2" {
		t.Error("answers changed while the request was in flight")
	}
	if *calls != 1 {
		t.Errorf("callback ran %d times, want 1", *calls)
	}
}
