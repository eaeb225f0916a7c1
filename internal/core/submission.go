package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/valter-silva-au/dlog/pkg/models"
)

// ErrFollowupPending is returned by Submit while an earlier submission is
// still waiting for its follow-up questionnaire.
var ErrFollowupPending = errors.New("complete or discard the pending follow-up first")

const (
	msgSubmitted         = "Work update submitted successfully."
	msgFollowupCompleted = "Follow-up completed successfully! Your work update has been saved."
)

// SubmitOutcome is what a successful Submit leads to: either Completed or
// FollowupRequired.
type SubmitOutcome interface {
	submitOutcome()
}

// Completed means the work update is stored and the draft was reset.
type Completed struct {
	Message      string
	QualityScore *float64
}

// FollowupRequired means the backend wants answers to a short questionnaire
// before the update counts. The draft is kept until Followup completes.
type FollowupRequired struct {
	Followup     *FollowupController
	QualityScore *float64
}

func (Completed) submitOutcome()        {}
func (FollowupRequired) submitOutcome() {}

// SubmissionOrchestrator owns the work update draft and drives it through
// validation, submission and, when asked for, the follow-up questionnaire.
type SubmissionOrchestrator struct {
	backend Backend
	events  EventLogger
	now     func() time.Time

	mu       sync.Mutex
	inFlight bool
	draft    models.WorkUpdateDraft
	followup *FollowupController
	notice   Notice
}

// NewSubmissionOrchestrator creates an orchestrator talking to backend.
// events may be nil; now defaults to time.Now.
func NewSubmissionOrchestrator(backend Backend, events EventLogger, now func() time.Time) *SubmissionOrchestrator {
	if now == nil {
		now = time.Now
	}
	return &SubmissionOrchestrator{
		backend: backend,
		events:  events,
		now:     now,
		draft:   models.NewDraft(""),
	}
}

// Draft returns the current draft.
func (o *SubmissionOrchestrator) Draft() models.WorkUpdateDraft {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

// SetDraft replaces the current draft, clearing task fields for leave.
func (o *SubmissionOrchestrator) SetDraft(d models.WorkUpdateDraft) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft = normalizeDraft(d)
}

// Notice returns the latest user-facing message.
func (o *SubmissionOrchestrator) Notice() Notice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.notice
}

// Busy reports whether a submission is in flight.
func (o *SubmissionOrchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Followup returns the open follow-up session, or nil.
func (o *SubmissionOrchestrator) Followup() *FollowupController {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.followup
}

// Submit validates draft and sends it to the backend. Local validation
// failures and backend rejections leave the draft in place for correction.
func (o *SubmissionOrchestrator) Submit(ctx context.Context, draft models.WorkUpdateDraft) (SubmitOutcome, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	if o.followup != nil {
		o.mu.Unlock()
		return nil, ErrFollowupPending
	}
	draft = normalizeDraft(draft)
	o.draft = draft
	if err := ValidateDraft(draft); err != nil {
		o.notice = errorNotice(err)
		o.mu.Unlock()
		return nil, err
	}
	o.inFlight = true
	o.notice = Notice{}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	now := o.now()
	sub := models.WorkUpdateSubmission{
		WorkUpdateDraft: draft,
		Date:            now.Format(models.DateLayout),
		SubmittedAt:     now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	res, err := o.backend.SubmitWorkUpdate(ctx, sub)
	if err != nil {
		return nil, o.fail(&TransientError{Op: "submitting work update", Err: err})
	}
	if !res.Success {
		rerr := rejection("submitting work update", res.Message, "Submission failed")
		logEvent(o.events, EventWorkUpdateRejected, map[string]any{
			"user_id": draft.UserID,
			"message": rerr.Message,
		})
		return nil, o.fail(rerr)
	}

	data := map[string]any{
		"user_id":  draft.UserID,
		"status":   string(draft.Status),
		"followup": res.RedirectToFollowup,
	}
	if res.QualityScore != nil {
		data["quality_score"] = *res.QualityScore
	}
	logEvent(o.events, EventWorkUpdateSubmitted, data)

	msg := res.Message
	if res.RedirectToFollowup {
		fc, err := o.startFollowup(ctx, draft, res.QualityScore)
		switch {
		case err == nil:
			return FollowupRequired{Followup: fc, QualityScore: res.QualityScore}, nil
		case errors.Is(err, ErrNoQuestions):
			// Nothing to ask: the update stands as submitted.
			msg = msgSubmitted
		default:
			return nil, err
		}
	}
	if msg == "" {
		msg = msgSubmitted
	}

	o.mu.Lock()
	o.draft = draft.Reset()
	o.notice = Notice{Kind: NoticeSuccess, Text: msg}
	o.mu.Unlock()
	logEvent(o.events, EventWorkUpdateCompleted, map[string]any{"user_id": draft.UserID})

	return Completed{Message: msg, QualityScore: res.QualityScore}, nil
}

// startFollowup asks the backend for the questionnaire belonging to the
// submission that was just accepted.
func (o *SubmissionOrchestrator) startFollowup(ctx context.Context, draft models.WorkUpdateDraft, score *float64) (*FollowupController, error) {
	st, err := o.backend.StartFollowup(ctx, draft.UserID)
	if err != nil {
		return nil, o.fail(&TransientError{Op: "starting follow-up session", Err: err})
	}
	if !st.Success {
		return nil, o.fail(rejection("starting follow-up session", st.Message, "Failed to start follow-up session"))
	}

	session := models.FollowupSession{
		ID:        st.SessionID,
		UserID:    draft.UserID,
		Questions: st.Questions,
	}
	fc, err := o.open(session)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.notice = Notice{
		Kind: NoticeInfo,
		Text: fmt.Sprintf("Quality Score: %s/10. Please complete follow-up questions.", formatScore(score)),
	}
	o.mu.Unlock()

	logEvent(o.events, EventFollowupStarted, map[string]any{
		"user_id":    draft.UserID,
		"session_id": st.SessionID,
		"questions":  len(st.Questions),
	})
	return fc, nil
}

// Resume reopens a follow-up session saved by an earlier run, together with
// the draft it belongs to.
func (o *SubmissionOrchestrator) Resume(draft models.WorkUpdateDraft, session models.FollowupSession) (*FollowupController, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.draft = normalizeDraft(draft)
	o.mu.Unlock()

	if session.UserID == "" {
		session.UserID = draft.UserID
	}
	return o.open(session)
}

// DismissFollowup closes the open follow-up session without completing it.
// The draft is kept.
func (o *SubmissionOrchestrator) DismissFollowup() error {
	o.mu.Lock()
	fc := o.followup
	o.mu.Unlock()
	if fc == nil {
		return nil
	}
	if err := fc.Close(); err != nil {
		return err
	}

	o.mu.Lock()
	if o.followup == fc {
		o.followup = nil
	}
	o.mu.Unlock()
	logEvent(o.events, EventFollowupDiscarded, map[string]any{"session_id": fc.ID()})
	return nil
}

func (o *SubmissionOrchestrator) open(session models.FollowupSession) (*FollowupController, error) {
	var fc *FollowupController
	fc, err := NewFollowupController(o.backend, o.events, session, func() { o.followupDone(fc) })
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.followup = fc
	o.mu.Unlock()
	return fc, nil
}

// followupDone is the completion callback handed to each follow-up
// controller: the update is now final, so the draft resets.
func (o *SubmissionOrchestrator) followupDone(fc *FollowupController) {
	o.mu.Lock()
	if o.followup == fc {
		o.followup = nil
	}
	o.draft = o.draft.Reset()
	o.notice = Notice{Kind: NoticeSuccess, Text: msgFollowupCompleted}
	o.mu.Unlock()
}

func (o *SubmissionOrchestrator) fail(err error) error {
	o.mu.Lock()
	o.notice = errorNotice(err)
	o.mu.Unlock()

	var te *TransientError
	if errors.As(err, &te) {
		logEvent(o.events, EventRequestFailed, map[string]any{"op": te.Op, "error": te.Err.Error()})
	}
	return err
}

func normalizeDraft(d models.WorkUpdateDraft) models.WorkUpdateDraft {
	if d.Status == "" {
		d.Status = models.StatusWorking
	}
	return d.WithStatus(d.Status)
}

func formatScore(score *float64) string {
	if score == nil {
		return "?"
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}
