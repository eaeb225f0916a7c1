package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/valter-silva-au/dlog/pkg/models"
)

// FollowupState is where a follow-up session is in its lifecycle.
type FollowupState int

const (
	// StateAtQuestion means the user is looking at Index().
	StateAtQuestion FollowupState = iota
	// StateSubmitting means the answers are being sent.
	StateSubmitting
	// StateClosed means the session was completed or dismissed.
	StateClosed
)

func (s FollowupState) String() string {
	switch s {
	case StateAtQuestion:
		return "at_question"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("FollowupState(%d)", int(s))
	}
}

// FollowupController is a linear wizard over a fixed list of questions.
// Questions never change after creation; answers are a parallel slice
// indexed the same way.
type FollowupController struct {
	backend    Backend
	events     EventLogger
	onComplete func()

	mu        sync.Mutex
	id        string
	userID    string
	questions []string
	answers   []string
	index     int
	state     FollowupState
	notice    Notice
}

// NewFollowupController opens session. Saved answers and index are kept so a
// session can be resumed. onComplete runs once after the backend accepts the
// answers. A session without questions cannot be opened.
func NewFollowupController(backend Backend, events EventLogger, session models.FollowupSession, onComplete func()) (*FollowupController, error) {
	n := len(session.Questions)
	if n == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]string, n)
	copy(questions, session.Questions)
	answers := make([]string, n)
	copy(answers, session.Answers)

	index := session.Index
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}

	return &FollowupController{
		backend:    backend,
		events:     events,
		onComplete: onComplete,
		id:         session.ID,
		userID:     session.UserID,
		questions:  questions,
		answers:    answers,
		index:      index,
	}, nil
}

// ID returns the backend session identifier.
func (c *FollowupController) ID() string { return c.id }

// Len returns the number of questions.
func (c *FollowupController) Len() int { return len(c.questions) }

// Index returns the 0-based current question index.
func (c *FollowupController) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// State returns the lifecycle state.
func (c *FollowupController) State() FollowupState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Notice returns the latest user-facing message.
func (c *FollowupController) Notice() Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// Question returns the current question text.
func (c *FollowupController) Question() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.questions[c.index]
}

// Answer returns the answer currently stored for the current question.
func (c *FollowupController) Answer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers[c.index]
}

// Session returns a snapshot suitable for saving and resuming later.
func (c *FollowupController) Session() models.FollowupSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := models.FollowupSession{
		ID:        c.id,
		UserID:    c.userID,
		Questions: make([]string, len(c.questions)),
		Answers:   make([]string, len(c.answers)),
		Index:     c.index,
	}
	copy(s.Questions, c.questions)
	copy(s.Answers, c.answers)
	return s
}

// SetAnswer stores text as the answer to the current question.
func (c *FollowupController) SetAnswer(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	c.answers[c.index] = text
	return nil
}

// SetAnswerAt stores text as the answer to question i (0-based).
func (c *FollowupController) SetAnswerAt(i int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	if i < 0 || i >= len(c.answers) {
		return fmt.Errorf("question %d out of range [1, %d]", i+1, len(c.answers))
	}
	c.answers[i] = text
	return nil
}

// IsLast reports whether the current question is the final one, where the
// advancing action is Complete rather than Next.
func (c *FollowupController) IsLast() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index == len(c.questions)-1
}

// CanAdvance reports whether the current answer is filled in.
func (c *FollowupController) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAtQuestion && !blank(c.answers[c.index])
}

// Next moves to the following question. It does nothing on the last
// question or while the current answer is blank, and reports whether it moved.
func (c *FollowupController) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAtQuestion || c.index >= len(c.questions)-1 || blank(c.answers[c.index]) {
		return false
	}
	c.index++
	return true
}

// Previous moves back one question and reports whether it moved.
func (c *FollowupController) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAtQuestion || c.index == 0 {
		return false
	}
	c.index--
	return true
}

// Progress returns (index+1)/N.
func (c *FollowupController) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.index+1) / float64(len(c.questions))
}

// Complete sends every answer to the backend. All answers are checked again
// here even if Next accepted them earlier. On success the completion callback
// runs and the session closes; on failure the session stays on the final
// question with its answers intact.
func (c *FollowupController) Complete(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrSessionClosed
	case StateSubmitting:
		c.mu.Unlock()
		return ErrBusy
	}
	for _, a := range c.answers {
		if blank(a) {
			c.notice = errorNotice(ErrIncompleteAnswers)
			c.mu.Unlock()
			return ErrIncompleteAnswers
		}
	}
	c.index = len(c.questions) - 1
	c.state = StateSubmitting
	c.notice = Notice{}
	answers := make([]string, len(c.answers))
	copy(answers, c.answers)
	c.mu.Unlock()

	ack, err := c.backend.CompleteFollowup(ctx, c.id, c.userID, answers)

	c.mu.Lock()
	if err != nil {
		te := &TransientError{Op: "completing follow-up", Err: err}
		c.state = StateAtQuestion
		c.notice = errorNotice(te)
		c.mu.Unlock()
		logEvent(c.events, EventRequestFailed, map[string]any{"op": te.Op, "error": err.Error()})
		return te
	}
	if !ack.Success {
		rerr := rejection("completing follow-up", ack.Message, "Failed to submit follow-up answers")
		c.state = StateAtQuestion
		c.notice = errorNotice(rerr)
		c.mu.Unlock()
		return rerr
	}
	c.state = StateClosed
	c.notice = Notice{Kind: NoticeSuccess, Text: msgFollowupCompleted}
	c.mu.Unlock()

	logEvent(c.events, EventFollowupCompleted, map[string]any{
		"user_id":    c.userID,
		"session_id": c.id,
	})
	if c.onComplete != nil {
		c.onComplete()
	}
	return nil
}

// Close dismisses the session without completing it.
func (c *FollowupController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	c.state = StateClosed
	return nil
}

func (c *FollowupController) editable() error {
	switch c.state {
	case StateClosed:
		return ErrSessionClosed
	case StateSubmitting:
		return ErrBusy
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
