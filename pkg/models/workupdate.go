package models

import (
	"fmt"
	"strings"
)

// WorkStatus is the attendance status reported with a daily work update.
type WorkStatus string

const (
	StatusWorking WorkStatus = "working"
	StatusWFH     WorkStatus = "wfh"
	StatusLeave   WorkStatus = "leave"
)

// ParseWorkStatus converts user input into a WorkStatus. "work-from-home"
// is accepted as an alias of wfh.
func ParseWorkStatus(s string) (WorkStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "working":
		return StatusWorking, nil
	case "wfh", "work-from-home":
		return StatusWFH, nil
	case "leave":
		return StatusLeave, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be one of working, wfh, leave", s)
	}
}

// RequiresTask reports whether a task description is mandatory for the status.
func (s WorkStatus) RequiresTask() bool {
	return s == StatusWorking || s == StatusWFH
}

// StackOptions lists the task stacks a user can pick from.
var StackOptions = []string{
	"Frontend Development",
	"Backend Development",
	"Full Stack Development",
	"Mobile Development",
	"DevOps",
	"Data Science",
	"UI/UX Design",
	"Quality Assurance",
	"Other",
}

// IsStackOption reports whether s is one of StackOptions.
func IsStackOption(s string) bool {
	for _, opt := range StackOptions {
		if opt == s {
			return true
		}
	}
	return false
}

// WorkUpdateDraft is the in-progress work update form state.
type WorkUpdateDraft struct {
	UserID   string     `yaml:"user_id" json:"user_id"`
	Status   WorkStatus `yaml:"status" json:"status"`
	Stack    string     `yaml:"stack" json:"stack"`
	Task     string     `yaml:"task" json:"task"`
	Progress string     `yaml:"progress" json:"progress"`
	Blockers string     `yaml:"blockers" json:"blockers"`
}

// NewDraft returns an empty draft for userID with the default status.
func NewDraft(userID string) WorkUpdateDraft {
	return WorkUpdateDraft{UserID: userID, Status: StatusWorking}
}

// WithStatus returns a copy of d with the status changed. Switching to leave
// clears every task-related field.
func (d WorkUpdateDraft) WithStatus(s WorkStatus) WorkUpdateDraft {
	d.Status = s
	if s == StatusLeave {
		d.Stack = ""
		d.Task = ""
		d.Progress = ""
		d.Blockers = ""
	}
	return d
}

// Reset returns a fresh draft that keeps only the user identifier.
func (d WorkUpdateDraft) Reset() WorkUpdateDraft {
	return NewDraft(d.UserID)
}

// IsEmpty reports whether nothing beyond the user and default status is set.
func (d WorkUpdateDraft) IsEmpty() bool {
	return d.Stack == "" && d.Task == "" && d.Progress == "" && d.Blockers == "" &&
		(d.Status == "" || d.Status == StatusWorking)
}

// WorkUpdateSubmission is the request body for POST /work-updates: the
// draft plus the derived submission date and instant.
type WorkUpdateSubmission struct {
	WorkUpdateDraft
	Date        string `json:"date"`
	SubmittedAt string `json:"submittedAt"`
}

// SubmissionResult is the backend's answer to a work update.
type SubmissionResult struct {
	Success            bool     `json:"success"`
	Message            string   `json:"message"`
	QualityScore       *float64 `json:"qualityScore,omitempty"`
	RedirectToFollowup bool     `json:"redirectToFollowup,omitempty"`
}
