package models

import "time"

// PendingFollowup is a follow-up session saved between CLI runs together
// with the draft it belongs to.
type PendingFollowup struct {
	Session      FollowupSession `yaml:"session"`
	Draft        WorkUpdateDraft `yaml:"draft"`
	QualityScore *float64        `yaml:"quality_score,omitempty"`
	StartedAt    time.Time       `yaml:"started_at"`
}

// LocalState is everything the client keeps on disk.
type LocalState struct {
	Version  string           `yaml:"version"`
	Draft    *WorkUpdateDraft `yaml:"draft,omitempty"`
	Followup *PendingFollowup `yaml:"followup,omitempty"`
}
