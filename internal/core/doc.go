// Package core contains the client-side workflow for daily work-status
// reporting: draft validation, submission orchestration, the follow-up
// questionnaire state machine, weekly report requests and configuration.
package core
