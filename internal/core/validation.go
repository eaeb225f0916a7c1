package core

import (
	"strings"

	"github.com/valter-silva-au/dlog/pkg/models"
)

// ValidateDraft returns the first rule the draft violates, or nil.
// Rules are checked in order: user identifier, task description (working
// and wfh only), stack (anything but leave).
func ValidateDraft(d models.WorkUpdateDraft) error {
	if strings.TrimSpace(d.UserID) == "" {
		return ErrMissingIdentifier
	}
	if d.Status.RequiresTask() && strings.TrimSpace(d.Task) == "" {
		return ErrMissingTask
	}
	if d.Status != models.StatusLeave && strings.TrimSpace(d.Stack) == "" {
		return ErrMissingStack
	}
	return nil
}
