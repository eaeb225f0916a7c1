package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/dlog/pkg/models"
)

// DefaultReportDays is how far back the default report range starts.
const DefaultReportDays = 7

var (
	// ErrReportNeedsUser is returned when a report is requested before a
	// user identifier is known.
	ErrReportNeedsUser = &ValidationError{Rule: RuleMissingIdentifier, Message: "Please enter your User ID first"}
	// ErrMissingDates is the InvalidRange failure for an unset bound.
	ErrMissingDates = &ValidationError{Rule: RuleInvalidRange, Message: "Please select both start and end dates"}
	// ErrReportSuperseded is returned by a Generate whose controller was
	// reopened before the backend answered. The result is discarded.
	ErrReportSuperseded = errors.New("report request superseded by a newer view")
)

// ValidateRange checks that both bounds are set, parse as calendar dates and
// are in order. Equal dates are allowed.
func ValidateRange(r models.DateRange) error {
	if strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return ErrMissingDates
	}
	start, err := time.Parse(models.DateLayout, strings.TrimSpace(r.Start))
	if err != nil {
		return &ValidationError{Rule: RuleInvalidRange, Message: fmt.Sprintf("invalid start date %q (want YYYY-MM-DD)", r.Start)}
	}
	end, err := time.Parse(models.DateLayout, strings.TrimSpace(r.End))
	if err != nil {
		return &ValidationError{Rule: RuleInvalidRange, Message: fmt.Sprintf("invalid end date %q (want YYYY-MM-DD)", r.End)}
	}
	if start.After(end) {
		return ErrInvalidRange
	}
	return nil
}

// ReportController requests weekly summaries for one user over a date range
// and keeps the latest result for display.
type ReportController struct {
	backend     Backend
	events      EventLogger
	now         func() time.Time
	defaultDays int

	mu       sync.Mutex
	inFlight bool
	userID   string
	dates    models.DateRange
	report   *models.WeeklyReport
	err      error

	// gen changes on every Open; a request started under an older gen is
	// stale and its result is not stored.
	gen uint64
}

// NewReportController creates a controller. defaultDays <= 0 means
// DefaultReportDays; now defaults to time.Now.
func NewReportController(backend Backend, events EventLogger, now func() time.Time, defaultDays int) *ReportController {
	if now == nil {
		now = time.Now
	}
	if defaultDays <= 0 {
		defaultDays = DefaultReportDays
	}
	return &ReportController{
		backend:     backend,
		events:      events,
		now:         now,
		defaultDays: defaultDays,
	}
}

// Open starts a fresh report view for userID: any earlier report and error
// are dropped and the range goes back to the default.
func (r *ReportController) Open(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.report = nil
	r.err = nil
	r.dates = models.LastDays(r.now(), r.defaultDays)
	r.userID = strings.TrimSpace(userID)
	if r.userID == "" {
		r.err = ErrReportNeedsUser
		return ErrReportNeedsUser
	}
	return nil
}

// Range returns the selected date range.
func (r *ReportController) Range() models.DateRange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dates
}

// Report returns the last generated report, or nil.
func (r *ReportController) Report() *models.WeeklyReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// Err returns the last error shown to the user, or nil.
func (r *ReportController) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Busy reports whether a report request is in flight.
func (r *ReportController) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight
}

// Generate requests a report for dates. An invalid range is rejected
// without contacting the backend. The previous report is cleared as soon as
// the request starts.
func (r *ReportController) Generate(ctx context.Context, dates models.DateRange) (*models.WeeklyReport, error) {
	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.dates = models.DateRange{Start: strings.TrimSpace(dates.Start), End: strings.TrimSpace(dates.End)}
	if r.userID == "" {
		r.err = ErrReportNeedsUser
		r.mu.Unlock()
		return nil, ErrReportNeedsUser
	}
	if err := ValidateRange(r.dates); err != nil {
		r.err = err
		r.mu.Unlock()
		return nil, err
	}
	r.inFlight = true
	r.err = nil
	r.report = nil
	userID, req, gen := r.userID, r.dates, r.gen
	r.mu.Unlock()

	resp, err := r.backend.WeeklyReport(ctx, userID, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = false
	stale := r.gen != gen
	if err != nil {
		te := &TransientError{Op: "generating weekly report", Err: err}
		if !stale {
			r.err = te
		}
		logEvent(r.events, EventRequestFailed, map[string]any{"op": te.Op, "error": err.Error()})
		return nil, te
	}
	if !resp.Success {
		rerr := rejection("generating weekly report", resp.Message, "Failed to generate weekly report.")
		if !stale {
			r.err = rerr
		}
		return nil, rerr
	}
	if stale {
		return nil, ErrReportSuperseded
	}

	report := toWeeklyReport(resp, req)
	r.report = report
	logEvent(r.events, EventReportGenerated, map[string]any{
		"user_id":      userID,
		"start":        report.Range.Start,
		"end":          report.Range.End,
		"work_updates": report.WorkUpdatesCount,
	})
	return report, nil
}

func toWeeklyReport(resp *models.WeeklyReportResponse, requested models.DateRange) *models.WeeklyReport {
	rep := &models.WeeklyReport{
		Narrative:   resp.Report,
		Range:       resp.Metadata.DateRange,
		GeneratedAt: resp.Metadata.GeneratedAt,
	}
	if rep.Range.Start == "" {
		rep.Range.Start = requested.Start
	}
	if rep.Range.End == "" {
		rep.Range.End = requested.End
	}
	if s := resp.Metadata.DataSummary; s != nil {
		rep.HasSummary = true
		if s.WorkUpdatesCount != nil {
			rep.WorkUpdatesCount = *s.WorkUpdatesCount
		}
		if s.FollowupSessionsCount != nil {
			rep.FollowupSessionsCount = *s.FollowupSessionsCount
		}
	}
	return rep
}
