package models

import "time"

// DateLayout is the calendar-date format exchanged with the backend.
const DateLayout = "2006-01-02"

// DateRange is an inclusive pair of calendar dates in DateLayout.
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// LastDays returns the range [today-days, today] in the location of now.
func LastDays(now time.Time, days int) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, -days).Format(DateLayout),
		End:   now.Format(DateLayout),
	}
}

// DataSummary carries the counts behind a weekly report. Missing counts
// decode as nil and render as zero.
type DataSummary struct {
	WorkUpdatesCount      *int `json:"work_updates_count,omitempty"`
	FollowupSessionsCount *int `json:"followup_sessions_count,omitempty"`
}

// ReportMetadata describes the range and data a report was built from.
type ReportMetadata struct {
	DateRange   DateRange    `json:"date_range"`
	DataSummary *DataSummary `json:"data_summary,omitempty"`
	GeneratedAt string       `json:"generated_at,omitempty"`
}

// WeeklyReportResponse is the backend's answer to POST /reports/weekly.
type WeeklyReportResponse struct {
	Success  bool           `json:"success"`
	Report   string         `json:"report"`
	Metadata ReportMetadata `json:"metadata"`
	Message  string         `json:"message,omitempty"`
}

// WeeklyReport is a generated report as shown to the user.
type WeeklyReport struct {
	Narrative             string    `json:"narrative"`
	Range                 DateRange `json:"date_range"`
	WorkUpdatesCount      int       `json:"work_updates_count"`
	FollowupSessionsCount int       `json:"followup_sessions_count"`
	HasSummary            bool      `json:"has_summary"`
	GeneratedAt           string    `json:"generated_at,omitempty"`
}
